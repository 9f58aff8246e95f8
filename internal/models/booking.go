package models

// UserRef is the customer reference embedded in a booking payload.
type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ServiceRef is the purchased-service reference embedded in a booking payload.
type ServiceRef struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// Booking is a scheduled service engagement as delivered by the backend.
// Nested references and event fields may each be absent individually.
type Booking struct {
	ID            int64       `json:"id"`
	User          *UserRef    `json:"user"`
	Service       *ServiceRef `json:"service"`
	EventDate     string      `json:"event_date"`
	EventTime     string      `json:"event_time"`
	EventLocation string      `json:"event_location"`
	BookedAt      string      `json:"booked_at"`
	Status        string      `json:"status"`
	Phone         string      `json:"phone"`
}

// BookingPayload is the mutation body for create and update requests.
type BookingPayload struct {
	UserID        int64  `json:"user_id"`
	ServiceID     int64  `json:"service_id"`
	EventDate     string `json:"event_date"`
	EventTime     string `json:"event_time"`
	EventLocation string `json:"event_location"`
	Status        string `json:"status"`
}

// DisplayBooking is the flattened, nullable-safe projection used for
// rendering. SerialNo is the 1-based position within the current list and
// must be recomputed whenever the list is reordered or repaginated.
type DisplayBooking struct {
	ID        int64
	SerialNo  int
	Customer  string
	Service   string
	Location  string
	EventDate string
	EventTime string
	Price     float64
	Status    string
	Booked    string
	Contact   string
}
