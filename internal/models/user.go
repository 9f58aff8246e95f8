package models

// User is a backend user record, used to populate booking-form pickers and
// to answer "is this chat authenticated" for review submission.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Service is backend reference data for selection controls.
type Service struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}
