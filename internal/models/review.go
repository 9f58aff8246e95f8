package models

// ReviewUser is the author reference embedded in a review.
type ReviewUser struct {
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// ReviewService carries the category of the reviewed service.
type ReviewService struct {
	Category string `json:"category"`
}

// Review is a published customer review.
type Review struct {
	ID             int64         `json:"id"`
	User           ReviewUser    `json:"user"`
	ServiceDetails ReviewService `json:"service_details"`
	Rating         int           `json:"rating"` // 0..5
	Comment        string        `json:"comment"`
	CreatedAt      string        `json:"created_at"`
}

// ReviewSubmission is the body posted when a viewer submits a review.
type ReviewSubmission struct {
	Service int64  `json:"service"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}
