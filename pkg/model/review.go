package model

import "time"

// Review is a learner's feedback on one completed booking. Exactly one
// review may exist per booking; the reviewee must be the booking's teacher.
type Review struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ReviewerID string `json:"reviewerId" bson:"reviewer_id" validate:"required,mongodb"`
	RevieweeID string `json:"revieweeId" bson:"reviewee_id" validate:"required,mongodb"`
	BookingID  string `json:"bookingId" bson:"booking_id" validate:"required,mongodb"`

	Rating   int    `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment  string `json:"comment" bson:"comment" validate:"required,min=10,max=500"`
	Response string `json:"response" bson:"response" validate:"max=500"`

	Reviewer *PublicUser `json:"reviewer,omitempty" bson:"reviewer,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type ReviewUpdate struct {
	Rating   *int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Comment  string  `json:"comment,omitempty" validate:"omitempty,min=10,max=500"`
	Response *string `json:"response,omitempty" validate:"omitempty,max=500"`
}

// RatingSummary is the aggregate written back onto the reviewee's user
// document after every review mutation.
type RatingSummary struct {
	AverageRating float64 `bson:"average_rating"`
	TotalReviews  int     `bson:"total_reviews"`
}
