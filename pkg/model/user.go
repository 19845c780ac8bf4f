package model

import "time"

type User struct {
	ID        string       `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name      string       `json:"name" bson:"name" validate:"required,min=1,max=50"`
	Email     string       `json:"email" bson:"email" validate:"required,email"`
	Password  string       `json:"-" bson:"password" validate:"omitempty,min=60,max=60"`
	Role      string       `json:"role" bson:"role" validate:"required,oneof=learner teacher admin"`
	Avatar    string       `json:"avatar" bson:"avatar"`
	Bio       string       `json:"bio" bson:"bio" validate:"max=500"`
	Location  UserLocation `json:"location" bson:"location"`
	Skills    []string     `json:"skills" bson:"skills"`
	Interests []string     `json:"interests" bson:"interests"`

	// Rating and TotalReviews are denormalized aggregates over the user's
	// reviews-as-reviewee, maintained by the reviews service.
	Rating       float64 `json:"rating" bson:"rating" validate:"min=0,max=5"`
	TotalReviews int     `json:"totalReviews" bson:"total_reviews" validate:"min=0"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type UserLocation struct {
	City    string `json:"city" bson:"city"`
	Country string `json:"country" bson:"country"`
}

// PublicUser is the projection embedded in listings, bookings and reviews.
type PublicUser struct {
	ID           string  `json:"id" bson:"_id"`
	Name         string  `json:"name" bson:"name"`
	Avatar       string  `json:"avatar" bson:"avatar"`
	Email        string  `json:"email,omitempty" bson:"email,omitempty"`
	Rating       float64 `json:"rating" bson:"rating"`
	TotalReviews int     `json:"totalReviews" bson:"total_reviews"`
}

type UserUpdate struct {
	Name      string        `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Bio       *string       `json:"bio,omitempty" validate:"omitempty,max=500"`
	Location  *UserLocation `json:"location,omitempty"`
	Skills    []string      `json:"skills,omitempty"`
	Interests []string      `json:"interests,omitempty"`
}
