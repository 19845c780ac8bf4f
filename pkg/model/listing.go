package model

import "time"

const (
	ListingActive   = "active"
	ListingInactive = "inactive"
	ListingDraft    = "draft"
)

type Listing struct {
	ID          string              `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TeacherID   string              `json:"teacherId" bson:"teacher_id" validate:"required,mongodb"`
	Title       string              `json:"title" bson:"title" validate:"required,min=1,max=100"`
	Description string              `json:"description" bson:"description" validate:"required,max=2000"`
	Category    string              `json:"category" bson:"category" validate:"required,oneof=Cooking Tech Languages Arts Fitness Business Other"`
	Price       float64             `json:"price" bson:"price" validate:"min=0"`
	Duration    int                 `json:"duration" bson:"duration" validate:"required,min=15"`
	Location    ListingLocation     `json:"location" bson:"location"`
	Images      []string            `json:"images" bson:"images" validate:"max=3"`
	Availability ListingAvailability `json:"availability" bson:"availability"`
	Status      string              `json:"status" bson:"status" validate:"required,oneof=active inactive draft"`

	Views          int `json:"views" bson:"views"`
	FavoritesCount int `json:"favoritesCount" bson:"favorites_count"`

	Teacher *PublicUser `json:"teacher,omitempty" bson:"teacher,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

type ListingLocation struct {
	Type    string `json:"type" bson:"type" validate:"required,oneof=in-person online both"`
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
}

type ListingAvailability struct {
	Days      []string `json:"days" bson:"days" validate:"dive,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	TimeSlots []string `json:"timeSlots" bson:"time_slots"`
}

type ListingUpdate struct {
	Title        string               `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Description  string               `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category     string               `json:"category,omitempty" validate:"omitempty,oneof=Cooking Tech Languages Arts Fitness Business Other"`
	Price        *float64             `json:"price,omitempty" validate:"omitempty,min=0"`
	Duration     *int                 `json:"duration,omitempty" validate:"omitempty,min=15"`
	Location     *ListingLocation     `json:"location,omitempty"`
	Availability *ListingAvailability `json:"availability,omitempty"`
	Status       string               `json:"status,omitempty" validate:"omitempty,oneof=active inactive draft"`
}

// ListingFilter captures the public browse query.
type ListingFilter struct {
	Search       string
	Category     string
	MinPrice     *float64
	MaxPrice     *float64
	LocationType string
	City         string
	Status       string
	TeacherID    string
	Sort         string
}
