package model

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

// Booking is one requested session between a learner and a teacher for a
// listing. Status moves pending → confirmed → completed, with cancellation
// allowed from pending or confirmed; completed and cancelled are terminal.
type Booking struct {
	ID        string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	LearnerID string `json:"learnerId" bson:"learner_id" validate:"required,mongodb"`
	TeacherID string `json:"teacherId" bson:"teacher_id" validate:"required,mongodb"`
	ListingID string `json:"listingId" bson:"listing_id" validate:"required,mongodb"`

	RequestedDate time.Time `json:"requestedDate" bson:"requested_date" validate:"required"`
	RequestedTime string    `json:"requestedTime" bson:"requested_time" validate:"required,max=50"`
	Message       string    `json:"message" bson:"message" validate:"max=500"`
	Status        string    `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled"`

	Learner *PublicUser `json:"learner,omitempty" bson:"learner,omitempty"`
	Teacher *PublicUser `json:"teacher,omitempty" bson:"teacher,omitempty"`
	Listing *Listing    `json:"listing,omitempty" bson:"listing,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updated_at"`
}

// NonTerminalStatuses are the states that block a duplicate booking for the
// same learner, listing and date.
func NonTerminalStatuses() []string {
	return []string{BookingPending, BookingConfirmed}
}

type BookingRequest struct {
	ListingID     string `json:"listingId" validate:"required,mongodb"`
	RequestedDate string `json:"requestedDate" validate:"required"`
	RequestedTime string `json:"requestedTime" validate:"required,max=50"`
	Message       string `json:"message" validate:"max=500"`
}

// BookingFilter narrows booking lists by status and by which side of the
// booking the caller sits on.
type BookingFilter struct {
	LearnerID string
	TeacherID string
	Status    string
}
