package model

import "time"

// Favorite links a user to a listing they bookmarked. The (user, listing)
// pair is unique; creating and deleting one adjusts the listing's
// denormalized favorites_count by exactly one.
type Favorite struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"user_id" validate:"required,mongodb"`
	ListingID string    `json:"listingId" bson:"listing_id" validate:"required,mongodb"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
