package model

import (
	"sort"
	"strings"
	"time"
)

// Message is one entry in a two-party thread. Threads have no document of
// their own: they are keyed by the sorted pair of participant IDs.
type Message struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty"`
	ThreadID    string `json:"threadId" bson:"thread_id" validate:"required"`
	SenderID    string `json:"senderId" bson:"sender_id" validate:"required,mongodb"`
	RecipientID string `json:"recipientId" bson:"recipient_id" validate:"required,mongodb"`
	ListingID   string `json:"listingId,omitempty" bson:"listing_id,omitempty" validate:"omitempty,mongodb"`
	Content     string `json:"content" bson:"content" validate:"required,max=1000"`
	IsRead      bool   `json:"isRead" bson:"is_read"`

	Sender    *PublicUser `json:"sender,omitempty" bson:"sender,omitempty"`
	Recipient *PublicUser `json:"recipient,omitempty" bson:"recipient,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Thread is the per-conversation summary returned by the threads listing.
type Thread struct {
	ThreadID    string      `json:"threadId"`
	OtherUser   *PublicUser `json:"otherUser"`
	LastMessage *Message    `json:"lastMessage"`
	UnreadCount int         `json:"unreadCount"`
}

// ThreadKey derives the canonical thread identifier for two users. The pair
// is sorted so both participants compute the same key.
func ThreadKey(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
