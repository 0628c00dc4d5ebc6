package domain

import (
	"time"

	"github.com/google/uuid"
)

// NewSubscriber is a subscriber about to be persisted. Both fields are
// validated values, so an instance can only come out of intake conversion.
type NewSubscriber struct {
	Email SubscriberEmail
	Name  SubscriberName
}

// Subscription is one stored row of the subscriptions table. IDs are fresh
// per request; the same email may appear in many rows.
type Subscription struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	SubscribedAt time.Time `json:"subscribed_at" db:"subscribed_at"`
}

// NewSubscription builds the record for s with the given id and timestamp.
func NewSubscription(id uuid.UUID, s NewSubscriber, at time.Time) Subscription {
	return Subscription{
		ID:           id,
		Email:        s.Email.String(),
		Name:         s.Name.String(),
		SubscribedAt: at,
	}
}
