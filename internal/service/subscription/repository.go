package subscription

import (
	"context"

	"github.com/ignite/newsletter/internal/domain"
)

// Repository defines the data access contract for subscriptions.
type Repository interface {
	// Insert stores s as a new row. No uniqueness on email is assumed.
	Insert(ctx context.Context, s domain.Subscription) error
}
