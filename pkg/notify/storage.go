package notify

import (
	"context"
	"time"
)

// Storage handles notification persistence. It backs both the push path
// (create) and the external pull API (list, mark-read, unread count).
type Storage interface {
	// Create stores a notification. An existing record with the same ID is
	// left untouched: creation is idempotent so replayed events cannot
	// produce duplicate user-visible notifications.
	Create(ctx context.Context, n Notification) error

	// Get retrieves a single notification scoped to the user.
	Get(ctx context.Context, userID, id string) (*Notification, error)

	// List returns the user's notifications, newest first.
	List(ctx context.Context, userID string, opts ListOptions) ([]Notification, error)

	// MarkRead flips the read flag on the given notifications.
	MarkRead(ctx context.Context, userID string, ids ...string) error

	// CountUnread returns the user's unread notification count.
	CountUnread(ctx context.Context, userID string) (int, error)
}

// ListOptions filters and paginates notification listings.
type ListOptions struct {
	Limit      int        // maximum number of notifications to return (0 = no limit)
	Offset     int        // number of notifications to skip
	OnlyUnread bool       // only return unread notifications
	Kinds      []string   // only return notifications of these kinds
	Since      *time.Time // only return notifications created after this time
}
