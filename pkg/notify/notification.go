package notify

import (
	"time"

	"github.com/google/uuid"
)

// Notification is the persisted, user-facing record of a push. It is
// created once by the Sender; afterwards only the read flag mutates, via
// the pull API's acknowledgement path. This subsystem never deletes
// notifications.
type Notification struct {
	ID        string            `json:"id" bson:"_id"`
	UserID    string            `json:"user_id" bson:"user_id"`
	Kind      string            `json:"kind" bson:"kind"`
	Title     string            `json:"title" bson:"title"`
	Message   string            `json:"message" bson:"message"`
	Payload   map[string]any    `json:"payload,omitempty" bson:"payload,omitempty"`
	Read      bool              `json:"read" bson:"read"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	ExpiresAt *time.Time        `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// IsExpired reports whether the notification has outlived its expiry.
func (n Notification) IsExpired() bool {
	return n.ExpiresAt != nil && time.Now().After(*n.ExpiresAt)
}

// dedupNamespace scopes deterministic notification IDs derived from dedup keys.
var dedupNamespace = uuid.MustParse("9d4f2c1e-7a61-4b7e-9d35-5f20c1b9e0aa")

// DeterministicID derives a stable notification ID from a dedup key, so
// duplicate handler executions (durability-sweep replays) upsert the same
// record instead of creating a second user-visible notification.
func DeterministicID(dedupKey string) string {
	return uuid.NewSHA1(dedupNamespace, []byte(dedupKey)).String()
}
