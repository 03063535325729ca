package notify

import "errors"

var (
	// ErrNilStorage is returned when a Sender is created without storage.
	ErrNilStorage = errors.New("storage cannot be nil")

	// ErrNilPusher is returned when a Sender is created without a pusher.
	ErrNilPusher = errors.New("pusher cannot be nil")

	// ErrNilCollection is returned when Mongo storage is created without a collection.
	ErrNilCollection = errors.New("collection cannot be nil")

	// ErrNilEmailSender is returned when the email fallback lacks a sender.
	ErrNilEmailSender = errors.New("email sender cannot be nil")

	// ErrNilAddressBook is returned when the email fallback lacks an address book.
	ErrNilAddressBook = errors.New("address book cannot be nil")

	// ErrMissingID is returned when persisting a notification without an ID.
	ErrMissingID = errors.New("notification id is required")

	// ErrMissingUserID is returned when a notification lacks a recipient.
	ErrMissingUserID = errors.New("user id is required")

	// ErrMissingKind is returned when a notification lacks a kind.
	ErrMissingKind = errors.New("notification kind is required")

	// ErrNotificationNotFound is returned when a notification does not exist.
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrStorageFailure wraps backend persistence failures.
	ErrStorageFailure = errors.New("notification storage failure")

	// ErrInvalidCatalog is returned for unparseable template catalogs.
	ErrInvalidCatalog = errors.New("invalid notification template catalog")

	// ErrTemplateNotFound is returned when a kind has no catalog entry.
	ErrTemplateNotFound = errors.New("no template for notification kind")

	// ErrTemplateRender is returned when template execution fails.
	ErrTemplateRender = errors.New("failed to render notification template")
)
