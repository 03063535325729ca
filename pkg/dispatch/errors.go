package dispatch

import "errors"

var (
	// ErrNilCollaborator is returned when a dispatcher is built without a collaborator.
	ErrNilCollaborator = errors.New("collaborator cannot be nil")

	// ErrNilNotifier is returned when a dispatcher is built without a notifier.
	ErrNilNotifier = errors.New("notifier cannot be nil")

	// ErrNilQueue is returned when a processor is built without a queue.
	ErrNilQueue = errors.New("queue cannot be nil")

	// ErrNilDispatcher is returned when a processor is built without a dispatcher.
	ErrNilDispatcher = errors.New("dispatcher cannot be nil")

	// ErrNilStore is returned when a processor is built without durable stores.
	ErrNilStore = errors.New("event store and dead-letter store cannot be nil")

	// ErrAlreadyStarted is returned on a second Start without Stop.
	ErrAlreadyStarted = errors.New("processor already started")

	// ErrNotStarted is returned on Stop before Start.
	ErrNotStarted = errors.New("processor not started")

	// ErrHandlerPanic wraps panics recovered from event handlers.
	ErrHandlerPanic = errors.New("panic in event handler")

	// ErrInvalidPayload is returned when an event payload cannot be decoded.
	ErrInvalidPayload = errors.New("invalid event payload")

	// ErrMissingPayloadField is returned when a payload lacks a required field.
	ErrMissingPayloadField = errors.New("missing required payload field")
)
