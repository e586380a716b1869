package errors

import "fmt"

// Classes. Every error returned by the messaging core wraps exactly one of them.
var (
	ErrInvalidRequest  = fmt.Errorf("invalid request")
	ErrForbidden       = fmt.Errorf("forbidden")
	ErrNotFound        = fmt.Errorf("not found")
	ErrStorageConflict = fmt.Errorf("storage conflict")
	ErrUpstreamIO      = fmt.Errorf("upstream io failure")
	ErrUnauthenticated = fmt.Errorf("unauthenticated")
)

var (
	ErrSelfConversation   = fmt.Errorf("%w: you can't send a message to yourself", ErrInvalidRequest)
	ErrEmptyMessage       = fmt.Errorf("%w: empty message", ErrInvalidRequest)
	ErrMessageTooLong     = fmt.Errorf("%w: message too long (max 4000 characters)", ErrInvalidRequest)
	ErrInvalidParticipant = fmt.Errorf("%w: invalid participant id", ErrInvalidRequest)
	ErrInvalidIdentifier  = fmt.Errorf("%w: invalid identifier", ErrInvalidRequest)
	ErrAttachmentEmpty    = fmt.Errorf("%w: attachment is empty", ErrInvalidRequest)
	ErrAttachmentNotPDF   = fmt.Errorf("%w: only PDF allowed", ErrInvalidRequest)
	ErrAttachmentTooLarge = fmt.Errorf("%w: file too large (max 10MB)", ErrInvalidRequest)
	ErrEmptyQuery         = fmt.Errorf("%w: empty search query", ErrInvalidRequest)

	ErrNotMember = fmt.Errorf("%w: not allowed", ErrForbidden)

	ErrConversationNotFound = fmt.Errorf("%w: conversation", ErrNotFound)
	ErrAttachmentNotFound   = fmt.Errorf("%w: attachment", ErrNotFound)
	ErrMessageNotFound      = fmt.Errorf("%w: message", ErrNotFound)

	ErrReadAttachment = fmt.Errorf("%w: failed to read file", ErrUpstreamIO)

	ErrInvalidToken = fmt.Errorf("%w: invalid or expired token", ErrUnauthenticated)
	ErrMissingToken = fmt.Errorf("%w: authorization token is missing", ErrUnauthenticated)
)

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrSinkBackpressure = fmt.Errorf("sink buffer full")
)
