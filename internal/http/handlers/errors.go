package handlers

// Error codes carried in ErrorResponse.Code. Clients branch on these; the
// message is for people.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	ErrCodeListFailed   = "list_failed"
	ErrCodeFetchFailed  = "fetch_failed"
	ErrCodeCreateFailed = "create_failed"
	ErrCodeChatFailed   = "chat_failed"

	ErrCodeIdempotencyKeyReused = "idempotency_key_reused"
)

// Client-facing messages for 5xx responses. Internal error text is logged,
// never returned.
const (
	msgInternal    = "Internal Server Error"
	msgListFailed  = "Failed to fetch schemes"
	msgNotFound    = "Scheme not found"
	msgFetchFailed = "Failed to fetch scheme"
)
