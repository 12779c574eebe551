package values

type contextKey string

const (
	Success        = "success"
	Created        = "created"
	Error          = "error"
	BadRequestBody = "bad_request"
	NotFound       = "not_found"
	NotAuthorised  = "not_authorised"
	TokenExpired   = "token_expired"
	NotAllowed     = "not_allowed"
	Conflict       = "conflict"
	Unprocessable  = "unprocessable"
	ActiveLogin    = "active_login"
	TooManyRequest = "too_many_requests"
	SystemErr      = "Something went wrong"
)

const (
	HeaderRequestSource = "X-Request-Source"
	HeaderRequestID     = "X-Request-ID"
)

const (
	ContextTracingKey contextKey = "tracing"
	ContextUserIDKey  contextKey = "user_id"
	ContextRoleKey    contextKey = "role"
)
