package utils

// ContextKey is the type for values stored on request contexts.
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	IPAddressKey  ContextKey = "ip_address"
	UserAgentKey  ContextKey = "user_agent"
	EndpointKey   ContextKey = "endpoint"
	CancelFuncKey ContextKey = "cancel_func"
)

// CORSMaxAge is how long browsers may cache preflight responses (seconds).
const CORSMaxAge = 86400
