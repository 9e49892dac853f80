package types

// HTTP Header Constants
const (
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderLocation      = "Location"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "
)

// Context keys
const (
	// PrincipalCtxName is the fiber Locals key holding the verified Principal.
	PrincipalCtxName = "principal"
)

// Common Values
const (
	DefaultAdminRole = "ROLE_ADMIN"
)
