package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// AdminEmail is the context key for the authenticated admin's email.
	AdminEmail contextKey = "adminEmail"
)
