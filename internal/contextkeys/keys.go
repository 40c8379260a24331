package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// UserID is the context key for the authenticated subject's ID at the
	// identity provider.
	UserID contextKey = "userID"
	// UserEmail is the context key for the authenticated subject's email.
	UserEmail contextKey = "userEmail"
	// UserRole is the context key for the authenticated subject's role
	// ("admin" for staff, "client" for portal users).
	UserRole contextKey = "userRole"
)
