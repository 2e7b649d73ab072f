package types

const (
	// ContextUserKey holds the authenticated user resolved by the auth
	// middleware.
	ContextUserKey = "user"

	// ContextMembershipKey holds the caller's membership in the workplace
	// addressed by the route, resolved by the workplace scope middleware.
	ContextMembershipKey = "membership"
)
