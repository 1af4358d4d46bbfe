package portalauth

import "github.com/litspark/portalauth/session"

// User is the portal user record. Alias of [session.User] so callers can
// stay on the root package.
type User = session.User

// Snapshot is a point-in-time copy of the manager's session state, consumed
// by the route guard and the view layer. It shares no pointers with the
// manager; reading it never observes a torn write.
type Snapshot struct {
	User         *User
	AccessToken  string
	RefreshToken string

	// Loading is true while any authentication-affecting operation is in
	// flight (restore, login, register, logout, refresh, password flows).
	Loading bool

	// Err is the message of the last failed operation, cleared at the
	// start of each new attempt. Overwritten, never accumulated.
	Err string
}

// IsAuthenticated reports whether the snapshot holds both a user record
// and an access token. The two are always set and cleared together.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Requirements declares what a route demands of the session before its
// view may render. The zero value admits any authenticated user.
type Requirements struct {
	// AllowedRoles restricts access to the named roles; empty means any
	// role is acceptable.
	AllowedRoles []string

	// RequireVerified demands a verified email address.
	RequireVerified bool
}
