package session

// User is the portal user record as returned by the remote authentication
// API. The JSON field names match the wire format exactly; the record is
// stored verbatim in the session store.
type User struct {
	ID            string `json:"id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

// Clone returns a deep copy of the user record.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Session is the in-memory representation of the current authenticated
// identity and its credentials.
//
// Session values are replaced wholesale by write operations; User and
// AccessToken are always set or cleared together.
type Session struct {
	User         *User
	AccessToken  string
	RefreshToken string
}

// IsEmpty reports whether no identity or credential is held.
func (s Session) IsEmpty() bool {
	return s.User == nil && s.AccessToken == "" && s.RefreshToken == ""
}

// Authenticated reports whether both a user record and an access token are
// held. Holding exactly one of the two is never a valid state.
func (s Session) Authenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Clone returns a copy of the session that shares no pointers with the
// receiver.
func (s Session) Clone() Session {
	return Session{
		User:         s.User.Clone(),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}
