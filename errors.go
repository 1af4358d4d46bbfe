package portalauth

import "errors"

var (
	// ErrManagerNotReady indicates use of a Manager that was not produced by Builder.Build.
	ErrManagerNotReady = errors.New("manager not initialized")
	// ErrNotAuthenticated indicates an authenticated operation attempted with no session held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNoRefreshToken indicates a refresh was requested while no refresh token is held.
	ErrNoRefreshToken = errors.New("no refresh token held")
	// ErrSessionPersist indicates the durable session store rejected a write.
	ErrSessionPersist = errors.New("session persistence failed")
)
