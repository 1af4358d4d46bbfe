package portalauth

// Redirect targets produced by [Decide]. The routing layer owns the views
// behind these paths.
const (
	PathLogin                = "/login"
	PathVerificationRequired = "/verification-required"
	PathAccessDenied         = "/access-denied"
)

// Outcome is the kind of decision the route guard reaches.
type Outcome int

const (
	// OutcomePending instructs the caller to render a neutral waiting
	// indicator and re-evaluate on the next session change.
	OutcomePending Outcome = iota
	// OutcomeRender admits the requested view.
	OutcomeRender
	// OutcomeRedirect sends the navigation to Decision.Target.
	OutcomeRedirect
)

// Decision is the result of evaluating a navigation against the current
// session.
type Decision struct {
	Outcome Outcome

	// Target is the redirect destination; set only for OutcomeRedirect.
	Target string

	// From is the originally-requested location, carried on redirects to
	// the login view so the caller can return after sign-in.
	From string
}

// Decide maps the current session snapshot and a route's requirements to a
// rendering decision. It is a pure, total function with no hidden state and
// must be re-evaluated on every session change and every navigation.
//
// Rules are evaluated in fixed order, first match wins:
//
//  1. session loading → pending
//  2. not authenticated → redirect to login (carrying from)
//  3. verification required but email unverified → redirect to verification
//  4. role not in the allowed set → redirect to access denied
//  5. otherwise → render
func Decide(snap Snapshot, req Requirements, from string) Decision {
	if snap.Loading {
		return Decision{Outcome: OutcomePending}
	}

	if !snap.IsAuthenticated() {
		return Decision{
			Outcome: OutcomeRedirect,
			Target:  PathLogin,
			From:    from,
		}
	}

	if req.RequireVerified && !snap.User.EmailVerified {
		return Decision{
			Outcome: OutcomeRedirect,
			Target:  PathVerificationRequired,
		}
	}

	if len(req.AllowedRoles) > 0 && !roleAllowed(snap.User.Role, req.AllowedRoles) {
		return Decision{
			Outcome: OutcomeRedirect,
			Target:  PathAccessDenied,
		}
	}

	return Decision{Outcome: OutcomeRender}
}

func roleAllowed(role string, allowed []string) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
