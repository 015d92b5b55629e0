package models

// AuthState is the session manager's state machine position.
type AuthState string

const (
	AuthAnonymous      AuthState = "anonymous"
	AuthAuthenticating AuthState = "authenticating"
	AuthAuthenticated  AuthState = "authenticated"
	AuthFailed         AuthState = "failed"
)

// Session is a point-in-time snapshot of the authentication state. User is
// non-nil iff State is AuthAuthenticated; Token is empty unless a login or
// restore succeeded. FailureReason is set only for AuthFailed.
type Session struct {
	Token         string    `json:"token,omitempty"`
	User          *User     `json:"user,omitempty"`
	State         AuthState `json:"state"`
	FailureReason string    `json:"failureReason,omitempty"`
}
