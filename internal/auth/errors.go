package auth

// Reasons attached to gate failures. Clients only need jwtExpired to know they
// must sign in again; the reason is there for diagnostics.
const (
	ReasonMissingToken    = "missing_token"
	ReasonInvalidToken    = "invalid_token"
	ReasonTokenExpired    = "token_expired"
	ReasonAccountNotFound = "account_not_found"
	ReasonLoggedOut       = "logged_out"
)

// AuthError is a request rejected by the gate.
type AuthError struct {
	Reason  string
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NewAuthError builds an AuthError with the message used for reason.
func NewAuthError(reason string) *AuthError {
	return &AuthError{Reason: reason, Message: messageFor(reason)}
}

func messageFor(reason string) string {
	switch reason {
	case ReasonMissingToken:
		return "No authentication token, authorization denied."
	case ReasonInvalidToken, ReasonTokenExpired:
		return "Token verification failed, authorization denied."
	case ReasonAccountNotFound:
		return "Admin doesn't exist, authorization denied."
	case ReasonLoggedOut:
		return "Admin is already logged out, try to login, authorization denied."
	default:
		return "Authorization denied."
	}
}
