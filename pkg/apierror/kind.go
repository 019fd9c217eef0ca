package apierror

// A Kind classifies an Error.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindInvalidCredentials
	KindNetworkError
	KindServerError
	KindTokenExpired
	KindInvalidToken
	KindUserNotFound
	KindEmailAlreadyExists
	KindWeakPassword
	KindAccountLocked
	KindTooManyAttempts
	KindInvalidEmail
	KindUserNotActivated
	KindSessionExpired
	KindRegistrationError
	KindInvalidRequest
	KindDecodingError
	KindInvalidURL
	KindNoInternet
	KindRefreshNotImplemented
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindInvalidCredentials:    "invalid_credentials",
	KindNetworkError:          "network_error",
	KindServerError:           "server_error",
	KindTokenExpired:          "token_expired",
	KindInvalidToken:          "invalid_token",
	KindUserNotFound:          "user_not_found",
	KindEmailAlreadyExists:    "email_already_exists",
	KindWeakPassword:          "weak_password",
	KindAccountLocked:         "account_locked",
	KindTooManyAttempts:       "too_many_attempts",
	KindInvalidEmail:          "invalid_email",
	KindUserNotActivated:      "user_not_activated",
	KindSessionExpired:        "session_expired",
	KindRegistrationError:     "registration_error",
	KindInvalidRequest:        "invalid_request",
	KindDecodingError:         "decoding_error",
	KindInvalidURL:            "invalid_url",
	KindNoInternet:            "no_internet",
	KindRefreshNotImplemented: "refresh_not_implemented",
}

// String returns the snake case name of the kind.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

var descriptions = map[Kind]string{
	KindInvalidCredentials:    "invalid username or password",
	KindNetworkError:          "network connection error",
	KindTokenExpired:          "authentication token has expired",
	KindInvalidToken:          "invalid authentication token",
	KindUserNotFound:          "user not found",
	KindEmailAlreadyExists:    "email address already exists",
	KindWeakPassword:          "password is too weak",
	KindAccountLocked:         "account is locked due to security reasons",
	KindTooManyAttempts:       "too many login attempts, please try again later",
	KindInvalidEmail:          "invalid email format",
	KindUserNotActivated:      "user account is not activated",
	KindSessionExpired:        "session has expired, please login again",
	KindRegistrationError:     "registration failed",
	KindInvalidRequest:        "invalid request",
	KindDecodingError:         "failed to decode response",
	KindInvalidURL:            "invalid url",
	KindNoInternet:            "no internet connection",
	KindRefreshNotImplemented: "token refresh is not available, please login again",
}

var suggestions = map[Kind]string{
	KindInvalidCredentials:    "Please check your username and password and try again.",
	KindNetworkError:          "Please check your internet connection and try again.",
	KindServerError:           "Please try again later or contact support if the problem persists.",
	KindTokenExpired:          "Please login again to continue.",
	KindSessionExpired:        "Please login again to continue.",
	KindRefreshNotImplemented: "Please login again to continue.",
	KindInvalidToken:          "Please logout and login again.",
	KindUserNotFound:          "Please verify your account information or create a new account.",
	KindEmailAlreadyExists:    "Please use a different email address or login to the existing account.",
	KindWeakPassword:          "Please choose a password with at least 8 characters.",
	KindAccountLocked:         "Please contact support to unlock your account.",
	KindTooManyAttempts:       "Please wait 15 minutes before trying again.",
	KindInvalidEmail:          "Please enter a valid email address.",
	KindUserNotActivated:      "Please check your email for activation instructions.",
	KindNoInternet:            "Please check your internet connection and try again.",
	KindUnknown:               "Please try again or contact support.",
}
