package common

// SessionCookieName is the cookie carrying the issued session token.
const SessionCookieName = "sessionToken"

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on inbound calls.
const AccessTokenHeaderName = "access_token"

// Message keys returned to clients. They are resolved to human text by the
// caller's i18n catalogue.
const (
	MsgLoginSuccess       = "auth.success.login"
	MsgLogoutSuccess      = "auth.success.logout"
	MsgInvalidCredentials = "auth.errors.invalid_credentials"
	MsgMissingFields      = "auth.errors.missing_fields"
	MsgUnauthorized       = "auth.errors.unauthorized"
	MsgInternal           = "auth.errors.internal"
	MsgJWTNotConfigured   = "auth.errors.jwt_not_configured"
	MsgTooManyAttempts    = "auth.errors.too_many_attempts"
)

// Error codes returned alongside message keys.
const (
	CodeInvalidCredentials = "InvalidCredentials"
	CodeMissingFields      = "MissingFields"
	CodeUnauthorized       = "Unauthorized"
	CodeServerError        = "ServerError"
	CodeTooManyAttempts    = "TooManyAttempts"
)
