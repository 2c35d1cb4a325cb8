package resputil

type ErrorCode int

const (
	OK ErrorCode = 0

	// General
	InvalidRequest ErrorCode = 40001

	// Token
	TokenExpired ErrorCode = 40101
	TokenInvalid ErrorCode = 40102

	// Login
	MagicLinkExpired   ErrorCode = 40103
	InvalidCredentials ErrorCode = 40104

	// Workflow
	UserNotAllowed    ErrorCode = 40301
	InvalidTransition ErrorCode = 40901
	WriteConflict     ErrorCode = 40902

	NotFound ErrorCode = 40401

	// Indicates laziness of the developer
	// Frontend will directly print the message without any translation
	NotSpecified ErrorCode = 99999
)
