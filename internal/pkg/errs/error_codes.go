/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific business or system errors
both internally within the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Message and Content Errors
const (
	// ErrMessageEmpty indicates a message with neither text nor image.
	ErrMessageEmpty = 2201

	// ErrMessageContentTooLong indicates that the message text exceeded the maximum length limit.
	ErrMessageContentTooLong = 2202

	// ErrImageInvalid indicates an image payload that is not a supported data URI or URL.
	ErrImageInvalid = 2203

	// ErrImageTypeNotAllowed indicates an image whose detected type is not accepted.
	ErrImageTypeNotAllowed = 2204

	// ErrFileSizeTooLarge indicates an image above the size limit.
	ErrFileSizeTooLarge = 2205

	// ErrNothingToUpdate indicates a profile update request without any field.
	ErrNothingToUpdate = 2301
)

// 3xxx: User, Session, and Security Errors
const (
	// ErrMissingCredential indicates a request or handshake without any token.
	ErrMissingCredential = 3101

	// ErrInvalidCredential indicates a malformed token or a bad signature.
	ErrInvalidCredential = 3102

	// ErrExpiredCredential indicates a token past its expiry.
	ErrExpiredCredential = 3103

	// ErrIdentityNotFound indicates a valid token whose user no longer exists.
	ErrIdentityNotFound = 3104

	// ErrInvalidCredentials indicates a login with an unknown email or a wrong password.
	ErrInvalidCredentials = 3201

	// ErrUserAlreadyExists indicates a signup with an email that is already registered.
	ErrUserAlreadyExists = 3202

	// ErrInvalidSignup indicates missing or malformed signup fields.
	ErrInvalidSignup = 3203

	// ErrInvalidLoginInput indicates a login request without an email or a password.
	ErrInvalidLoginInput = 3204
)

// 4xxx: Lookup Errors
const (
	// ErrUserNotFound indicates that the referenced user does not exist.
	ErrUserNotFound = 4001

	// ErrMessageNotFound indicates that the referenced message does not exist.
	ErrMessageNotFound = 4002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStorageFailed indicates that the persistence layer is unavailable or rejected a write.
	ErrStorageFailed = 5001

	// ErrFileStorageFailed indicates that the object store upload failed.
	ErrFileStorageFailed = 5002

	// ErrTokenGeneration indicates that a session token could not be signed.
	ErrTokenGeneration = 5003
)
