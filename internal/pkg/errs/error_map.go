/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// Entries without a Status default to 400 Bad Request in NewError.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Kind: KindValidation, Message: "Invalid request parameters."},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Kind: KindValidation, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Kind: KindValidation, Message: "Unsupported request format."},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Kind: KindValidation, Message: "Request contains unexpected data."},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Kind: KindValidation, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Kind: KindValidation, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Message and Content Errors
	ErrMessageEmpty:          {Code: ErrMessageEmpty, Kind: KindValidation, Message: "A message needs text or an image."},
	ErrMessageContentTooLong: {Code: ErrMessageContentTooLong, Kind: KindValidation, Message: "Message is too long (max %d bytes)."},
	ErrImageInvalid:          {Code: ErrImageInvalid, Kind: KindValidation, Message: "Invalid image format."},
	ErrImageTypeNotAllowed:   {Code: ErrImageTypeNotAllowed, Kind: KindValidation, Message: "Image type %s is not supported."},
	ErrFileSizeTooLarge:      {Code: ErrFileSizeTooLarge, Kind: KindValidation, Message: "File is too large."},
	ErrNothingToUpdate:       {Code: ErrNothingToUpdate, Kind: KindValidation, Message: "Please provide a name or an image."},

	// 3xxx: User, Session, and Security Errors
	ErrMissingCredential:  {Code: ErrMissingCredential, Kind: KindAuth, Message: "Token missing", Status: http.StatusUnauthorized},
	ErrInvalidCredential:  {Code: ErrInvalidCredential, Kind: KindAuth, Message: "Invalid token", Status: http.StatusUnauthorized},
	ErrExpiredCredential:  {Code: ErrExpiredCredential, Kind: KindAuth, Message: "Token expired", Status: http.StatusUnauthorized},
	ErrIdentityNotFound:   {Code: ErrIdentityNotFound, Kind: KindAuth, Message: "User not found", Status: http.StatusNotFound},
	ErrInvalidCredentials: {Code: ErrInvalidCredentials, Kind: KindAuth, Message: "Invalid credentials", Status: http.StatusUnauthorized},
	ErrUserAlreadyExists:  {Code: ErrUserAlreadyExists, Kind: KindValidation, Message: "User already exists"},
	ErrInvalidSignup:      {Code: ErrInvalidSignup, Kind: KindValidation, Message: "Please fill in all fields"},
	ErrInvalidLoginInput:  {Code: ErrInvalidLoginInput, Kind: KindValidation, Message: "Please enter your email and password"},

	// 4xxx: Lookup Errors
	ErrUserNotFound:    {Code: ErrUserNotFound, Kind: KindNotFound, Message: "User not found", Status: http.StatusNotFound},
	ErrMessageNotFound: {Code: ErrMessageNotFound, Kind: KindNotFound, Message: "Message not found", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:           {Code: ErrUnknown, Kind: KindInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStorageFailed:     {Code: ErrStorageFailed, Kind: KindStorage, Message: "Server error", Status: http.StatusInternalServerError},
	ErrFileStorageFailed: {Code: ErrFileStorageFailed, Kind: KindStorage, Message: "File upload failed. Please try again.", Status: http.StatusInternalServerError},
	ErrTokenGeneration:   {Code: ErrTokenGeneration, Kind: KindInternal, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
