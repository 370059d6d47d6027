/*
Package resp provides helper functions for constructing and sending standardized HTTP JSON responses.

Success payloads are written as-is. Failures share one body shape carrying the client-facing
message and the business code from the errs package.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	// Error is the client-friendly error message.
	Error string `json:"error"`

	// Code is the business error code (see errs package).
	Code int `json:"code"`
}

// RespondJSON is a generic response function used to set the Content-Type and send the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondError converts err into a CustomError and writes it with the matching HTTP status.
// Internal failures are logged together with their cause, which is never sent to the client.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	customErr := errs.From(err)
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	if customErr.Status >= http.StatusInternalServerError {
		logx.Error(
			customErr,
			"Request failed",
			"code", customErr.Code,
			"path", r.URL.Path,
		)
	}

	RespondJSON(w, r, customErr.Status, ErrorResponse{
		Error: customErr.Message,
		Code:  customErr.Code,
	})
}
