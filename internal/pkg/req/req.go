/*
Package req provides helper functions for HTTP request parsing and data binding.

It decodes JSON bodies strictly and caps their size. Images travel inside JSON bodies as
base64 data URIs, so the cap is sized for one encoded image plus its text.
*/
package req

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"dmchat/internal/pkg/errs"
)

// MaxJSONBodySize defines the maximum allowed size (8 MB) for a JSON request body.
// A 5 MB image grows by a third once base64 encoded.
const MaxJSONBodySize int64 = 8 << 20

// BindJSON attempts to bind the JSON data from the HTTP request body to the destination struct dst.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewError(errs.ErrRequestEntityTooLarge)
		}
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
