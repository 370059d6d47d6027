/*
Package handler provides HTTP handler functions for user authentication and management.
*/
package handler

import (
	"net/http"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// HandleSignup creates an account, sets the session cookie and returns the user with its token.
func HandleSignup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.SignupInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Auth.Signup(r.Context(), input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		auth.SetSessionCookie(w, session.Token, deps.Auth.TokenTTL(), deps.Config.CookieSecure)
		resp.RespondJSON(w, r, http.StatusCreated, session)
	}
}

// HandleLogin verifies user credentials and issues a session token.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input auth.LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		session, err := deps.Auth.Login(r.Context(), input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		auth.SetSessionCookie(w, session.Token, deps.Auth.TokenTTL(), deps.Config.CookieSecure)
		resp.RespondJSON(w, r, http.StatusOK, session)
	}
}

// HandleLogout expires the session cookie. Bearer tokens stay valid until they expire.
func HandleLogout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth.ClearSessionCookie(w, deps.Config.CookieSecure)
		resp.RespondJSON(w, r, http.StatusOK, map[string]string{
			"message": "Logged out successfully",
		})
	}
}

// HandleCheckAuth returns the authenticated user.
func HandleCheckAuth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingCredential))
			return
		}

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{"user": identity})
	}
}

// HandleUpdateProfile changes the display name and/or profile picture of the authenticated user.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingCredential))
			return
		}

		var input user.UpdateInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		updated, err := deps.Profiles.Update(r.Context(), identity.ID, input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{"user": updated})
	}
}
