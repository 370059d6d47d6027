package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"dmchat/internal/app/auth"
	"dmchat/internal/app/message"
	"dmchat/internal/app/user"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/req"
	"dmchat/internal/pkg/resp"
)

// HandleSendMessage persists a message to the receiver named in the path, pushes it to
// whichever of the two participants are online and returns it populated.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingCredential))
			return
		}

		receiverID := chi.URLParam(r, "receiverId")
		if receiverID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		var input message.SendInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		// an accepted message is stored and delivered even if the sender goes away
		ctx := context.WithoutCancel(r.Context())

		msg, err := deps.Gateway.Persist(ctx, identity.ID, receiverID, input)
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		deps.Fanout.Deliver(ctx, msg)

		resp.RespondJSON(w, r, http.StatusCreated, msg)
	}
}

// HandleListMessages returns the conversation between the authenticated user and otherUserId.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingCredential))
			return
		}

		msgs, err := deps.Gateway.ListBetween(r.Context(), identity.ID, chi.URLParam(r, "otherUserId"))
		if err != nil {
			resp.RespondError(w, r, err)
			return
		}

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{"messages": msgs})
	}
}

// HandleListContacts returns every other user together with their live presence.
func HandleListContacts(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFrom(r.Context())
		if !ok {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingCredential))
			return
		}

		users, err := deps.Users.ListExcept(r.Context(), identity.ID)
		if err != nil {
			resp.RespondError(w, r, errs.Wrap(errs.ErrStorageFailed, err))
			return
		}

		online := deps.Manager.OnlineStatusForMany(lo.Map(users, func(u user.User, _ int) string {
			return u.ID
		}))

		contacts := lo.Map(users, func(u user.User, _ int) user.Contact {
			return user.Contact{User: u, IsOnline: online[u.ID]}
		})

		resp.RespondJSON(w, r, http.StatusOK, map[string]any{"users": contacts})
	}
}
