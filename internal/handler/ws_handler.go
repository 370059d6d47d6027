/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which authenticates the handshake before upgrading
and then hands the connection to the chat Manager for its whole lifetime.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"dmchat/internal/app/auth"
	"dmchat/internal/pkg/errs"
	"dmchat/internal/pkg/logx"
	"dmchat/internal/pkg/resp"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
// Handshakes without a valid credential are refused with a JSON error and never upgraded.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := deps.Manager.Authenticate(r.Context(), auth.CredentialFromRequest(r, true))
		if err != nil {
			logx.Info("WebSocket connection refused: authentication failed.", "code", errs.From(err).Code)
			resp.RespondError(w, r, err)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket", "user_id", identity.ID)
			return
		}

		logx.Info("WebSocket connection established", "user_id", identity.ID)

		deps.Manager.Serve(conn, identity)
	}
}
