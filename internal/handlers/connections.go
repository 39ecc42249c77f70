package handlers

import (
	"net/http"

	"github.com/Emmanuel1255/smart-wast-bin-backend/internal/websocket"
	"github.com/Emmanuel1255/smart-wast-bin-backend/pkg/utils"
)

// GetConnectionStatus reports which users hold a live WebSocket connection.
// With ?user_id= it answers for one user; otherwise it lists everyone.
// Requires admin authentication.
func GetConnectionStatus(hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID := r.URL.Query().Get("user_id"); userID != "" {
			utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
				"user_id":   userID,
				"connected": hub.IsUserConnected(userID),
			})
			return
		}

		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"connected_count": hub.GetClientCount(),
			"user_ids":        hub.GetConnectedClientIDs(),
		})
	}
}
