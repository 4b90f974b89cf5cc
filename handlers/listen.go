package handlers

import (
	"net/http"

	"emergency-alert-service/middleware"
	ws "emergency-alert-service/websocket"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ListenAlerts handles GET /api/v1/listen. It upgrades the
// connection and joins the session to the rooms matching the admin's
// jurisdiction, so the session only receives events in its scope.
func (h *Handlers) ListenAlerts(c *gin.Context) {
	account := middleware.AccountFromContext(c)
	rooms := h.resolver.RoomsForAdmin(account)
	if len(rooms) == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "no realtime scope for this role"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Error("Failed to upgrade connection to WebSocket")
		return
	}

	client := ws.NewClient(h.hub, conn, rooms)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	log.Infof("WebSocket session established for %s (rooms: %v)", account.ID, rooms)
}
