package handler

import (
	"net/http"
	"strings"

	"chatvault/backend/internal/chathub"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is the reverse proxy's job in this deployment.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket authenticates the caller, upgrades the connection and
// hands it to the hub. Browsers cannot set headers on websocket dials, so
// the token is taken from the query string first.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}

	userID, _, err := h.parseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := chathub.NewWebSocketClient(uuid.New().String(), userID, conn, h.Hub, h.log)
	h.Hub.RegisterCh <- client
	client.Run()
}
