// internal/api/handlers/websocket_handler.go
package handlers

import (
	"net/http"
	"time"

	"apiary-api-server/internal/auth"
	"apiary-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// pongWait is how long a client may stay silent before it is dropped.
const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	Hub       *socket.Hub
	JWTSecret string
	// RequireToken rejects connections without a valid token.
	RequireToken bool
	Log          zerolog.Logger
}

// ServeWs upgrades the connection and keeps it registered until the client goes away.
// The token may come from ?token= or the Authorization header.
func (h *WebSocketHandler) ServeWs(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString = auth.BearerToken(c.GetHeader("Authorization"))
	}
	user := ""
	if tokenString != "" && h.JWTSecret != "" {
		id, err := auth.ParseJWT(h.JWTSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		user = id.UserID
	}
	if h.RequireToken && user == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := h.Hub.Register(conn)
	defer h.Hub.Unregister(clientID)
	h.Log.Debug().Str("client", clientID).Str("user", user).Msg("websocket connected")

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// The channel is push-only; reads just keep the deadline moving and notice closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				h.Log.Debug().Err(err).Str("client", clientID).Msg("websocket closed unexpectedly")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
