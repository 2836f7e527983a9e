package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	jwtsvc "taskboard/internal/pkg/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins (configure in prod)
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades HTTP requests to websocket connections on the hub.
type WSHandler struct {
	hub        *Hub
	jwtService *jwtsvc.Service
	log        zerolog.Logger
}

func NewWSHandler(hub *Hub, jwtService *jwtsvc.Service, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		log:        log,
	}
}

// HandleWebSocket serves GET /ws?token=JWT_TOKEN.
//
// Authentication runs through a query parameter because browsers cannot
// set headers on websocket handshakes.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Token is required. Use ?token=YOUR_JWT_TOKEN",
		})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid or expired token",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.ServeWS(conn, claims.UserID)
}

// RegisterRoutes attaches the websocket endpoint.
func (h *WSHandler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ws", h.HandleWebSocket)
}
