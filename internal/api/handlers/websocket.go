package handlers

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	ws "farm-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub       *ws.Hub
	jwtSecret string
}

func NewWebSocketHandler(hub *ws.Hub, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// HandleWebSocket godoc
// @Summary Real-time dashboard connection
// @Description Upgrades to a WebSocket. Authenticate with ?token= or an Authorization: Bearer header.
// @Tags websocket
// @Param token query string false "JWT token"
// @Success 101 "Switching Protocols"
// @Router /ws [get]
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	// Upgrade before validating so the rejection reaches the client as a
	// proper close frame instead of a failed handshake the browser hides.
	conn, err := ws.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "remote", c.Request.RemoteAddr, "error", err)
		return
	}

	userID, err := h.authenticate(c)
	if err != nil {
		slog.Warn("WebSocket authentication failed", "remote", c.Request.RemoteAddr, "error", err)
		h.reject(conn, websocket.ClosePolicyViolation, "authentication failed")
		return
	}

	if _, err := h.hub.Admit(conn, userID); err != nil {
		if errors.Is(err, ws.ErrRegistryFull) {
			h.reject(conn, websocket.CloseTryAgainLater, "server at capacity")
			return
		}
		slog.Error("Failed to admit WebSocket client", "userID", userID, "error", err)
		h.reject(conn, websocket.CloseInternalServerErr, "internal error")
	}
}

// authenticate pulls the JWT from the token query parameter, falling
// back to the Authorization header for non-browser clients.
func (h *WebSocketHandler) authenticate(c *gin.Context) (uint, error) {
	tokenString := c.Query("token")
	if tokenString == "" {
		auth := c.GetHeader("Authorization")
		if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
			tokenString = after
		}
	}
	if tokenString == "" {
		return 0, errors.New("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}
	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, errors.New("missing user_id claim")
	}
	return uint(rawID), nil
}

func (h *WebSocketHandler) reject(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}
