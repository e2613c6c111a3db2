package handlers

import (
	"context"
	"log"
	"time"

	"chathub/internal/hub"
	"chathub/internal/services"
	"chathub/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const defaultPingInterval = 25 * time.Second

// WebSocketHandler runs the socket session: it registers the connection
// with the hub, feeds inbound frames to the event router, and tears the
// connection down when the read loop ends.
func WebSocketHandler(h *hub.Hub) fiber.Handler {
	router := hub.NewRouter(h)

	return websocket.New(func(c *websocket.Conn) {
		connID := uuid.New().String()

		h.Register(connID, c)
		defer func() {
			h.Teardown(connID)
			c.Close()
		}()

		// Transport-level liveness: ping on a fixed interval, evict the
		// connection when pongs stop coming back.
		pingInterval := utils.GetEnvDuration("WS_PING_INTERVAL_SECONDS", defaultPingInterval)
		pongWait := pingInterval * 2
		_ = c.SetReadDeadline(time.Now().Add(pongWait))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(pongWait))
		})

		stopPing := make(chan struct{})
		defer close(stopPing)
		go func() {
			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := c.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
						return
					}
				case <-stopPing:
					return
				}
			}
		}()

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}

			router.HandleEvent(context.Background(), connID, msg)
		}
	})
}

// WSUpgradeMiddleware upgrades the connection to WebSocket
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// AuthMiddleware verifies the JWT token before upgrading
func AuthMiddleware(c *fiber.Ctx) error {
	// Get token from query param `access_token` or Authorization header
	token := c.Query("access_token")
	if token == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			token = authHeader[7:]
		}
	}

	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Missing token")
	}

	claims, err := services.ValidateToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	uid, ok := claims["user_id"].(string)
	if !ok || uid == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	c.Locals("user_id", uid)

	if name, ok := claims["name"].(string); ok {
		c.Locals("name", name)
	}

	return c.Next()
}
