package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"seryvo/internal/domain/user"
	"seryvo/internal/general/contracts"
	"seryvo/internal/general/jwt"
	"seryvo/internal/general/logger"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout   = 5 * time.Second
	wsCloseAckWindow = 2 * time.Second
	ctrlTimeout      = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Events are the hub's callbacks into the lifecycle layer. Connect and
// Disconnect drive reconciliation; LocationUpdate is invoked for every
// inbound location frame and decides itself whether streaming is allowed.
type Events interface {
	DriverConnected(ctx context.Context, driverID string)
	DriverDisconnected(ctx context.Context, driverID string)
	LocationUpdate(ctx context.Context, driverID string, frame contracts.WSInbound) error
}

// DriverHub handles driver WebSocket connections with JWT first-frame auth.
type DriverHub struct {
	logger      *logger.Logger
	jwtMgr      *jwt.Manager
	events      Events
	writeLocks  sync.Map // key: *websocket.Conn -> *sync.Mutex
	driverConns sync.Map // key: driverID(string) -> *websocket.Conn
}

// NewDriverHub creates a WebSocket hub with JWT auth.
func NewDriverHub(logger *logger.Logger, jwtMgr *jwt.Manager, events Events) *DriverHub {
	return &DriverHub{
		logger: logger,
		jwtMgr: jwtMgr,
		events: events,
	}
}

// ConnectDriver handles WebSocket connections from drivers with JWT auth.
func (hub *DriverHub) ConnectDriver(w http.ResponseWriter, r *http.Request) {
	// 1) Upgrade HTTP -> WS
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.logger.Error(r.Context(), "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err, nil)
		return
	}
	// Teardown order (LIFO on return):
	defer conn.Close()                // close the socket last
	defer hub.writeLocks.Delete(conn) // forget per-connection mutex (idempotent)

	// 2) Set auth deadline
	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(5 * time.Second)); err != nil {
		hub.logger.Error(r.Context(), "ws_set_deadline_failed", "Failed to set initial read deadline", err, nil)
		hub.sendAuthError(conn, "internal server error")
		return
	}

	// 3) First frame must be the auth message
	msgType, firstFrame, err := conn.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
			hub.logger.Error(r.Context(), "ws_auth_timeout", "Client disconnected before authentication", err, nil)
		} else {
			hub.logger.Error(r.Context(), "ws_auth_read_failed", "Failed to read auth message", err, nil)
		}
		hub.sendAuthError(conn, "authentication timeout: please send auth message within 5 seconds")
		return
	}

	if msgType != websocket.TextMessage {
		hub.logger.Error(r.Context(), "ws_auth_invalid_format", "Auth message must be text format", nil, nil)
		hub.sendAuthError(conn, "auth message must be in text format")
		return
	}

	res, err := jwt.ValidateWSAuth(firstFrame, hub.jwtMgr, user.RoleDriver)
	if err != nil {
		hub.logger.Error(r.Context(), "ws_auth_failed", "Invalid auth message or token", err, nil)
		hub.sendAuthError(conn, "authentication failed: invalid token")
		return
	}

	// 4) Path param must match the subject in claims
	if drvID := r.PathValue("driver_id"); drvID != "" && drvID != res.Claims.Subject {
		hub.logger.Error(r.Context(), "ws_auth_failed", "Driver ID mismatch", nil, map[string]any{
			"path_driver_id": drvID,
			"token_subject":  res.Claims.Subject,
		})
		hub.sendAuthError(conn, "driver ID mismatch")
		return
	}
	driverID := res.Claims.Subject

	// 5) Send authentication success message
	if err := hub.sendAuthSuccess(conn, driverID); err != nil {
		hub.logger.Error(r.Context(), "ws_auth_success_failed", "Failed to send auth success message", err, nil)
		return
	}

	hub.logger.Info(r.Context(), "ws_connected", "Driver WebSocket connected",
		map[string]any{"driver_id": driverID})

	// 6) Reset read deadline after auth
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	// 7) Start ping loop (every 30s) using the per-connection writer lock
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			mu := hub.lockOf(conn)
			mu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(ctrlTimeout))
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout))
			mu.Unlock()
			if err != nil {
				// Close socket to unblock reader; goroutine exits.
				_ = conn.Close()
				hub.logger.Error(r.Context(), "ws_ping_failed", "Failed to send ping", err, nil)
				return
			}
		}
	}()

	// 8) Register this driver for outbound pushes; unregister on exit.
	// The lifecycle layer reconciles on both edges: a (re)connect forces a
	// full state reload, a disconnect marks realtime as stale.
	hub.driverConns.Store(driverID, conn)
	if hub.events != nil {
		hub.events.DriverConnected(r.Context(), driverID)
	}
	defer func() {
		hub.driverConns.Delete(driverID)
		if hub.events != nil {
			hub.events.DriverDisconnected(context.WithoutCancel(r.Context()), driverID)
		}
	}()

	// 9) Read loop: route inbound frames
	for {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				hub.logger.Error(r.Context(), "ws_unexpected_close", "Driver connection closed unexpectedly", err, map[string]any{
					"driver_id": driverID,
				})
				hub.wsWriteClose(conn, websocket.CloseInternalServerErr, "internal error")
			} else {
				hub.logger.Info(r.Context(), "ws_connection_closed", "Driver connection closed normally", map[string]any{
					"driver_id": driverID,
				})
				hub.wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			break
		}

		var frame contracts.WSInbound
		if err := json.Unmarshal(payload, &frame); err != nil {
			_ = hub.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"bad json"}`))
			continue
		}

		switch frame.Type {
		case "location_update":
			if hub.events == nil {
				continue
			}
			if err := hub.events.LocationUpdate(r.Context(), driverID, frame); err != nil {
				hub.logger.Debug(r.Context(), "ws_location_dropped", "Location frame not forwarded", map[string]any{
					"driver_id": driverID,
					"reason":    err.Error(),
				})
			}

		case "ping":
			_ = hub.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"pong"}`))

		default:
			_ = hub.wsWriteMessage(conn, websocket.TextMessage, []byte(`{"type":"error","error":"unknown message type"}`))
		}
	}
}

// sendAuthError sends authentication error message to client
func (hub *DriverHub) sendAuthError(conn *websocket.Conn, message string) error {
	errorMsg := map[string]any{
		"type":    "auth_error",
		"error":   message,
		"success": false,
	}
	msgBytes, err := json.Marshal(errorMsg)
	if err != nil {
		return err
	}
	return hub.wsWriteMessage(conn, websocket.TextMessage, msgBytes)
}

// sendAuthSuccess sends authentication success message to client
func (hub *DriverHub) sendAuthSuccess(conn *websocket.Conn, driverID string) error {
	successMsg := map[string]any{
		"type":      "auth_success",
		"message":   "Authentication successful",
		"success":   true,
		"driver_id": driverID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	msgBytes, err := json.Marshal(successMsg)
	if err != nil {
		return err
	}
	return hub.wsWriteMessage(conn, websocket.TextMessage, msgBytes)
}
