package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// wsWriteClose sends a close control frame with the given code and reason.
func (hub *DriverHub) wsWriteClose(conn *websocket.Conn, code int, reason string) {
	mu := hub.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(wsCloseAckWindow),
	)
	hub.writeLocks.Delete(conn)
}

// wsWriteMessage sets a short write deadline and writes a message.
func (hub *DriverHub) wsWriteMessage(conn *websocket.Conn, mt int, payload []byte) error {
	mu := hub.lockOf(conn)
	mu.Lock()
	defer mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(mt, payload)
}

// lockOf returns the writer mutex for a specific connection
func (hub *DriverHub) lockOf(conn *websocket.Conn) *sync.Mutex {
	if v, ok := hub.writeLocks.Load(conn); ok {
		if mu, ok := v.(*sync.Mutex); ok && mu != nil {
			return mu
		}
	}
	mu := &sync.Mutex{}
	actual, _ := hub.writeLocks.LoadOrStore(conn, mu)
	return actual.(*sync.Mutex)
}

// SendToDriver marshals msg and pushes a single TextMessage to the driver's
// connection, if one is registered.
func (hub *DriverHub) SendToDriver(driverID string, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	v, ok := hub.driverConns.Load(driverID)
	if !ok {
		return fmt.Errorf("driver %s not connected", driverID)
	}
	conn, ok := v.(*websocket.Conn)
	if !ok || conn == nil {
		return fmt.Errorf("driver %s not connected", driverID)
	}

	return hub.wsWriteMessage(conn, websocket.TextMessage, payload)
}

// IsDriverConnected checks if a driver is currently connected via WebSocket
func (hub *DriverHub) IsDriverConnected(driverID string) bool {
	v, ok := hub.driverConns.Load(driverID)
	if !ok {
		return false
	}
	conn, ok := v.(*websocket.Conn)
	return ok && conn != nil
}
