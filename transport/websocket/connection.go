package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errMalformedMessage = errors.New("malformed message")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// connection wraps a client socket. Writes may come from the message loop and from the
// narration pump, so they are serialized.
type connection struct {
	socket     *websocket.Conn
	writeMutex sync.Mutex

	// playerID is set by the connect action and only touched by the message loop.
	playerID string
}

func newConnection(socket *websocket.Conn) *connection {
	return &connection{socket: socket}
}

func (that *connection) send(action string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err = that.socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.socket.WriteJSON(Message{Action: action, Payload: body}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) read() (*Message, error) {
	_, data, err := that.socket.ReadMessage()
	if err != nil {
		return nil, err
	}

	var message Message
	if err = json.Unmarshal(data, &message); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedMessage, err)
	}

	return &message, nil
}

// keepAlive pings the client until done is closed; a missing pong lets the read deadline expire.
func (that *connection) keepAlive(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := that.socket.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (that *connection) extendReadDeadline() error {
	return that.socket.SetReadDeadline(time.Now().Add(pongWait))
}

func (that *connection) close() error {
	return that.socket.Close()
}
