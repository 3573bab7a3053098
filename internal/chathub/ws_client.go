package chathub

import (
	"encoding/json"
	"time"

	"chatvault/backend/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient is the gorilla/websocket transport behind the Client
// interface.
type WebSocketClient struct {
	ConnID string
	UserID string
	Conn   *websocket.Conn
	Hub    *Hub
	SendCh chan models.OutEvent

	log *zap.Logger
}

func NewWebSocketClient(connID, userID string, conn *websocket.Conn, hub *Hub, log *zap.Logger) *WebSocketClient {
	return &WebSocketClient{
		ConnID: connID,
		UserID: userID,
		Conn:   conn,
		Hub:    hub,
		SendCh: make(chan models.OutEvent, 256),
		log:    log,
	}
}

func (c *WebSocketClient) GetID() string                          { return c.ConnID }
func (c *WebSocketClient) GetUserID() string                      { return c.UserID }
func (c *WebSocketClient) GetSendChannel() chan<- models.OutEvent { return c.SendCh }

// Run starts the pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the send channel, which stops the write pump. The read pump
// stops on its own once the connection closes.
func (c *WebSocketClient) Close() {
	close(c.SendCh)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Warn("websocket read failed",
					zap.String("conn", c.ConnID), zap.Error(err))
			}
			break
		}

		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.log.Warn("undecodable frame, skipping",
				zap.String("conn", c.ConnID), zap.Error(err))
			continue
		}

		c.Hub.InboundCh <- InboundEvent{Conn: c, Envelope: env}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case out, ok := <-c.SendCh:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(out)
			if err != nil {
				c.log.Warn("unencodable outbound event",
					zap.String("conn", c.ConnID), zap.Error(err))
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
