package ws

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pintscoredd/zerodte/internal/config"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Inbound frames are only
	// subscribe/unsubscribe/ping requests.
	maxMessageSize = 4 * 1024

	// Send buffer size per client.
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // Dashboard may be served from another origin
}

// Client represents a websocket client connection.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	connID  string
	tickers map[string]bool
	logger  *zap.Logger
}

// HandleWS handles the websocket upgrade and starts the pumps.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		connID:  uuid.New().String(),
		tickers: make(map[string]bool),
		logger:  h.logger,
	}

	h.register <- client
	client.send <- buildConnectedMessage(client.connID)

	// Start read/write pumps
	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the websocket connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
			}
			break
		}
		c.handleMessage(message)
	}
}

// writePump writes messages to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, send close message
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug("websocket write error",
					zap.String("connID", c.connID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming client request.
func (c *Client) handleMessage(data []byte) {
	req, err := parseClientRequest(data)
	if err != nil {
		c.logger.Debug("failed to parse client request",
			zap.String("connID", c.connID),
			zap.Error(err),
		)
		c.send <- buildErrorMessage("unrecognized message")
		return
	}

	switch req.Action {
	case "subscribe":
		ticker := strings.ToUpper(req.Ticker)
		if !config.ValidTickers[ticker] {
			c.logger.Debug("invalid ticker",
				zap.String("connID", c.connID),
				zap.String("ticker", req.Ticker),
			)
			c.send <- buildErrorMessage(fmt.Sprintf("unknown ticker: %s", req.Ticker))
			return
		}
		c.hub.Subscribe(c, ticker)
		c.send <- buildSubscribedMessage(ticker)

	case "unsubscribe":
		ticker := strings.ToUpper(req.Ticker)
		c.hub.Unsubscribe(c, ticker)
		c.send <- buildUnsubscribedMessage(ticker)

	case "ping":
		c.send <- buildPongMessage()

	default:
		c.send <- buildErrorMessage(fmt.Sprintf("unknown action: %s", req.Action))
	}
}
