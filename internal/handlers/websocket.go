package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"martingale-demo/internal/models"
	"martingale-demo/internal/services"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	gameEngine *services.GameEngine
	hub        *WebSocketHub
}

type WebSocketHub struct {
	clients    map[string]map[*Client]bool // session id -> clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	SessionID string
	Conn      *websocket.Conn
	send      chan *Message
}

type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data"`
}

func NewWebSocketHandler(gameEngine *services.GameEngine) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	h := &WebSocketHandler{
		gameEngine: gameEngine,
		hub:        hub,
	}
	gameEngine.SetBroadcaster(h)
	return h
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sessionID := c.GetString("session_id")

	session, err := h.gameEngine.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		writeError(c, "Failed to get session", err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("Failed to upgrade to WebSocket")
		return
	}

	client := &Client{
		SessionID: sessionID,
		Conn:      conn,
		send:      make(chan *Message, clientSendSize),
	}

	go client.writePump()
	client.send <- &Message{
		Type:      "SESSION_STATE",
		SessionID: sessionID,
		Data:      session,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("session_id", sessionID).Warn("WebSocket error")
			}
			break
		}

		h.handleMessage(client, &msg)
	}
}

func (h *WebSocketHandler) handleMessage(client *Client, msg *Message) {
	switch msg.Type {
	case "PING":
		client.trySend(&Message{
			Type: "PONG",
			Data: gin.H{
				"timestamp": time.Now().Unix(),
			},
		})
	}
}

func (c *Client) trySend(msg *Message) {
	select {
	case c.send <- msg:
	default:
		log.WithField("session_id", c.SessionID).Warn("WebSocket client too slow, dropping message")
	}
}

func (c *Client) writePump() {
	for msg := range c.send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(msg); err != nil {
			c.Conn.Close()
			// drain so senders never block on a dead client
			for range c.send {
			}
			return
		}
	}
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			if hub.clients[client.SessionID] == nil {
				hub.clients[client.SessionID] = make(map[*Client]bool)
			}
			hub.clients[client.SessionID][client] = true
			log.WithField("session_id", client.SessionID).Debug("WebSocket client registered")

		case client := <-hub.unregister:
			if clients, ok := hub.clients[client.SessionID]; ok && clients[client] {
				delete(clients, client)
				if len(clients) == 0 {
					delete(hub.clients, client.SessionID)
				}
				close(client.send)
				log.WithField("session_id", client.SessionID).Debug("WebSocket client unregistered")
			}

		case message := <-hub.broadcast:
			for client := range hub.clients[message.SessionID] {
				client.trySend(message)
			}
		}
	}
}

// BroadcastBet pushes a resolved bet to every socket watching the session.
func (h *WebSocketHandler) BroadcastBet(sessionID string, bet *models.BetRecord, state models.SessionState) {
	msg := &Message{
		Type:      "BET_PLACED",
		SessionID: sessionID,
		Data: gin.H{
			"bet":     bet,
			"state":   state,
			"banner":  bet.Outcome.Banner(),
			"message": bet.Outcome.Message(),
		},
	}

	select {
	case h.hub.broadcast <- msg:
	default:
		log.WithField("session_id", sessionID).Warn("WebSocket broadcast queue full, dropping bet update")
	}
}
