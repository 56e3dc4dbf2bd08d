package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/pixelhaven/gamehub-backend/game"
	"github.com/pixelhaven/gamehub-backend/pkg/config"
	"github.com/pixelhaven/gamehub-backend/responses"
	"github.com/pixelhaven/gamehub-backend/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// manager is the coordination core every socket message funnels into.
// Wired once from main via Setup before the server starts.
var manager *game.Manager

// jwtSecret signs and verifies access tokens. Set once from config so
// the signer and every verifier share one source of truth.
var jwtSecret string

func Setup(m *game.Manager, cfg *config.Config) {
	manager = m
	jwtSecret = cfg.JWTSecret
}

func WsHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tokenStr := vars["token"]

	// Validate the token
	claims, err := ValidateToken(tokenStr)
	if err != nil {
		log.Println(err)
		utils.HandleError(w, responses.UnauthorizedError{Msg: "Error validating token."})
		return
	}

	userID, err := strconv.ParseUint(claims.ID, 10, 64)
	if err != nil {
		log.Println(err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	connection := &Connection{
		ws:       conn,
		send:     make(chan []byte, 256),
		connID:   uuid.NewString(),
		userID:   userID,
		username: claims.Username,
	}

	// A fresh connection id replaces any previous one for this user.
	if old := hub.Register(connection); old != nil {
		old.ws.Close()
	}

	log.Printf("User %s connected (conn %s)", connection.username, connection.connID)

	go connection.writePump()

	// If the user has a paused session, this rebinds them and resumes
	// it; they always get a fresh snapshot to render from.
	if view := manager.HandleReconnect(connection.username); view != nil {
		hub.Send(connection.username, game.Event{Type: game.EventGameUpdate, Data: *view})
	}

	connection.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		c.ws.Close()
		// Only the current connection takes the user offline; a
		// reconnect may already have replaced this one.
		if hub.Unregister(c) {
			manager.HandleDisconnect(c.username)
			log.Printf("User %s disconnected", c.username)
		}
	}()

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			log.Printf("Error reading message from user %s: %v", c.username, err)
			break
		}
		processMessage(c, message)
	}
}

func (c *Connection) writePump() {
	defer func() {
		c.ws.Close()
	}()

	for message := range c.send {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("error writing message: %v", err)
			break
		}
	}
}
