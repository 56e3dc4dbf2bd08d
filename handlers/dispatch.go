package handlers

import (
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/pixelhaven/gamehub-backend/game"
	"github.com/pixelhaven/gamehub-backend/models"
)

// processMessage decodes one inbound socket message and routes it to
// the coordination core. Every failure is reported back to the sender
// with a reason code; nothing here can take the session manager down.
func processMessage(c *Connection, rawMessage []byte) {
	var msg models.ClientMessage
	if err := json.Unmarshal(rawMessage, &msg); err != nil {
		log.Printf("Error unmarshalling message from user %s: %v", c.username, err)
		c.sendError(game.EventError, "malformed_message")
		return
	}

	switch msg.Type {
	case "find_match":
		var req models.FindMatchRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.FindMatch(c.username, req.GameType, req.TimeControl); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "cancel_matchmaking":
		if err := manager.CancelMatchmaking(c.username); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "create_private_game":
		var req models.CreatePrivateGameRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if _, err := manager.CreatePrivateGame(c.username, req.GameType, req.TimeControl); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "join_private_game":
		var req models.JoinPrivateGameRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.JoinPrivateGame(req.Code, c.username); err != nil {
			c.sendError(game.EventJoinError, game.Reason(err))
		}

	case "challenge_player":
		var req models.ChallengePlayerRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if _, err := manager.ChallengePlayer(c.username, req.TargetUsername, req.GameType, req.TimeControl); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "accept_challenge":
		var req models.ChallengeAnswerRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.AcceptChallenge(req.ChallengeID, c.username); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "decline_challenge":
		var req models.ChallengeAnswerRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.DeclineChallenge(req.ChallengeID, c.username); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	case "make_move":
		var req models.MakeMoveRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.ApplyMove(req.SessionID, c.username, req.Move); err != nil {
			c.sendError(game.EventMoveError, game.Reason(err))
		}

	case "forfeit_game":
		var req models.ForfeitGameRequest
		if !decode(c, msg.Data, &req) {
			return
		}
		if err := manager.Forfeit(req.SessionID, c.username); err != nil {
			c.sendError(game.EventError, game.Reason(err))
		}

	default:
		log.Printf("Unhandled message type from user %s: %s", c.username, msg.Type)
		c.sendError(game.EventError, "unknown_message_type")
	}
}

func decode(c *Connection, data json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("Error decoding %T from user %s: %v", v, c.username, err)
		c.sendError(game.EventError, "malformed_message")
		return false
	}
	return true
}

func (c *Connection) sendError(eventType, reason string) {
	hub.Send(c.username, game.Event{Type: eventType, Data: game.ErrorData{Reason: reason}})
}
