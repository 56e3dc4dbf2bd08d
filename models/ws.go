package models

import "encoding/json"

// ClientMessage is the envelope for every inbound socket message.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type FindMatchRequest struct {
	GameType    string `json:"gameType"`
	TimeControl string `json:"timeControl"`
}

type CreatePrivateGameRequest struct {
	GameType    string `json:"gameType"`
	TimeControl string `json:"timeControl"`
}

type JoinPrivateGameRequest struct {
	Code string `json:"code"`
}

type ChallengePlayerRequest struct {
	TargetUsername string `json:"targetUsername"`
	GameType       string `json:"gameType"`
	TimeControl    string `json:"timeControl"`
}

type ChallengeAnswerRequest struct {
	ChallengeID string `json:"challengeId"`
}

type MakeMoveRequest struct {
	SessionID string          `json:"sessionId"`
	Move      json.RawMessage `json:"move"`
}

type ForfeitGameRequest struct {
	SessionID string `json:"sessionId"`
}
