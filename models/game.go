package models

import "time"

// Game is the persisted record of a finished session.
type Game struct {
	ID          string    `json:"id"`
	GameType    string    `json:"game_type"`
	TimeControl string    `json:"time_control"`
	Usernames   []string  `json:"usernames"`
	Result      string    `json:"result"`
	CreatedAt   time.Time `json:"created_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
