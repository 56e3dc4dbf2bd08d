package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pixelhaven/gamehub-backend/game"
)

// GameArchiver persists finished sessions: the move history goes to
// MongoDB, the summary row to PostgreSQL. It implements game.Archiver
// and runs off the coordination hot path, so failures are logged and
// swallowed rather than propagated.
type GameArchiver struct {
	DB       *sql.DB
	Mongo    *mongo.Client
	Database string
}

func NewGameArchiver(db *sql.DB, mongoClient *mongo.Client, database string) *GameArchiver {
	return &GameArchiver{DB: db, Mongo: mongoClient, Database: database}
}

func (a *GameArchiver) ArchiveSession(view game.SessionView, moves []game.MoveRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := a.Mongo.Database(a.Database).Collection("game_archives")
	_, err := collection.InsertOne(ctx, bson.M{
		"sessionId": view.ID,
		"session":   view,
		"moves":     moves,
	})
	if err != nil {
		log.Printf("Failed to insert game archive %s into MongoDB: %v", view.ID, err)
	}

	result := ""
	if view.Result != nil {
		result = view.Result.String()
	}

	_, err = a.DB.ExecContext(ctx,
		"INSERT INTO games (id, game_type, time_control, usernames, result, created_at, finished_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		view.ID, view.GameType, string(view.TimeControl), pq.Array(view.Players[:]), result, view.CreatedAt, view.LastActivityAt)
	if err != nil {
		log.Printf("Failed to insert game %s into PostgreSQL: %v", view.ID, err)
		return
	}

	log.Printf("Game %s archived", view.ID)
}
