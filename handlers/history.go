package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pixelhaven/gamehub-backend/common"
	"github.com/pixelhaven/gamehub-backend/game"
	"github.com/pixelhaven/gamehub-backend/models"
	"github.com/pixelhaven/gamehub-backend/repository"
	"github.com/pixelhaven/gamehub-backend/responses"
	"github.com/pixelhaven/gamehub-backend/utils"
)

// FetchUserGames lists the authenticated user's finished games.
func FetchUserGames(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := r.Context().Value(common.AuthInfoKey).(*models.CustomClaims)
	if !ok {
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	db := repository.PostgreSQLDB

	var games []models.Game
	query := "SELECT id, game_type, time_control, usernames, result, created_at, finished_at FROM games WHERE $1 = ANY(usernames) ORDER BY finished_at DESC"
	rows, err := db.Query(query, authInfo.Username)
	if err != nil {
		log.Printf("Error fetching games: %v", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch user games."})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var g models.Game
		err := rows.Scan(&g.ID, &g.GameType, &g.TimeControl, pq.Array(&g.Usernames), &g.Result, &g.CreatedAt, &g.FinishedAt)
		if err != nil {
			utils.HandleError(w, responses.InternalServerError{Msg: "Error processing user games."})
			return
		}
		games = append(games, g)
	}

	if err = rows.Err(); err != nil {
		log.Printf("Error iterating games rows: %v", err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing user games."})
		return
	}

	if games == nil {
		games = []models.Game{}
	}
	utils.HandleSuccess(w, models.SuccessResponse(games))
}

// archiveDocument mirrors what repository.GameArchiver writes to Mongo.
type archiveDocument struct {
	SessionID string            `bson:"sessionId" json:"sessionId"`
	Session   game.SessionView  `bson:"session" json:"session"`
	Moves     []game.MoveRecord `bson:"moves" json:"moves"`
}

// FetchGameMoves returns the archived move history of one finished
// game. Only players who took part may read it.
func FetchGameMoves(w http.ResponseWriter, r *http.Request) {
	authInfo, ok := r.Context().Value(common.AuthInfoKey).(*models.CustomClaims)
	if !ok {
		utils.HandleError(w, responses.InternalServerError{Msg: "Error processing request."})
		return
	}

	vars := mux.Vars(r)
	gameID := vars["gameID"]
	if gameID == "" {
		utils.HandleError(w, responses.BadRequestError{Msg: "gameID is required."})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	collection := repository.MongoDBClient.Database(repository.MongoDatabase).Collection("game_archives")

	var doc archiveDocument
	err := collection.FindOne(ctx, bson.M{"sessionId": gameID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		utils.HandleError(w, responses.NotFoundError{Msg: "Game not found."})
		return
	}
	if err != nil {
		log.Printf("Error fetching game archive %s: %v", gameID, err)
		utils.HandleError(w, responses.InternalServerError{Msg: "Failed to fetch game."})
		return
	}

	participant := false
	for _, p := range doc.Session.Players {
		if p == authInfo.Username {
			participant = true
			break
		}
	}
	if !participant {
		utils.HandleError(w, responses.NotFoundError{Msg: "Game not found."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(doc))
}
