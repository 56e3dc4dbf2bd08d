package main

import (
	"net/http"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/pixelhaven/gamehub-backend/game"
	"github.com/pixelhaven/gamehub-backend/handlers"
	"github.com/pixelhaven/gamehub-backend/pkg/config"
	"github.com/pixelhaven/gamehub-backend/repository"
	"github.com/pixelhaven/gamehub-backend/rules"
)

// clientRuledGames are game types whose rules run in the browser; the
// server still owns matchmaking, turn order, clocks and results.
var clientRuledGames = []string{
	"ultimate-tictactoe",
	"checkers",
	"dots-and-boxes",
	"sky-duel",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, relying on the environment")
	}

	cfg := config.LoadConfig()

	repository.ConnectToPostgreSQL(cfg)
	repository.ConnectMongoDB(cfg)

	registry := game.NewRegistry()
	registry.Register("tictactoe", rules.NewTicTacToe())
	for _, gameType := range clientRuledGames {
		registry.Register(gameType, rules.NewFreeplay())
	}

	archiver := repository.NewGameArchiver(repository.PostgreSQLDB, repository.MongoDBClient, cfg.MongoDB)

	hub := handlers.WsHub()
	manager := game.NewManager(game.Options{
		ReconnectGrace:    cfg.ReconnectGrace,
		ChallengeTTL:      cfg.ChallengeTTL,
		InviteTTL:         cfg.InviteTTL,
		TicketMaxAge:      cfg.TicketMaxAge,
		PauseClockOnDrop:  cfg.PauseClockOnDrop,
		TerminalRetention: cfg.TerminalRetention,
	}, registry, hub, hub, archiver)
	handlers.Setup(manager, cfg)

	sched, err := game.StartSweeper(manager, cfg.SweepInterval)
	if err != nil {
		log.Fatal("Failed to start sweeper:", err)
	}
	defer func() { _ = sched.Shutdown() }()

	r := handlers.NewRouter()

	log.Printf("Server running on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal(err)
	}
}
