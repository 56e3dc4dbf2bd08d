package repository

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pixelhaven/gamehub-backend/pkg/config"
)

func ConnectMongoDB(cfg *config.Config) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}
	MongoDBClient = client
	MongoDatabase = cfg.MongoDB

	log.Println("Successfully connected to MongoDB")
}

var (
	MongoDBClient *mongo.Client
	MongoDatabase string
)
