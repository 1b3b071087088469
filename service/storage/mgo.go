package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoConfig struct {
	URI         string
	Database    string
	Username    string
	Password    string
	MaxPoolSize int
}

var mdb *mongo.Database

// InitMongo connects and pings; the database handle is process-wide.
func InitMongo(mctx context.Context, cfg MongoConfig) error {
	if cfg.URI == "" {
		return errors.New("mongo uri is required")
	}
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.Username != "" {
		opts.SetAuth(options.Credential{Username: cfg.Username, Password: cfg.Password})
	}

	cctx, cancel := context.WithTimeout(mctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		return errors.Wrap(err, "mongo ping")
	}
	mdb = client.Database(cfg.Database)
	return nil
}

func DB() *mongo.Database { return mdb }
