package global

import (
	"os"
	"strconv"

	"collabhub/tools/ids"
)

// AppConfig is the process-wide hub configuration. Values come from the
// environment with local-dev defaults; there is no config-file layer.
type AppConfig struct {
	NodeID   string // hub instance id, participates in connection ids
	HTTPAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	NatsURL    string
	NatsName   string
	KafkaAddrs []string
	KafkaTopic string

	JWTSecret []byte

	InternalToken string // bearer token guarding /internal endpoints

	SendQueueSize int
	FanoutWorkers int
	FanoutQueue   int
}

var Conf = AppConfig{
	NodeID:        "hub-1",
	HTTPAddr:      ":8080",
	RedisAddr:     "127.0.0.1:6379",
	RedisDB:       0,
	MongoURI:      "mongodb://localhost:27017",
	MongoDatabase: "collabhub",
	NatsURL:       "nats://127.0.0.1:4222",
	NatsName:      "collabhub",
	KafkaAddrs:    nil, // kafka disabled unless KAFKA_ADDR set
	KafkaTopic:    "chat-message-events",
	SendQueueSize: 256,
	FanoutWorkers: 1, // >1 trades cross-broadcast ordering for throughput
	FanoutQueue:   1024,
}

// Load overlays environment variables onto the defaults.
func Load() {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	str("HUB_NODE_ID", &Conf.NodeID)
	str("HUB_HTTP_ADDR", &Conf.HTTPAddr)
	str("REDIS_ADDR", &Conf.RedisAddr)
	str("REDIS_PASSWORD", &Conf.RedisPassword)
	str("MONGO_URI", &Conf.MongoURI)
	str("MONGO_DB", &Conf.MongoDatabase)
	str("NATS_URL", &Conf.NatsURL)
	str("KAFKA_TOPIC", &Conf.KafkaTopic)
	str("HUB_INTERNAL_TOKEN", &Conf.InternalToken)

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			Conf.RedisDB = n
		}
	}
	if v := os.Getenv("KAFKA_ADDR"); v != "" {
		Conf.KafkaAddrs = []string{v}
	}
	if v := os.Getenv("HUB_JWT_SECRET"); v != "" {
		Conf.JWTSecret = []byte(v)
	} else {
		// dev-only fallback, override in any real deployment
		Conf.JWTSecret = []byte("mN9b1f8zPq+W2xjX/45sKcVd0TfyoG+3Hp5Z8q9Rj1o=")
	}
}

// ConfigIds seeds the snowflake node from the hub instance id.
func ConfigIds() {
	var node int64 = 1
	for _, c := range Conf.NodeID {
		node = (node*31 + int64(c)) & 1023
	}
	ids.SetNodeID(node)
}
