package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"collabhub/global"
	"collabhub/logger"
	mid "collabhub/middleware"
	"collabhub/service/directory"
	"collabhub/service/eventbus"
	"collabhub/service/hub"
	"collabhub/service/natsx"
	"collabhub/service/storage"
	"collabhub/tools/security"
)

// jwtValidator adapts the JWT tool to the hub's TokenValidator boundary.
type jwtValidator struct {
	opts security.Options
}

func (v jwtValidator) Validate(token string) (security.Identity, error) {
	return security.Verify(v.opts, token)
}

func main() {
	flag.Parse()

	global.Load()
	global.ConfigIds()
	conf := global.Conf

	// redis presence: the hub keeps serving real-time traffic without it,
	// status mirroring just degrades
	if err := storage.InitRedis(storage.Config{
		Addr: conf.RedisAddr, Password: conf.RedisPassword, DB: conf.RedisDB,
	}); err != nil {
		logger.Warnf("[boot] redis unavailable, presence persistence degraded: %v", err)
	}

	// mongo backs the message store and both directories; the hub cannot
	// honor send-message semantics without it
	ctx := context.Background()
	if err := storage.InitMongo(ctx, storage.MongoConfig{
		URI: conf.MongoURI, Database: conf.MongoDatabase, MaxPoolSize: 20,
	}); err != nil {
		logger.Errorf("[boot] mongo init failed: %v", err)
		os.Exit(1)
	}
	db := storage.DB()

	dir := directory.New(db)
	presence := storage.NewPresence(conf.NodeID, db.Collection("users"))
	msgs := storage.NewMessageStore(db)

	var events hub.MessageEventSink
	if len(conf.KafkaAddrs) > 0 {
		producer, err := eventbus.NewProducer(conf.KafkaAddrs, conf.KafkaTopic)
		if err != nil {
			logger.Warnf("[boot] kafka unavailable, message events disabled: %v", err)
		} else {
			events = producer
			defer producer.Close()
		}
	}

	srv := hub.NewServer(conf.NodeID, hub.Deps{
		Auth:          jwtValidator{opts: security.DefaultOptions(conf.JWTSecret)},
		Dir:           dir,
		Msgs:          msgs,
		Presence:      presence,
		Events:        events,
		SendQueueSize: conf.SendQueueSize,
		FanoutWorkers: conf.FanoutWorkers,
		FanoutQueue:   conf.FanoutQueue,
	})

	// NATS intake for the CRUD layer's notification pushes
	nc, err := natsx.NewClient(natsx.Config{URL: conf.NatsURL, Name: conf.NatsName})
	if err != nil {
		logger.Warnf("[boot] nats unavailable, notification intake disabled: %v", err)
	} else {
		defer nc.Close()
		intake := natsx.NewIntake(nc, srv.Notifier(), dir)
		if err := intake.Start(); err != nil {
			logger.Warnf("[boot] notification intake failed to start: %v", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/realtime", srv.HandleWS)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	mid.POST(r, "/internal/notify", srv.HandleNotify, mid.RouteOpt{IsAuth: true})
	mid.GET(r, "/internal/online", srv.HandleOnline, mid.RouteOpt{IsAuth: true})

	httpSrv := &http.Server{Addr: conf.HTTPAddr, Handler: r}
	go func() {
		logger.Infof("[boot] hub %s listening on %s", conf.NodeID, conf.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[boot] http server failed: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("[boot] shutting down")
	srv.Shutdown()
	shCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = httpSrv.Shutdown(shCtx)
}
