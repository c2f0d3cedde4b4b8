package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/picontrol/eversolo2hub/internal/assets"
	"github.com/picontrol/eversolo2hub/internal/config"
	"github.com/picontrol/eversolo2hub/internal/core/service"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	port        uint
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	registry    *service.DeviceRegistry
	icons       *assets.IconStore
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID,
	registry *service.DeviceRegistry, icons *assets.IconStore) *http.Server {
	NewServer := &Server{
		port:        cfg.Port,
		rootContext: rootContext,
		masterActor: masterActor,
		registry:    registry,
		icons:       icons,
		httpLog:     cfg.HttpLog,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
