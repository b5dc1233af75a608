package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"deliverytracker/cmd"
	"deliverytracker/internal/pkg/logger"

	"github.com/labstack/gommon/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadAgentConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	agentLog := logger.New(logger.Options{
		ServiceName: "courier-agent",
		Level:       logger.ParseLevel(configs.LogLevel),
		Format:      configs.LogFormat,
	})

	agent, err := cmd.NewAgentRoot(configs, agentLog)
	if err != nil {
		log.Fatalf("Error wiring agent: %v", err)
	}
	defer func() {
		if err := agent.Close(); err != nil {
			agentLog.Warn(context.Background(), "shutdown incomplete", err)
		}
	}()

	if err = agent.Start(ctx); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}

	e := agent.CreateRouter()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			agentLog.Error(shutdownCtx, "agent api shutdown failed", err)
		}
	}()

	agentLog.Info(agentLog.WithField(ctx, "addr", configs.ListenAddr), "courier agent listening")
	if err = e.Start(configs.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		agentLog.Error(ctx, "agent api stopped", err)
	}
}
