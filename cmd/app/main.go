package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"deliverytracker/cmd"
	"deliverytracker/internal/adapters/out/postgres/migrations"
	"deliverytracker/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configs, err := cmd.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	appLog := logger.New(logger.Options{
		ServiceName: "delivery-api",
		Level:       logger.ParseLevel(configs.LogLevel),
		Format:      configs.LogFormat,
	})

	gormDB, err := openDatabase(ctx, configs)
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	app, err := cmd.NewCompositionRoot(ctx, configs, gormDB, appLog)
	if err != nil {
		log.Fatalf("Error wiring application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			appLog.Warn(context.Background(), "shutdown incomplete", err)
		}
	}()

	e, err := app.CreateRouter()
	if err != nil {
		log.Fatalf("Error building router: %v", err)
	}

	startWebServer(ctx, e, configs, appLog)
}

func openDatabase(ctx context.Context, configs cmd.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(gorm_postgres.Open(configs.DSN()), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(configs.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(configs.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(configs.DBConnMaxLifetime)

	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if configs.AutoMigrate {
		if err = migrations.Up(ctx, sqlDB); err != nil {
			return nil, err
		}
	}
	return gormDB, nil
}

func startWebServer(ctx context.Context, e *echo.Echo, configs cmd.Config, appLog *logger.Logger) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.ShutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			appLog.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	appLog.Info(appLog.WithField(ctx, "port", configs.HTTPPort), "server starting")
	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
