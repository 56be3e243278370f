package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutelliv/internal/api"
	"tutelliv/internal/db"
	"tutelliv/internal/events"
	"tutelliv/internal/store"
	"tutelliv/internal/token"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var apiCommand = &cli.Command{
	Name:   "api",
	Usage:  "Start the REST API server",
	Action: serveAPI,
}

func serveAPI(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}
	if err := requireDatabase(config); err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := store.NewUserRepository(pool)
	beneficiaryRepo := store.NewBeneficiaryRepository(pool)
	missionRepo := store.NewMissionRepository(pool)
	invoiceRepo := store.NewInvoiceRepository(pool)

	signer := token.NewSigner(config.TokenSecret, time.Duration(config.TokenTTLMin)*time.Minute)
	hub := events.NewHub()

	srv := api.New(config, logger, signer, hub, userRepo, beneficiaryRepo, missionRepo, invoiceRepo)

	go func() {
		logger.WithField("port", config.APIPort).Infof("api starting http://localhost:%d", config.APIPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("api server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
