package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutelliv/internal/client"
	"tutelliv/internal/events"
	"tutelliv/internal/storage"
	"tutelliv/internal/web"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var webCommand = &cli.Command{
	Name:   "web",
	Usage:  "Start the dashboard web server",
	Action: serveWeb,
}

func serveWeb(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	api := client.New(config.APIBaseURL)

	var photos *storage.PhotoStorage
	if config.PhotoBucket != "" {
		photos, err = storage.NewPhotoStorage(ctx, config.PhotoBucket, config.PhotoRegion)
		if err != nil {
			return err
		}
	}

	subscriber := events.NewStreamSubscriber(config.APIBaseURL, logger)
	refresher := web.NewRefresher(logger, api, subscriber, time.Duration(config.PollIntervalSec)*time.Second)
	go refresher.Run(ctx)

	srv, err := web.New(config, logger, api, refresher, photos)
	if err != nil {
		return err
	}

	go func() {
		logger.WithField("port", config.WebPort).Infof("dashboard starting http://localhost:%d", config.WebPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("web server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Stop(shutdownCtx)
}
