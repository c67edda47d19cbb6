package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"orderservice/pkg/domain/service"
	"orderservice/pkg/infrastructure/config"
	"orderservice/pkg/infrastructure/mysql"
	"orderservice/transport"
)

const appID = "orderservice"

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	app := &cli.App{
		Name:   appID,
		Usage:  "order management REST service",
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("service failed")
	}
}

func runServer(_ *cli.Context) error {
	cfg, err := config.Parse(appID)
	if err != nil {
		return err
	}

	if err := mysql.Migrate(cfg.DSN(), cfg.MigrationsPath); err != nil {
		return err
	}

	db, err := mysql.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	products := service.NewProductService(mysql.NewProductRepository(db))
	orders := service.NewOrderService(mysql.NewOrderRepository(db))

	log.WithField("address", cfg.ServeAddress).Info("starting server")

	killSignalChan := getKillSignalChan()
	srv := startServer(cfg.ServeAddress, transport.Router(products, orders))

	waitForKillSignal(killSignalChan)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func startServer(address string, router http.Handler) *http.Server {
	srv := &http.Server{Addr: address, Handler: router}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()
	return srv
}

func getKillSignalChan() chan os.Signal {
	osKillSignalChan := make(chan os.Signal, 1)
	signal.Notify(osKillSignalChan, os.Interrupt, syscall.SIGTERM)
	return osKillSignalChan
}

func waitForKillSignal(killSignalChan <-chan os.Signal) {
	killSignal := <-killSignalChan
	switch killSignal {
	case os.Interrupt:
		log.Info("got SIGINT...")
	case syscall.SIGTERM:
		log.Info("got SIGTERM...")
	}
}
