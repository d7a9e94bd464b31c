package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ventilation_dashboard/internal/bus"
	"ventilation_dashboard/internal/handlers"
	"ventilation_dashboard/internal/hub"
	"ventilation_dashboard/internal/logger"
	"ventilation_dashboard/internal/notifier"
	"ventilation_dashboard/internal/repository"
	"ventilation_dashboard/internal/repository/db"
	"ventilation_dashboard/internal/server"
	"ventilation_dashboard/internal/service"
	"ventilation_dashboard/internal/state"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/spf13/viper"
)

func main() {
	// load config.yml
	if err := loadConfig(); err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.Get(logLevel())

	// open DB
	sqlDB, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// time-series store
	influx := influxdb2.NewClient(viper.GetString("influx.url"), viper.GetString("influx.token"))
	defer influx.Close()
	readings := repository.NewReadingsInflux(influx,
		viper.GetString("influx.org"), viper.GetString("influx.bucket"), log)

	repos := repository.NewRepository(sqlDB, readings)

	// in-memory device state and the live fan-out hub
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewStore()
	liveHub := hub.New(store, log)
	go liveHub.Run(ctx)

	mail := notifier.NewEmail(notifier.Config{
		Host:     viper.GetString("smtp.host"),
		Port:     viper.GetInt("smtp.port"),
		Username: viper.GetString("smtp.username"),
		Password: viper.GetString("smtp.password"),
		From:     viper.GetString("smtp.from"),
	})

	busClient := bus.NewClient(bus.Config{
		BrokerURL: viper.GetString("mqtt.broker"),
		ClientID:  viper.GetString("mqtt.client_id"),
	}, log)

	services := service.NewService(service.Deps{
		Repos:      repos,
		State:      store,
		Hub:        liveHub,
		Publisher:  busClient,
		Notifier:   mail,
		Log:        log,
		SigningKey: viper.GetString("auth.signing_key"),
		Location:   viper.GetString("mqtt.location"),
	})

	// connect to the broker and route inbound messages to the ingest path
	if err := busClient.Start(services.Ingest.Handle); err != nil {
		log.Fatalw("failed to connect to mqtt broker", "err", err)
	}

	apiHandler := handlers.NewHandler(services, liveHub, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, busClient, readings, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

func logLevel() string {
	if lvl := viper.GetString("log.level"); lvl != "" {
		return lvl
	}
	return logger.InfoLevel
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "app.db")
		dbPath = "app.db"
	}
	return db.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, busClient *bus.Client, readings *repository.ReadingsInflux, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the hub and stop accepting bus messages
	cancel()
	busClient.Close()

	// drain buffered time-series writes
	readings.Flush()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
