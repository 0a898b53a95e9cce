package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lastmile/cmd"
	"lastmile/internal/adapters/out/postgres/routerepo"
	"lastmile/internal/adapters/out/postgres/stoprepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustGormOpen(configs.DSN())

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}

	otpTTL, err := durationVariable("OTP_TTL")
	if err != nil {
		log.Fatalf("invalid OTP_TTL: %v", err)
	}

	config := cmd.Config{
		HTTPPort:         goDotEnvVariable("HTTP_PORT"),
		DBHost:           goDotEnvVariable("DB_HOST"),
		DBPort:           goDotEnvVariable("DB_PORT"),
		DBUser:           goDotEnvVariable("DB_USER"),
		DBPassword:       goDotEnvVariable("DB_PASSWORD"),
		DBName:           goDotEnvVariable("DB_NAME"),
		DBSslMode:        goDotEnvVariable("DB_SSLMODE"),
		OtpTTL:           otpTTL,
		OptimizeCron:     goDotEnvVariable("OPTIMIZE_CRON"),
		MetricsNamespace: goDotEnvVariable("METRICS_NAMESPACE"),
	}
	if config.HTTPPort == "" {
		config.HTTPPort = "8080"
	}
	if config.MetricsNamespace == "" {
		config.MetricsNamespace = "lastmile"
	}
	return config
}

func goDotEnvVariable(key string) string {
	return os.Getenv(key)
}

// durationVariable parses a Go duration such as "15m". Unset means zero,
// which lets the services fall back to their defaults.
func durationVariable(key string) (time.Duration, error) {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

func mustGormOpen(dsn string) *gorm.DB {
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	if err != nil {
		log.Fatalf("connection to postgres through gorm: %v", err)
	}

	if err := gormDB.AutoMigrate(&routerepo.RouteDTO{}, &stoprepo.StopDTO{}); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	return gormDB
}

func startWebServer(app cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true

	server, err := app.CreateHTTPServer()
	if err != nil {
		log.Fatalf("failed to build http server: %v", err)
	}
	if err := server.RegisterHandlers(e); err != nil {
		log.Fatalf("failed to register handlers: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Error(err)
	}
}
