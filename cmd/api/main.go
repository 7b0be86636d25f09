package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"meepleden/internal/api"
	"meepleden/internal/capacity"
	"meepleden/internal/config"
	"meepleden/internal/database"
	"meepleden/internal/domain"
	"meepleden/internal/events"
	"meepleden/internal/google"
	"meepleden/internal/line"
	"meepleden/internal/logging"
	"meepleden/internal/metrics"
	"meepleden/internal/models"
	"meepleden/internal/repository"
	"meepleden/internal/service"
	"meepleden/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	if err := prepareDirectories(cfg); err != nil {
		logger.Error().Err(err).Msg("prepare directories")
		return err
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	sessionRepo := initSessions(redisClient, &logger)
	sessionService := service.NewSessionService(sessionRepo, &logger)

	sheetsService := initGoogleSheets(ctx, cfg, &logger)

	var sheetsWorker *worker.SheetsWorker
	if sheetsService != nil {
		retryPolicy := worker.RetryPolicy{MaxRetries: 5, InitialDelay: 2 * time.Second, MaxDelay: time.Minute, BackoffFactor: 2}
		sheetsWorker = worker.NewSheetsWorker(db, sheetsService, redisClient, retryPolicy, &logger)
		go sheetsWorker.Start(ctx)
	}

	notifier := initNotifier(cfg, &logger)

	eventBus := events.NewEventBus()
	subscribeAuditLog(eventBus, &logger)

	engine := capacity.NewEngine(db, &logger)

	// Typed nils must not leak into the interface fields.
	var syncWorker domain.SyncWorker
	if sheetsWorker != nil {
		syncWorker = sheetsWorker
	}
	var pushNotifier domain.Notifier
	if notifier != nil {
		pushNotifier = notifier
	}

	memberService := service.NewMemberService(db, eventBus, syncWorker, pushNotifier, &logger)
	bookingService := service.NewBookingService(db, engine, eventBus, syncWorker,
		cfg.Booking.MaxBookingDays, cfg.Booking.MaxPartySize, cfg.Booking.TimeSlots, &logger)
	inventoryService := service.NewInventoryService(db, eventBus, &logger)
	newsService := service.NewNewsService(db, &logger)

	if cfg.Backup.Enabled {
		backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
		go backupService.Start(ctx)
	}

	startMetrics(ctx, cfg, &logger)
	go runOverdueSweeper(ctx, db, &logger)
	if sheetsService != nil {
		go runSheetsResync(ctx, db, sheetsService, &logger)
	}

	httpServer := api.NewHTTPServer(cfg, db, memberService, bookingService, inventoryService, newsService, sessionService, &logger)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("port", cfg.API.Port).Msg("meepleden API started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("meepleden API stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func prepareDirectories(cfg *config.Config) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	return os.MkdirAll(cfg.Exports.Path, 0o755)
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func initSessions(redisClient *redis.Client, logger *zerolog.Logger) domain.SessionRepository {
	ttl := time.Duration(models.SessionTTL) * time.Second
	fallback := repository.NewMemorySessionRepository(ttl)
	if redisClient == nil {
		return fallback
	}
	primary := repository.NewRedisSessionRepository(redisClient, ttl)
	return repository.NewFailoverSessionRepository(primary, fallback, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.MembersSpreadsheetID == "" || cfg.Google.BookingsSpreadsheetID == "" {
		logger.Warn().Msg("google sheets not configured, mirroring disabled")
		return nil
	}

	sheetsService, err := google.NewSheetsService(
		cfg.Google.CredentialsFile,
		cfg.Google.MembersSpreadsheetID,
		cfg.Google.BookingsSpreadsheetID,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}

	if err := sheetsService.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

func initNotifier(cfg *config.Config, logger *zerolog.Logger) *line.Notifier {
	if !cfg.Line.Enabled {
		return nil
	}

	notifier, err := line.NewNotifier(cfg.Line, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("line notifier init failed, continuing without pushes")
		return nil
	}
	return notifier
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}

// subscribeAuditLog пишет доменные события в журнал
func subscribeAuditLog(bus *events.EventBus, logger *zerolog.Logger) {
	audit := logger.With().Str("component", "events").Logger()
	handler := func(ev *events.Event) error {
		audit.Info().Str("event", ev.Type).RawJSON("payload", ev.Payload).Msg("domain event")
		return nil
	}

	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingCheckedIn,
		events.EventBookingCancelled,
		events.EventExpAwarded,
		events.EventLevelUp,
		events.EventRentalCheckedOut,
		events.EventRentalReturned,
	} {
		bus.Subscribe(eventType, handler)
	}
}

// runOverdueSweeper flags rentals past their due date.
func runOverdueSweeper(ctx context.Context, db *database.DB, logger *zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := db.MarkOverdueRentals(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("mark overdue rentals")
				continue
			}
			if n > 0 {
				logger.Info().Int64("count", n).Msg("rentals marked overdue")
			}
		}
	}
}

// runSheetsResync rebuilds both spreadsheets from the database once a
// day, repairing any drift left by failed incremental tasks.
func runSheetsResync(ctx context.Context, db *database.DB, sheets *google.SheetsService, logger *zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			resyncSheets(ctx, db, sheets, logger)
		}
	}
}

func resyncSheets(ctx context.Context, db *database.DB, sheets *google.SheetsService, logger *zerolog.Logger) {
	members, err := db.GetAllMembers(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("resync: load members")
	} else if err := sheets.ReplaceMembersSheet(ctx, members); err != nil {
		logger.Error().Err(err).Msg("resync: replace members sheet")
	}

	start := time.Now().AddDate(0, -models.DefaultExportRangeMonthsBefore, 0)
	end := time.Now().AddDate(0, models.DefaultExportRangeMonthsAfter, 0)
	bookings, err := db.GetBookingsByDateRange(ctx, start, end)
	if err != nil {
		logger.Error().Err(err).Msg("resync: load bookings")
		return
	}
	if err := sheets.ReplaceBookingsSheet(ctx, bookings); err != nil {
		logger.Error().Err(err).Msg("resync: replace bookings sheet")
	}
}
