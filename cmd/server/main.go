// Command server runs the ACE SASTRA club portal backend.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // site time zone must load on minimal images

	"github.com/acesastra/ace-portal/internal/api"
	"github.com/acesastra/ace-portal/internal/api/login"
	"github.com/acesastra/ace-portal/internal/api/site"
	"github.com/acesastra/ace-portal/internal/auth"
	"github.com/acesastra/ace-portal/internal/config"
	"github.com/acesastra/ace-portal/internal/mattermost"
	"github.com/acesastra/ace-portal/internal/provisioning"
	"github.com/acesastra/ace-portal/internal/repository"
	"github.com/acesastra/ace-portal/internal/seed"
	"github.com/acesastra/ace-portal/internal/service/badges"
	"github.com/acesastra/ace-portal/internal/service/contact"
	"github.com/acesastra/ace-portal/internal/service/events"
	"github.com/acesastra/ace-portal/internal/service/leaderboard"
	"github.com/acesastra/ace-portal/internal/service/profiles"
	"github.com/acesastra/ace-portal/internal/session"
	"github.com/acesastra/ace-portal/internal/share"
	"github.com/acesastra/ace-portal/internal/storage"
	"github.com/acesastra/ace-portal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	seedPath := flag.String("seed", "", "YAML file of badges, events and awards to upsert before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	if err := run(cfg, *seedPath, log); err != nil {
		log.Fatal().Err(err).Msg("Server stopped with error")
	}
}

func run(cfg *config.Config, seedPath string, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.Postgres.MigrateOnStart {
		if err := repository.Migrate(cfg.Database.Postgres.URL(), log.Component("migrate")); err != nil {
			return err
		}
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close database")
		}
	}()

	if seedPath != "" {
		catalog, err := seed.LoadFile(seedPath)
		if err != nil {
			return err
		}
		if _, err := seed.NewSeeder(db, log.Component("seed")).Apply(ctx, catalog); err != nil {
			return err
		}
	}

	redisClient, err := session.NewClient(ctx, &cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = redisClient.Close() }()

	// Repositories
	accountRepo := repository.NewAccountRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	eventRepo := repository.NewEventRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	contactRepo := repository.NewContactRepository(db)

	// Auth and provisioning
	sessions := session.NewStore(redisClient, cfg.Auth.GetSessionTTL())
	authService := auth.NewService(
		auth.NewGoogleProvider(&cfg.Auth),
		auth.NewStateSigner(cfg.Auth.StateSecret, cfg.Auth.GetStateTTL()),
		accountRepo,
		sessions,
		log.Component("auth"),
	)

	var admin provisioning.Admin
	if cfg.Auth.AdminEnabled {
		admin = provisioning.NewStoreAdmin(accountRepo, profileRepo)
	} else {
		log.Warn().Msg("Admin operations disabled; new members cannot be provisioned")
	}
	provisioner := provisioning.NewService(
		authService,
		profileRepo,
		admin,
		cfg.Auth.AllowedEmailDomain,
		provisioning.DefaultDepartments(cfg.Departments),
		log.Component("provisioning"),
	)

	// Read and write services
	urls := storage.NewURLBuilder(&cfg.Storage)
	shareBuilder := share.NewBuilder(cfg.Site.ShareSource)

	eventService := events.NewService(eventRepo, profileRepo, urls, shareBuilder, cfg.Site, log.Component("events"))
	badgeService := badges.NewService(badgeRepo, urls, shareBuilder, cfg.Site, log.Component("badges"))
	profileService := profiles.NewService(profileRepo, eventRepo, badgeService, eventService, shareBuilder, cfg.Site, log.Component("profiles"))
	contactService := contact.NewService(contactRepo, mattermost.NewClient(&cfg.Notifier, log.Component("notifier")), log.Component("contact"))
	leaderboardService := leaderboard.NewService(eventRepo, log.Component("leaderboard"))

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	handler := api.NewRouter(api.Options{
		Sessions:   authService,
		CookieName: cfg.Auth.CookieName,
		Login: login.NewHandler(authService, provisioner, login.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Domain: cfg.Auth.CookieDomain,
			MaxAge: sessions.TTL(),
			Secure: cfg.Server.Environment != "development",
		}, cfg.Site.Name, log.Component("login")),
		Site: site.NewHandler(eventService, badgeService, profileService, contactService, leaderboardService, log.Component("api")),
		Health: map[string]api.HealthChecker{
			"postgres": func(context.Context) error { return db.Health() },
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		},
		MetricsPath:    metricsPath,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Debug:          !cfg.Server.IsProduction(),
	}, log)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("environment", cfg.Server.Environment).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("Server stopped")
	return nil
}
