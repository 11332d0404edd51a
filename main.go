package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"versioninfo/config"
	"versioninfo/database"
	"versioninfo/handlers"
	"versioninfo/host"
	"versioninfo/models"
	"versioninfo/service"
	"versioninfo/update"
	"versioninfo/version"
	"versioninfo/versioninfo"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "versioninfo",
		Short:         "Admin console showing platform, runtime, web server and database versions",
		SilenceUsage:  true,
		RunE:          runServe,
	}
	config.BindFlags(root.Flags())

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetBuildInfo())
		},
	})
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyFlags(cmd.Flags())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, logFile, err := setupLogging(cfg.LogFilePath, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	log.Info().Str("version", version.GetFullVersion()).Msg("system starting up")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("error closing database")
		}
	}()

	secret := []byte(cfg.NonceSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("failed to generate nonce secret: %w", err)
		}
		log.Warn().Msg("NONCE_SECRET not set, using a random secret; forms expire on restart")
	}

	platform := host.NewPlatform(database.NewSettingsStore(db), host.NewNonces(secret, cfg.NonceLifetime))
	platform.DefaultFooter = template.HTML("Version " + template.HTMLEscapeString(version.GetVersion()))

	updates := newUpdateSource(cfg, log)
	versions := database.NewVersionReader(ctx, db)
	plugin := versioninfo.New(versioninfo.Options{
		Settings: platform.Settings,
		Env: host.Environment{
			Platform: version.GetVersion(),
			Runtime:  version.RuntimeVersion(),
			Server:   cfg.ServerSoftware,
		},
		DB:      versions,
		Updates: updates,
		Auth:    host.NewRoleAuthorizer(),
		Logger:  log,
		Labels: versioninfo.Labels{
			Platform: cfg.PlatformName,
			Runtime:  "Go",
			Database: versions.Label(),
		},
		Locale: cfg.Locale,
	})
	platform.Load(ctx, plugin)

	services := service.NewServices(db, cfg)
	if err := bootstrapAdmin(ctx, cfg, services.Auth, log); err != nil {
		return err
	}
	if n, err := services.Auth.PurgeExpiredSessions(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to purge expired sessions")
	} else if n > 0 {
		log.Info().Int64("sessions", n).Msg("purged expired sessions")
	}

	if !cfg.IsDebug() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = log
	gin.DefaultErrorWriter = log
	gin.DisableConsoleColor()

	h, err := handlers.New(handlers.Options{
		Platform:        platform,
		Auth:            services.Auth,
		Authorizer:      host.NewRoleAuthorizer(),
		DB:              db,
		Updates:         updates,
		PlatformName:    cfg.PlatformName,
		PlatformVersion: version.GetVersion(),
		Locale:          cfg.Locale,
		SecureCookies:   cfg.SecureCookies,
		Logger:          log,
	})
	if err != nil {
		return err
	}
	router, err := handlers.NewRouter(h, handlers.RouterOptions{
		CORSAllowedOrigins: cfg.CORSAllowedOrigin,
		AllowCIDRs:         cfg.AdminAllowCIDRs,
		DenyCIDRs:          cfg.AdminDenyCIDRs,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("received interrupt signal")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	}

	log.Info().Msg("system shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
	return nil
}

func newUpdateSource(cfg *config.Config, log zerolog.Logger) update.Source {
	if cfg.UpdateRepo == "" {
		log.Info().Msg("UPDATE_REPO not set, core update checks disabled")
		return update.Disabled{}
	}
	return update.NewGitHubSource(update.GitHubOptions{
		Repo:     cfg.UpdateRepo,
		Token:    cfg.GitHubToken,
		ProxyURL: cfg.UpdateProxyURL,
		TTL:      cfg.UpdateCacheTTL,
		Logger:   log,
	})
}

func bootstrapAdmin(ctx context.Context, cfg *config.Config, auth *service.AuthService, log zerolog.Logger) error {
	if cfg.AdminUser == "" || cfg.AdminPassword == "" {
		return nil
	}
	user, created, err := auth.EnsureUser(ctx, models.UserCreate{
		Login:      cfg.AdminUser,
		Password:   cfg.AdminPassword,
		Role:       models.RoleAdministrator,
		TOTPSecret: cfg.AdminTOTPSecret,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin user: %w", err)
	}
	if created {
		log.Info().Str("login", user.Login).Msg("admin user created")
	}
	return nil
}
