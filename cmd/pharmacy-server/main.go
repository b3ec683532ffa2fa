package main

import (
	"context"
	crypto_rand "crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medihub/pharmacy/internal/config"
	"github.com/medihub/pharmacy/internal/domain/analysis"
	"github.com/medihub/pharmacy/internal/domain/billing"
	"github.com/medihub/pharmacy/internal/domain/catalog"
	"github.com/medihub/pharmacy/internal/domain/fulfillment"
	"github.com/medihub/pharmacy/internal/domain/identity"
	"github.com/medihub/pharmacy/internal/domain/inventory"
	"github.com/medihub/pharmacy/internal/domain/patient"
	"github.com/medihub/pharmacy/internal/domain/prescription"
	"github.com/medihub/pharmacy/internal/domain/safety"
	"github.com/medihub/pharmacy/internal/platform/ai"
	"github.com/medihub/pharmacy/internal/platform/auth"
	"github.com/medihub/pharmacy/internal/platform/db"
	"github.com/medihub/pharmacy/internal/platform/middleware"
	"github.com/medihub/pharmacy/internal/platform/reporting"
	"github.com/medihub/pharmacy/internal/records"
)

const tokenTTL = 24 * time.Hour

func main() {
	rootCmd := &cobra.Command{
		Use:   "pharmacy-server",
		Short: "Pharmacy management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the pharmacy API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the bootstrap users and opening stock",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := seed(ctx, pool); err != nil {
				return err
			}
			fmt.Println("Seed data inserted.")
			return nil
		},
	}
}

// seed inserts the default accounts and medicines, skipping rows that already
// exist by their natural key.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, u := range records.DefaultUsers() {
		_, err := pool.Exec(ctx, `
			INSERT INTO users (id, full_name, username, email, password, role, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,NOW())
			ON CONFLICT (username) DO NOTHING`,
			u.ID, u.FullName, u.Username, u.Email, u.Password, u.Role)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}
	for _, m := range records.DefaultMedicines() {
		_, err := pool.Exec(ctx, `
			INSERT INTO medicines (id, name, quantity, price)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (name) DO NOTHING`,
			m.ID, m.Name, m.Quantity, m.Price)
		if err != nil {
			return fmt.Errorf("seed medicine %s: %w", m.Name, err)
		}
	}
	return nil
}

func runServer() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		// Development convenience: tokens do not survive a restart.
		buf := make([]byte, 32)
		if _, err := crypto_rand.Read(buf); err != nil {
			logger.Fatal().Err(err).Msg("failed to generate session secret")
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn().Msg("JWT_SECRET not set, using a random per-process secret")
	}

	// The server starts without a database: every durable repo stays nil and
	// the seeded in-memory store carries the whole workload.
	ctx := context.Background()
	var pool *pgxpool.Pool
	if cfg.DatabaseURL == "" {
		logger.Warn().Msg("DATABASE_URL not set, running on the in-memory store")
	} else {
		pool, err = db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			logger.Warn().Err(err).Msg("database unreachable at startup, running on the in-memory store")
			pool = nil
		} else {
			defer pool.Close()
			logger.Info().Msg("connected to database")
		}
	}

	mem := records.SeededMemory()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	e.GET("/health", db.HealthHandler(pool))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}

	// -- Services --

	identitySvc := identity.NewService(repoOrNil(pool, identity.NewRepoPG), identity.NewRepoMem(mem), secret, tokenTTL, logger)
	patientSvc := patient.NewService(repoOrNil(pool, patient.NewRepoPG), patient.NewRepoMem(mem), logger)
	inventorySvc := inventory.NewService(repoOrNil(pool, inventory.NewRepoPG), inventory.NewRepoMem(mem), logger)
	prescriptionSvc := prescription.NewService(repoOrNil(pool, prescription.NewRepoPG), prescription.NewRepoMem(mem), logger)

	validator := safety.New(catalog.Default())
	fulfillmentSvc := fulfillment.NewService(repoOrNil(pool, fulfillment.NewStorePG), fulfillment.NewStoreMem(mem), validator, logger)
	billingSvc := billing.NewService(repoOrNil(pool, billing.NewRepoPG), billing.NewRepoMem(mem), logger)
	reportingSvc := reporting.NewService(repoOrNil(pool, reporting.NewStorePG), reporting.NewStoreMem(mem), logger)

	analyzer := ai.New(ai.Config{APIKey: cfg.AIAPIKey, BaseURL: cfg.AIBaseURL, Model: cfg.AIModel}, logger)

	// -- Routes --

	identityHandler := identity.NewHandler(identitySvc)

	public := e.Group("/api/v1")
	public.Use(middleware.RateLimit(rateLimitCfg))
	identityHandler.RegisterPublicRoutes(public)

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(rateLimitCfg))
	apiV1.Use(auth.JWTMiddleware(secret))

	identityHandler.RegisterRoutes(apiV1)
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)
	prescription.NewHandler(prescriptionSvc).RegisterRoutes(apiV1)
	fulfillment.NewHandler(fulfillmentSvc).RegisterRoutes(apiV1)
	billing.NewHandler(billingSvc).RegisterRoutes(apiV1)
	reporting.NewHandler(reportingSvc).RegisterRoutes(apiV1)
	analysis.NewHandler(analyzer, prescriptionSvc).RegisterRoutes(apiV1)

	// -- Serve --

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("pharmacy server listening")
		errCh <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	}
}

// repoOrNil constructs the durable repo only when a pool exists, so services
// can treat a nil durable side as "memory only".
func repoOrNil[T any](pool *pgxpool.Pool, ctor func(*pgxpool.Pool) T) T {
	var zero T
	if pool == nil {
		return zero
	}
	return ctor(pool)
}
