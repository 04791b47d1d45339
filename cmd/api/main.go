package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/consultation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/dispensation"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/inventory"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/application/transfer"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/infrastructure/postgres"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/infrastructure/scheduler"
	httpRouter "github.com/polyclinic-project-2025/polyclinic-backend-sub001/internal/interfaces/http"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/config"
	"github.com/polyclinic-project-2025/polyclinic-backend-sub001/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "polyclinic-api",
		Short: "API de dispensación de medicamentos y consistencia entre departamentos",
	}
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap carga la configuración, crea el logger y abre el pool.
func bootstrap(ctx context.Context) (*config.Config, *logger.Logger, *pgxpool.Pool, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return cfg, log, pool, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Inicia el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	ctx := context.Background()
	cfg, log, pool, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	txRunner := postgres.NewTxRunner(pool)
	stockUC := inventory.NewStockUseCase(txRunner)
	reportUC := inventory.NewThresholdReportUseCase(postgres.NewStockRepository(pool))
	coordinator := dispensation.NewCoordinator(txRunner, log)
	workflow := consultation.NewWorkflow(txRunner, log)
	transferUC := transfer.NewUseCase(txRunner)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Polyclinic API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		stats, err := postgres.Health(c.UserContext(), pool)
		if err != nil {
			log.Warn().Err(err).Msg("health check sin base de datos")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db": stats})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Dispensations:   coordinator,
		Consultations:   workflow,
		Transfers:       transferUC,
		Stock:           stockUC,
		ThresholdReport: reportUC,
		Log:             log,
	})

	var stopCron func() context.Context
	if cfg.Scheduler.Enabled {
		c, err := scheduler.NewStockAlertJob(reportUC, log).Start(cfg.Scheduler.StockAlertSchedule)
		if err != nil {
			return fmt.Errorf("programar alertas de stock: %w", err)
		}
		stopCron = c.Stop
		log.Info().Str("schedule", cfg.Scheduler.StockAlertSchedule).Msg("alertas de stock programadas")
	}

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if stopCron != nil {
		select {
		case <-stopCron().Done():
		case <-shutdownCtx.Done():
			log.Warn().Msg("alertas de stock en curso al apagar")
		}
	}

	log.Info().Msg("aplicación detenida")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migraciones de base de datos",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Aplica las migraciones pendientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, log, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := postgres.NewMigrator(pool).Up(ctx)
			if err != nil {
				return fmt.Errorf("migración fallida: %w", err)
			}
			log.Info().Int("applied", count).Msg("migraciones aplicadas")
			fmt.Printf("%d migración(es) aplicada(s).\n", count)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Muestra el estado de las migraciones",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, _, pool, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := postgres.NewMigrator(pool).Status(ctx)
			if err != nil {
				return fmt.Errorf("estado de migraciones: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NOMBRE", "ESTADO", "APLICADA")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pendiente"
				appliedAt := ""
				if s.Applied {
					status = "aplicada"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}
