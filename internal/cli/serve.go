package cli

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

	"github.com/spf13/cobra"

	"github.com/soochol/workbench/internal/api"
	"github.com/soochol/workbench/internal/config"
	"github.com/soochol/workbench/internal/db"
	"github.com/soochol/workbench/internal/designer"
	"github.com/soochol/workbench/internal/repository"
	"github.com/soochol/workbench/internal/services"
	"github.com/soochol/workbench/internal/tools"
	"github.com/soochol/workbench/internal/workbench/ports"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var staticDir string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Run the designer HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, staticDir)
		},
	}
	cmd.Flags().StringVar(&staticDir, "static", "", "serve the designer frontend from this directory")
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	return config.Load(path)
}

func newDesigner(cfg *config.Config) (*designer.Designer, *tools.Registry, error) {
	reg, err := tools.NewBuiltinRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("tool registry: %w", err)
	}
	app := cfg.ToolSettings()
	if err := reg.Configure(app); err != nil {
		return nil, nil, fmt.Errorf("tool settings: %w", err)
	}
	return designer.New(reg, designer.WithLogger(slog.Default()), designer.WithAppConfig(app)), reg, nil
}

func serve(ctx context.Context, cfg *config.Config, staticDir string) error {
	d, reg, err := newDesigner(cfg)
	if err != nil {
		return err
	}

	var repo repository.ProcessRepository = repository.NewMemoryProcessRepository()
	if cfg.Database.URL != "" {
		database, err := db.New(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		repo = repository.NewPersistentProcessRepository(repository.NewMemoryProcessRepository(), database)
		slog.Info("process store", "driver", database.Driver)
	} else {
		slog.Info("process store", "driver", "memory")
	}

	var executor ports.ProcessExecutor
	if cfg.Executor.URL != "" {
		policy := services.DefaultRetryPolicy()
		policy.MaxRetries = cfg.Executor.MaxRetries
		executor = services.NewRetryExecutor(services.NewHTTPExecutor(cfg.Executor.URL, cfg.Executor.Timeout), policy)
	}

	processSvc := services.NewProcessService(repo)
	designerSvc := services.NewDesignerService(d, processSvc, executor, designer.SessionOptions{
		HistoryLimit: cfg.Designer.HistoryLimit,
		QueueSize:    cfg.Designer.QueueSize,
	})
	defer designerSvc.Shutdown()

	srv := api.NewServer(designerSvc, processSvc, reg)
	if staticDir != "" {
		srv.SetStaticDir(staticDir)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{Addr: addr, Handler: srv.Handler()}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting workbench server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
