package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/cascade"
	cascadehttp "github.com/aretw0/cascade/pkg/adapters/http"
	"github.com/aretw0/cascade/pkg/adapters/redis"
	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/machinedef"
	"github.com/aretw0/cascade/pkg/observability"
	"github.com/aretw0/cascade/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts a Cascade machine from a definition file and exposes it over a JSON API, with Prometheus metrics on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis")

		if err := runServe(file, port, redisAddr, newLogger(cmd)); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for snapshot persistence (optional)")
}

func runServe(file, port, redisAddr string, logger *slog.Logger) error {
	def, types, err := machinedef.Load(file)
	if err != nil {
		return err
	}

	metrics := observability.New(prometheus.DefaultRegisterer)
	m := cascade.New(
		cascade.WithName(def.Machine),
		cascade.WithLogger(logger),
		cascade.WithLifecycleHooks(metrics.Hooks()),
	)
	for _, st := range types {
		if err := m.RegisterStateType(st); err != nil {
			return err
		}
	}

	var store ports.SnapshotStore
	if redisAddr != "" {
		rstore := redis.New(redisAddr, "", 0)
		defer rstore.Close()
		store = rstore
		if err := restoreGlobal(m, store); err != nil {
			return err
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", cascadehttp.NewHandler(m))

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)

	go func() {
		fmt.Printf("Starting Cascade Server on %s\n", srv.Addr)
		fmt.Printf("Serving machine: %s\n", def.Machine)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt or terminate signals.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return err

	case sig := <-shutdown:
		fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

		if store != nil {
			if err := saveGlobal(m, store); err != nil {
				fmt.Printf("Snapshot save failed: %v\n", err)
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		fmt.Println("Cascade Server stopped gracefully")
		return nil
	}
}

func restoreGlobal(m *cascade.Machine, store ports.SnapshotStore) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := store.Load(ctx, domain.Global().String())
	if err != nil {
		if err == domain.ErrSnapshotNotFound {
			return nil
		}
		return fmt.Errorf("failed to load snapshot: %w", err)
	}

	if _, err := m.CreateGlobalOwner(); err != nil {
		return err
	}
	if err := m.Restore(domain.Global(), snap); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	fmt.Println("Restored global state from snapshot")
	return nil
}

func saveGlobal(m *cascade.Machine, store ports.SnapshotStore) error {
	if !m.HasOwner(domain.Global()) {
		return nil
	}

	snap, err := m.Snapshot(domain.Global())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.Save(ctx, snap)
}
