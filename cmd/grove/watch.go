package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phanxgames/grove"
	"github.com/phanxgames/grove/frame"
	"github.com/phanxgames/grove/prefab"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var (
		fps         int
		metricsAddr string
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Run the prefabs in a directory and rebuild them on change",
		Long: `Instantiates every prefab in the directory, steps the scene at a fixed
rate and replaces a prefab's subtree whenever its file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := flags.logger(cmd)
			if err != nil {
				return err
			}
			s, err := newScene(logger, flags)
			if err != nil {
				return err
			}
			defer s.Close()

			var opts []frame.Option
			if metricsAddr != "" {
				reg := prometheus.NewRegistry()
				m, err := frame.NewMetrics(reg)
				if err != nil {
					return err
				}
				opts = append(opts, frame.WithMetrics(m))
				srv := serveMetrics(metricsAddr, reg, logger)
				defer srv.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			w := &watchLoop{scene: s, dir: args[0], logger: logger, instances: make(map[string]*grove.Entity)}
			return w.run(ctx, s.runner(opts...), time.Second/time.Duration(max(fps, 1)))
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "Frames per second")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	return cmd
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	return srv
}

// watchLoop keeps one instantiated subtree per prefab file.
type watchLoop struct {
	scene     *scene
	dir       string
	logger    *slog.Logger
	instances map[string]*grove.Entity
}

func (w *watchLoop) run(ctx context.Context, r *frame.Runner, interval time.Duration) error {
	watcher, err := prefab.NewWatcher(w.dir)
	if err != nil {
		return err
	}
	defer watcher.Close()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() && prefab.IsPrefabFile(entry.Name()) {
			w.reload(filepath.Join(w.dir, entry.Name()))
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watch stopped", "frames", r.Frame())
			return nil
		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.reload(path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		case now := <-ticker.C:
			r.Step(now.Sub(last).Seconds())
			last = now
		}
	}
}

// reload replaces the subtree built from path. A removed or broken file
// leaves no subtree behind.
func (w *watchLoop) reload(path string) {
	if old, ok := w.instances[path]; ok {
		old.Dispose()
		delete(w.instances, path)
	}
	if _, err := os.Stat(path); err != nil {
		w.logger.Info("prefab removed", "file", path)
		return
	}
	e, err := w.scene.load(path)
	if err != nil {
		w.logger.Error("prefab rebuild failed", "file", path, "error", err)
		return
	}
	w.instances[path] = e
	w.logger.Info("prefab loaded", "file", path, "entity", e.Path(), "instances", w.names())
}

func (w *watchLoop) names() []string {
	names := make([]string, 0, len(w.instances))
	for path := range w.instances {
		names = append(names, filepath.Base(path))
	}
	slices.Sort(names)
	return names
}
