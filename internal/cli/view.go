package cli

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"kinky/internal/config"
	"kinky/internal/gui"
	"kinky/internal/logger"
	"kinky/internal/metrics"
	"kinky/internal/models"
	"kinky/internal/pipeline"
	"kinky/internal/scheduler"
	"kinky/internal/session"
	"kinky/internal/shutdown"
	"kinky/internal/worker"
)

func newViewCommand(opts *rootOptions) *cobra.Command {
	var workerMode, metricsAddr string

	cmd := &cobra.Command{
		Use:   "view <image>",
		Short: "Open an image and tune the enhancement by dragging",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("worker") {
				cfg.Worker.Mode = workerMode
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.Metrics.Addr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runView(cmd, cfg, log, args[0])
		},
	}

	cmd.Flags().StringVar(&workerMode, "worker", config.WorkerModeLocal, "where transforms run: local or process")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runView(cmd *cobra.Command, cfg config.Config, log logger.Logger, path string) error {
	img, depth, err := pipeline.LoadImage(path, log)
	if err != nil {
		return err
	}

	w, err := newWorker(cfg.Worker.Mode, img, log)
	if err != nil {
		return err
	}

	mgr := shutdown.NewManager(cmd.Context(), log, shutdown.DefaultTimeout)
	collector := metrics.NewCollector()

	var viewer *gui.Viewer
	sched := scheduler.New(w,
		scheduler.WithLogger(log),
		scheduler.WithObserver(collector),
		scheduler.WithOnComplete(func(c scheduler.Completion) {
			viewer.Deliver(c)
		}),
	)
	mgr.Register("scheduler", sched)

	if cfg.Metrics.Addr != "" {
		go func() {
			if err := collector.Serve(mgr.Context(), cfg.Metrics.Addr, log); err != nil {
				log.Error("Metrics", err, map[string]interface{}{"addr": cfg.Metrics.Addr})
			}
		}()
	}

	save := func(out *models.Image, dst string) error {
		return pipeline.SaveImage(out, dst, log)
	}
	sess := session.New(cfg, session.Source{Path: path, Image: img, Depth: depth}, sched, save, log)

	a := app.NewWithID(AppID)
	preview := func(m *models.Image) image.Image { return pipeline.Preview(m) }
	viewer = gui.NewViewer(a, fmt.Sprintf("%s - %s", AppName, filepath.Base(path)), sess, preview, log)

	mgr.Watch(func() {
		fyne.Do(a.Quit)
	})

	log.Info("CLI", "viewer starting", map[string]interface{}{
		"path":   path,
		"height": img.Height,
		"width":  img.Width,
		"depth":  depth,
		"worker": cfg.Worker.Mode,
	})

	if err := sess.Start(); err != nil {
		_ = mgr.Shutdown()
		return err
	}
	viewer.ShowAndRun()

	return mgr.Shutdown()
}

func newWorker(mode string, img *models.Image, log logger.Logger) (worker.Worker, error) {
	if mode != config.WorkerModeProcess {
		return worker.NewLocal(img), nil
	}
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate executable for worker process: %w", err)
	}
	return worker.StartSubprocess(img, log, exe, workerCommandName)
}
