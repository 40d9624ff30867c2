// Command refine-engine runs the refinement scheduler against a
// declarative IOSTS definition, optionally watching it for hot reload and
// exporting a DOT visualization of its current state.
//
// Grounded on the teacher engine's cmd/demo: a signal-handled run loop
// driving a periodic model input and printing the machine's current
// state and DOT graph each cycle — generalized from a single
// traffic-light MachineBuilder to a cobra-based CLI loading its IOSTS
// declaratively and dispatching through the refinement scheduler instead
// of calling Send directly on a hierarchical Machine.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/stateforge/iosts-refine/internal/config"
	"github.com/stateforge/iosts-refine/internal/core"
	"github.com/stateforge/iosts-refine/internal/primitives"
	"github.com/stateforge/iosts-refine/internal/scheduler"
	"github.com/stateforge/iosts-refine/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		defPath      string
		watch        bool
		consoleLog   bool
		logLevel     string
		tickInterval time.Duration
	)

	root := &cobra.Command{
		Use:   "refine-engine",
		Short: "Run a declarative IOSTS through the refinement scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevelOverride := ""
			if cmd.Flags().Changed("log-level") {
				logLevelOverride = logLevel
			}
			return run(defPath, watch, consoleLog, logLevelOverride, tickInterval)
		},
	}
	root.Flags().StringVar(&defPath, "definition", "", "path to the YAML IOSTS definition (required)")
	root.Flags().BoolVar(&watch, "watch", false, "hot-reload the definition on change")
	root.Flags().BoolVar(&consoleLog, "console-log", true, "use human-readable console logging instead of JSON")
	root.Flags().StringVar(&logLevel, "log-level", "", "zap log level (overrides the definition's engine.logLevel)")
	root.Flags().DurationVar(&tickInterval, "tick-interval", 2*time.Second, "interval between demo model-input ticks")
	root.MarkFlagRequired("definition")

	root.AddCommand(newVisualizeCmd())
	return root
}

func newVisualizeCmd() *cobra.Command {
	var defPath string
	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Print the DOT graph for a definition's initial state",
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := config.Load(defPath)
			if err != nil {
				return err
			}
			m, err := config.Compile(def)
			if err != nil {
				return err
			}
			fmt.Println(telemetry.ExportDOT(m))
			return nil
		},
	}
	cmd.Flags().StringVar(&defPath, "definition", "", "path to the YAML IOSTS definition (required)")
	cmd.MarkFlagRequired("definition")
	return cmd
}

func run(defPath string, watch, consoleLog bool, logLevelOverride string, tickInterval time.Duration) error {
	doc, err := config.LoadDocument(defPath)
	if err != nil {
		return err
	}
	if len(doc.Systems) != 1 {
		return fmt.Errorf("expected exactly one system under systems: in %s, got %d", defPath, len(doc.Systems))
	}

	logLevel := doc.Engine.LogLevel
	if logLevelOverride != "" {
		logLevel = logLevelOverride
	}
	log, err := telemetry.NewLogger(consoleLog, logLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	var registerer prometheus.Registerer
	if doc.Engine.MetricsEnabled {
		registerer = prometheus.DefaultRegisterer
	}
	metrics := telemetry.NewMetrics(registerer)
	recorder := telemetry.NewSchedulerRecorder(log, metrics)

	m, err := config.Compile(&doc.Systems[0])
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.WithRecorder(recorder))
	sched.AddSystem(m)

	var watcher *config.Watcher
	if watch {
		watcher, err = config.NewWatcher(defPath)
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	var watchCh <-chan *core.IOSTS
	if watcher != nil {
		watchCh = watcher.Reloads()
	}

	log.Info("refine-engine started", zap.String("system", m.Name()))
	for {
		select {
		case <-ticker.C:
			if err := sched.HandleModelInput(primitives.NewModelAction(m.ModelActionType(), string(m.ModelActionType()), nil)); err != nil {
				log.Error("handle model input", zap.Error(err))
				continue
			}
			if err := sched.Tick(); err != nil {
				log.Error("tick", zap.Error(err))
				continue
			}
			fmt.Println(telemetry.ExportDOT(m))
		case fresh := <-watchCh:
			sched.RemoveSystem(m)
			m = fresh
			sched.AddSystem(m)
			log.Info("definition reloaded", zap.String("system", m.Name()))
		case <-sig:
			log.Info("shutting down")
			return nil
		}
	}
}
