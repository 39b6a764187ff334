package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/nixta/mapanimations/internal/animation"
	"github.com/nixta/mapanimations/internal/config"
	"github.com/nixta/mapanimations/internal/demo"
	"github.com/nixta/mapanimations/internal/logging"
	"github.com/nixta/mapanimations/internal/monitor"
	intOtel "github.com/nixta/mapanimations/internal/otel"
)

// BuildDate can be set at build time via ldflags
var (
	Version   string = "0.0.1"
	BuildDate string = "unknown"

	AppName string = "mapanimations"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	config.SetDefaults()
	opts, err := parseFlags(args, stdout)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintf(stdout, "%s %s (built %s)\n", AppName, Version, BuildDate)
		return nil
	}

	sessionStart := time.Now()

	// stdout logging until the log file exists
	slogManager := logging.NewSlogManager()
	slogManager.Setup(nil, viper.GetString("logLevel"), nil)
	logger := slogManager.Logger()

	if err := config.Load(opts.configDir); err != nil {
		logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		logger.Info("Loaded config", "dir", opts.configDir)
	}
	logLevel := viper.GetString("logLevel")

	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFilePath := logging.LogFilePath(logsDir, AppName, sessionStart)
	logFile := logging.NewRotatingFile(logFilePath, logLevel)
	defer logFile.Close()
	logger.Info("Begin logging in logs directory", "path", logFilePath)

	// Initialize OTel provider if enabled (after log file is created)
	var otelProvider *intOtel.Provider
	otelCfg := config.GetOTelConfig()
	if otelCfg.Enabled {
		otelProvider, err = intOtel.New(intOtel.Config{
			Enabled:        otelCfg.Enabled,
			ServiceName:    otelCfg.ServiceName,
			BatchTimeout:   otelCfg.BatchTimeout,
			MetricInterval: otelCfg.MetricInterval,
			LogWriter:      logFile,
			MetricWriter:   logFile,
			Endpoint:       otelCfg.Endpoint,
			Insecure:       otelCfg.Insecure,
		})
		if err != nil {
			logger.Error("Failed to initialize OTel provider", "error", err)
			otelProvider = nil
		} else {
			logger.Info("OTel provider initialized", "file", logFilePath, "endpoint", otelCfg.Endpoint)
		}
	}

	demoCfg := config.GetDemoConfig()
	animCfg := config.GetAnimationConfig()

	// the scheduler is created after logging, the context reads it lazily
	var sched *animation.Scheduler
	slogManager.WithContext(logging.SchedulerContext(
		func() string { return demoCfg.Scenario },
		func() int {
			if sched == nil {
				return 0
			}
			return sched.ActiveJobs()
		},
	))

	var otelLogProvider *sdklog.LoggerProvider
	if otelProvider != nil {
		otelLogProvider = otelProvider.LoggerProvider()
	}
	slogManager.Setup(io.MultiWriter(stdout, logFile), logLevel, otelLogProvider)
	logger = slogManager.Logger()
	logger.Info("Starting up", "version", Version, "build", BuildDate, "scenario", demoCfg.Scenario)

	var animLogger animation.Logger = slogManager.Component("animation")
	if opts.logFormat == logFormatConsole {
		animLogger = logging.NewConsoleLogger(os.Stderr, logLevel)
	}

	schedOpts := []animation.Option{
		animation.WithFPS(animCfg.FPS),
		animation.WithLogger(animLogger),
	}
	if otelProvider != nil {
		schedOpts = append(schedOpts, animation.WithMeter(otelProvider.Meter(AppName+"/animation")))
	}
	sched, err = animation.New(schedOpts...)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	storageCfg := config.GetStorageConfig()
	backend, err := createStorageBackend(storageCfg, slogManager, sessionStart)
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	runner, err := demo.New(demo.Settings{
		Demo:       demoCfg,
		Animation:  animCfg,
		RecordRate: storageCfg.RecordRate,
	}, demo.Dependencies{
		Scheduler: sched,
		Backend:   backend,
		Logger:    animLogger,
	})
	if err != nil {
		return err
	}

	stopPauseToggle := notifyPauseToggle(runner.TogglePause)
	defer stopPauseToggle()

	if monitorCfg := config.GetMonitorConfig(); monitorCfg.Enabled {
		monitorService := monitor.NewService(monitor.Dependencies{
			Scheduler:  sched,
			Scene:      runner.Scene,
			Backend:    backend,
			Logger:     slogManager.Component("monitor"),
			StatusFile: filepath.Join(logsDir, "status.json"),
			Interval:   monitorCfg.Interval,
		})
		if err := monitorService.Start(); err != nil {
			logger.Warn("Failed to start status monitor", "error", err)
		}
		defer monitorService.Stop()
	}

	runErr := runner.Run(ctx)
	if runErr != nil {
		logger.Error("Scenario failed", "error", runErr)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := slogManager.Flush(flushCtx); err != nil {
		logger.Warn("Failed to flush logs", "error", err)
	}
	if otelProvider != nil {
		if err := otelProvider.Shutdown(flushCtx); err != nil {
			logger.Warn("Failed to shut down OTel provider", "error", err)
		}
	}
	logger.Info("Shutting down")
	return runErr
}
