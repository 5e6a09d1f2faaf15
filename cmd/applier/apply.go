package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"form-applier/internal/application/port/output"
	"form-applier/internal/di"
	"form-applier/internal/domain/entity"
	"form-applier/internal/infrastructure/browser/rod"
	"form-applier/internal/infrastructure/env"
	"form-applier/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
)

type applyFlags struct {
	agent             string
	batchSize         int
	browser           string
	browserOptions    string
	headless          bool
	retry             int
	retryBackoff      time.Duration
	screenshots       string
	screenshotFormat  string
	screenshotQuality int
	screenshotWidth   int
	metricsFile       string
	logLevel          string
	logFormat         string
	logsDir           string
}

var applyOpts applyFlags

var applyCmd = &cobra.Command{
	Use:   "apply URL DATA_FILE",
	Short: "Submit every record of DATA_FILE into the form at URL",
	Long: "Reads a JSON array of applicant objects from DATA_FILE and submits each one into the form at URL, " +
		"in batches of concurrently processed records. Records whose submission is not confirmed can be retried.",
	Args: cobra.ExactArgs(2),
	RunE: runApply,
}

func init() {
	bindApplyFlags(applyCmd, &applyOpts)
	rootCmd.AddCommand(applyCmd)
}

func bindApplyFlags(cmd *cobra.Command, opts *applyFlags) {
	f := cmd.Flags()
	f.StringVarP(&opts.agent, "agent", "a", "", "Form agent to use (default: first registered agent)")
	f.IntVarP(&opts.batchSize, "batch-size", "b", 10, "Records processed concurrently per batch (env "+env.BatchSizeKey+")")
	f.StringVar(&opts.browser, "browser", string(rod.EngineChromium), "Browser engine: chromium, chrome or msedge")
	f.StringVar(&opts.browserOptions, "browser-options", "", "YAML file with browser launch options (env "+env.BrowserOptKey+")")
	f.BoolVar(&opts.headless, "headless", true, "Run the browser without a window (env "+env.HeadlessKey+")")
	f.IntVarP(&opts.retry, "retry", "r", 0, "Retry attempts for unconfirmed records (env "+env.RetryKey+")")
	f.DurationVar(&opts.retryBackoff, "retry-backoff", 3*time.Second, "Base backoff, multiplied by the attempt number (env "+env.BackoffKey+")")
	f.StringVarP(&opts.screenshots, "screenshots", "s", "", "Directory for confirmation screenshots")
	f.StringVar(&opts.screenshotFormat, "screenshot-format", string(entity.ImageJPEG), "Screenshot format: jpeg or png")
	f.IntVar(&opts.screenshotQuality, "screenshot-quality", 80, "JPEG quality, 1-100")
	f.IntVar(&opts.screenshotWidth, "screenshot-max-width", 0, "Downsize wider screenshots to this many pixels (0 keeps the size)")
	f.StringVar(&opts.metricsFile, "metrics-file", "", "Write run metrics to this file in the Prometheus text format")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (env "+env.LogLevelKey+")")
	f.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json (env "+env.LogFormatKey+")")
	f.StringVar(&opts.logsDir, "logs-dir", "", "Directory for a JSON copy of the run log (env "+env.LogsDirKey+")")
}

func runApply(cmd *cobra.Command, args []string) error {
	url, dataFile := args[0], args[1]

	envService, err := env.NewEnvService()
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd, applyOpts, envService)
	if err != nil {
		return err
	}

	records, err := loadRecords(dataFile)
	if err != nil {
		return err
	}

	container, err := di.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	log := container.Logger
	if loaded := envService.Loaded(); len(loaded) > 0 {
		log.Debug("Environment loaded", "app_env", envService.AppEnv(), "files", loaded)
	}

	agent, err := pickAgent(container.Agents, applyOpts.agent)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter := userinteraction.NewConsolePresenter()
	presenter.ShowRunStart(url, agent.Name(), len(records))

	result, runErr := container.Submitter.SubmitAll(ctx, url, agent, records)
	if result != nil {
		presenter.ShowResult(result)
	}

	if applyOpts.metricsFile != "" {
		if err := container.WriteMetrics(applyOpts.metricsFile); err != nil {
			log.Warn("Failed to write metrics", "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return fmt.Errorf("interrupted: %w", runErr)
		}
		return runErr
	}
	return nil
}

func buildConfig(cmd *cobra.Command, f applyFlags, envService output.ConfigPort) (di.Config, error) {
	cfg := di.DefaultConfig()

	cfg.Log.Level = firstNonEmpty(f.logLevel, envService.GetWithDefault(env.LogLevelKey, cfg.Log.Level))
	cfg.Log.Format = firstNonEmpty(f.logFormat, envService.GetWithDefault(env.LogFormatKey, cfg.Log.Format))
	cfg.Log.Dir = firstNonEmpty(f.logsDir, envService.Get(env.LogsDirKey))

	optionsPath := firstNonEmpty(f.browserOptions, envService.Get(env.BrowserOptKey))
	if optionsPath != "" {
		browserCfg, err := rod.LoadConfig(optionsPath, cfg.Browser)
		if err != nil {
			return cfg, err
		}
		cfg.Browser = browserCfg
	}
	// The engine from an options file stands unless --browser is given explicitly.
	if optionsPath == "" || cmd.Flags().Changed("browser") {
		engine, err := rod.ParseEngine(f.browser)
		if err != nil {
			return cfg, err
		}
		cfg.Browser.Engine = engine
	}
	// Flags beat the environment, which beats the options file.
	flags := cmd.Flags()
	if flags.Changed("headless") {
		cfg.Browser.Headless = f.headless
	} else {
		cfg.Browser.Headless = envService.GetBool(env.HeadlessKey, cfg.Browser.Headless)
	}

	cfg.Submission.BatchSize = f.batchSize
	if !flags.Changed("batch-size") {
		cfg.Submission.BatchSize = envService.GetInt(env.BatchSizeKey, f.batchSize)
	}
	cfg.Submission.RetryLimit = f.retry
	if !flags.Changed("retry") {
		cfg.Submission.RetryLimit = envService.GetInt(env.RetryKey, f.retry)
	}
	cfg.Submission.RetryBackoff = f.retryBackoff
	if !flags.Changed("retry-backoff") {
		cfg.Submission.RetryBackoff = envService.GetDuration(env.BackoffKey, f.retryBackoff)
	}

	if f.screenshots != "" {
		format, err := entity.ParseImageFormat(f.screenshotFormat)
		if err != nil {
			return cfg, err
		}
		if f.screenshotQuality < 1 || f.screenshotQuality > 100 {
			return cfg, fmt.Errorf("screenshot quality must be between 1 and 100, got %d", f.screenshotQuality)
		}
		if f.screenshotWidth < 0 {
			return cfg, fmt.Errorf("screenshot max width must not be negative, got %d", f.screenshotWidth)
		}
		cfg.Submission.Evidence = entity.EvidenceSettings{
			Enabled:  true,
			Dir:      f.screenshots,
			Format:   format,
			Quality:  f.screenshotQuality,
			MaxWidth: f.screenshotWidth,
		}
	}

	cfg.Metrics = f.metricsFile != ""
	return cfg, nil
}

func pickAgent(agents output.FormAgentRegistry, name string) (output.FormAgent, error) {
	if name == "" {
		return agents.Default()
	}
	return agents.Get(name)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
