package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dshills/guard/internal/collect"
	"github.com/dshills/guard/internal/config"
	"github.com/dshills/guard/internal/logging"
	"github.com/dshills/guard/internal/output"
	"github.com/dshills/guard/internal/providers"
	"github.com/dshills/guard/internal/review"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const apiKeyURL = "https://console.mistral.ai/codestral"

// Root command flags
var (
	flagLang       string
	flagVerbose    bool
	flagUninstall  bool
	flagModel      string
	flagMaxChunkKB int
	flagDelay      string
	flagTimeout    string
	flagInsecure   bool
	flagNoRedact   bool
	flagExcludeDir []string
	flagDebug      bool
)

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagLang, "lang", "l", "", "Force the language of the answer (e.g. French)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "List every analyzed file")
	cmd.Flags().BoolVar(&flagUninstall, "uninstall", false, "Uninstall the tool")
	cmd.Flags().StringVar(&flagModel, "model", "", "Model name")
	cmd.Flags().IntVar(&flagMaxChunkKB, "max-chunk-kb", 0, "Maximum chunk size in KiB")
	cmd.Flags().StringVar(&flagDelay, "delay", "", "Pause between analysis calls (e.g. 2s)")
	cmd.Flags().StringVar(&flagTimeout, "timeout", "", "Timeout of a single remote call (e.g. 5m, 0 for none)")
	cmd.Flags().BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	cmd.Flags().BoolVar(&flagNoRedact, "no-redact", false, "Disable secret redaction (use with caution)")
	cmd.Flags().StringSliceVar(&flagExcludeDir, "exclude-dir", nil, "Additional directory names to skip (repeatable or comma-separated)")
	cmd.Flags().BoolVar(&flagDebug, "debug", false, "Enable debug logging on stderr")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagLang != "" {
		m["language"] = flagLang
	}
	if flagMaxChunkKB > 0 {
		m["maxChunkBytes"] = strconv.Itoa(flagMaxChunkKB * 1024)
	}
	if flagDelay != "" {
		m["delay"] = flagDelay
	}
	if flagTimeout != "" {
		m["timeout"] = flagTimeout
	}
	if flagInsecure {
		m["insecureSkipVerify"] = "true"
	}
	if flagNoRedact {
		m["redactSecrets"] = "false"
	}
	if len(flagExcludeDir) > 0 {
		m["excludeDirs"] = strings.Join(flagExcludeDir, ",")
	}
	return m
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	console := output.NewStdConsole(flagVerbose)

	if flagUninstall {
		exitCode = runUninstall(console)
		return nil
	}

	target := "."
	prompt := ""
	if len(args) > 0 {
		target = args[0]
	}
	if len(args) > 1 {
		prompt = args[1]
	}

	logger, err := logging.New(flagDebug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logger setup failed: %v\n", err)
		logger = zap.NewNop()
	}
	defer logging.Sync(logger)

	console.Header("GUARD CODE ANALYZER")
	exitCode = analyze(cmd.Context(), console, logger, target, prompt)
	return nil
}

func analyze(ctx context.Context, console *output.Console, logger *zap.Logger, target, prompt string) int {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		console.Error("FATAL ERROR: " + err.Error())
		return ExitFailure
	}

	wd, err := os.Getwd()
	if err != nil {
		console.Error("FATAL ERROR: " + err.Error())
		return ExitFailure
	}

	creds, err := config.ResolveCredentials(wd, executableDir())
	if err != nil {
		console.Error(config.APIKeyEnv + " not found.")
		printCredentialHint(console)
		return ExitFailure
	}
	logger.Debug("credentials resolved", zap.String("source", creds.Source))
	if creds.Endpoint != "" {
		cfg.Endpoint = creds.Endpoint
		if err := cfg.Validate(); err != nil {
			console.Error("FATAL ERROR: " + config.EndpointEnv + ": " + err.Error())
			return ExitFailure
		}
	}

	root, err := validateTarget(target)
	if err != nil {
		console.Error(err.Error())
		return ExitFailure
	}

	inst, err := review.ResolveInstruction(review.InstructionOptions{
		GuidanceFile: cfg.GuidanceFile,
		WorkDir:      wd,
		Target:       root,
		Prompt:       prompt,
		Language:     flagLang,
	})
	if err != nil {
		console.Error("FATAL ERROR: " + err.Error())
		return ExitFailure
	}
	switch inst.Source {
	case review.SourceCwd:
		console.Info(fmt.Sprintf("Using local %s as instruction (%d chars).", cfg.GuidanceFile, inst.GuidanceLen))
	case review.SourceTarget:
		console.Info(fmt.Sprintf("Using target %s as instruction (%d chars).", cfg.GuidanceFile, inst.GuidanceLen))
	}
	if flagLang != "" {
		console.Info("Forced language: " + flagLang)
	}
	if !cfg.RedactSecrets {
		console.Warning("Secret redaction is disabled")
	}
	console.Info("Analyzing directory: " + root)

	opts := collect.OptionsFromConfig(cfg)
	opts.OnProgress = console.ScanProgress
	collector := collect.New(opts, logger)
	client := providers.New(cfg, creds, logger)
	store := output.NewReportWriter(cfg.ReviewsDir)

	engine := review.NewEngine(collector, client, store, review.Options{
		MaxChunkBytes: cfg.MaxChunkBytes,
		Delay:         cfg.Delay,
		Progress:      console,
		Logger:        logger,
	})

	run := review.NewRun(target, prompt, inst.Text)
	run.Root = root
	run.Language = cfg.Language
	logger.Debug("run started",
		zap.String("run", run.ID),
		zap.String("target", root),
		zap.String("endpoint", client.Endpoint()),
		zap.String("model", cfg.Model),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := engine.Execute(ctx, run); err != nil {
		reportFailure(console, err)
		return ExitFailure
	}
	logger.Debug("run finished", zap.String("run", run.ID), zap.String("status", string(run.Status)),
		zap.Int("scanned", collector.Stats().Scanned), zap.Int("included", collector.Stats().Included))
	return ExitSuccess
}

// validateTarget resolves target to an absolute directory, following a
// symlinked target, before any network activity.
func validateTarget(target string) (string, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return "", &config.ConfigurationError{Reason: "resolving target " + target, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", &config.ConfigurationError{
			Reason: fmt.Sprintf("%s is not a valid directory", abs),
			Err:    collect.ErrNotDirectory,
		}
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &config.ConfigurationError{Reason: "resolving target " + abs, Err: err}
	}
	return resolved, nil
}

func reportFailure(console *output.Console, err error) {
	msg := err.Error()
	if providers.StageOf(err) == providers.StageSynthesis {
		msg = "synthesis failed: " + msg
	}
	console.Error("FATAL ERROR: " + msg)

	switch {
	case providers.IsAuthError(err):
		console.Info("The endpoint rejected the key. Check " + config.APIKeyEnv + ".")
	case errors.Is(err, context.Canceled):
		console.Info("Interrupted.")
	}
}

func printCredentialHint(console *output.Console) {
	console.Info("Solutions:")
	console.Info("1. Get a key here: " + apiKeyURL)
	if dir := executableDir(); dir != "" {
		console.Info("2. Add the key to: " + filepath.Join(dir, config.DotEnvFile))
	} else {
		console.Info("2. Add the key to a " + config.DotEnvFile + " file in the current directory")
	}
	console.Info(fmt.Sprintf("3. OR export the variable: export %s='your_key'", config.APIKeyEnv))
}
