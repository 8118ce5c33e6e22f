// Package main is the entry point for the jwksfind command.
//
// jwksfind fetches the JWK Set published at a URL, selects the key matching
// the requested algorithm and key id, and prints it as a PEM public key.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/vyrodovalexey/jwksfind/internal/config"
	"github.com/vyrodovalexey/jwksfind/internal/observability"
	"github.com/vyrodovalexey/jwksfind/internal/resolver"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	jwksURL     string
	alg         string
	kid         string
	use         string
	insecure    bool
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one resolution and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if flags.showVersion {
		printVersion(stdout)
		return exitOK
	}

	if flags.jwksURL == "" {
		fmt.Fprintln(stderr, "missing -jwks-url (or JWKSFIND_JWKS_URL)")
		return exitUsage
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		fmt.Fprintf(stderr, "invalid configuration: %v\n", err)
		return exitError
	}

	logger, err := initLogger(cfg.Logging, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	app, err := initApplication(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", observability.Error(err))
		return exitError
	}
	defer app.shutdown(logger)

	ctx = observability.ContextWithRequestID(ctx, uuid.NewString())

	pem, err := app.resolver.Resolve(ctx,
		resolver.Entity{KeySetURL: flags.jwksURL},
		resolver.Criteria{Algorithm: flags.alg, KeyID: flags.kid},
	)
	app.writeMetrics(stderr, logger)

	logger = logger.WithContext(ctx)
	switch {
	case err != nil:
		logger.Error("key resolution failed",
			observability.String("url", flags.jwksURL),
			observability.Error(err),
		)
		return exitError
	case pem == "":
		logger.Info("no key set location usable for this entity",
			observability.String("url", flags.jwksURL),
		)
		return exitOK
	}

	if _, err := io.WriteString(stdout, pem); err != nil {
		logger.Error("failed to write key", observability.Error(err))
		return exitError
	}
	return exitOK
}

// parseFlags parses command line flags with environment fallbacks.
func parseFlags(args []string, output io.Writer) (cliFlags, error) {
	fs := flag.NewFlagSet("jwksfind", flag.ContinueOnError)
	fs.SetOutput(output)

	var flags cliFlags
	fs.StringVar(&flags.configPath, "config", getEnvOrDefault("JWKSFIND_CONFIG", ""),
		"Path to configuration file")
	fs.StringVar(&flags.jwksURL, "jwks-url", getEnvOrDefault("JWKSFIND_JWKS_URL", ""),
		"URL of the JWK Set")
	fs.StringVar(&flags.alg, "alg", getEnvOrDefault("JWKSFIND_ALG", "RS256"),
		"Algorithm the key must support")
	fs.StringVar(&flags.kid, "kid", getEnvOrDefault("JWKSFIND_KID", ""),
		"Preferred key id")
	fs.StringVar(&flags.use, "use", getEnvOrDefault("JWKSFIND_USE", ""),
		"Key use (signature, encryption); overrides the configuration")
	fs.BoolVar(&flags.insecure, "insecure", getEnvBool("JWKSFIND_INSECURE", false),
		"Accept http key set URLs")
	fs.StringVar(&flags.logLevel, "log-level", getEnvOrDefault("JWKSFIND_LOG_LEVEL", ""),
		"Log level (debug, info, warn, error); overrides the configuration")
	fs.StringVar(&flags.logFormat, "log-format", getEnvOrDefault("JWKSFIND_LOG_FORMAT", ""),
		"Log format (json, console); overrides the configuration")
	fs.BoolVar(&flags.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(output, "unexpected arguments: %v\n", fs.Args())
		return cliFlags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return flags, nil
}

// printVersion prints version information.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "jwksfind version %s\n", version)
	fmt.Fprintf(w, "  Build time: %s\n", buildTime)
	fmt.Fprintf(w, "  Git commit: %s\n", gitCommit)
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides.
func loadConfig(flags cliFlags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flags.configPath != "" {
		var err error
		cfg, err = config.Load(flags.configPath)
		if err != nil {
			return nil, err
		}
	}

	if flags.use != "" {
		cfg.Resolver.Use = flags.use
	}
	if flags.insecure {
		cfg.Resolver.Secure = false
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Logging.Format = flags.logFormat
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// initLogger initializes the logger on the configured stream.
func initLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) (observability.Logger, error) {
	out := stderr
	if cfg.Output == "stdout" {
		out = stdout
	}
	return observability.NewLoggerWithWriter(observability.LogConfig{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	}, out)
}
