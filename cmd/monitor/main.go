// Command monitor is the single entrypoint for the threshold-alerting
// pipeline: it loads the config, wires the decode -> classify -> policy ->
// notify pipeline, drives the upstream transaction stream, and shuts down
// gracefully on SIGINT/SIGTERM (spec.md §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/chain-monitor/internal/chainrpc"
	"github.com/rovshanmuradov/chain-monitor/internal/chainstream"
	"github.com/rovshanmuradov/chain-monitor/internal/classifier"
	"github.com/rovshanmuradov/chain-monitor/internal/decoder"
	"github.com/rovshanmuradov/chain-monitor/internal/monconfig"
	"github.com/rovshanmuradov/chain-monitor/internal/monlog"
	"github.com/rovshanmuradov/chain-monitor/internal/notifier"
	"github.com/rovshanmuradov/chain-monitor/internal/policy"
)

func main() {
	configPath := flag.String("config", "", "path to the monitor config file (required)")
	streamURL := flag.String("stream-url", "", "upstream transaction subscription endpoint (required)")
	rpcURL := flag.String("rpc-url", "", "upstream RPC endpoint for mint-metadata lookups (required)")
	authToken := flag.String("auth-token", os.Getenv("MONITOR_AUTH_TOKEN"), "upstream auth token (or $MONITOR_AUTH_TOKEN)")
	logFile := flag.String("log-file", "monitor.log", "path to the rotating log file")
	devLogs := flag.Bool("dev", false, "enable development (debug-level, human-friendly) logging")
	flag.Parse()

	if *configPath == "" || *streamURL == "" || *rpcURL == "" {
		flag.Usage()
		log.Fatal("config, stream-url and rpc-url are all required")
	}

	logCfg := monlog.DefaultConfig()
	logCfg.LogFile = *logFile
	logCfg.Development = *devLogs
	logger, err := monlog.New(logCfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := monconfig.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	if err := run(cfg, *streamURL, *rpcURL, *authToken, logger); err != nil {
		logger.Error("fatal pipeline failure", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *monconfig.Config, streamURL, rpcURL, authToken string, logger *monlog.Logger) error {
	registry := decoder.NewRegistry()
	programAliases := make(map[solana.PublicKey]string, len(cfg.Programs))

	for alias, spec := range cfg.Programs {
		programID, err := solana.PublicKeyFromBase58(spec.ProgramID)
		if err != nil {
			return fmt.Errorf("program %s: %w", alias, err)
		}

		var d decoder.ProgramDecoder
		switch alias {
		case "spl_stake_pool":
			d = decoder.NewStakePoolDecoder(programID)
		case "jito_vault":
			d = decoder.NewVaultDecoder(programID)
		default:
			return fmt.Errorf("program %s: no decoder registered for this alias", alias)
		}
		if err := registry.Register(d); err != nil {
			return fmt.Errorf("program %s: %w", alias, err)
		}
		programAliases[programID] = alias
	}

	rpcClient := chainrpc.New(rpcURL, logger.Logger)
	decimalsCache := classifier.NewDecimalsCache(rpcClient)
	clf := classifier.New(decimalsCache)
	engine := policy.New(cfg)
	notifiers := notifier.NewSet(cfg.Notifications, logger)

	source := chainstream.NewWebsocketSource(authedURL(streamURL, authToken), registry.ProgramIDs(), logger.Logger)
	driver := chainstream.New(source, registry, programAliases, clf, engine, notifiers, int64(cfg.NotificationConcurrency), logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("monitor starting",
		zap.Int("programs", len(cfg.Programs)),
		zap.String("stream_url", streamURL),
		zap.String("rpc_url", rpcURL),
	)

	if err := driver.Run(ctx); err != nil {
		var streamErr *chainstream.StreamError
		if asStreamError(err, &streamErr) && streamErr.Fatal {
			return err
		}
		return err
	}

	logger.Info("monitor shut down gracefully")
	return nil
}

// authedURL appends the auth token as a query parameter when one was
// supplied; an empty token leaves the URL untouched (spec.md §6: the
// upstream auth token is optional).
func authedURL(rawURL, token string) string {
	if token == "" {
		return rawURL
	}
	sep := "?"
	if containsQuery(rawURL) {
		sep = "&"
	}
	return rawURL + sep + "token=" + token
}

func containsQuery(rawURL string) bool {
	for _, c := range rawURL {
		if c == '?' {
			return true
		}
	}
	return false
}

func asStreamError(err error, target **chainstream.StreamError) bool {
	se, ok := err.(*chainstream.StreamError)
	if !ok {
		return false
	}
	*target = se
	return true
}
