// cmd/intake/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"student-intake/internal/common/config"
	"student-intake/internal/common/logger"
	"student-intake/pkg/intake"
)

const usage = `usage:
  intake submit <file.json|->
  intake status <applicationId>
  intake update <applicationId> <status> [note]
  intake list`

// retryWithBackoff attempts to execute a function with exponential backoff.
// It stops waiting as soon as ctx is done.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("%s interrupted after %d attempts: %w", operationName, i+1, errors.Join(ctx.Err(), err))
			case <-timer.C:
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	attempts := 1
	if cfg.Store.Backend == config.BackendRedis || cfg.Store.Backend == config.BackendPostgres {
		attempts = 5
	}

	var svc *intake.Service
	err = retryWithBackoff(ctx, func() error {
		var err error
		svc, err = intake.New(ctx, cfg, log)
		return err
	}, attempts, time.Second, zapLog, "intake service initialization")
	if err != nil {
		zapLog.Fatal("intake service failed to start", zap.Error(err))
	}
	defer svc.Close()

	out, err := run(ctx, svc, os.Args[1:], os.Stdin)
	if err != nil {
		zapLog.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		svc.Close()
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		zapLog.Error("write output failed", zap.Error(err))
	}
}

func run(ctx context.Context, svc *intake.Service, args []string, stdin io.Reader) (interface{}, error) {
	switch args[0] {
	case "submit":
		if len(args) != 2 {
			return nil, fmt.Errorf("submit takes one file argument\n%s", usage)
		}
		payload, err := readPayload(args[1], stdin)
		if err != nil {
			return nil, err
		}
		return svc.SubmitJSON(ctx, payload)
	case "status":
		if len(args) != 2 {
			return nil, fmt.Errorf("status takes one application id\n%s", usage)
		}
		return svc.GetStatus(ctx, args[1])
	case "update":
		if len(args) < 3 || len(args) > 4 {
			return nil, fmt.Errorf("update takes an application id, a status and an optional note\n%s", usage)
		}
		note := ""
		if len(args) == 4 {
			note = args[3]
		}
		return svc.UpdateStatus(ctx, args[1], args[2], note)
	case "list":
		return svc.Applications(ctx)
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func readPayload(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
