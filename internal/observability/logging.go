// Package observability builds the structured loggers the simulator
// runs with. Battle resolution itself stays silent; the batch driver
// and the runner attach context here and report at the edges.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/warband/internal/config"
)

// NewLogger builds the batch-level logger from the logging section of
// the simulator configuration. JSON output suits harvested batch runs;
// console suits watching a single simulation locally.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// BattleLogger scopes a batch logger to one battle: every entry carries
// the batch run id, the battle's index within the batch, and its derived
// seed, so entries from parallel battles stay attributable.
func BattleLogger(base *zap.Logger, runID string, index int, seed uint64) *zap.Logger {
	return base.With(
		zap.String("run_id", runID),
		zap.Int("battle", index),
		zap.Uint64("battle_seed", seed),
	)
}
