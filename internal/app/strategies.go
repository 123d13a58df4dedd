package app

import (
	"fmt"

	"github.com/yungbote/productgraph/internal/platform/logger"
	"github.com/yungbote/productgraph/internal/samples/watch"
	"github.com/yungbote/productgraph/internal/strategy"
)

// buildStrategies freezes the registry. With a binding file the watch kinds
// are only declared and the file decides which named strategy serves which
// kind.
func buildStrategies(cfg Config, log *logger.Logger) (*strategy.Strategies, error) {
	b := strategy.NewBuilder()
	if cfg.StrategyConfig == "" {
		watch.Register(b)
	} else {
		watch.Declare(b)
		bindings, err := strategy.LoadBindingConfig(cfg.StrategyConfig)
		if err != nil {
			return nil, err
		}
		if err := b.Apply(bindings); err != nil {
			return nil, fmt.Errorf("apply %s: %w", cfg.StrategyConfig, err)
		}
		log.Info("strategy bindings loaded", "path", cfg.StrategyConfig, "bindings", len(bindings.Bindings))
	}
	s, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build strategies: %w", err)
	}
	return s, nil
}
