package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535] (got %d)", c.Server.Port)
	}
	if c.Server.RateLimitPerMin < 1 {
		return fmt.Errorf("server.rate_limit_per_min must be >= 1 (got %d)", c.Server.RateLimitPerMin)
	}
	if c.Identity.UserHeader == "" {
		return fmt.Errorf("identity.user_header must not be empty")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.MasteryIntervalDays < 1 {
		return fmt.Errorf("mastery_interval_days must be >= 1 (got %d)", s.MasteryIntervalDays)
	}
	if s.LearningInterval < 1 {
		return fmt.Errorf("learning_interval must be >= 1 (got %d)", s.LearningInterval)
	}
	if s.GraduatingInterval < 1 {
		return fmt.Errorf("graduating_interval must be >= 1 (got %d)", s.GraduatingInterval)
	}
	if s.EasePenalty < 0 {
		return fmt.Errorf("ease_penalty must be >= 0 (got %v)", s.EasePenalty)
	}
	if s.EaseReward < 0 {
		return fmt.Errorf("ease_reward must be >= 0 (got %v)", s.EaseReward)
	}
	if s.MaxSessionSize < 1 {
		return fmt.Errorf("max_session_size must be >= 1 (got %d)", s.MaxSessionSize)
	}
	if s.NewCardsPerDay < 0 {
		return fmt.Errorf("new_cards_per_day must be >= 0 (got %d)", s.NewCardsPerDay)
	}
	if s.AdaptiveWindow < 1 {
		return fmt.Errorf("adaptive_window must be >= 1 (got %d)", s.AdaptiveWindow)
	}
	if s.PromotionThreshold <= 0 || s.PromotionThreshold > 1 {
		return fmt.Errorf("promotion_threshold must be in (0, 1] (got %v)", s.PromotionThreshold)
	}
	return nil
}
