package module

import "curtaincall/internal/platform/config"

// Options holds configuration settings for the roster module
type Options struct {
	HardLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_ROSTER_")
	return Options{
		HardLimit: rf.MayInt("HARD_LIMIT", 500),
	}
}
