package main

import (
	"fmt"
	"time"
)

func parseDuration(flag, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("--%s must be positive", flag)
	}
	return d, nil
}
