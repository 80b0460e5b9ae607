package transport

import (
	"errors"
	"math"
	"math/rand"
	"net"
	"syscall"
	"time"
)

// BackoffConfig defines retry backoff for transient send failures.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// SenderConfig bounds what a Sender writes and how hard it retries.
type SenderConfig struct {
	MaxSize      int
	WriteTimeout time.Duration
	MaxAttempts  int
	Backoff      BackoffConfig
}

func DefaultSenderConfig(maxSize int) SenderConfig {
	return SenderConfig{
		MaxSize:      maxSize,
		WriteTimeout: 2 * time.Second,
		MaxAttempts:  3,
		Backoff: BackoffConfig{
			InitialDelay: 10 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     500 * time.Millisecond,
			Jitter:       true,
		},
	}
}

// NextBackoffDelay returns the delay before retry attempt N (1-based).
// With jitter the delay is scaled by a factor in [0.5, 1.5).
func NextBackoffDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	if attempt < 1 {
		attempt = 1
	}
	if cfg.Multiplier < 1.0 {
		cfg.Multiplier = 1.0
	}
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 1.0
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay = delay * f
	}
	return time.Duration(delay)
}

// retryable reports send errors worth another attempt: write deadline
// timeouts and full kernel socket buffers.
func retryable(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ENOBUFS) || errors.Is(err, syscall.EAGAIN)
}
