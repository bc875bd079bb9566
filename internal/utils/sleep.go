package utils

import (
	"context"
	"math/rand"
	"time"
)

// Sleep waits for d or until ctx is done. A cancelled ctx is reported even when d is zero, so
// every wait doubles as a cancellation checkpoint.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RandomDuration picks a duration in [min, max].
func RandomDuration(rnd *rand.Rand, min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rnd.Int63n(int64(max-min)+1))
}

// Vary scales d by a random factor within ±percent.
func Vary(rnd *rand.Rand, d time.Duration, percent int) time.Duration {
	if d <= 0 || percent <= 0 {
		return d
	}
	delta := rnd.Intn(2*percent+1) - percent
	return d + d*time.Duration(delta)/100
}
