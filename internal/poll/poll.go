// Package poll repeats a status fetch at a fixed interval until the status
// is terminal.
package poll

import (
	"context"
	"errors"
	"time"
)

// ErrInvalidInterval is returned for a non-positive interval.
var ErrInvalidInterval = errors.New("poll interval must be positive")

// Status is anything that knows whether it is final.
type Status interface {
	Done() bool
}

// Poll calls fetch immediately and then every interval, passing each result
// to onUpdate, until a result reports Done, fetch fails or ctx is cancelled.
// It returns the last status.
func Poll[S Status](ctx context.Context, interval time.Duration, fetch func(context.Context) (S, error), onUpdate func(S)) (S, error) {
	var last S
	if interval <= 0 {
		return last, ErrInvalidInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := fetch(ctx)
		if err != nil {
			return last, err
		}
		last = st
		if onUpdate != nil {
			onUpdate(st)
		}
		if st.Done() {
			return st, nil
		}
		if err := ctx.Err(); err != nil {
			return last, err
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}
