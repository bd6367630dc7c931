// Package timeout races an operation against a deadline.
//
// Guard stops waiting when the deadline passes and cancels the context handed
// to the operation. An operation that ignores its context keeps running in the
// background, so callers must read a TimeoutError as "outcome unknown".
package timeout

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

type TimeoutError struct {
	Message string
	After   time.Duration
}

func (e *TimeoutError) Error() string { return e.Message }

func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// PanicError reports a panic raised by a guarded operation.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("operation panicked: %v", e.Value) }

type result[T any] struct {
	val T
	err error
}

// Guard runs op and returns its result if it finishes strictly before d
// elapses. Otherwise it returns a *TimeoutError carrying message. If the
// parent context ends first, its error is returned instead. A panic in op is
// returned as a *PanicError.
func Guard[T any](ctx context.Context, d time.Duration, message string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if d <= 0 {
		return zero, errors.New("timeout: duration must be positive")
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result[T]{err: &PanicError{Value: p, Stack: debug.Stack()}}
			}
		}()
		v, err := op(opCtx)
		done <- result[T]{val: v, err: err}
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case r := <-done:
		return r.val, r.err
	case <-timer.C:
		return zero, &TimeoutError{Message: message, After: d}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Run is Guard for operations without a result value.
func Run(ctx context.Context, d time.Duration, message string, op func(ctx context.Context) error) error {
	_, err := Guard(ctx, d, message, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
