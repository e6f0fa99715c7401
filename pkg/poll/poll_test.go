package poll

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"default is valid", DefaultPolicy(), false},
		{"zero initial delay", Policy{BackoffMultiplier: 2, MaxDelay: time.Second, MaxDuration: time.Second}, true},
		{"max delay below initial", Policy{InitialDelay: time.Second, BackoffMultiplier: 2, MaxDelay: time.Millisecond, MaxDuration: time.Second}, true},
		{"no stop bound", Policy{InitialDelay: time.Millisecond, BackoffMultiplier: 2, MaxDelay: time.Second}, true},
		{"multiplier below one", Policy{InitialDelay: time.Millisecond, BackoffMultiplier: 0.5, MaxDelay: time.Second, MaxAttempts: 3}, true},
		{"attempts only", Policy{InitialDelay: time.Millisecond, BackoffMultiplier: 1, MaxDelay: time.Millisecond, MaxAttempts: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAwaitImmediateSuccess(t *testing.T) {
	calls := 0
	res, err := Await(context.Background(), "already true", Func(func(ctx context.Context) (bool, error) {
		calls++
		return true, nil
	}), DefaultPolicy())

	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 1, calls)
}

func TestAwaitEventualSuccess(t *testing.T) {
	calls := 0
	policy := Policy{
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 2,
		MaxDelay:          5 * time.Millisecond,
		MaxAttempts:       20,
	}
	res, err := Await(context.Background(), "true on third attempt", Func(func(ctx context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	}), policy)

	require.NoError(t, err)
	assert.True(t, res.Satisfied)
	assert.Equal(t, 3, res.Attempts)
}

func TestAwaitBoundedByDuration(t *testing.T) {
	policy := Policy{
		InitialDelay:      5 * time.Millisecond,
		BackoffMultiplier: 2,
		MaxDelay:          20 * time.Millisecond,
		MaxDuration:       100 * time.Millisecond,
	}

	start := time.Now()
	res, err := Await(context.Background(), "never true", Func(func(ctx context.Context) (bool, error) {
		return false, nil
	}), policy)
	elapsed := time.Since(start)

	require.Error(t, err)
	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.False(t, res.Satisfied)
	// Bounded-wait property: never exceed MaxDuration by more than one
	// backoff step.
	assert.Less(t, elapsed, policy.MaxDuration+policy.MaxDelay)
}

func TestAwaitBoundedByAttempts(t *testing.T) {
	calls := 0
	policy := Policy{
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
		MaxDelay:          time.Millisecond,
		MaxAttempts:       4,
	}
	_, err := Await(context.Background(), "never true", Func(func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	}), policy)

	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestAwaitFirstBoundWins(t *testing.T) {
	calls := 0
	policy := Policy{
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
		MaxDelay:          time.Millisecond,
		MaxAttempts:       2,
		MaxDuration:       10 * time.Second,
	}
	_, err := Await(context.Background(), "never true", Func(func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	}), policy)

	require.Error(t, err)
	assert.Equal(t, 2, calls, "attempt bound should fire long before the duration bound")
}

func TestAwaitConditionErrorIsUnretryable(t *testing.T) {
	boom := errors.New("page crashed")
	calls := 0
	_, err := Await(context.Background(), "erroring condition", Func(func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	}), DefaultPolicy())

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls, "an erroring condition must not be retried")

	var te *TimeoutError
	assert.False(t, errors.As(err, &te), "condition errors must not masquerade as timeouts")
}

func TestAwaitObservesCancellationDuringSleep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{
		InitialDelay:      10 * time.Second, // a full sleep would stall the test
		BackoffMultiplier: 1,
		MaxDelay:          10 * time.Second,
		MaxDuration:       time.Minute,
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Await(ctx, "never true", Func(func(ctx context.Context) (bool, error) {
		return false, nil
	}), policy)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second, "cancellation must interrupt the backoff sleep")
}

func TestAwaitTimeoutCarriesDiagnostic(t *testing.T) {
	last := ""
	cond := WithDiagnostic(Func(func(ctx context.Context) (bool, error) {
		last = "status=Connecting"
		return false, nil
	}), func() string { return last })

	policy := Policy{
		InitialDelay:      time.Millisecond,
		BackoffMultiplier: 1,
		MaxDelay:          time.Millisecond,
		MaxAttempts:       2,
	}
	res, err := Await(context.Background(), "status is Connected", cond, policy)

	require.Error(t, err)
	assert.Equal(t, "status=Connecting", res.LastDiagnostic)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Contains(t, te.Error(), "status=Connecting")
	assert.Contains(t, te.Error(), "status is Connected")
}

func TestAwaitInvalidPolicy(t *testing.T) {
	_, err := Await(context.Background(), "anything", Func(func(ctx context.Context) (bool, error) {
		return true, nil
	}), Policy{})
	assert.Error(t, err)
}

func TestNextDelayCapped(t *testing.T) {
	p := Policy{InitialDelay: 100 * time.Millisecond, BackoffMultiplier: 2, MaxDelay: 300 * time.Millisecond, MaxAttempts: 10}
	d := p.InitialDelay
	seen := []time.Duration{}
	for i := 0; i < 4; i++ {
		d = p.nextDelay(d)
		seen = append(seen, d)
	}
	assert.Equal(t, []time.Duration{200 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}, seen, fmt.Sprintf("backoff must cap at MaxDelay, got %v", seen))
}
