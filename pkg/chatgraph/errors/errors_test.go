package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "transient", CategoryTransient.String())
	assert.Equal(t, "permanent", CategoryPermanent.String())
	assert.Equal(t, "malformed", CategoryMalformed.String())
	assert.Equal(t, "human_required", CategoryHumanRequired.String())
	assert.Equal(t, "unknown", Category(99).String())
}

func TestCategorize_HTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Category
	}{
		{429, CategoryTransient},
		{503, CategoryTransient},
		{504, CategoryTransient},
		{500, CategoryTransient},
		{502, CategoryTransient},
		{401, CategoryPermanent},
		{403, CategoryPermanent},
		{400, CategoryMalformed},
		{404, CategoryPermanent},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := &HTTPError{StatusCode: tt.status, Message: "x", Endpoint: "/scan"}
			assert.Equal(t, tt.want, Categorize(err))
		})
	}
}

func TestCategorize_TypedErrors(t *testing.T) {
	assert.Equal(t, CategoryMalformed, Categorize(&JSONParseError{Input: "{", Message: "unexpected end of input"}))
	assert.Equal(t, CategoryMalformed, Categorize(&ValidationError{Field: "intent", Message: "unknown value"}))
	assert.Equal(t, CategoryTransient, Categorize(&TimeoutError{Operation: "complete", Duration: "30s"}))
	assert.Equal(t, CategoryHumanRequired, Categorize(&HumanInterventionError{Question: "which asset?"}))
	assert.Equal(t, CategoryPermanent, Categorize(errors.New("something else")))
	assert.Equal(t, CategoryPermanent, Categorize(nil))
}

func TestCategorize_AlreadyCategorized(t *testing.T) {
	inner := Transient(errors.New("flaky"), "calling gateway")
	wrapped := fmt.Errorf("turn failed: %w", inner)

	assert.Equal(t, CategoryTransient, Categorize(wrapped))
	assert.True(t, IsRetryable(wrapped))
	assert.False(t, IsMalformed(wrapped))
}

func TestCategorizedError_Message(t *testing.T) {
	err := &CategorizedError{
		Err:      errors.New("invalid json"),
		Category: CategoryMalformed,
		Retries:  2,
		Context:  "decoding decision",
	}

	assert.Equal(t, "decoding decision: invalid json (category: malformed, attempts: 2)", err.Error())
}

func TestHelpers(t *testing.T) {
	assert.True(t, IsMalformed(Malformed(errors.New("x"), "")))
	assert.True(t, NeedsHuman(HumanRequired(errors.New("x"), "")))
	assert.False(t, IsRetryable(Permanent(errors.New("x"), "")))
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result := WithRetry(NoRetry, func() (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesTransient(t *testing.T) {
	cfg := NewRetryConfig(
		WithMaxAttempts(3),
		WithInitialBackoff(time.Millisecond),
		WithJitter(0),
	)

	calls := 0
	result := WithRetry(cfg, func() (string, error) {
		calls++
		if calls < 3 {
			return "", &HTTPError{StatusCode: 429, Message: "rate limited"}
		}
		return "ok", nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "ok", result.Value)
	assert.Equal(t, 3, result.Attempts)
}

func TestWithRetry_PermanentFailsFast(t *testing.T) {
	cfg := NewRetryConfig(WithMaxAttempts(5), WithInitialBackoff(time.Millisecond))

	calls := 0
	result := WithRetry(cfg, func() (string, error) {
		calls++
		return "", &HTTPError{StatusCode: 401, Message: "bad key"}
	})

	require.Error(t, result.Err)
	assert.Equal(t, 1, calls)

	var catErr *CategorizedError
	require.ErrorAs(t, result.Err, &catErr)
	assert.Equal(t, CategoryPermanent, catErr.Category)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	cfg := NewRetryConfig(
		WithMaxAttempts(3),
		WithInitialBackoff(time.Millisecond),
		WithMaxBackoff(2*time.Millisecond),
	)

	calls := 0
	result := WithRetry(cfg, func() (string, error) {
		calls++
		return "", &TimeoutError{Operation: "complete", Duration: "30s"}
	})

	require.Error(t, result.Err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, result.Attempts)

	var catErr *CategorizedError
	require.ErrorAs(t, result.Err, &catErr)
	assert.Equal(t, "max retries exceeded", catErr.Context)
}

func TestWithRetry_CustomRetryableFunc(t *testing.T) {
	marker := errors.New("try again")
	cfg := NewRetryConfig(
		WithMaxAttempts(2),
		WithInitialBackoff(time.Millisecond),
		WithRetryableFunc(func(err error) bool { return errors.Is(err, marker) }),
	)

	calls := 0
	result := WithRetry(cfg, func() (int, error) {
		calls++
		if calls == 1 {
			return 0, marker
		}
		return 42, nil
	})

	require.NoError(t, result.Err)
	assert.Equal(t, 42, result.Value)
	assert.Equal(t, 2, calls)
}

func TestWithRetryContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := WithRetryContext(ctx, DefaultRetry, func(_ context.Context) (string, error) {
		t.Fatal("should not be called")
		return "", nil
	})

	require.Error(t, result.Err)
	assert.Equal(t, 0, result.Attempts)
}
