package semantic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingMatcher records how many times the inner matcher was hit.
type countingMatcher struct {
	calls int
	err   error
}

func (c *countingMatcher) Similarity(_ context.Context, a, b string) (float64, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	if normalizeKey(a) == normalizeKey(b) {
		return 1.0, nil
	}
	return 0.5, nil
}

func TestCachedMatcher_MemoizesPairs(t *testing.T) {
	inner := &countingMatcher{}
	m := NewCachedMatcher(inner, 10)

	score, err := m.Similarity(context.Background(), "водій", "шофер")
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)

	_, err = m.Similarity(context.Background(), "водій", "шофер")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "second lookup must come from the cache")
}

func TestCachedMatcher_SymmetricKey(t *testing.T) {
	inner := &countingMatcher{}
	m := NewCachedMatcher(inner, 10)

	_, err := m.Similarity(context.Background(), "водій", "шофер")
	require.NoError(t, err)
	_, err = m.Similarity(context.Background(), "шофер", "водій")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "argument order must not matter")
}

func TestCachedMatcher_EvictsOldest(t *testing.T) {
	inner := &countingMatcher{}
	m := NewCachedMatcher(inner, 1).(*CachedMatcher)

	_, _ = m.Similarity(context.Background(), "a", "b")
	_, _ = m.Similarity(context.Background(), "c", "d")
	assert.Equal(t, 1, m.Len())

	_, _ = m.Similarity(context.Background(), "a", "b")
	assert.Equal(t, 3, inner.calls, "evicted pair must be recomputed")
}

func TestCachedMatcher_ErrorsNotCached(t *testing.T) {
	inner := &countingMatcher{err: errors.New("endpoint down")}
	m := NewCachedMatcher(inner, 10)

	_, err := m.Similarity(context.Background(), "a", "b")
	require.Error(t, err)

	inner.err = nil
	score, err := m.Similarity(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, 0.5, score)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedMatcher_DisabledCapacity(t *testing.T) {
	inner := &countingMatcher{}
	m := NewCachedMatcher(inner, 0)
	assert.Same(t, inner, m, "non-positive capacity returns the inner matcher")
}

func TestExactMatcher(t *testing.T) {
	m := ExactMatcher{}
	score, err := m.Similarity(context.Background(), "Водій", "водій  ")
	require.NoError(t, err)
	assert.Equal(t, 1.0, score)

	score, err = m.Similarity(context.Background(), "водій", "шофер")
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}
