package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, max int) (*FileLimiter, *time.Time) {
	t.Helper()
	l := New(t.TempDir(), max, 12)
	clock := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
	l.now = func() time.Time { return clock }
	return l, &clock
}

func TestWindowAnchoredAtMidnight(t *testing.T) {
	l, _ := newTestLimiter(t, 10)

	morning := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), l.windowStart(morning))

	evening := time.Date(2026, 3, 10, 23, 59, 0, 0, time.Local)
	require.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local), l.windowStart(evening))
}

func TestLimitEnforced(t *testing.T) {
	l, _ := newTestLimiter(t, 2)

	st, err := l.Check()
	require.NoError(t, err)
	require.True(t, st.Allowed)
	require.Equal(t, 2, st.Remaining)

	require.NoError(t, l.Record("ties"))
	require.NoError(t, l.Record("scarves"))

	st, err = l.Check()
	require.NoError(t, err)
	require.False(t, st.Allowed)
	require.Zero(t, st.Remaining)
	require.Contains(t, st.Message, "usage limit reached")
}

func TestWindowRollsOver(t *testing.T) {
	l, clock := newTestLimiter(t, 1)

	require.NoError(t, l.Record("ties"))
	st, err := l.Check()
	require.NoError(t, err)
	require.False(t, st.Allowed)

	// Cross into the afternoon window: budget comes back, the morning
	// window lands in history.
	*clock = time.Date(2026, 3, 10, 12, 1, 0, 0, time.Local)
	st, err = l.Check()
	require.NoError(t, err)
	require.True(t, st.Allowed)
	require.Equal(t, 1, st.Remaining)

	require.NoError(t, l.Record("scarves"))
	stats, err := l.Stats()
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalPosts)
	require.Equal(t, 2, stats.WindowsSeen)
}

func TestResetClearsCurrentWindow(t *testing.T) {
	l, _ := newTestLimiter(t, 1)

	require.NoError(t, l.Record("ties"))
	require.NoError(t, l.Reset())

	st, err := l.Check()
	require.NoError(t, err)
	require.True(t, st.Allowed)

	stats, err := l.Stats()
	require.NoError(t, err)
	require.NotNil(t, stats.AdminResetAt)
}

func TestStatePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

	a := New(dir, 5, 12)
	a.now = func() time.Time { return clock }
	require.NoError(t, a.Record("ties"))

	b := New(dir, 5, 12)
	b.now = func() time.Time { return clock }
	st, err := b.Check()
	require.NoError(t, err)
	require.Equal(t, 1, st.Used)
	require.Equal(t, 4, st.Remaining)
}
