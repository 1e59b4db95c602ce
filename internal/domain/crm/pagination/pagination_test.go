package pagination

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource serves windows from a slice of ids 1..n and counts calls
type sliceSource struct {
	items []int
	calls int
}

func newSliceSource(n int) *sliceSource {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return &sliceSource{items: items}
}

func (s *sliceSource) fetch(_ context.Context, w Window) ([]int, int64, error) {
	s.calls++
	start := w.Offset()
	if start >= len(s.items) {
		return nil, int64(len(s.items)), nil
	}
	end := min(start+w.Size, len(s.items))
	return s.items[start:end], int64(len(s.items)), nil
}

func TestNewSettings_Sanitizes(t *testing.T) {
	s := NewSettings(-3, 0, -1)
	assert.Equal(t, Settings{DefaultPage: 0, DefaultSize: 20, MaxSize: 100}, s)
}

func TestSettings_SizeClampedToMax(t *testing.T) {
	s := NewSettings(0, 500, 100)
	assert.Equal(t, 100, s.Window(0).Size)
	assert.Equal(t, SortKey, s.Window(0).SortKey)
}

func TestFetch_LastPartialPage(t *testing.T) {
	src := newSliceSource(45)
	s := NewSettings(0, 20, 100)

	page, err := Fetch(context.Background(), s.Window(2), src.fetch)
	require.NoError(t, err)

	assert.Equal(t, []int{41, 42, 43, 44, 45}, page.Items)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	assert.Equal(t, int64(45), page.Total)
}

func TestFetch_FirstPage(t *testing.T) {
	src := newSliceSource(45)

	page, err := Fetch(context.Background(), NewSettings(0, 20, 100).Window(0), src.fetch)
	require.NoError(t, err)

	assert.Len(t, page.Items, 20)
	assert.False(t, page.HasPrevious)
	assert.True(t, page.HasNext)
}

func TestFetch_NegativePageSkipsQuery(t *testing.T) {
	src := newSliceSource(45)

	page, err := Fetch(context.Background(), NewSettings(0, 20, 100).Window(-1), src.fetch)
	require.NoError(t, err)

	assert.True(t, page.Empty())
	assert.False(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	assert.Equal(t, 0, src.calls)
}

func TestFetch_BeyondLastPage(t *testing.T) {
	src := newSliceSource(45)

	page, err := Fetch(context.Background(), NewSettings(0, 20, 100).Window(7), src.fetch)
	require.NoError(t, err)

	assert.True(t, page.Empty())
	assert.False(t, page.HasNext)
}

func TestFetch_OverflowingPageIsEmpty(t *testing.T) {
	src := newSliceSource(45)
	settings := NewSettings(0, 20, 100)

	_, number, ok := ParseToken("leads_page:461168601842738791")
	require.True(t, ok)

	for _, n := range []int{number, math.MaxInt/20 + 1, math.MaxInt} {
		w := settings.Window(n)
		assert.False(t, w.Valid(), n)

		page, err := Fetch(context.Background(), w, src.fetch)
		require.NoError(t, err)
		assert.True(t, page.Empty())
		assert.Nil(t, Controls("leads_page", page))
	}
	assert.Equal(t, 0, src.calls)

	last := settings.Window(math.MaxInt / 20)
	assert.True(t, last.Valid())
	assert.GreaterOrEqual(t, last.Offset(), 0)
}

func TestFetch_SourceError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), NewSettings(0, 20, 100).Window(0),
		func(context.Context, Window) ([]int, int64, error) { return nil, 0, boom })
	require.ErrorIs(t, err, boom)
}

func TestControls(t *testing.T) {
	w := NewSettings(0, 20, 100).Window(1)

	middle := Build(make([]int, 20), 45, w)
	assert.Equal(t, []Control{
		{Label: "⬅️ Previous", Token: "leads_page:0"},
		{Label: "Next ➡️", Token: "leads_page:2"},
	}, Controls("leads_page", middle))

	single := Build(make([]int, 3), 3, NewSettings(0, 20, 100).Window(0))
	assert.Nil(t, Controls("users_page", single))
}

func TestParseToken(t *testing.T) {
	ns, n, ok := ParseToken("users_page:3")
	require.True(t, ok)
	assert.Equal(t, "users_page", ns)
	assert.Equal(t, 3, n)

	ns, n, ok = ParseToken("leads_page:-1")
	require.True(t, ok)
	assert.Equal(t, "leads_page", ns)
	assert.Equal(t, -1, n)

	for _, bad := range []string{"leads_page", "leads_page:x", ":2", ""} {
		_, _, ok := ParseToken(bad)
		assert.False(t, ok, bad)
	}
}
