// Package pagination turns page numbers into storage windows and
// pages into previous/next navigation controls.
package pagination

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/PersifalJun/CRM-Telegram-Bot/config"
)

// SortKey is the only supported ordering: ascending by id
const SortKey = "id"

const (
	fallbackSize    = 20
	fallbackMaxSize = 100

	previousLabel = "⬅️ Previous"
	nextLabel     = "Next ➡️"
)

// Settings holds immutable page defaults
type Settings struct {
	DefaultPage int
	DefaultSize int
	MaxSize     int
}

// NewSettings sanitizes page defaults
func NewSettings(defaultPage, defaultSize, maxSize int) Settings {
	if defaultPage < 0 {
		defaultPage = 0
	}
	if defaultSize <= 0 {
		defaultSize = fallbackSize
	}
	if maxSize <= 0 {
		maxSize = fallbackMaxSize
	}

	return Settings{
		DefaultPage: defaultPage,
		DefaultSize: defaultSize,
		MaxSize:     maxSize,
	}
}

// NewSettingsFromConfig is the fx provider for Settings
func NewSettingsFromConfig(cfg *config.PaginationConfig) Settings {
	return NewSettings(cfg.DefaultPage, cfg.DefaultSize, cfg.MaxSize)
}

// Size is the effective page size
func (s Settings) Size() int {
	return min(s.DefaultSize, s.MaxSize)
}

// Window returns the window for page number. Negative numbers are kept so
// that Fetch can answer them with an empty page.
func (s Settings) Window(number int) Window {
	return Window{
		Number:  number,
		Size:    s.Size(),
		SortKey: SortKey,
	}
}

// First returns the window for the default page
func (s Settings) First() Window {
	return s.Window(s.DefaultPage)
}

// Window is a single page request
type Window struct {
	Number  int
	Size    int
	SortKey string
}

// Offset returns the number of rows to skip
func (w Window) Offset() int {
	return w.Number * w.Size
}

// Valid reports whether the window can be queried. Windows whose offset
// does not fit in an int lie past any stored page.
func (w Window) Valid() bool {
	return w.Number >= 0 && w.Size > 0 && w.Number <= math.MaxInt/w.Size
}

// Page is one window of results
type Page[T any] struct {
	Items       []T
	Number      int
	Size        int
	Total       int64
	HasPrevious bool
	HasNext     bool
}

// Empty reports whether the page holds no items
func (p Page[T]) Empty() bool {
	return len(p.Items) == 0
}

// Build computes navigation flags for items fetched through w
func Build[T any](items []T, total int64, w Window) Page[T] {
	if !w.Valid() {
		return Page[T]{Number: w.Number, Size: w.Size, Total: total}
	}

	return Page[T]{
		Items:       items,
		Number:      w.Number,
		Size:        w.Size,
		Total:       total,
		HasPrevious: w.Number > 0 && total > 0,
		HasNext:     int64(w.Number+1)*int64(w.Size) < total,
	}
}

// Source fetches one window and the total item count
type Source[T any] func(ctx context.Context, w Window) ([]T, int64, error)

// Fetch queries src for w. Invalid windows return an empty page without querying.
func Fetch[T any](ctx context.Context, w Window, src Source[T]) (Page[T], error) {
	if !w.Valid() {
		return Page[T]{Number: w.Number, Size: w.Size}, nil
	}

	items, total, err := src(ctx, w)
	if err != nil {
		return Page[T]{}, err
	}

	return Build(items, total, w), nil
}

// Control is a navigation button: a label and its callback token
type Control struct {
	Label string
	Token string
}

// Controls returns previous/next controls for p, or nil when there is nowhere to go
func Controls[T any](namespace string, p Page[T]) []Control {
	var controls []Control

	if p.HasPrevious {
		controls = append(controls, Control{Label: previousLabel, Token: Token(namespace, p.Number-1)})
	}
	if p.HasNext {
		controls = append(controls, Control{Label: nextLabel, Token: Token(namespace, p.Number+1)})
	}

	return controls
}

// Token builds the "<namespace>:<n>" callback token
func Token(namespace string, number int) string {
	return namespace + ":" + strconv.Itoa(number)
}

// ParseToken splits a "<namespace>:<n>" callback token
func ParseToken(token string) (namespace string, number int, ok bool) {
	namespace, raw, found := strings.Cut(token, ":")
	if !found || namespace == "" {
		return "", 0, false
	}

	number, err := strconv.Atoi(raw)
	if err != nil {
		return "", 0, false
	}

	return namespace, number, true
}
