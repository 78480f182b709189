package shopsheet

import (
	"time"

	"go.uber.org/zap"
)

// ColumnWidthPolicy controls how the shared image-column width reacts to new
// photos. The two observed behaviors are mutually incompatible, so the choice
// is an explicit configuration rather than an inference.
type ColumnWidthPolicy int

const (
	// WidthGrow only ever widens the image column, to fit the widest photo
	// inserted so far. This is the default.
	WidthGrow ColumnWidthPolicy = iota

	// WidthMatchLatest resets the image column to exactly fit the most
	// recently written photo. Later writes can shrink the column, leaving
	// earlier photos overflowing their cell.
	WidthMatchLatest
)

func (p ColumnWidthPolicy) String() string {
	if p == WidthMatchLatest {
		return "matchLatest"
	}
	return "grow"
}

// DefaultPath is the backing file used when no path option is given.
const DefaultPath = "shops_data.xlsx"

// Options holds configuration shared by the Store and the Engine.
type Options struct {
	path        string
	widthPolicy ColumnWidthPolicy
	now         func() time.Time
	logger      *zap.Logger
}

func defaultOptions() *Options {
	return &Options{
		path:        DefaultPath,
		widthPolicy: WidthGrow,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
}

// Option configures a Store or Engine.
type Option func(*Options)

// WithPath sets the backing xlsx file path.
func WithPath(path string) Option {
	return func(o *Options) { o.path = path }
}

// WithColumnWidthPolicy selects how the image column width is maintained.
func WithColumnWidthPolicy(p ColumnWidthPolicy) Option {
	return func(o *Options) { o.widthPolicy = p }
}

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.now = now }
}

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}
