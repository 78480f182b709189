package shopsheet

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

// TimestampFormat renders date and time on separate lines; the timestamp
// cell wraps so both lines show.
const TimestampFormat = "2006-01-02\n15:04:05"

// Result is the outcome of one upsert. Failures carry a human-readable
// Message; nothing escapes the engine as a panic or raw error.
type Result struct {
	OK          bool
	Row         int
	Width       int
	Height      int
	ColumnWidth float64
	Message     string
}

// Engine orchestrates one full upsert: normalize the photo, locate or append
// the row, compute geometry, stage cells and overlay, persist. It opens a
// fresh Store per call, so a failed persist never leaves stale in-memory
// state to be reused on the next attempt.
type Engine struct {
	opts *Options
}

// NewEngine creates an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Engine{opts: o}
}

// Path returns the backing file path the engine writes to.
func (e *Engine) Path() string { return e.opts.path }

// Upsert writes one (key, photo) pair: the matching row is updated in place,
// or a new row is appended when the key is unseen. The composite key is
// never duplicated.
func (e *Engine) Upsert(shopID, region string, photo io.Reader) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.opts.logger.Error("upsert panicked", zap.Any("panic", r))
			result = Result{Message: fmt.Sprintf("unexpected failure: %v", r)}
		}
	}()

	key := Key{ShopID: shopID, Region: region}
	if !key.Valid() {
		return Result{Message: "shop id and region are required"}
	}

	// Normalize before touching the sheet, so bad bytes never mutate a row.
	staged, err := NormalizeImage(photo)
	if err != nil {
		e.opts.logger.Warn("image rejected", zap.String("key", key.String()), zap.Error(err))
		return Result{Message: err.Error()}
	}
	defer staged.Release()

	res, err := e.run(key, staged)
	if err != nil {
		e.opts.logger.Error("upsert failed", zap.String("key", key.String()), zap.Error(err))
		return Result{Message: err.Error()}
	}

	e.opts.logger.Info("photo saved",
		zap.String("key", key.String()),
		zap.Int("row", res.Row),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height),
		zap.Float64("columnWidth", res.ColumnWidth))
	return res
}

func (e *Engine) run(key Key, staged *StagedImage) (Result, error) {
	store, err := openStore(e.opts)
	if err != nil {
		return Result{}, err
	}
	defer store.Close()

	records, err := store.Records()
	if err != nil {
		return Result{}, err
	}

	row, found := FindRow(records, key)
	if !found {
		row, err = store.AppendRow(key)
		if err != nil {
			return Result{}, err
		}
	}

	colWidth, err := store.FitImageColumn(staged.Width)
	if err != nil {
		return Result{}, err
	}
	if err := store.SetRowHeight(row, PixelsToRowHeight(staged.Height)); err != nil {
		return Result{}, err
	}

	if err := store.WriteImageAt(row, staged); err != nil {
		return Result{}, err
	}

	if err := store.SetCellValue(row, ColTimestamp, e.opts.now().Format(TimestampFormat)); err != nil {
		return Result{}, err
	}
	if err := store.AlignCell(row, ColTimestamp, "top", true); err != nil {
		return Result{}, err
	}
	if err := store.SetColumnWidth(ColTimestamp, timestampColumnWidth); err != nil {
		return Result{}, err
	}
	for _, col := range []int{ColShopID, ColRegion} {
		if err := store.AlignCell(row, col, "center", false); err != nil {
			return Result{}, err
		}
	}

	if err := store.Persist(); err != nil {
		return Result{}, err
	}

	return Result{
		OK:          true,
		Row:         row,
		Width:       staged.Width,
		Height:      staged.Height,
		ColumnWidth: colWidth,
	}, nil
}

// ListRecords reads all persisted records in storage order, for picker
// population and the data view.
func (e *Engine) ListRecords() ([]Record, error) {
	store, err := openStore(e.opts)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Records()
}
