package shopsheet

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Fixed sheet layout. One logical record per row below the header; the photo
// is an overlay anchored at the image column, the remaining columns are plain
// values.
const (
	SheetName = "Sheet1"
	HeaderRow = 1

	ColShopID    = 1
	ColRegion    = 2
	ColImage     = 3
	ColTimestamp = 4
)

// timestampColumnWidth fits "YYYY-MM-DD" plus padding.
const timestampColumnWidth = 20

var headerTitles = []string{"Shop_ID", "Region", "last_updated"}

var starterWidths = map[int]float64{
	ColShopID:    15,
	ColRegion:    20,
	ColImage:     30,
	ColTimestamp: timestampColumnWidth,
}

// Store owns the on-disk table: load-or-initialize, row append, cell values
// and styling, the embedded photo overlays, and the shared image-column
// width. One Store instance spans exactly one load/persist cycle.
type Store struct {
	file   *excelize.File
	path   string
	policy ColumnWidthPolicy
	logger *zap.Logger

	// maxImageWidth is the current image-column width. Seeded from the
	// persisted column at load, then maintained per the width policy.
	maxImageWidth float64
}

// OpenStore loads the backing file if it exists, otherwise initializes a
// fresh table with the header row and starter column widths and persists it
// immediately so the file exists for subsequent reads.
func OpenStore(opts ...Option) (*Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return openStore(o)
}

func openStore(o *Options) (*Store, error) {
	s := &Store{
		path:   o.path,
		policy: o.widthPolicy,
		logger: o.logger,
	}

	switch _, err := os.Stat(o.path); {
	case err == nil:
		f, err := excelize.OpenFile(o.path)
		if err != nil {
			return nil, &IOError{Path: o.path, Op: "open", Err: err}
		}
		s.file = f
		width, err := f.GetColWidth(SheetName, mustColumnName(ColImage))
		if err != nil || width <= 0 {
			width = starterWidths[ColImage]
		}
		s.maxImageWidth = width
		return s, nil
	case !errors.Is(err, fs.ErrNotExist):
		// A stat failure that is not "missing file" must not be masked by
		// re-initializing the table over whatever is there.
		return nil, &IOError{Path: o.path, Op: "open", Err: err}
	}

	s.file = excelize.NewFile()
	for i, title := range headerTitles {
		cell := mustCellName(i+1, HeaderRow)
		if err := s.file.SetCellValue(SheetName, cell, title); err != nil {
			return nil, fmt.Errorf("write header %q: %w", title, err)
		}
	}
	for col, width := range starterWidths {
		if err := s.SetColumnWidth(col, width); err != nil {
			return nil, err
		}
	}
	s.maxImageWidth = starterWidths[ColImage]
	if err := s.Persist(); err != nil {
		return nil, err
	}
	s.logger.Info("initialized backing file", zap.String("path", o.path))
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// MaxImageWidth returns the current image-column width.
func (s *Store) MaxImageWidth() float64 { return s.maxImageWidth }

// Records reads all persisted rows below the header into Record values,
// skipping rows whose composite key is empty. The photo overlays are not
// part of the result.
func (s *Store) Records() ([]Record, error) {
	rows, err := s.file.GetRows(SheetName)
	if err != nil {
		return nil, &IOError{Path: s.path, Op: "open", Err: err}
	}

	var records []Record
	for i, row := range rows {
		if i < HeaderRow {
			continue
		}
		rec := Record{
			Row:         i + 1,
			ShopID:      cellAt(row, ColShopID),
			Region:      cellAt(row, ColRegion),
			LastUpdated: cellAt(row, ColTimestamp),
		}
		if !rec.Key().Valid() {
			s.logger.Warn("skipping row with incomplete key",
				zap.Int("row", i+1), zap.String("path", s.path))
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func cellAt(row []string, col int) string {
	if col-1 < len(row) {
		return row[col-1]
	}
	return ""
}

// AppendRow appends a fresh row with the key columns populated and the
// photo/timestamp columns left empty, returning the new row's 1-based index.
func (s *Store) AppendRow(key Key) (int, error) {
	rows, err := s.file.GetRows(SheetName)
	if err != nil {
		return 0, &IOError{Path: s.path, Op: "open", Err: err}
	}
	row := len(rows) + 1

	if err := s.file.SetCellValue(SheetName, mustCellName(ColShopID, row), key.ShopID); err != nil {
		return 0, fmt.Errorf("write shop id at row %d: %w", row, err)
	}
	if err := s.file.SetCellValue(SheetName, mustCellName(ColRegion, row), key.Region); err != nil {
		return 0, fmt.Errorf("write region at row %d: %w", row, err)
	}
	return row, nil
}

// WriteImageAt embeds the staged photo anchored at the image column of the
// given row. Any picture already anchored there is removed first, so
// overwriting a row never accumulates orphaned overlays.
func (s *Store) WriteImageAt(row int, img *StagedImage) error {
	cell := mustCellName(ColImage, row)

	// DeletePicture is a no-op error when nothing is anchored at the cell.
	if err := s.file.DeletePicture(SheetName, cell); err != nil {
		s.logger.Debug("no prior picture to delete",
			zap.String("cell", cell), zap.Error(err))
	}

	data, err := img.Bytes()
	if err != nil {
		return err
	}
	if err := s.file.AddPictureFromBytes(SheetName, cell, &excelize.Picture{
		Extension: ".jpg",
		File:      data,
	}); err != nil {
		return fmt.Errorf("embed image at %s: %w", cell, err)
	}
	return nil
}

// FitImageColumn adjusts the shared image-column width for a photo of the
// given pixel width, per the configured policy, and returns the width now in
// effect.
func (s *Store) FitImageColumn(px int) (float64, error) {
	required := PixelsToColumnWidth(px)

	switch s.policy {
	case WidthMatchLatest:
		s.maxImageWidth = required
		if err := s.SetColumnWidth(ColImage, required); err != nil {
			return 0, err
		}
	default: // WidthGrow
		if required > s.maxImageWidth {
			s.maxImageWidth = required
			if err := s.SetColumnWidth(ColImage, required); err != nil {
				return 0, err
			}
		}
	}
	return s.maxImageWidth, nil
}

// SetColumnWidth sets a column's width, effective on the next Persist.
func (s *Store) SetColumnWidth(col int, width float64) error {
	name := mustColumnName(col)
	if err := s.file.SetColWidth(SheetName, name, name, width); err != nil {
		return fmt.Errorf("set width of column %s: %w", name, err)
	}
	return nil
}

// SetRowHeight sets one row's height, independent of all other rows.
func (s *Store) SetRowHeight(row int, height float64) error {
	if err := s.file.SetRowHeight(SheetName, row, height); err != nil {
		return fmt.Errorf("set height of row %d: %w", row, err)
	}
	return nil
}

// SetCellValue writes a plain value into a cell.
func (s *Store) SetCellValue(row, col int, value any) error {
	cell := mustCellName(col, row)
	if err := s.file.SetCellValue(SheetName, cell, value); err != nil {
		return fmt.Errorf("write cell %s: %w", cell, err)
	}
	return nil
}

// AlignCell applies vertical alignment and optional text wrapping to a cell.
func (s *Store) AlignCell(row, col int, vertical string, wrap bool) error {
	styleID, err := s.file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: vertical, WrapText: wrap},
	})
	if err != nil {
		return fmt.Errorf("build alignment style: %w", err)
	}
	cell := mustCellName(col, row)
	if err := s.file.SetCellStyle(SheetName, cell, cell, styleID); err != nil {
		return fmt.Errorf("style cell %s: %w", cell, err)
	}
	return nil
}

// Persist writes the whole in-memory table back to the backing file as a
// full overwrite. A crash mid-persist can leave a truncated file; that risk
// is documented, not masked.
func (s *Store) Persist() error {
	if err := s.file.SaveAs(s.path); err != nil {
		return &IOError{Path: s.path, Op: "save", Err: err}
	}
	return nil
}

// Close releases the underlying workbook without persisting.
func (s *Store) Close() error {
	return s.file.Close()
}

func mustCellName(col, row int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		panic(fmt.Sprintf("cell name for col %d row %d: %v", col, row, err))
	}
	return cell
}

func mustColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		panic(fmt.Sprintf("column name for %d: %v", col, err))
	}
	return name
}
