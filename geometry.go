package shopsheet

// Empirical ratios between pixels and the xlsx sizing units for the default
// font. A column-width unit renders at about 7 pixels, a row-height point at
// about 1.33 pixels.
const (
	pixelsPerWidthUnit  = 7.0
	pixelsPerHeightUnit = 1.33

	// MinColumnWidth keeps narrow images from collapsing the column below a
	// usable minimum.
	MinColumnWidth = 10.0

	// MinRowHeight is the minimum comfortable single-line row.
	MinRowHeight = 15.0
)

// PixelsToColumnWidth converts an image pixel width to the column width that
// exactly fits it, floored at MinColumnWidth.
func PixelsToColumnWidth(px int) float64 {
	w := float64(px) / pixelsPerWidthUnit
	if w < MinColumnWidth {
		return MinColumnWidth
	}
	return w
}

// PixelsToRowHeight converts an image pixel height to the row height that
// exactly fits it, floored at MinRowHeight.
func PixelsToRowHeight(px int) float64 {
	h := float64(px) / pixelsPerHeightUnit
	if h < MinRowHeight {
		return MinRowHeight
	}
	return h
}
