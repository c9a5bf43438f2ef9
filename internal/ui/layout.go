package ui

import (
	"github.com/mattn/go-runewidth"

	"github.com/oakwood-commons/tbx/internal/table"
	"github.com/oakwood-commons/tbx/internal/workspace"
)

// LayoutManager computes what slice of the view fits in the window. It is
// pure: the same view, cursor, scroll, and dimensions always produce the
// same frame, which keeps rendering testable without a terminal.
type LayoutManager struct {
	width  int
	height int
	cfg    GridConfig
}

// GridConfig caps column width sampling. Widths are measured over at most
// SampleRows rows so huge files stay responsive.
type GridConfig struct {
	MinColWidth int
	MaxColWidth int
	SampleRows  int
}

// DefaultGridConfig mirrors the embedded configuration defaults.
func DefaultGridConfig() GridConfig {
	return GridConfig{MinColWidth: 4, MaxColWidth: 32, SampleRows: 200}
}

// Fixed chrome heights, in lines.
const (
	TabBarLineCount    = 1
	HeaderLineCount    = 1
	SeparatorLineCount = 1
	StatusLineCount    = 1
	PromptLineCount    = 1
	MinBodyHeight      = 1
	ColumnGapWidth     = 2 // spaces between columns
	RowNumberGapWidth  = 1
)

// ComponentHeights is the vertical budget split across the chrome and the
// table body.
type ComponentHeights struct {
	TabBarHeight int
	HeaderHeight int
	BodyHeight   int
	StatusHeight int
	PromptHeight int
}

// FrameCol is one visible column with its resolved display width.
type FrameCol struct {
	Index int
	Width int
}

// Frame is the visible window onto a view: which rows and columns show, and
// how wide each column renders.
type Frame struct {
	Cols        []FrameCol
	RowTop      int // first visible row
	RowCount    int // number of visible rows
	RowNumWidth int // width of the row-number gutter
}

// NewLayoutManager creates a layout manager for the given window size.
func NewLayoutManager(width, height int, cfg GridConfig) *LayoutManager {
	return &LayoutManager{width: width, height: height, cfg: cfg}
}

// SetDimensions updates the window size.
func (lm *LayoutManager) SetDimensions(width, height int) {
	lm.width = width
	lm.height = height
}

// CalculateHeights splits the window height across the chrome and body.
// The body absorbs whatever remains and never goes below zero.
func (lm *LayoutManager) CalculateHeights() ComponentHeights {
	h := ComponentHeights{
		TabBarHeight: TabBarLineCount,
		HeaderHeight: HeaderLineCount + SeparatorLineCount,
		StatusHeight: StatusLineCount,
		PromptHeight: PromptLineCount,
	}
	body := lm.height - h.TabBarHeight - h.HeaderHeight - h.StatusHeight - h.PromptHeight
	if body < 0 {
		body = 0
	}
	h.BodyHeight = body
	return h
}

// Layout computes the frame for a view, scrolling the viewport the minimal
// amount needed to keep the cursor visible. The possibly adjusted scroll is
// returned so the caller can persist it.
func (lm *LayoutManager) Layout(view *table.Table, cursor workspace.Cursor, scroll workspace.Scroll) (Frame, workspace.Scroll) {
	heights := lm.CalculateHeights()
	bodyRows := heights.BodyHeight
	if bodyRows < MinBodyHeight {
		bodyRows = MinBodyHeight
	}

	// Vertical: clamp top, then pull the cursor row into the window.
	top := scroll.Top
	if max := view.NumRows() - bodyRows; top > max {
		top = max
	}
	if top < 0 {
		top = 0
	}
	if cursor.Row < top {
		top = cursor.Row
	}
	if cursor.Row >= top+bodyRows {
		top = cursor.Row - bodyRows + 1
	}

	rowCount := view.NumRows() - top
	if rowCount > bodyRows {
		rowCount = bodyRows
	}
	if rowCount < 0 {
		rowCount = 0
	}

	widths := lm.columnWidths(view)
	gutter := rowNumWidth(view.NumRows())

	// Horizontal: slide the first visible column until the cursor column
	// fits in the remaining width.
	left := scroll.Left
	if left > cursor.Col {
		left = cursor.Col
	}
	if left < 0 {
		left = 0
	}
	avail := lm.width - gutter - RowNumberGapWidth
	for left < cursor.Col && spanWidth(widths, left, cursor.Col) > avail {
		left++
	}

	frame := Frame{RowTop: top, RowCount: rowCount, RowNumWidth: gutter}
	used := 0
	for c := left; c < len(widths); c++ {
		w := widths[c]
		if used > 0 {
			w += ColumnGapWidth
		}
		if used+w > avail && len(frame.Cols) > 0 {
			break
		}
		used += w
		frame.Cols = append(frame.Cols, FrameCol{Index: c, Width: widths[c]})
	}

	return frame, workspace.Scroll{Top: top, Left: left}
}

// columnWidths measures every column over the sample window and clamps to
// the configured bounds. The header name always fits up to the max cap.
func (lm *LayoutManager) columnWidths(view *table.Table) []int {
	sample := view.NumRows()
	if lm.cfg.SampleRows > 0 && sample > lm.cfg.SampleRows {
		sample = lm.cfg.SampleRows
	}
	widths := make([]int, view.NumCols())
	for c := 0; c < view.NumCols(); c++ {
		w := runewidth.StringWidth(view.Column(c).Name())
		for r := 0; r < sample; r++ {
			if cw := runewidth.StringWidth(view.Format(r, c)); cw > w {
				w = cw
			}
		}
		if w < lm.cfg.MinColWidth {
			w = lm.cfg.MinColWidth
		}
		if lm.cfg.MaxColWidth > 0 && w > lm.cfg.MaxColWidth {
			w = lm.cfg.MaxColWidth
		}
		widths[c] = w
	}
	return widths
}

// spanWidth is the rendered width of columns [from, to] including gaps.
func spanWidth(widths []int, from, to int) int {
	total := 0
	for c := from; c <= to && c < len(widths); c++ {
		if c > from {
			total += ColumnGapWidth
		}
		total += widths[c]
	}
	return total
}

func rowNumWidth(numRows int) int {
	w := 1
	for numRows >= 10 {
		numRows /= 10
		w++
	}
	return w
}
