package grid

// Window is the bounded slice of the ordered view that needs rendering at
// the current scroll position, plus the layout offsets the renderer needs
// to fake full-height content.
type Window struct {
	Start         int // first row index to materialize (inclusive)
	End           int // one past the last row index (exclusive)
	OffsetTop     int // translation for the rendered slice, Start*rowHeight
	ContentHeight int // total*rowHeight, sizes the scroll spacer
}

// ComputeWindow computes the visible window. Pure arithmetic, no scan: it
// runs on every scroll event.
//
//	start = max(0, floor(scroll/rowHeight) - buffer)
//	end   = min(total, ceil((scroll+height)/rowHeight) + buffer)
func ComputeWindow(total, scrollOffset, containerHeight, rowHeight, buffer int) Window {
	if rowHeight <= 0 {
		rowHeight = 1
	}
	if total < 0 {
		total = 0
	}
	if scrollOffset < 0 {
		scrollOffset = 0
	}
	if containerHeight < 0 {
		containerHeight = 0
	}
	if buffer < 0 {
		buffer = 0
	}

	start := scrollOffset/rowHeight - buffer
	if start < 0 {
		start = 0
	}

	end := (scrollOffset+containerHeight+rowHeight-1)/rowHeight + buffer
	if end > total {
		end = total
	}
	if start > end {
		start = end
	}

	return Window{
		Start:         start,
		End:           end,
		OffsetTop:     start * rowHeight,
		ContentHeight: total * rowHeight,
	}
}

// Slice applies the window to an ordered view.
func (w Window) Slice(rows []ViewRow) []ViewRow {
	if w.Start >= len(rows) {
		return nil
	}
	end := w.End
	if end > len(rows) {
		end = len(rows)
	}
	return rows[w.Start:end]
}
