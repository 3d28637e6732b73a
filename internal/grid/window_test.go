package grid

import "testing"

func TestComputeWindowExample(t *testing.T) {
	// 1000 rows at height 65, a 650px container scrolled to 1300, buffer 5.
	w := ComputeWindow(1000, 1300, 650, 65, 5)

	if w.Start != 15 {
		t.Errorf("Start = %d, want 15", w.Start)
	}
	if w.End != 35 {
		t.Errorf("End = %d, want 35", w.End)
	}
	if w.OffsetTop != 975 {
		t.Errorf("OffsetTop = %d, want 975", w.OffsetTop)
	}
	if w.ContentHeight != 65000 {
		t.Errorf("ContentHeight = %d, want 65000", w.ContentHeight)
	}
}

func TestComputeWindowBounds(t *testing.T) {
	tests := []struct {
		name                                string
		total, scroll, height, rowH, buffer int
	}{
		{"at top", 100, 0, 500, 50, 3},
		{"mid scroll", 100, 1234, 500, 50, 3},
		{"past the end", 100, 1 << 20, 500, 50, 3},
		{"empty set", 0, 300, 500, 50, 3},
		{"zero height container", 100, 300, 0, 50, 3},
		{"single row", 1, 0, 500, 50, 3},
		{"no buffer", 100, 275, 500, 50, 0},
		{"degenerate row height", 100, 10, 20, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ComputeWindow(tt.total, tt.scroll, tt.height, tt.rowH, tt.buffer)
			if w.Start < 0 || w.Start > w.End || w.End > tt.total {
				t.Errorf("invalid window %+v for total %d", w, tt.total)
			}
			rowH := tt.rowH
			if rowH <= 0 {
				rowH = 1
			}
			if w.OffsetTop != w.Start*rowH {
				t.Errorf("OffsetTop = %d, want %d", w.OffsetTop, w.Start*rowH)
			}
		})
	}
}

func TestComputeWindowCoversVisibleRows(t *testing.T) {
	const (
		total  = 500
		rowH   = 40
		height = 370
	)
	for scroll := 0; scroll < total*rowH; scroll += 137 {
		w := ComputeWindow(total, scroll, height, rowH, 0)
		for i := 0; i < total; i++ {
			top, bottom := i*rowH, (i+1)*rowH
			visible := bottom > scroll && top < scroll+height
			if visible && (i < w.Start || i >= w.End) {
				t.Fatalf("scroll %d: row %d visible but outside window [%d,%d)", scroll, i, w.Start, w.End)
			}
		}
	}
}

func TestComputeWindowBufferOnlyGrows(t *testing.T) {
	exact := ComputeWindow(1000, 4321, 600, 50, 0)
	buffered := ComputeWindow(1000, 4321, 600, 50, 7)
	if buffered.Start > exact.Start || buffered.End < exact.End {
		t.Errorf("buffer shrank coverage: exact %+v, buffered %+v", exact, buffered)
	}

	// A negative buffer clamps to zero instead of shrinking the range.
	negative := ComputeWindow(1000, 4321, 600, 50, -4)
	if negative != exact {
		t.Errorf("negative buffer changed the window: exact %+v, got %+v", exact, negative)
	}
}

func TestWindowSlice(t *testing.T) {
	rows := make([]ViewRow, 10)
	for i := range rows {
		rows[i].Pos = i
	}

	w := Window{Start: 3, End: 7}
	got := w.Slice(rows)
	if len(got) != 4 || got[0].Pos != 3 || got[3].Pos != 6 {
		t.Errorf("unexpected slice: %+v", got)
	}

	// Window past the data yields nothing.
	if got := (Window{Start: 12, End: 20}).Slice(rows); got != nil {
		t.Errorf("expected nil slice, got %+v", got)
	}

	// End clamps to available rows.
	if got := (Window{Start: 8, End: 20}).Slice(rows); len(got) != 2 {
		t.Errorf("expected 2 rows, got %d", len(got))
	}
}
