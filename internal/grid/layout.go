package grid

// Layout defaults. Widths are in layout units (pixels on a canvas, cells
// in a terminal).
const (
	DefaultColumnWidth = 150
	MinColumnWidth     = 80
)

// Layout tracks column display order and per-column widths, independent of
// the dataset's canonical column order. It also owns the exclusive resize
// gesture session.
type Layout struct {
	order        []string
	widths       map[string]int
	defaultWidth int
	minWidth     int
	active       *ResizeSession
}

// NewLayout creates a layout in canonical column order.
func NewLayout(columns []string) *Layout {
	l := &Layout{
		defaultWidth: DefaultColumnWidth,
		minWidth:     MinColumnWidth,
	}
	l.Reset(columns)
	return l
}

// SetDefaults overrides the default and minimum widths. Zero keeps the
// current value.
func (l *Layout) SetDefaults(defaultWidth, minWidth int) {
	if defaultWidth > 0 {
		l.defaultWidth = defaultWidth
	}
	if minWidth > 0 {
		l.minWidth = minWidth
	}
}

// Reset replaces the layout with canonical order and empty widths. Called
// on dataset switch; any in-flight resize session is released.
func (l *Layout) Reset(columns []string) {
	l.order = append([]string(nil), columns...)
	l.widths = make(map[string]int, len(columns))
	if l.active != nil {
		l.active.End()
	}
}

// Order returns the display order. Callers must not mutate the slice.
func (l *Layout) Order() []string {
	return l.order
}

// Width returns the column's width, falling back to the default.
func (l *Layout) Width(column string) int {
	if w, ok := l.widths[column]; ok {
		return w
	}
	return l.defaultWidth
}

// SetWidth sets a column's width, clamped to the minimum.
func (l *Layout) SetWidth(column string, width int) {
	if width < l.minWidth {
		width = l.minWidth
	}
	l.widths[column] = width
}

// Move removes src from the order and reinserts it at dst's index. No-op
// when src equals dst or either is not in the layout.
func (l *Layout) Move(src, dst string) {
	if src == dst {
		return
	}
	srcIdx, dstIdx := -1, -1
	for i, c := range l.order {
		if c == src {
			srcIdx = i
		}
		if c == dst {
			dstIdx = i
		}
	}
	if srcIdx < 0 || dstIdx < 0 {
		return
	}
	l.order = append(l.order[:srcIdx], l.order[srcIdx+1:]...)
	// dstIdx is recomputed against the shortened slice so the column lands
	// at the drop target's position.
	dstIdx = -1
	for i, c := range l.order {
		if c == dst {
			dstIdx = i
			break
		}
	}
	l.order = append(l.order[:dstIdx], append([]string{src}, l.order[dstIdx:]...)...)
}

// ResizeSession is one bounded drag-resize interaction. Its lifetime owns
// the width updates for its column; End releases it exactly once however
// the gesture terminates.
type ResizeSession struct {
	layout     *Layout
	column     string
	startX     int
	startWidth int
	done       bool
}

// BeginResize starts a resize session for column at pointer position
// startX. Sessions are exclusive: an active session is ended first.
func (l *Layout) BeginResize(column string, startX int) *ResizeSession {
	if l.active != nil {
		l.active.End()
	}
	s := &ResizeSession{
		layout:     l,
		column:     column,
		startX:     startX,
		startWidth: l.Width(column),
	}
	l.active = s
	return s
}

// ActiveResize returns the in-flight session, or nil.
func (l *Layout) ActiveResize() *ResizeSession {
	return l.active
}

// Update applies the pointer's current position to the column width.
// Ignored after End.
func (s *ResizeSession) Update(x int) {
	if s.done {
		return
	}
	s.layout.SetWidth(s.column, s.startWidth+(x-s.startX))
}

// End releases the session. Idempotent.
func (s *ResizeSession) End() {
	if s.done {
		return
	}
	s.done = true
	if s.layout.active == s {
		s.layout.active = nil
	}
}
