package grid

// DrillDown is the bridge a visualization uses to narrow the grid: it
// always builds an equals filter on (column, value). The caller appends it
// to the active filter set and switches to the data view; the pipeline
// cannot tell a drill-down filter from a user-built one.
func DrillDown(column string, value any) Filter {
	return NewFilter(column, OpEquals, value, nil)
}
