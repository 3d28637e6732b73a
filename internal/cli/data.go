package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/johan-st/datadeck/internal/dataset"
	"github.com/johan-st/datadeck/internal/grid"
	"github.com/johan-st/datadeck/internal/ingest"
)

// findDataset resolves a dataset by name or id prefix.
func (c *CommandContext) findDataset(name string) (*dataset.Dataset, bool) {
	datasets, err := c.Workspace.LoadDatasets()
	if err != nil {
		fmt.Fprintf(c.Err, "Failed to load datasets: %v\n", err)
		c.Exit(1)
		return nil, false
	}
	for _, d := range datasets {
		if d.Name == name || strings.HasPrefix(d.ID, name) {
			return d, true
		}
	}
	fmt.Fprintf(c.Err, "Dataset not found: %s\n", name)
	c.Exit(1)
	return nil, false
}

// cmdList lists datasets in the workspace.
func (h *Handler) cmdList(ctx *CommandContext) {
	datasets, err := ctx.Workspace.LoadDatasets()
	if err != nil {
		fmt.Fprintf(ctx.Err, "Failed to load datasets: %v\n", err)
		ctx.Exit(1)
		return
	}

	if ctx.GetFlag("format") == "json" {
		out := make([]map[string]any, 0, len(datasets))
		for _, d := range datasets {
			out = append(out, map[string]any{
				"id":         d.ID,
				"name":       d.Name,
				"rows":       d.Store.Len(),
				"columns":    len(d.Columns),
				"size_bytes": d.SizeBytes,
				"created_at": d.CreatedAt,
			})
		}
		printJSON(ctx.Out, out)
		return
	}

	if len(datasets) == 0 {
		fmt.Fprintln(ctx.Out, "No datasets. Run 'import <path>' to add one.")
		return
	}

	rows := make([][]string, 0, len(datasets))
	for _, d := range datasets {
		rows = append(rows, []string{
			d.Name,
			humanize.Comma(int64(d.Store.Len())),
			strconv.Itoa(len(d.Columns)),
			humanize.Bytes(uint64(d.SizeBytes)),
			d.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	printTable(ctx.Out, []string{"NAME", "ROWS", "COLS", "SIZE", "CREATED"}, rows)
}

// cmdInfo shows a dataset's summary and columns.
func (h *Handler) cmdInfo(ctx *CommandContext) {
	name, ok := ctx.RequireArg(0, "dataset")
	if !ok {
		return
	}
	d, ok := ctx.findDataset(name)
	if !ok {
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, map[string]any{
			"id":      d.ID,
			"name":    d.Name,
			"rows":    d.Store.Len(),
			"columns": d.Columns,
			"summary": d.Summary,
		})
		return
	}

	fmt.Fprintf(ctx.Out, "Name:\t%s\n", d.Name)
	fmt.Fprintf(ctx.Out, "ID:\t%s\n", d.ID)
	fmt.Fprintf(ctx.Out, "Rows:\t%s\n", humanize.Comma(int64(d.Store.Len())))
	fmt.Fprintf(ctx.Out, "Columns:\t%s\n", strings.Join(d.Columns, ", "))
	fmt.Fprintf(ctx.Out, "Summary:\t%s\n", d.Summary)
}

// cmdHead shows the first rows of a dataset.
func (h *Handler) cmdHead(ctx *CommandContext) {
	name, ok := ctx.RequireArg(0, "dataset")
	if !ok {
		return
	}
	d, ok := ctx.findDataset(name)
	if !ok {
		return
	}

	limit := 10
	if v := ctx.GetFlag("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	rows := d.Store.Rows()
	if limit > len(rows) {
		limit = len(rows)
	}
	printRows(ctx.Out, d.Columns, rows[:limit], ctx.GetFlag("format"))
}

// cmdQuery filters, searches and sorts a dataset.
func (h *Handler) cmdQuery(ctx *CommandContext) {
	name, ok := ctx.RequireArg(0, "dataset")
	if !ok {
		return
	}
	d, ok := ctx.findDataset(name)
	if !ok {
		return
	}

	filters := grid.NewFilterSet()
	for _, spec := range ctx.GetFlagAll("filter") {
		f, err := parseFilterSpec(spec)
		if err != nil {
			fmt.Fprintf(ctx.Err, "Bad filter %q: %v\n", spec, err)
			ctx.Exit(1)
			return
		}
		filters.Add(f)
	}

	sortCfg, err := parseSortSpec(ctx.GetFlag("sort"))
	if err != nil {
		fmt.Fprintf(ctx.Err, "Bad sort: %v\n", err)
		ctx.Exit(1)
		return
	}

	pipeline := grid.NewPipeline()
	view := pipeline.View(d.Store, filters, ctx.GetFlag("search"), sortCfg)

	limit := len(view)
	if v := ctx.GetFlag("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}

	rows := make([]dataset.Row, 0, limit)
	for _, vr := range view[:limit] {
		rows = append(rows, vr.Row)
	}
	printRows(ctx.Out, d.Columns, rows, ctx.GetFlag("format"))

	if ctx.GetFlag("format") == "" {
		fmt.Fprintf(ctx.Out, "%s of %s rows\n",
			humanize.Comma(int64(len(view))), humanize.Comma(int64(d.Store.Len())))
	}
}

// cmdClean applies a cleaning action and persists the result.
func (h *Handler) cmdClean(ctx *CommandContext) {
	name, ok := ctx.RequireArg(0, "dataset")
	if !ok {
		return
	}
	actionArg, ok := ctx.RequireArg(1, "action")
	if !ok {
		return
	}
	d, ok := ctx.findDataset(name)
	if !ok {
		return
	}

	column := ""
	if args := ctx.GetPositionalArgs(); len(args) > 2 {
		column = args[2]
	}

	action := dataset.CleanAction(actionArg)
	if column == "" && action != dataset.CleanDeduplicate {
		fmt.Fprintf(ctx.Err, "Action %s needs a column\n", action)
		ctx.Exit(1)
		return
	}

	changed, err := d.Clean(action, column)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Clean failed: %v\n", err)
		ctx.Exit(1)
		return
	}

	if changed > 0 {
		if err := ctx.Workspace.SaveDataset(d); err != nil {
			fmt.Fprintf(ctx.Err, "Failed to save dataset: %v\n", err)
			ctx.Exit(1)
			return
		}
	}
	fmt.Fprintf(ctx.Out, "%s: %s rows affected\n", action, humanize.Comma(int64(changed)))
}

// cmdImport ingests files and persists the resulting datasets.
func (h *Handler) cmdImport(ctx *CommandContext) {
	pathArg, ok := ctx.RequireArg(0, "path")
	if !ok {
		return
	}

	sources, err := ingest.Discover(pathArg)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Discovery failed: %v\n", err)
		ctx.Exit(1)
		return
	}
	if len(sources) == 0 {
		fmt.Fprintln(ctx.Err, "No data files found")
		ctx.Exit(1)
		return
	}

	for _, src := range sources {
		d, err := ingest.DecodeFile(src.Path)
		if err != nil {
			fmt.Fprintf(ctx.Err, "Failed to import %s: %v\n", src.Path, err)
			ctx.Exit(1)
			return
		}
		if err := ctx.Workspace.SaveDataset(d); err != nil {
			fmt.Fprintf(ctx.Err, "Failed to save %s: %v\n", d.Name, err)
			ctx.Exit(1)
			return
		}
		fmt.Fprintf(ctx.Out, "Imported %s (%s rows)\n", d.Name, humanize.Comma(int64(d.Store.Len())))
	}
}

// cmdExport writes a dataset to stdout.
func (h *Handler) cmdExport(ctx *CommandContext) {
	name, ok := ctx.RequireArg(0, "dataset")
	if !ok {
		return
	}
	d, ok := ctx.findDataset(name)
	if !ok {
		return
	}

	format := ctx.GetFlag("format")
	if format == "" {
		format = "csv"
	}
	printRows(ctx.Out, d.Columns, d.Store.Rows(), format)
}

// cmdSessions lists analysis sessions.
func (h *Handler) cmdSessions(ctx *CommandContext) {
	limit := 20
	if v := ctx.GetFlag("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	sessions, err := ctx.Workspace.ListSessions(limit)
	if err != nil {
		fmt.Fprintf(ctx.Err, "Failed to list sessions: %v\n", err)
		ctx.Exit(1)
		return
	}

	if ctx.GetFlag("format") == "json" {
		printJSON(ctx.Out, sessions)
		return
	}

	if len(sessions) == 0 {
		fmt.Fprintln(ctx.Out, "No sessions")
		return
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			s.Name,
			s.DatasetID,
			s.LastActiveAt.Format("2006-01-02 15:04"),
		})
	}
	printTable(ctx.Out, []string{"NAME", "DATASET", "LAST ACTIVE"}, rows)
}

// parseFilterSpec parses "column op value [value2]".
func parseFilterSpec(spec string) (grid.Filter, error) {
	fields := strings.Fields(spec)
	if len(fields) < 3 {
		return grid.Filter{}, fmt.Errorf("want \"column op value [value2]\"")
	}

	column := fields[0]
	op := grid.Operator(strings.ToLower(fields[1]))
	switch op {
	case grid.OpEquals, grid.OpContains:
		return grid.NewFilter(column, op, strings.Join(fields[2:], " "), nil), nil
	case grid.OpGT, grid.OpLT:
		return grid.NewFilter(column, op, fields[2], nil), nil
	case grid.OpBetween:
		if len(fields) < 4 {
			return grid.Filter{}, fmt.Errorf("between needs two values")
		}
		return grid.NewFilter(column, op, fields[2], fields[3]), nil
	default:
		return grid.Filter{}, fmt.Errorf("unknown operator %q", fields[1])
	}
}

// parseSortSpec parses "column", "column:asc" or "column:desc".
func parseSortSpec(spec string) (grid.SortConfig, error) {
	if spec == "" {
		return grid.SortConfig{}, nil
	}
	column, dir, found := strings.Cut(spec, ":")
	if !found || dir == "asc" {
		return grid.SortConfig{Column: column, Direction: grid.DirAsc}, nil
	}
	if dir == "desc" {
		return grid.SortConfig{Column: column, Direction: grid.DirDesc}, nil
	}
	return grid.SortConfig{}, fmt.Errorf("unknown direction %q", dir)
}
