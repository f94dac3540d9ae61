package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/colgraph/colgraph/internal/actions"
	"github.com/colgraph/colgraph/internal/eventbus"
	"github.com/colgraph/colgraph/internal/graph"
	"github.com/colgraph/colgraph/internal/otel"
	"github.com/colgraph/colgraph/internal/sqlsource"
)

const rootUsage = `colgraph — lazy columnar query engine & tools

USAGE:
  colgraph <command> [flags]

COMMANDS:
  scan             Run filters and aggregations over a SQLite table
  columns          Print the column schema of a SQLite table
  help             Show help for any command
`

const scanUsage = `scan FLAGS:
  -db <file>               SQLite database file (required)
  -table <name>            Table to scan (required)
  -slots <n>               Worker slots (default: 1)
  -filter <col OP value>   Selection cut, e.g. "pt > 30". Repeatable; cuts
                           chain in order, each applies after the previous.
                           OP is one of == != < <= > >=
  -count                   Report the entry count after all cuts (default: true)
  -sum <col>               Sum a column after all cuts. Repeatable
  -mean <col>              Average a column after all cuts. Repeatable
  -report                  Print per-cut pass/total statistics
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: colgraph)
`

const columnsUsage = `columns FLAGS:
  -db <file>       SQLite database file (required)
  -table <name>    Table to describe (required)
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("colgraph", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "scan":
		return cmdScan(cmdArgs)
	case "columns":
		return cmdColumns(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(os.Stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Print(rootUsage)
		return nil
	}
	switch args[0] {
	case "scan":
		fmt.Print(scanUsage)
	case "columns":
		fmt.Print(columnsUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// cut is one parsed -filter spec.
type cut struct {
	col string
	op  string
	val string
}

func (c cut) name() string { return c.col + " " + c.op + " " + c.val }

func parseCut(spec string) (cut, error) {
	fields := strings.Fields(spec)
	if len(fields) != 3 {
		return cut{}, fmt.Errorf("invalid filter %q: want \"col OP value\"", spec)
	}
	switch fields[1] {
	case "==", "!=", "<", "<=", ">", ">=":
	default:
		return cut{}, fmt.Errorf("invalid filter %q: unknown operator %q", spec, fields[1])
	}
	return cut{col: fields[0], op: fields[1], val: fields[2]}, nil
}

// predicate builds the comparison for the column's concrete type.
func (c cut) predicate(colType reflect.Type) (graph.FilterFunc, error) {
	switch colType.Kind() {
	case reflect.Int64:
		want, err := strconv.ParseInt(c.val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", c.name(), err)
		}
		return func(vals []any) (bool, error) {
			v, ok := vals[0].(int64)
			if !ok {
				return false, fmt.Errorf("column %q: want int64, got %T", c.col, vals[0])
			}
			return compareOrdered(v, want, c.op), nil
		}, nil
	case reflect.Float64:
		want, err := strconv.ParseFloat(c.val, 64)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", c.name(), err)
		}
		return func(vals []any) (bool, error) {
			v, ok := vals[0].(float64)
			if !ok {
				return false, fmt.Errorf("column %q: want float64, got %T", c.col, vals[0])
			}
			return compareOrdered(v, want, c.op), nil
		}, nil
	case reflect.String:
		want := c.val
		return func(vals []any) (bool, error) {
			v, ok := vals[0].(string)
			if !ok {
				return false, fmt.Errorf("column %q: want string, got %T", c.col, vals[0])
			}
			return compareOrdered(v, want, c.op), nil
		}, nil
	default:
		return nil, fmt.Errorf("filter %q: column type %s is not comparable", c.name(), colType)
	}
}

func compareOrdered[T int64 | float64 | string](a, b T, op string) bool {
	switch op {
	case "==":
		return a == b
	case "!=":
		return a != b
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

func cmdScan(args []string) error {
	dbPath := ""
	table := ""
	slots := 1
	count := true
	report := false
	otelEndpoint := ""
	otelService := "colgraph"
	var filters, sums, means stringListFlag

	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&dbPath, "db", dbPath, "SQLite database file")
	fs.StringVar(&table, "table", table, "Table to scan")
	fs.IntVar(&slots, "slots", slots, "Worker slots")
	fs.Var(&filters, "filter", "Selection cut")
	fs.BoolVar(&count, "count", count, "Report the entry count")
	fs.Var(&sums, "sum", "Sum a column")
	fs.Var(&means, "mean", "Average a column")
	fs.BoolVar(&report, "report", report, "Print per-cut statistics")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, scanUsage)
		return err
	}
	if dbPath == "" || table == "" {
		fmt.Fprint(os.Stderr, scanUsage)
		return fmt.Errorf("-db and -table are required")
	}

	ctx := context.Background()
	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	src, err := sqlsource.Open(dbPath, table)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer src.Close()

	g, err := graph.New(src, graph.WithSlots(slots))
	if err != nil {
		return err
	}
	defer g.Close()

	tail := graph.Node(g.Root())
	for _, spec := range filters {
		c, err := parseCut(spec)
		if err != nil {
			return err
		}
		colType, err := g.ColumnType(c.col)
		if err != nil {
			return fmt.Errorf("filter %q: %w", c.name(), err)
		}
		pred, err := c.predicate(colType)
		if err != nil {
			return err
		}
		tail, err = tail.Filter(c.name(), []string{c.col}, pred)
		if err != nil {
			return err
		}
	}

	// Book everything first so one scan covers it all.
	var countRes *graph.Result[int64]
	if count {
		if countRes, err = actions.Count(tail); err != nil {
			return err
		}
	}
	sumRes := make([]*graph.Booking, len(sums))
	for i, col := range sums {
		if sumRes[i], err = bookSum(g, tail, col); err != nil {
			return err
		}
	}
	meanRes := make([]*graph.Result[float64], len(means))
	for i, col := range means {
		if meanRes[i], err = actions.Mean(tail, col); err != nil {
			return err
		}
	}

	if countRes != nil {
		n, err := countRes.Value(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("count: %d\n", n)
	}
	for i, col := range sums {
		s, err := sumRes[i].Value(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("sum(%s): %v\n", col, s)
	}
	for i, col := range means {
		m, err := meanRes[i].Value(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("mean(%s): %g\n", col, m)
	}

	if report {
		stats, err := tail.Report(ctx)
		if err != nil {
			return err
		}
		for _, st := range stats {
			pct := 0.0
			if st.Total > 0 {
				pct = 100 * float64(st.Passed) / float64(st.Total)
			}
			fmt.Printf("cut %-24s pass %d / %d (%.1f%%)\n", st.Name, st.Passed, st.Total, pct)
		}
	}
	return nil
}

// bookSum sums in the column's own domain.
func bookSum(g *graph.Graph, n graph.Node, col string) (*graph.Booking, error) {
	t, err := g.ColumnType(col)
	if err != nil {
		return nil, fmt.Errorf("sum %q: %w", col, err)
	}
	switch t.Kind() {
	case reflect.Float64:
		res, err := actions.Sum[float64](n, col)
		if err != nil {
			return nil, err
		}
		return res.Booking(), nil
	case reflect.Int64:
		res, err := actions.Sum[int64](n, col)
		if err != nil {
			return nil, err
		}
		return res.Booking(), nil
	default:
		return nil, fmt.Errorf("sum %q: column type %s is not numeric", col, t)
	}
}

func cmdColumns(args []string) error {
	dbPath := ""
	table := ""
	fs := flag.NewFlagSet("columns", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.StringVar(&dbPath, "db", dbPath, "SQLite database file")
	fs.StringVar(&table, "table", table, "Table to describe")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(os.Stderr, columnsUsage)
		return err
	}
	if dbPath == "" || table == "" {
		fmt.Fprint(os.Stderr, columnsUsage)
		return fmt.Errorf("-db and -table are required")
	}

	src, err := sqlsource.Open(dbPath, table)
	if err != nil {
		return fmt.Errorf("open %s: %w", dbPath, err)
	}
	defer src.Close()

	fmt.Printf("%s: %d entries\n", table, src.EntryCount())
	for _, name := range src.ColumnNames() {
		t, err := src.ColumnType(name)
		if err != nil {
			return err
		}
		fmt.Printf("  %-24s %s\n", name, t)
	}
	return nil
}
