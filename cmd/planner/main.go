package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/planning"
	"github.com/noah-isme/sma-planner/internal/remote"
	"github.com/noah-isme/sma-planner/pkg/config"
	"github.com/noah-isme/sma-planner/pkg/logger"
)

const usage = `usage: planner [flags] <command> [command flags]

commands:
  show     print the calendar window (default)
  times    list selectable start times, or end times with -start
  create   book a session; an overlap is marked with "!" in the printed window
  delete   soft-delete a session by -id
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type globalFlags struct {
	api     string
	timeout time.Duration
	view    string
	anchor  string
	status  string
	page    int
	limit   int
	quiet   bool
	filters map[planning.FilterField]*int64
}

func run(ctx context.Context, cfg *config.Config, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}

	g := globalFlags{filters: map[planning.FilterField]*int64{}}
	fs.StringVar(&g.api, "api", cfg.Planner.APIURL, "planner API base URL")
	fs.DurationVar(&g.timeout, "timeout", cfg.Planner.Timeout, "HTTP client timeout")
	fs.StringVar(&g.view, "view", string(planning.ViewWeek), "calendar view: week or month")
	fs.StringVar(&g.anchor, "anchor", "", "date inside the window (YYYY-MM-DD), default today")
	fs.StringVar(&g.status, "status", "", "session status filter (active, pending, disabled, archived, deleted, all)")
	fs.IntVar(&g.page, "page", 1, "result page")
	fs.IntVar(&g.limit, "limit", planning.DefaultLimit, "page size")
	fs.BoolVar(&g.quiet, "quiet", false, "suppress logs")
	for _, field := range []planning.FilterField{
		planning.FilterClass, planning.FilterTeacher, planning.FilterClassRoom,
		planning.FilterSpecialization, planning.FilterSessionType, planning.FilterCourse,
	} {
		g.filters[field] = fs.Int64(strings.TrimSuffix(string(field), "_id"), 0, "filter by "+string(field))
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	logr := zap.NewNop()
	if !g.quiet {
		built, err := logger.New(cfg)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer built.Sync() //nolint:errcheck
		logr = built
	}

	planner, err := newPlanner(g, logr)
	if err != nil {
		return err
	}

	command, rest := "show", []string(nil)
	if fs.NArg() > 0 {
		command, rest = fs.Arg(0), fs.Args()[1:]
	}

	switch command {
	case "show":
		if err := planner.Load(ctx); err != nil {
			return err
		}
		printWindow(out, planner)
		return nil
	case "times":
		return runTimes(rest, out)
	case "create":
		return runCreate(ctx, planner, rest, out)
	case "delete":
		return runDelete(ctx, planner, rest, out)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func newPlanner(g globalFlags, logr *zap.Logger) (*planning.Planner, error) {
	view, err := planning.ParseViewMode(g.view)
	if err != nil {
		return nil, err
	}
	client := remote.NewClient(g.api, g.timeout, logr)
	planner := planning.NewPlanner(client, planning.Options{View: view, Limit: g.limit, Logger: logr})

	if g.anchor != "" {
		if err := planner.JumpToDate(g.anchor); err != nil {
			return nil, err
		}
	}
	if err := planner.SetStatus(g.status); err != nil {
		return nil, err
	}
	for field, value := range g.filters {
		if *value == 0 {
			continue
		}
		if err := planner.SetFilter(field, *value); err != nil {
			return nil, err
		}
	}
	planner.SetPage(g.page)
	return planner, nil
}

func runTimes(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("times", flag.ContinueOnError)
	fs.SetOutput(out)
	start := fs.String("start", "", "chosen start time (HH:mm)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	options := planning.GenerateTimeOptions()
	if *start != "" {
		options = planning.EndTimeOptions(*start)
	}
	fmt.Fprintln(out, strings.Join(options, " "))
	return nil
}

func runCreate(ctx context.Context, planner *planning.Planner, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(out)
	order := []planning.Field{
		planning.FieldSchoolYear, planning.FieldPeriod, planning.FieldClass,
		planning.FieldTeacher, planning.FieldClassRoom, planning.FieldSessionType, planning.FieldCourse,
		planning.FieldDate, planning.FieldStartTime, planning.FieldEndTime,
	}
	values := make(map[planning.Field]*string, len(order))
	for _, field := range order {
		values[field] = fs.String(strings.ReplaceAll(string(field), "_", "-"), "", string(field))
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	date := *values[planning.FieldDate]
	if date != "" {
		if err := planner.JumpToDate(date); err != nil {
			return err
		}
	}

	planner.NewSession()
	for _, field := range order {
		if field == planning.FieldClass && *values[field] != "" {
			if _, err := planner.LoadClasses(ctx); err != nil {
				return err
			}
		}
		if err := planner.SetField(field, *values[field]); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	if err := planner.Load(ctx); err != nil {
		return err
	}
	saved, err := planner.Submit(ctx)
	if err != nil {
		var verr *planning.ValidationError
		if errors.As(err, &verr) {
			for field, message := range verr.Fields {
				fmt.Fprintf(out, "  %s: %s\n", field, message)
			}
			return err
		}
		if alert := planner.Alert(); alert != nil {
			fmt.Fprintf(out, "rejected (%s): %s\n", alert.Kind, alert.Message)
		}
		printWindow(out, planner)
		return err
	}
	fmt.Fprintf(out, "created session %d on %s %s-%s\n", saved.ID, saved.Date, saved.StartTime, saved.EndTime)
	printWindow(out, planner)
	return nil
}

func runDelete(ctx context.Context, planner *planning.Planner, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(out)
	id := fs.Int64("id", 0, "session id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("delete requires -id")
	}
	if err := planner.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(out, "deleted session %d\n", *id)
	return nil
}

// printWindow writes one row per session; cells without sessions print a bare date.
// Conflicting rows are flagged with "!", today with "*".
func printWindow(out io.Writer, planner *planning.Planner) {
	anchor, view := planner.Anchor()
	meta := planner.PageMeta()
	fmt.Fprintf(out, "%s of %s  (page %d/%d, %d sessions)\n", view, anchor.Format(planning.DateLayout), meta.Page, meta.TotalPages, meta.Total)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tDATE\tTIME\tCLASS\tTEACHER\tROOM\tSTATUS")
	for _, cell := range planner.View() {
		date := cell.Date
		if cell.IsToday {
			date += "*"
		}
		if view == planning.ViewMonth && !cell.IsCurrentMonth {
			date = "(" + date + ")"
		}
		if len(cell.Entries) == 0 {
			fmt.Fprintf(tw, "\t%s\t\t\t\t\t\n", date)
			continue
		}
		for _, entry := range cell.Entries {
			mark := ""
			if entry.Conflicting {
				mark = "!"
			}
			s := entry.Session
			fmt.Fprintf(tw, "%s\t%s\t%s-%s\t%d\t%d\t%d\t%s\n", mark, date, s.StartTime, s.EndTime, s.ClassID, s.TeacherID, s.ClassRoomID, s.Status)
		}
	}
	_ = tw.Flush()
	if slot, ok := planner.ConflictSlot(); ok {
		fmt.Fprintf(out, "! overlap at %s %s-%s\n", slot.Date, slot.StartTime, slot.EndTime)
	}
}
