// Command collections-report prints the dashboard KPIs and summaries for one
// allocation file without starting the web server.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"fusiondash/internal/config"
	"fusiondash/internal/dataprocessing"
	apierrors "fusiondash/internal/errors"
	"fusiondash/internal/infrastructure"
	"fusiondash/internal/services"
	"fusiondash/pkg/contracts"
	"fusiondash/pkg/contracts/domain"
)

const (
	exitOK    = 0
	exitData  = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("collections-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", config.DefaultDataFile, "allocation workbook (.xlsx, .xlsm or .csv); the default is looked up next to the program")
	sheet := fs.String("sheet", "", "sheet to read (defaults to the first sheet)")
	region := fs.String("region", domain.SelectAll, "state filter")
	bucket := fs.String("bucket", domain.SelectAll, "DPD bucket filter")
	connect := fs.String("connect", string(domain.ConnectAll), "connect filter: All, Connected or Not Connected")
	format := fs.String("format", "text", "output format: text or json")
	rows := fs.Int("rows", 0, "filtered rows to include in json output")
	verbose := fs.Bool("v", false, "log progress to stderr")
	version := fs.Bool("version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *version {
		fmt.Fprintln(stdout, contracts.VersionString())
		return exitOK
	}
	if !flagSet(fs, "file") {
		path, err := config.DefaultDataFilePath()
		if err != nil {
			fmt.Fprintf(stderr, "locate data file: %v\n", err)
			return exitData
		}
		*file = path
	}

	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "unknown format %q: use text or json\n", *format)
		return exitUsage
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := infrastructure.NewLogger(config.LoggingConfig{Level: level, Format: "text", Output: "console"}, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitUsage
	}
	logger = infrastructure.WithComponent(logger, "collections-report")
	ctx = infrastructure.EnsureTraceID(ctx)

	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{Sheet: *sheet}, logger)
	cache := services.NewTableCache(loader, nil, logger)
	svc := services.NewDashboardService(services.DashboardConfig{DataFile: *file, PageSize: max(*rows, 1)}, cache, nil, nil, logger)

	sel := domain.Selection{Region: *region, Bucket: *bucket, Connect: domain.ConnectStatus(*connect)}
	view, err := svc.Dashboard(ctx, sel, services.Page{Limit: max(*rows, 1)})
	if err != nil {
		infrastructure.WithError(logger, err).DebugContext(ctx, "Report failed", slog.String("file", *file))
		fmt.Fprintln(stderr, describe(err))
		if errors.Is(err, services.ErrInvalidSelection) {
			return exitUsage
		}
		return exitData
	}
	if *rows == 0 {
		view.Table.Rows = nil
	}

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			fmt.Fprintf(stderr, "write report: %v\n", err)
			return exitData
		}
		return exitOK
	}

	if err := writeText(stdout, view); err != nil {
		fmt.Fprintf(stderr, "write report: %v\n", err)
		return exitData
	}
	return exitOK
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// describe turns fatal data errors into the message shown on the dashboard.
func describe(err error) string {
	var colErr *dataprocessing.ColumnNotFoundError
	switch {
	case errors.As(err, &colErr):
		return colErr.Error()
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.FileNotFoundMessage
	}
	return err.Error()
}

func writeText(w io.Writer, v *domain.DashboardView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\n%s\n\n", v.Title, v.Caption)
	fmt.Fprintf(tw, "Source:\t%s\n", v.Source)
	fmt.Fprintf(tw, "Filters:\t%s=%s  %s=%s  Connect=%s\n\n",
		v.Roles.Region, v.Selection.Region, v.Roles.Bucket, v.Selection.Bucket, v.Selection.Connect)

	for _, c := range v.Cards {
		fmt.Fprintf(tw, "%s\t%s\n", c.Label, formatCard(c))
	}

	fmt.Fprintf(tw, "\n%s\tCollection Amount\tPOS\tCollection Cr\tPOS Cr\n", v.Roles.Region)
	for _, r := range v.Regions {
		fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.2f\t%.2f\n", r.Region, r.CollectionAmount, r.PrincipalOutstanding, r.CollectionCr, r.POSCr)
	}

	fmt.Fprintf(tw, "\n%s\tCollection Amount\tCollection Cr\n", v.Roles.Bucket)
	for _, b := range v.Buckets {
		fmt.Fprintf(tw, "%s\t%.0f\t%.2f\n", b.Bucket, b.CollectionAmount, b.CollectionCr)
	}

	fmt.Fprintf(tw, "\nTotal Records: %d\n", v.TotalRecords)
	return tw.Flush()
}

func formatCard(c domain.KPICard) string {
	if c.Crore {
		return strconv.FormatFloat(c.Value, 'f', 2, 64)
	}
	return strconv.FormatFloat(c.Value, 'f', 0, 64)
}
