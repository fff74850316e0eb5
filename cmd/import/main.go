// Command import runs spreadsheet imports from the command line, sharing the
// server's configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/alexflint/go-arg"

	"github.com/socialpulse/socialpulse/internal/backend"
	"github.com/socialpulse/socialpulse/internal/config"
	"github.com/socialpulse/socialpulse/internal/ingestion"
	"github.com/socialpulse/socialpulse/internal/logging"
	"github.com/socialpulse/socialpulse/internal/models"
	"github.com/socialpulse/socialpulse/internal/network"
	"github.com/socialpulse/socialpulse/internal/sheets"
)

type Args struct {
	Networks   []string `arg:"positional" help:"networks to import; every configured network when omitted"`
	Layout     string   `arg:"--layout" help:"sheets layout file, overrides SHEETS_CONFIG"`
	XLSX       string   `arg:"--xlsx" help:"read tabs from this workbook instead of Google Sheets"`
	Migrations string   `arg:"--migrations" default:"./migrations" help:"postgres migrations directory"`
	Quiet      bool     `arg:"-q,--quiet" help:"only print the summary"`
}

func (Args) Description() string {
	return "Imports social network metrics from spreadsheets into the configured store."
}

func main() {
	var args Args
	arg.MustParse(&args)

	if err := run(args); err != nil {
		fmt.Fprintln(os.Stderr, "import:", err)
		os.Exit(1)
	}
}

func run(args Args) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if args.Layout != "" {
		cfg.Sheets.LayoutPath = args.Layout
	}
	if args.XLSX != "" {
		cfg.Sheets.Source = "xlsx"
		cfg.Sheets.XLSXPath = args.XLSX
	}

	logger := logging.Discard()
	if !args.Quiet {
		cfg.Logging.Format = "text"
		if logger, err = logging.NewWithWriter(cfg.Logging, os.Stderr); err != nil {
			return err
		}
	}

	layout, err := config.LoadSheets(cfg.Sheets.LayoutPath)
	if err != nil {
		return err
	}

	targets, err := selectNetworks(args.Networks, layout)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := backend.Open(ctx, cfg.Store, args.Migrations, logger)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	sources, err := sheets.Open(cfg.Sheets)
	if err != nil {
		return err
	}

	importer := ingestion.NewImporter(sources.Source, layout, st.Accounts, st.Runs, nil, logger,
		ingestion.ImporterConfig{SaveConcurrency: cfg.Import.SaveConcurrency})

	return importAll(ctx, importer, targets, os.Stdout, logger)
}

// selectNetworks validates requested names, defaulting to every network
// present in the layout.
func selectNetworks(requested []string, layout *config.SheetsLayout) ([]string, error) {
	if len(requested) == 0 {
		for name := range layout.Networks {
			requested = append(requested, name)
		}
		sort.Strings(requested)
	}

	for _, name := range requested {
		if _, err := network.Lookup(name); err != nil {
			return nil, err
		}
		if _, ok := layout.Network(name); !ok {
			return nil, fmt.Errorf("network %s has no sheets layout", name)
		}
	}
	return requested, nil
}

type runner interface {
	Run(ctx context.Context, network string) (*ingestion.ImportResult, error)
}

// importAll runs the targets in order and prints one summary line per
// network. An unauthorized Google source stops the remaining imports.
func importAll(ctx context.Context, importer runner, targets []string, out io.Writer, logger *slog.Logger) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tSTATUS\tTABS\tROWS\tACCOUNTS\tSAMPLES")

	var errs []error
	for _, name := range targets {
		result, err := importer.Run(ctx, name)
		if err != nil {
			logger.Error("import failed", "network", name, "error", err)
			fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t-\n", name, models.ImportStatusFailed)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if errors.Is(err, sheets.ErrNotAuthorized) {
				errs = append(errs, errors.New("authorize google sheets through the web app first"))
				break
			}
			continue
		}
		run := result.Run
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n", name, run.Status, len(run.Tabs), run.Rows, run.Accounts, run.Samples)
	}

	if err := w.Flush(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
