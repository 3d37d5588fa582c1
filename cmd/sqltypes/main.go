// Package main implements the sqltypes tool. It prints the capability matrix
// of the registered type bindings and round-trips generated values through
// every compiled-in backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	charmlog "github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/arkilian/sqltypes/internal/config"
	"github.com/arkilian/sqltypes/internal/logger"
	"github.com/arkilian/sqltypes/internal/selfcheck"
	"github.com/arkilian/sqltypes/pkg/backend"
	"github.com/arkilian/sqltypes/pkg/sqltype"
	"github.com/arkilian/sqltypes/pkg/types"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		logLevel    string
		logJSON     bool
		backends    string
		samples     int
		seed        int64
		format      string
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	flag.StringVar(&backends, "backends", "", "Comma separated backend IDs (default: all compiled in)")
	flag.IntVar(&samples, "samples", 0, "Generated values per binding and backend")
	flag.Int64Var(&seed, "seed", 0, "Seed for generated values (0 picks one)")
	flag.StringVar(&format, "format", "table", "Matrix output format: table, json, yaml")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "sqltypes - SQL type bindings across backends\n\n")
		fmt.Fprintf(os.Stderr, "Usage: sqltypes [options] <matrix|check>\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  matrix    Print which logical types each backend supports\n")
		fmt.Fprintf(os.Stderr, "  check     Round-trip generated values through every backend\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SQLTYPES_BACKENDS        Comma separated backend IDs\n")
		fmt.Fprintf(os.Stderr, "  SQLTYPES_LOG_LEVEL       Log level\n")
		fmt.Fprintf(os.Stderr, "  SQLTYPES_CHECK_SAMPLES   Generated values per binding\n")
		fmt.Fprintf(os.Stderr, "  SQLTYPES_CHECK_SQLITE    Round-trip through SQLite (true, false)\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("sqltypes version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile, logLevel, logJSON, backends, samples, seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}
	log := logger.New(cfg.Log, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	switch cmd := flag.Arg(0); cmd {
	case "matrix":
		if err := printMatrix(os.Stdout, cfg, format); err != nil {
			log.Fatal("Failed to print matrix", "error", err)
		}
	case "check":
		ok, err := runCheck(ctx, cfg, log)
		if err != nil {
			log.Fatal("Self-check aborted", "error", err)
		}
		if !ok {
			os.Exit(1)
		}
	case "":
		flag.Usage()
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		flag.Usage()
		os.Exit(2)
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, logLevel string, logJSON bool, backends string, samples int, seed int64) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags win
	if logLevel != "" {
		cfg.Log.Level = strings.ToLower(logLevel)
	}
	if logJSON {
		cfg.Log.JSON = true
	}
	if backends != "" {
		cfg.Backends = nil
		for _, name := range strings.Split(backends, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Backends = append(cfg.Backends, name)
			}
		}
	}
	if samples > 0 {
		cfg.Check.Samples = samples
	}
	if seed != 0 {
		cfg.Check.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// matrixCell is the printable form of types.Cell.
type matrixCell struct {
	Type      string `json:"type" yaml:"type"`
	Native    string `json:"native" yaml:"native"`
	Backend   string `json:"backend" yaml:"backend"`
	Supported bool   `json:"supported" yaml:"supported"`
	Metadata  string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

func printMatrix(w io.Writer, cfg *config.Config, format string) error {
	selected, err := selfcheck.Select(cfg.Backends)
	if err != nil {
		return err
	}
	keep := make(map[backend.ID]bool, len(selected))
	for _, b := range selected {
		keep[b.ID()] = true
	}
	// columns follow registry order, whatever order they were selected in
	var columns []backend.Backend
	for _, b := range types.Backends() {
		if keep[b.ID()] {
			columns = append(columns, b)
		}
	}

	var cells []matrixCell
	for _, c := range types.Capabilities() {
		if !keep[c.Backend] {
			continue
		}
		cell := matrixCell{
			Type:      sqltype.Name(c.Type),
			Native:    c.Native,
			Backend:   string(c.Backend),
			Supported: c.Supported,
		}
		if c.Supported {
			cell.Metadata = fmt.Sprint(c.Metadata)
		}
		cells = append(cells, cell)
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cells)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(cells)
	case "table":
		return printTable(w, columns, cells)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// printTable prints one row per binding and one column per backend.
func printTable(w io.Writer, backends []backend.Backend, cells []matrixCell) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"TYPE", "NATIVE"}
	for _, b := range backends {
		header = append(header, strings.ToUpper(string(b.ID())))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i := 0; i < len(cells); i += len(backends) {
		fields := []string{cells[i].Type, cells[i].Native}
		for _, c := range cells[i : i+len(backends)] {
			if c.Supported {
				fields = append(fields, c.Metadata)
			} else {
				fields = append(fields, "-")
			}
		}
		fmt.Fprintln(tw, strings.Join(fields, "\t"))
	}
	return tw.Flush()
}

func runCheck(ctx context.Context, cfg *config.Config, log *charmlog.Logger) (bool, error) {
	c, err := selfcheck.New(cfg, log)
	if err != nil {
		return false, err
	}
	report, err := c.Run(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range report.Results {
		if !r.OK() {
			log.Error("Binding failed", "type", r.Type, "native", r.Native, "backend", r.Backend,
				"path", r.Path, "failures", r.Failures, "error", r.Err)
		}
	}
	if report.OK() {
		log.Info("All bindings round-trip", "results", len(report.Results), "seed", report.Seed)
		return true, nil
	}
	log.Error("Self-check failed", "failed", report.Failures(), "results", len(report.Results), "seed", report.Seed)
	return false, nil
}
