// formfs splits a CGI multipart/form-data request body into files.
//
// The body is read from stdin. Its boundary comes from the CONTENT_TYPE
// environment variable, as set by the web server, unless --boundary gives the
// token directly (handy for replaying a captured body offline).
//
// Usage:
//
//	formfs [flags] [TEMPDIR]
//
// TEMPDIR does not need to exist. It defaults to $TMPDIR/cgi-<parent pid>.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/tomasbasham/formfs"
)

// version is set with -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stderr, os.Getenv); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stderr io.Writer, getenv func(string) string) error {
	var (
		fromFlags   config
		configPath  string
		showHelp    bool
		showVersion bool
	)

	flagSet := pflag.NewFlagSet("formfs", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&fromFlags.Boundary, "boundary", "b", "", "use `TOKEN` as boundary instead of the one in CONTENT_TYPE")
	flagSet.StringVarP(&fromFlags.Sequence, "sequence", "s", "", "write field names in arrival order to `FILE`")
	flagSet.IntVar(&fromFlags.BufferSize, "buffer-size", formfs.DefaultBufferSize, "read buffer size in bytes")
	flagSet.StringVar(&fromFlags.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.StringVar(&configPath, "config", "", "YAML config `FILE` (default $"+configEnv+")")
	flagSet.BoolVarP(&showVersion, "version", "V", false, "print version and exit")
	flagSet.BoolVarP(&showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if showHelp {
		printHelp(stderr, flagSet)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stderr, "formfs %s\n", version)
		return nil
	}

	cfg := defaultConfig()
	if configPath == "" {
		configPath = getenv(configEnv)
	}
	if configPath != "" {
		if err := loadConfigFile(&cfg, configPath); err != nil {
			return err
		}
	}
	applyFlags(&cfg, flagSet, fromFlags)

	switch rest := flagSet.Args(); len(rest) {
	case 0:
	case 1:
		cfg.Dir = rest[0]
	default:
		return fmt.Errorf("unexpected argument: %s", rest[1])
	}
	if err := cfg.validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.level()}))

	boundary, err := resolveBoundary(cfg, getenv)
	if err != nil {
		return err
	}
	if cfg.Boundary == "" && isTerminal(stdin) {
		return errors.New("refusing to read form data from a terminal")
	}

	ns, err := formfs.OpenNamespace(cfg.Dir)
	if err != nil {
		return err
	}

	dec := formfs.NewDecoder(stdin, boundary)
	dec.SetBufferSize(cfg.BufferSize)
	dec.SetLogger(logger)

	if p := cfg.sequencePath(); p != "" {
		seq, err := os.Create(p)
		if err != nil {
			return fmt.Errorf("open sequence log: %w", err)
		}
		defer seq.Close()
		dec.SetSequenceLog(seq)
	}

	sum, err := dec.Decode(ns)
	if err != nil {
		return err
	}
	logger.Info("form data split",
		"dir", ns.Root(),
		"fields", sum.Fields,
		"bytes", sum.Bytes,
		"terminated", sum.Terminated,
	)
	return nil
}

// resolveBoundary takes the boundary from the override or, failing that, from
// the CGI content type.
func resolveBoundary(cfg config, getenv func(string) string) (formfs.Boundary, error) {
	if cfg.Boundary != "" {
		return formfs.NewBoundary(cfg.Boundary)
	}
	return formfs.BoundaryFromContentType(getenv("CONTENT_TYPE"))
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `formfs - split CGI form data into files

multipart/form-data is the expected content type on stdin. Every field is
written to TEMPDIR/<name>. A name that occurs more than once becomes a
directory of values TEMPDIR/<name>/0, 1, ... Header parameters other than
the name are stored in TEMPDIR/.<name>:<parameter>.

TEMPDIR does not need to exist. It defaults to $TMPDIR/cgi-<parent pid>.

Usage:
  formfs [flags] [TEMPDIR]

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
