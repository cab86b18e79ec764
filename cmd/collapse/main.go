package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cubahno/unioncollapse/internal/document"
	"github.com/cubahno/unioncollapse/pkg/collapse"
	"github.com/logrusorgru/aurora/v3"
	"github.com/mattn/go-isatty"
)

var ErrArguments = errors.New("invalid arguments")

const cmdPath = "github.com/cubahno/unioncollapse/cmd/collapse"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: go run %s <input-file> <output-file>\n\n", cmdPath)
		fmt.Fprintf(w, "Transforms an OpenAPI document by collapsing anyOf response schemas\n")
		fmt.Fprintf(w, "to their first %s* member.\n\n", collapse.DefaultPrefix)
		fmt.Fprintf(w, "Arguments:\n")
		fmt.Fprintf(w, "  input-file    Path to the input JSON (or YAML) file.\n")
		fmt.Fprintf(w, "  output-file   Path to the output file. Written as YAML for .yaml/.yml, JSON otherwise.\n\n")
		fmt.Fprintf(w, "Options:\n")
		fmt.Fprintf(w, "  -h, -help     Show this help and exit.\n")
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("collapse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	// flag stops at the first positional argument, so help is looked up among the rest too
	if wantsHelp(fs.Args()) {
		fs.Usage()
		return 0
	}

	if fs.NArg() != 2 {
		err := fmt.Errorf("%w: expected exactly two arguments (input and output file), got %d", ErrArguments, fs.NArg())
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fs.Usage()
		return 1
	}
	src, dst := fs.Arg(0), fs.Arg(1)

	au := aurora.NewAurora(isTerminal(stdout))
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	doc, err := document.Load(src)
	if err != nil {
		fmt.Fprintf(stderr, "Error reading input file: %v\n", err)
		return 1
	}

	collapser := collapse.NewCollapser(&collapse.Config{Logger: logger})
	for _, rw := range collapser.Collapse(doc.Root) {
		fmt.Fprintf(stdout, "Transforming schema for %s, taking first paginated type in 'anyOf' list: %s\n",
			rw.Location, au.Cyan(rw.Ref))
	}

	if err := doc.Save(dst); err != nil {
		fmt.Fprintf(stderr, "Error writing output file: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Transformed document saved to %s\n", au.Green(dst))
	return 0
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "-help", "--h", "--help":
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
