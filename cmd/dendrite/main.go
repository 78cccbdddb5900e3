package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/toyz/dendrite/internal/cli"
	"github.com/toyz/dendrite/internal/utils"
)

func main() {
	var (
		verboseFlag = flag.Bool("verbose", false, "Enable verbose output")
		quietFlag   = flag.Bool("quiet", false, "Only show errors")
		cleanFlag   = flag.Bool("clean", false, "Delete all dendrite_gen.go files from the matched directories")
		helpFlag    = flag.Bool("help", false, "Show help information")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <directory-paths...>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Dendrite Registration Generator\n")
		fmt.Fprintf(os.Stderr, "Scans directories for Go files with dendrite:: annotations and generates\n")
		fmt.Fprintf(os.Stderr, "per-package service marker registrations.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nDirectory Patterns:\n")
		fmt.Fprintf(os.Stderr, "  ./...              Scan current directory and all subdirectories\n")
		fmt.Fprintf(os.Stderr, "  ./internal/...     Scan internal directory recursively\n")
		fmt.Fprintf(os.Stderr, "  ./pkg/services     Scan only the specific directory\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s ./...                    # Scan everything recursively\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --verbose ./internal/... # Enable detailed output\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --clean ./...            # Delete generated files\n", os.Args[0])
	}

	flag.Parse()

	if *helpFlag {
		flag.Usage()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "Error: At least one directory path is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewQuietDiagnostics()
	case *verboseFlag:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	runner := cli.NewRunner(diagnostics)

	if *cleanFlag {
		removed, err := runner.Clean(args)
		if err != nil {
			diagnostics.Error("Clean failed: %v", err)
			os.Exit(1)
		}
		diagnostics.Success("Removed %d generated file(s)", len(removed))
		return
	}

	diagnostics.Section("Dendrite Registration Generator")

	summary, err := runner.Run(args)
	if err != nil {
		diagnostics.Error("Generation failed: %v", err)
		os.Exit(1)
	}

	diagnostics.Summary("Generation Complete!",
		[]string{"Packages processed", "Subscribers found", "Service members", "Files generated"},
		map[string]interface{}{
			"Packages processed": summary.PackagesProcessed,
			"Subscribers found":  summary.SubscribersFound,
			"Service members":    summary.MembersFound,
			"Files generated":    len(summary.GeneratedFiles),
		})

	if *verboseFlag {
		for _, file := range summary.GeneratedFiles {
			diagnostics.List("%s", file)
		}
	}
}
