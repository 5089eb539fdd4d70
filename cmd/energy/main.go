// Command energy fetches yearly electricity generation data, derives the
// renewable share summary for the most recent years and answers queries
// over the persisted result.
//
// Usage:
//
//	energy fetch  [-years N] [-entity CHN] [-source owid|ember|file] [-input path] [-out path] [-share-mode unified|legacy]
//	energy query  [-file path] [-year Y]
//	energy export [-file path] [-format csv|xlsx] [-out path]
//	energy serve  [-file path] [-port P]
//	energy version
//
// Every command accepts -config to point at a YAML configuration file.
// Environment variables prefixed with ENERGY_ override the file.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"energycli/internal/infrastructure"
	"energycli/pkg/contracts"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	infrastructure.CloseLogFile()
	os.Exit(code)
}

// run dispatches to a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "fetch":
		return runFetch(ctx, rest, stdout, stderr)
	case "query":
		return runQuery(ctx, rest, stdout, stderr)
	case "export":
		return runExport(ctx, rest, stdout, stderr)
	case "serve":
		return runServe(ctx, rest, stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return exitOK
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: energy <command> [flags]

Commands:
  fetch    download source data, rebuild the summary and save it
  query    print the saved summary, or one year of it
  export   write the saved summary as CSV or XLSX
  serve    serve the saved summary over HTTP
  version  print version information

Run "energy <command> -h" for the flags of a command.
`)
}
