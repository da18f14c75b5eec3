package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/kiosk/internal/ipc"
	"github.com/1broseidon/kiosk/internal/mcp"
)

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "-h", "--help", "help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp subcommand: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kiosk mcp <subcommand>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Subcommands:")
	fmt.Fprintln(w, "  serve    Start MCP server (stdio transport)")
}

func runMCPServe(args []string) int {
	fs := flag.NewFlagSet("mcp serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk mcp serve")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Expose the running kiosk to MCP clients over stdio.")
		fmt.Fprintln(os.Stderr, "The daemon must be running.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	ctx, stop := signalContext()
	defer stop()

	server := mcp.NewServer(ipc.NewClient(), version)
	if err := server.Run(ctx); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		return 1
	}
	return 0
}
