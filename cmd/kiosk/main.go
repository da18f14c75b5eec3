package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/1broseidon/kiosk/internal/ipc"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "sites":
		os.Exit(runSites(os.Args[2:]))
	case "next":
		os.Exit(runSimple("next", "Show the next visible site.", os.Args[2:], (*ipc.Client).Next))
	case "prev":
		os.Exit(runSimple("prev", "Show the previous visible site.", os.Args[2:], (*ipc.Client).Previous))
	case "goto":
		os.Exit(runGoto(os.Args[2:]))
	case "pause":
		os.Exit(runPause(os.Args[2:]))
	case "resume":
		os.Exit(runSimple("resume", "Resume rotation and the inactivity lock.", os.Args[2:], func(c *ipc.Client) error {
			return c.Extend(0)
		}))
	case "activity":
		os.Exit(runSimple("activity", "Record a user interaction.", os.Args[2:], (*ipc.Client).Activity))
	case "hidden":
		os.Exit(runSimple("hidden", "Open the hidden-content gate, or advance within it.", os.Args[2:], (*ipc.Client).ToggleHidden))
	case "pin":
		os.Exit(runPIN(os.Args[2:]))
	case "lock":
		os.Exit(runSimple("lock", "Lock the screen now.", os.Args[2:], (*ipc.Client).LockNow))
	case "unlock":
		os.Exit(runUnlock(os.Args[2:]))
	case "power":
		os.Exit(runSimple("power", "Show the power menu.", os.Args[2:], (*ipc.Client).PowerMenu))
	case "events":
		os.Exit(runEvents(os.Args[2:]))
	case "hash-password":
		os.Exit(runHashPassword(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "flag":
		os.Exit(runFlag(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "version":
		fmt.Println(version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: kiosk <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the kiosk daemon (foreground)")
	fmt.Fprintln(w, "  status              Show what the kiosk is doing")
	fmt.Fprintln(w, "  sites               List configured sites")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  next                Show the next site")
	fmt.Fprintln(w, "  prev                Show the previous site")
	fmt.Fprintln(w, "  goto N              Show the site at config index N")
	fmt.Fprintln(w, "  pause MINUTES       Pause rotation and the inactivity lock")
	fmt.Fprintln(w, "  resume              End a pause")
	fmt.Fprintln(w, "  activity            Record a user interaction")
	fmt.Fprintln(w, "  hidden              Toggle hidden content")
	fmt.Fprintln(w, "  pin                 Submit the hidden-content PIN")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  lock                Lock the screen now")
	fmt.Fprintln(w, "  unlock              Unlock with the lockout password")
	fmt.Fprintln(w, "  power               Show the power menu")
	fmt.Fprintln(w, "  events              Stream outbound events")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  hash-password       Print a bcrypt hash for lockoutPassword")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  flag wake|boot      Raise the display-woke or system-booted flag")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'kiosk <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set that takes no positional arguments. It
// returns -1 to continue, or the exit code.
func parseNoArgs(fs *flag.FlagSet, args []string) int {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", fs.Name())
		fs.Usage()
		return 2
	}
	return -1
}

func runSimple(name, help string, args []string, op func(*ipc.Client) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: kiosk %s\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, help)
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	if err := op(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "failed to encode JSON:", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}

	fmt.Printf("daemon_running:    %v\n", status.DaemonRunning)
	fmt.Printf("uptime_seconds:    %d\n", status.UptimeSeconds)
	fmt.Printf("locked:            %v\n", status.Locked)
	switch {
	case status.Locked:
	case status.ShowingHidden:
		fmt.Printf("visible:           hidden site %d\n", status.HiddenPosition)
	case status.VisibleIndex >= 0:
		fmt.Printf("visible:           %d %s (%s)\n", status.VisibleIndex, status.SiteName, status.SiteURL)
	}
	fmt.Printf("manual_navigation: %v\n", status.ManualNavigation)
	if status.MediaPlaying {
		fmt.Printf("media:             playing (%s)\n", status.MediaLabel)
	} else {
		fmt.Printf("media:             not playing\n")
	}
	if !status.ExtensionUntil.IsZero() {
		fmt.Printf("paused_until:      %s\n", status.ExtensionUntil.Format(time.Kitchen))
	}
	fmt.Printf("idle_seconds:      %d\n", status.IdleSeconds)
	return 0
}

func runSites(args []string) int {
	fs := flag.NewFlagSet("sites", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk sites [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List configured sites. Hidden sites are not listed.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	sites, err := ipc.NewClient().ListSites()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(sites)
	}
	if len(sites.Sites) == 0 {
		fmt.Println("No sites configured")
		return 0
	}
	for _, s := range sites.Sites {
		mode := "manual"
		if s.Rotating {
			mode = fmt.Sprintf("%ds", s.Duration)
		}
		home := ""
		if s.Home {
			home = " [home]"
		}
		fmt.Printf("%2d  %-8s %s%s\n", s.Index, mode, s.Name, home)
	}
	return 0
}

func runGoto(args []string) int {
	fs := flag.NewFlagSet("goto", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk goto <index>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the site at a config index (see 'kiosk sites').")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	index, err := strconv.Atoi(fs.Arg(0))
	if err != nil || index < 0 {
		fmt.Fprintf(os.Stderr, "invalid index: %s\n", fs.Arg(0))
		return 2
	}

	if err := ipc.NewClient().Navigate(index); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// parseMinutes accepts "30", "30m", "2h" and "1h30m".
func parseMinutes(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("minutes must not be negative")
		}
		return n, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 || d%time.Minute != 0 {
		return 0, fmt.Errorf("duration %q must be a whole number of minutes", s)
	}
	return int(d / time.Minute), nil
}

func runPause(args []string) int {
	fs := flag.NewFlagSet("pause", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk pause <minutes|duration>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pause rotation and the inactivity lock, up to 4h (e.g. 30, 90m, 2h).")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	minutes, err := parseMinutes(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if err := ipc.NewClient().Extend(minutes); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runEvents(args []string) int {
	fs := flag.NewFlagSet("events", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	jsonOut := fs.Bool("json", false, "Print each event as a JSON line")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk events [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Stream outbound events until interrupted. Current state is replayed first.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	ctx, stop := signalContext()
	defer stop()

	err := ipc.NewClient().Subscribe(ctx, func(e ipc.StreamEvent) {
		if *jsonOut {
			data, _ := json.Marshal(e)
			fmt.Println(string(data))
			return
		}
		fmt.Printf("%s %-22s %s\n", time.Now().Format("15:04:05"), e.Kind, string(e.Data))
	})
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
