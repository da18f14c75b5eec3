package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/kiosk/internal/config"
	"github.com/1broseidon/kiosk/internal/flags"
	"github.com/1broseidon/kiosk/internal/runtimepath"
)

const redacted = "<redacted>"

func loadForCommand(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

// redact returns a copy of cfg safe to print. Hashes stay recognisable as
// hashes; plaintext secrets do not.
func redact(cfg *config.Config) *config.Config {
	out := *cfg
	if out.LockoutPassword != "" {
		out.LockoutPassword = redacted
	}
	if out.HiddenTabPin != "" && out.HiddenTabPin != config.HiddenPinDisabled {
		out.HiddenTabPin = redacted
	}
	out.Tabs = make([]config.Tab, len(cfg.Tabs))
	for i, tab := range cfg.Tabs {
		if tab.Password != "" {
			tab.Password = redacted
		}
		out.Tabs[i] = tab
	}
	return &out
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  kiosk config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  kiosk config print [--path PATH] [--defaults] [--json] [--show-secrets]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/kiosk/config.json)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadForCommand(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if !res.Found {
			fmt.Fprintf(os.Stderr, "config: %s not found, defaults apply\n", res.Path)
		}
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		if err := res.Config.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/kiosk/config.json)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		jsonOut := fs.Bool("json", false, "Output as JSON")
		showSecrets := fs.Bool("show-secrets", false, "Do not redact passwords and PINs")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadForCommand(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		if !*showSecrets {
			cfg = redact(cfg)
		}

		if *jsonOut {
			return printJSON(cfg)
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runFlag(args []string) int {
	fs := flag.NewFlagSet("flag", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Flag file path (default: runtime directory)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk flag [--path PATH] <wake|boot>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Raise a trigger flag for the daemon. Intended for display wake hooks")
		fmt.Fprintln(os.Stderr, "and boot units; the daemon consumes it on its next tick.")
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

	target := *path
	if target == "" {
		var err error
		switch fs.Arg(0) {
		case "wake":
			target, err = runtimepath.WakeFlagPath()
		case "boot":
			target, err = runtimepath.BootFlagPath()
		default:
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", fs.Arg(0))
			return 2
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := (flags.File{Path: target}).Raise(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
