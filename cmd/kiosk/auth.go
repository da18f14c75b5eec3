package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/1broseidon/kiosk/internal/ipc"
	"github.com/1broseidon/kiosk/internal/passwd"
)

// readSecret prompts on stderr and reads without echo when stdin is a
// terminal, else reads one line.
func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return string(b), nil
	}
	return readLine(os.Stdin)
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runUnlock(args []string) int {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk unlock")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Unlock the screen. The password is read from the terminal without echo,")
		fmt.Fprintln(os.Stderr, "or from the first line of stdin.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	password, err := readSecret("Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ok, err := ipc.NewClient().Unlock(password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "incorrect password")
		return 1
	}
	return 0
}

func runPIN(args []string) int {
	fs := flag.NewFlagSet("pin", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk pin")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Submit the hidden-content PIN while the PIN dialog is open.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	pin, err := readSecret("PIN: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	ok, err := ipc.NewClient().SubmitPIN(pin)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "incorrect PIN")
		return 1
	}
	return 0
}

func runHashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk hash-password")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Print a bcrypt hash suitable for lockoutPassword or hiddenTabPin.")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	first, err := readSecret("New password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if first == "" {
		fmt.Fprintln(os.Stderr, "password must not be empty")
		return 1
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		second, err := readSecret("Repeat password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if first != second {
			fmt.Fprintln(os.Stderr, "passwords do not match")
			return 1
		}
	}

	hash, err := passwd.Hash(first)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
