package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
//
//nolint:gochecknoglobals
var readPassword = term.ReadPassword

// getSimpleText prints prompt to w and reads one line from reader.
// The line is trimmed. A final line without newline is accepted.
func getSimpleText(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}

		return "", err
	}

	return strings.TrimSpace(line), nil
}

// getMultiline reads lines until an empty one and joins them with '\n'.
func getMultiline(reader *bufio.Reader, w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt+" (empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string

	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			lines = append(lines, line)
		}

		if line == "" || err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// terminalSecret reads a secret from the terminal fd without echo.
func terminalSecret(fd int, w io.Writer) func(prompt string) (string, error) {
	return func(prompt string) (string, error) {
		if _, err := fmt.Fprint(w, prompt+": "); err != nil {
			return "", err
		}

		secret, err := readPassword(fd)
		fmt.Fprintln(w)

		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}

		return string(secret), nil
	}
}
