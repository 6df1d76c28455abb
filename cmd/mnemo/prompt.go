package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// readLine reads one trimmed line of input. Running out of input entirely
// counts as a quit request so piped sessions end cleanly.
func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if err != nil && line == "" {
		return "q", nil
	}
	return line, nil
}

// confirm asks a yes/no question and reports the answer. Anything other
// than "y" or "yes" counts as no.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	cmd.Printf("%s [y/N] ", question)

	answer, err := readLine(bufio.NewReader(cmd.InOrStdin()))
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// plural formats a count with its unit, e.g. "1 card" or "3 cards".
func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
