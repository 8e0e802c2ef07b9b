package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question on stderr and reads the answer from stdin.
func Confirm(prompt string) bool {
	return ConfirmFrom(os.Stdin, os.Stderr, prompt)
}

// ConfirmFrom asks prompt on w and reads one line from r. Only "y" and "yes"
// (any case) approve; EOF declines.
func ConfirmFrom(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", StyleWarning.Render(prompt))
	line := strings.ToLower(strings.TrimSpace(readLine(r)))
	return line == "y" || line == "yes"
}

// readLine reads up to the next newline one byte at a time so nothing past
// the answer is consumed from a shared stdin.
func readLine(r io.Reader) string {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			break
		}
	}
	return sb.String()
}
