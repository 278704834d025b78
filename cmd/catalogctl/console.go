package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// console prints notifier messages and asks y/N questions on a terminal.
type console struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

func (c *console) Success(msg string) {
	fmt.Fprintf(c.out, "ok: %s\n", msg)
}

func (c *console) Error(msg string) {
	fmt.Fprintf(c.out, "error: %s\n", msg)
}

// Confirm reads one line and accepts "y" or "yes". Anything else, including
// end of input, declines.
func (c *console) Confirm(prompt string) bool {
	if c.yes {
		return true
	}
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
