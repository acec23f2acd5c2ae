package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNonInteractive is returned by a Prompter that cannot reach a human
var ErrNonInteractive = errors.New("no interactive input available")

// Prompter blocks until a human confirms that a challenge has been solved
type Prompter interface {
	Wait(ctx context.Context, message string) error
}

// LinePrompter prints a message and waits for a line on its input
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter creates a prompter reading from in and writing to out
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

// Wait returns once a line is read. There is no timeout; only ctx ends the
// wait early. End of input means nobody can answer.
func (p *LinePrompter) Wait(ctx context.Context, message string) error {
	fmt.Fprint(p.out, message) // nolint:errcheck

	type result struct {
		line string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		line, err := p.in.ReadString('\n')
		done <- result{line, err}
	}()

	select {
	case r := <-done:
		err := r.err
		if errors.Is(err, io.EOF) {
			if r.line == "" {
				return ErrNonInteractive
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
