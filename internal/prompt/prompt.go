// Package prompt reads answers to interactive questions from the operator.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	City     = "Enter city (e.g., Toronto): "
	Category = "Enter business category (e.g., painters): "
	Pages    = "How many pages to scrape (1 page = ~50 results)? "
)

// Prompter asks questions on out and reads one line per answer from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask writes question and returns the trimmed answer. A final line without a
// newline is accepted; io.EOF is returned only when nothing was read.
func (p *Prompter) Ask(question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", err
		}
		return "", fmt.Errorf("prompt: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// AskIfEmpty returns current unchanged when it is set, otherwise asks question.
func (p *Prompter) AskIfEmpty(current, question string) (string, error) {
	if strings.TrimSpace(current) != "" {
		return strings.TrimSpace(current), nil
	}
	return p.Ask(question)
}
