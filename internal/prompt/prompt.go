// Package prompt asks the operator questions: single-line answers and a
// free-text block for proposal bodies.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ErrCancelled is returned when the operator aborts a prompt.
var ErrCancelled = errors.New("prompt: cancelled by operator")

// Prompter is the operator I/O the commands depend on.
type Prompter interface {
	// Ask shows label and returns one line of input without its newline.
	Ask(label string) (string, error)
	// ReadText shows label and returns a multi-line block verbatim.
	ReadText(label string) (string, error)
}

// New returns a terminal prompter when in is a terminal and a plain line
// prompter otherwise, so piped input keeps working.
func New(in *os.File, out io.Writer) Prompter {
	if isatty.IsTerminal(in.Fd()) || isatty.IsCygwinTerminal(in.Fd()) {
		return NewTermPrompter(in, out)
	}
	return NewLinePrompter(in, out)
}

// LinePrompter reads answers line by line from a reader.
type LinePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewLinePrompter wraps in and out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{in: bufio.NewReader(in), out: out}
}

func (p *LinePrompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("prompt: %q: input closed", strings.TrimSpace(label))
		}
		return "", fmt.Errorf("prompt: read: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadText consumes the rest of the input.
func (p *LinePrompter) ReadText(label string) (string, error) {
	fmt.Fprintln(p.out, label)
	data, err := io.ReadAll(p.in)
	if err != nil {
		return "", fmt.Errorf("prompt: read text: %w", err)
	}
	return string(data), nil
}

// Scripted answers prompts from a fixed list; tests and dry runs use it.
type Scripted struct {
	Answers []string
	Text    string
	// Asked records every label shown.
	Asked []string
}

func (s *Scripted) Ask(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	if len(s.Answers) == 0 {
		return "", fmt.Errorf("prompt: no scripted answer for %q", label)
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}

func (s *Scripted) ReadText(label string) (string, error) {
	s.Asked = append(s.Asked, label)
	return s.Text, nil
}
