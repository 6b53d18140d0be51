// Package prompt implements the engine's operator conversation channel:
// an interactive terminal provider, a scripted provider for tests, and a
// static provider for non-interactive runs.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/syssam/faber/compiler/gen"
)

var (
	_ gen.Prompter = (*Terminal)(nil)
	_ gen.Prompter = (*Script)(nil)
	_ gen.Prompter = Static{}
)

// Terminal poses questions on an interactive stream, one line per answer.
// Empty input takes the default; closed questions re-ask until the answer
// is one of the options.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal returns a Terminal reading answers from in and writing
// questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Ask implements gen.Prompter.
func (t *Terminal) Ask(question, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(t.out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(t.out, "%s: ", question)
	}
	line, err := t.read()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Choose implements gen.Prompter.
func (t *Terminal) Choose(question string, options []string, def string) (string, error) {
	for {
		fmt.Fprintf(t.out, "%s (%s) [%s]: ", question, strings.Join(options, "/"), def)
		line, err := t.read()
		if err != nil {
			return "", err
		}
		if line == "" {
			return def, nil
		}
		line = strings.ToLower(line)
		if slices.Contains(options, line) {
			return line, nil
		}
		fmt.Fprintln(t.out, color.New(color.FgYellow).Sprintf("pick one of: %s", strings.Join(options, ", ")))
	}
}

// Confirm implements gen.Prompter.
func (t *Terminal) Confirm(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(t.out, "%s [%s] ", question, hint)
		line, err := t.read()
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(t.out, color.New(color.FgYellow).Sprint("answer y or n"))
	}
}

// read consumes one answer line. A final unterminated line still counts;
// input running out mid-conversation surfaces as the read error.
func (t *Terminal) read() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && (line == "" || err != io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Script replays queued answers in order, so tests can drive whole
// conversations. A queued empty string and an exhausted queue both mean
// "press enter": the default wins.
type Script struct {
	answers []string
}

// NewScript returns a Script replaying the given answers.
func NewScript(answers ...string) *Script {
	return &Script{answers: answers}
}

// Ask implements gen.Prompter.
func (s *Script) Ask(_, def string) (string, error) {
	if a, ok := s.next(); ok && a != "" {
		return a, nil
	}
	return def, nil
}

// Choose implements gen.Prompter. Answers outside the option set fall
// back to the default, keeping the contract the engine relies on.
func (s *Script) Choose(_ string, options []string, def string) (string, error) {
	if a, ok := s.next(); ok && slices.Contains(options, a) {
		return a, nil
	}
	return def, nil
}

// Confirm implements gen.Prompter.
func (s *Script) Confirm(_ string, def bool) (bool, error) {
	a, ok := s.next()
	if !ok {
		return def, nil
	}
	switch strings.ToLower(a) {
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return def, nil
}

func (s *Script) next() (string, bool) {
	if len(s.answers) == 0 {
		return "", false
	}
	head := s.answers[0]
	s.answers = s.answers[1:]
	return head, true
}

// Static is the non-interactive provider: free-form and closed questions
// take their defaults, yes/no questions pin to Yes. It backs the
// --yes-to-all flag.
type Static struct {
	Yes bool
}

// Ask implements gen.Prompter.
func (Static) Ask(_, def string) (string, error) { return def, nil }

// Choose implements gen.Prompter.
func (Static) Choose(_ string, _ []string, def string) (string, error) { return def, nil }

// Confirm implements gen.Prompter.
func (s Static) Confirm(string, bool) (bool, error) { return s.Yes, nil }
