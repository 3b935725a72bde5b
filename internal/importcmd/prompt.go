package importcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errQuit is returned when the operator asks to stop the import
var errQuit = errors.New("import abandoned by operator")

// clearValue typed at a prompt stores an empty string instead of the default
const clearValue = "-"

// prompter reads one answer per line and gives up when ctx is cancelled
type prompter struct {
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{reader: bufio.NewReader(in), out: out}
}

// ask prints label and waits for a line. EOF with no input counts as quitting.
// The reader should be a cancelreader tied to ctx so the read below ends
// with the prompt.
func (p *prompter) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprint(p.out, label)

	type answer struct {
		line string
		err  error
	}
	inputCh := make(chan answer, 1)
	go func() {
		line, err := p.reader.ReadString('\n')
		inputCh <- answer{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return "", ctx.Err()
	case a := <-inputCh:
		if a.err != nil && ctx.Err() != nil {
			fmt.Fprintln(p.out)
			return "", ctx.Err()
		}
		if a.err != nil {
			if errors.Is(a.err, io.EOF) && a.line != "" {
				return strings.TrimRight(a.line, "\r\n"), nil
			}
			if errors.Is(a.err, io.EOF) {
				fmt.Fprintln(p.out)
				return "", errQuit
			}
			return "", fmt.Errorf("failed to read input: %w", a.err)
		}
		return strings.TrimRight(a.line, "\r\n"), nil
	}
}

// askDefault returns fallback for a blank answer and "" for clearValue
func (p *prompter) askDefault(ctx context.Context, label, fallback string) (string, error) {
	if fallback != "" {
		label = fmt.Sprintf("%s [%s]: ", label, fallback)
	} else {
		label += ": "
	}

	answer, err := p.ask(ctx, label)
	if err != nil {
		return "", err
	}

	switch strings.TrimSpace(answer) {
	case "":
		return fallback, nil
	case clearValue:
		return "", nil
	default:
		return answer, nil
	}
}

// askCategory lists known categories by number; a number picks one, any
// other text is a new category
func (p *prompter) askCategory(ctx context.Context, categories []string, fallback string) (string, error) {
	if len(categories) > 0 {
		fmt.Fprintln(p.out, "  Existing categories:")
		for i, category := range categories {
			fmt.Fprintf(p.out, "    %d) %s\n", i+1, category)
		}
	}

	answer, err := p.askDefault(ctx, "  Category (number or new name)", fallback)
	if err != nil {
		return "", err
	}

	if n, convErr := strconv.Atoi(strings.TrimSpace(answer)); convErr == nil && n >= 1 && n <= len(categories) {
		return categories[n-1], nil
	}
	return answer, nil
}

type action int

const (
	actionAdd action = iota
	actionSkip
	actionQuit
)

func (p *prompter) askAction(ctx context.Context) (action, error) {
	for {
		answer, err := p.ask(ctx, "  [a]dd, [s]kip, [q]uit (default add): ")
		if err != nil {
			return actionQuit, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "", "a", "add":
			return actionAdd, nil
		case "s", "skip":
			return actionSkip, nil
		case "q", "quit":
			return actionQuit, nil
		default:
			fmt.Fprintf(p.out, "  Unknown choice %q\n", answer)
		}
	}
}

func (p *prompter) confirm(ctx context.Context, label string) (bool, error) {
	answer, err := p.ask(ctx, label+" [Y/n]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
