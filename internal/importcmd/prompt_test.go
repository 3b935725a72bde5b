package importcmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/muesli/cancelreader"
)

func TestAskDefault(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		fallback string
		expected string
	}{
		{name: "blank keeps default", input: "\n", fallback: "Alpha", expected: "Alpha"},
		{name: "dash clears", input: "-\n", fallback: "Alpha", expected: ""},
		{name: "typed value", input: "Beta\r\n", fallback: "Alpha", expected: "Beta"},
		{name: "last line without newline", input: "Gamma", expected: "Gamma"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newPrompter(strings.NewReader(tt.input), &bytes.Buffer{})
			got, err := p.askDefault(context.Background(), "Title", tt.fallback)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAskEOFQuits(t *testing.T) {
	p := newPrompter(strings.NewReader(""), &bytes.Buffer{})
	if _, err := p.ask(context.Background(), "> "); !errors.Is(err, errQuit) {
		t.Errorf("Expected errQuit, got %v", err)
	}
}

func TestAskCancelEndsPendingRead(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	input, err := cancelreader.NewReader(r)
	if err != nil {
		t.Skipf("pipe is not cancelable here: %v", err)
	}
	defer input.Close()

	ctx, cancel := context.WithCancel(context.Background())
	stop := context.AfterFunc(ctx, func() { input.Cancel() })
	defer stop()

	p := newPrompter(input, &bytes.Buffer{})

	done := make(chan error, 1)
	go func() {
		_, err := p.ask(ctx, "> ")
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ask did not return after cancel")
	}

	// the reader goroutine has been released, so further reads fail fast
	// instead of queueing behind a blocked ReadString
	readDone := make(chan error, 1)
	go func() {
		_, err := input.Read(make([]byte, 1))
		readDone <- err
	}()
	select {
	case err := <-readDone:
		if !errors.Is(err, cancelreader.ErrCanceled) {
			t.Errorf("Expected ErrCanceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("read blocked after cancel")
	}
}
