package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/concierge/pkg/domain"
)

// TextHandler implements the interactive terminal interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer

	// Highlight styles approval prompts and errors so they stand out from replies.
	Highlight func(domain.EventType, string) string

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerHighlight configures how approval prompts and errors are styled.
func WithTextHandlerHighlight(fn func(domain.EventType, string) string) TextHandlerOption {
	return func(h *TextHandler) {
		h.Highlight = fn
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

// pump reads lines in the background so Input can honour context cancellation.
func (h *TextHandler) pump() {
	defer close(h.inputChan)
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				h.inputChan <- inputResult{err: err}
			}
			return
		}
	}
}

func (h *TextHandler) Output(ctx context.Context, events []domain.Event) error {
	for _, evt := range events {
		output := evt.Content
		switch evt.Type {
		case domain.EventText:
			if h.Renderer != nil {
				if rendered, err := h.Renderer(output); err == nil {
					output = rendered
				}
			}
		case domain.EventError:
			output = "Error: " + output
		}
		output = strings.TrimSpace(output)
		if h.Highlight != nil && evt.Type != domain.EventText {
			output = h.Highlight(evt.Type, output)
		}
		if _, err := fmt.Fprintln(h.Writer, output); err != nil {
			return err
		}
	}
	return nil
}

func (h *TextHandler) Input(ctx context.Context) (domain.Inbound, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return domain.Inbound{}, ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return domain.Inbound{}, ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return domain.Inbound{}, io.EOF
			}
			if res.err != nil {
				return domain.Inbound{}, res.err
			}
			clean, err := SanitizeInput(strings.TrimSpace(res.text))
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return domain.Inbound{Message: clean}, nil
		}
	}
}

func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
