package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/concierge/pkg/domain"
)

// JSONHandler implements the IOHandler interface for JSON-Lines communication.
//
// Each input line is either an inbound object ({"message", "language", "currency", "token"}),
// a JSON string, or plain text. Each event is written as one JSON object per line.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, events []domain.Event) error {
	for _, evt := range events {
		if err := h.Encoder.Encode(evt); err != nil {
			return err
		}
	}
	return nil
}

func (h *JSONHandler) Input(ctx context.Context) (domain.Inbound, error) {
	for {
		line, err := h.Reader.ReadString('\n')
		text := strings.TrimSpace(line)
		if text == "" {
			if err != nil {
				return domain.Inbound{}, err
			}
			continue
		}

		in := parseInbound(text)
		clean, serr := SanitizeInput(in.Message)
		if serr != nil {
			_ = h.Encoder.Encode(domain.Event{Type: domain.EventError, Content: serr.Error()})
			continue
		}
		in.Message = clean
		return in, nil
	}
}

func parseInbound(text string) domain.Inbound {
	var in domain.Inbound
	if strings.HasPrefix(text, "{") && json.Unmarshal([]byte(text), &in) == nil {
		return in
	}
	var s string
	if json.Unmarshal([]byte(text), &s) == nil {
		return domain.Inbound{Message: s}
	}
	return domain.Inbound{Message: text}
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(map[string]string{"type": "system", "content": msg})
}
