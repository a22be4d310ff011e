package runner

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextHandler_Output(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), out,
		WithTextHandlerRenderer(func(s string) (string, error) { return "Rendered: " + s, nil }),
		WithTextHandlerHighlight(func(typ domain.EventType, s string) string { return "[" + string(typ) + "] " + s }),
	)

	err := handler.Output(context.Background(), []domain.Event{
		{Type: domain.EventText, Content: "Hello World"},
		{Type: domain.EventApprovalNeeded, Content: "Approve? (y/n)"},
		{Type: domain.EventError, Content: "boom"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Rendered: Hello World\n[approval_needed] Approve? (y/n)\n[error] Error: boom\n", out.String())
}

func TestTextHandler_Input(t *testing.T) {
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my user input \n"), out)

	in, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my user input", in.Message)
	assert.Equal(t, "> ", out.String())

	_, err = handler.Input(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestTextHandler_InputRejectsOversized(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "5")
	out := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("way too long\nok\n"), out)

	in, err := handler.Input(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", in.Message)
	assert.Contains(t, out.String(), "Please try again.")
}

func TestTextHandler_InputCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handler := NewTextHandler(strings.NewReader("hello\n"), &bytes.Buffer{})

	_, err := handler.Input(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
