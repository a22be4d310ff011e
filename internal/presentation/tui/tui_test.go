package tui

import (
	"bytes"
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighlight_KeepsText(t *testing.T) {
	for _, typ := range []domain.EventType{domain.EventText, domain.EventApprovalNeeded, domain.EventError} {
		assert.Contains(t, Highlight(typ, "Approve? (y/n)"), "Approve? (y/n)")
	}
	assert.Equal(t, "plain", Highlight(domain.EventText, "plain"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "/escalate")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer()
	out, err := render("**Hotel Plaza**")
	require.NoError(t, err)
	assert.Contains(t, out, "Hotel Plaza")
}
