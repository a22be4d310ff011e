package runner_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEngine answers every message with an echo and records what it received.
type fakeEngine struct {
	mu       sync.Mutex
	inbound  []domain.Inbound
	signals  []string
	resume   []domain.Event
	resumeOK bool
	sendErr  error
}

func (f *fakeEngine) Send(ctx context.Context, threadID string, in domain.Inbound) (*domain.Session, []domain.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, in)
	if f.sendErr != nil {
		return nil, nil, f.sendErr
	}
	return domain.NewSession(threadID, in.Locale()), []domain.Event{{Type: domain.EventText, Content: "echo: " + in.Message}}, nil
}

func (f *fakeEngine) Resume(ctx context.Context, threadID string) (*domain.Session, []domain.Event, error) {
	if !f.resumeOK {
		return nil, nil, domain.ErrSessionNotFound
	}
	return domain.NewSession(threadID, domain.Locale{}), f.resume, nil
}

func (f *fakeEngine) Signal(ctx context.Context, threadID string, signal string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signals = append(f.signals, signal)
	return domain.NewSession(threadID, domain.Locale{}), nil
}

func (f *fakeEngine) Session(ctx context.Context, threadID string) (*domain.Session, error) {
	return nil, domain.ErrSessionNotFound
}

func (f *fakeEngine) Sessions(ctx context.Context) ([]string, error) { return nil, nil }

func (f *fakeEngine) Delete(ctx context.Context, threadID string) error { return nil }

func run(t *testing.T, eng *fakeEngine, input string, opts ...runner.Option) string {
	t.Helper()
	out := &bytes.Buffer{}
	opts = append([]runner.Option{
		runner.WithThreadID("t-1"),
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(input), out)),
	}, opts...)
	require.NoError(t, runner.NewRunner(eng, opts...).Run(context.Background()))
	return out.String()
}

func TestRunner_SendsEachLine(t *testing.T) {
	eng := &fakeEngine{}
	out := run(t, eng, "hello\n\nbook a hotel\n",
		runner.WithLocale(domain.Locale{Language: "en", Currency: "USD"}),
		runner.WithCredential("tok-1"),
	)

	require.Len(t, eng.inbound, 2, "blank lines are skipped")
	assert.Equal(t, "hello", eng.inbound[0].Message)
	assert.Equal(t, "en", eng.inbound[0].Language)
	assert.Equal(t, "USD", eng.inbound[1].Currency)
	assert.Equal(t, "tok-1", eng.inbound[1].Credential)
	assert.Contains(t, out, "[System] New conversation t-1")
	assert.Contains(t, out, "echo: book a hotel")
}

func TestRunner_ExitStopsLoop(t *testing.T) {
	eng := &fakeEngine{}
	run(t, eng, "hi\nquit\nnever sent\n")
	require.Len(t, eng.inbound, 1)
}

func TestRunner_ResumeShowsPendingApproval(t *testing.T) {
	eng := &fakeEngine{
		resumeOK: true,
		resume:   []domain.Event{{Type: domain.EventApprovalNeeded, Content: "Approve create_hotel_booking? (y/n)"}},
	}
	out := run(t, eng, "")

	assert.Contains(t, out, "Resuming conversation t-1")
	assert.Contains(t, out, "Approve create_hotel_booking? (y/n)")
}

func TestRunner_Escalate(t *testing.T) {
	eng := &fakeEngine{}
	out := run(t, eng, "/escalate\n")

	assert.Equal(t, []string{"escalate"}, eng.signals)
	assert.Empty(t, eng.inbound)
	assert.Contains(t, out, "Back with the main assistant.")
}

func TestRunner_FailedTurnIsReported(t *testing.T) {
	eng := &fakeEngine{sendErr: errors.New("model unavailable")}
	out := run(t, eng, "hello\nagain\n")

	assert.Len(t, eng.inbound, 2, "the loop survives a failed turn")
	assert.Contains(t, out, "Error: model unavailable")
}

func TestRunner_JSONHandler(t *testing.T) {
	eng := &fakeEngine{}
	out := &bytes.Buffer{}
	input := `{"message":"hola","language":"es","currency":"CLP","token":"tok-9"}` + "\n" + `"plain string"` + "\n"

	r := runner.NewRunner(eng,
		runner.WithThreadID("t-1"),
		runner.WithInputHandler(runner.NewJSONHandler(strings.NewReader(input), out)),
	)
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, eng.inbound, 2)
	assert.Equal(t, domain.Inbound{Message: "hola", Language: "es", Currency: "CLP", Credential: "tok-9"}, eng.inbound[0])
	assert.Equal(t, "plain string", eng.inbound[1].Message)
	assert.Equal(t, "tok-9", eng.inbound[1].Credential, "a token sent once is kept for later lines")
	assert.Contains(t, out.String(), `{"type":"text","content":"echo: hola"}`)
}
