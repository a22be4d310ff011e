package http_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/concierge/internal/testutils"
	chttp "github.com/aretw0/concierge/pkg/adapters/http"
	"github.com/aretw0/concierge/pkg/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) dial(t *testing.T, threadID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/chat"
	if threadID != "" {
		url += "?thread_id=" + threadID
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) chttp.ChatMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg chttp.ChatMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, in domain.Inbound) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(in))
}

func TestChat_NewThread(t *testing.T) {
	f := setup(t)
	f.planner.Push(testutils.Reply("Hello! How can I help?"))

	conn := f.dial(t, "")
	send(t, conn, domain.Inbound{Message: "hi", Language: "en", Currency: "USD"})

	msg := read(t, conn)
	assert.Equal(t, domain.EventText, msg.Type)
	assert.Equal(t, "Hello! How can I help?", msg.Content)
	assert.NotEmpty(t, msg.ThreadID)

	sess, err := f.engine.Session(context.Background(), msg.ThreadID)
	require.NoError(t, err)
	assert.Equal(t, "USD", sess.Locale.Currency)
}

func TestChat_ReconnectResurfacesApproval(t *testing.T) {
	f := setup(t)
	f.planner.Push(
		testutils.HandoffTo("h1", domain.ToHotel{}),
		testutils.Calls(testutils.Call("c1", "create_hotel_booking", nil)),
	)

	first := f.dial(t, "t-1")
	send(t, first, domain.Inbound{Message: "book it", Language: "en", Credential: "tok-1"})
	prompt := read(t, first)
	require.Equal(t, domain.EventApprovalNeeded, prompt.Type)
	require.NoError(t, first.Close())

	second := f.dial(t, "t-1")
	again := read(t, second)
	assert.Equal(t, prompt, again)

	f.planner.Push(testutils.Reply("Booked."))
	send(t, second, domain.Inbound{Message: "yes", Credential: "tok-2"})
	assert.Equal(t, "Booked.", read(t, second).Content)

	calls := f.rec.Calls("create_hotel_booking")
	require.Len(t, calls, 1)
	assert.Equal(t, "tok-2", calls[0].Request.Credential)
}

func TestChat_TokenStaysWithItsConnection(t *testing.T) {
	f := setup(t)
	f.planner.Push(
		testutils.HandoffTo("h1", domain.ToHotel{}),
		testutils.Calls(testutils.Call("c1", "create_hotel_booking", nil)),
		testutils.Reply("Booked."),
		testutils.Calls(testutils.Call("c2", "create_hotel_booking", nil)),
		testutils.Reply("Booked again."),
	)

	first := f.dial(t, "t-1")
	send(t, first, domain.Inbound{Message: "book it", Language: "en", Credential: "tok-1"})
	require.Equal(t, domain.EventApprovalNeeded, read(t, first).Type)
	send(t, first, domain.Inbound{Message: "yes"})
	assert.Equal(t, "Booked.", read(t, first).Content)

	send(t, first, domain.Inbound{Message: "book another"})
	require.Equal(t, domain.EventApprovalNeeded, read(t, first).Type)
	require.NoError(t, first.Close())

	second := f.dial(t, "t-1")
	require.Equal(t, domain.EventApprovalNeeded, read(t, second).Type)
	send(t, second, domain.Inbound{Message: "yes"})
	assert.Equal(t, "Booked again.", read(t, second).Content)

	calls := f.rec.Calls("create_hotel_booking")
	require.Len(t, calls, 2)
	assert.Equal(t, "tok-1", calls[0].Request.Credential, "same connection keeps its token")
	assert.Empty(t, calls[1].Request.Credential, "a new connection does not inherit it")
}

func TestChat_RepeatedReplyIsDelivered(t *testing.T) {
	f := setup(t)
	f.planner.Push(
		testutils.Reply("What are your dates?"),
		testutils.Reply("What are your dates?"),
	)

	conn := f.dial(t, "t-1")
	send(t, conn, domain.Inbound{Message: "a hotel"})
	assert.Equal(t, "What are your dates?", read(t, conn).Content)
	send(t, conn, domain.Inbound{Message: "not sure"})
	assert.Equal(t, "What are your dates?", read(t, conn).Content)
}

func TestChat_InvalidFrame(t *testing.T) {
	f := setup(t)
	conn := f.dial(t, "t-1")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := read(t, conn)
	assert.Equal(t, domain.EventError, msg.Type)
	assert.True(t, strings.HasPrefix(msg.Content, "Error: "))
}

func TestChat_DiscardOnClose(t *testing.T) {
	f := setup(t, chttp.WithDiscardOnClose(true))
	f.planner.Push(testutils.Reply("Hello"))

	conn := f.dial(t, "t-1")
	send(t, conn, domain.Inbound{Message: "hi"})
	read(t, conn)
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	assert.Eventually(t, func() bool {
		_, err := f.engine.Session(context.Background(), "t-1")
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}
