package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStreamServer(t *testing.T, s *DocStreamService) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		docId := strings.TrimPrefix(r.URL.Path, "/")
		s.Handle(docId, "user-1", w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, docId string) *websocket.Conn {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/"+docId, nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.CloseNow() })
	return c
}

func TestSendToDocSessions(t *testing.T) {
	s := NewDocStreamService()
	srv := newStreamServer(t, s)

	a := dial(t, srv, "doc-1")
	b := dial(t, srv, "doc-2")
	require.Eventually(t, func() bool {
		return s.Sessions("doc-1") == 1 && s.Sessions("doc-2") == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Send(Message{Type: MsgBlock, DocId: "doc-1", BlockId: "f1", BlockType: "formula", Attrs: map[string]any{"result": 42.0}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var msg Message
	require.NoError(t, wsjson.Read(ctx, a, &msg))
	assert.Equal(t, MsgBlock, msg.Type)
	assert.Equal(t, "f1", msg.BlockId)
	assert.Equal(t, 42.0, msg.Attrs["result"])
	assert.False(t, msg.CreatedAt.IsZero())

	shortCtx, shortCancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer shortCancel()
	_, _, err := b.Read(shortCtx)
	assert.Error(t, err, "doc-2 must not receive doc-1 messages")
}

func TestSessionRemovedOnClose(t *testing.T) {
	s := NewDocStreamService()
	srv := newStreamServer(t, s)

	c := dial(t, srv, "doc-1")
	require.Eventually(t, func() bool { return s.Sessions("doc-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	c.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return s.Sessions("doc-1") == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestCloseDoc(t *testing.T) {
	s := NewDocStreamService()
	srv := newStreamServer(t, s)

	c := dial(t, srv, "doc-1")
	require.Eventually(t, func() bool { return s.Sessions("doc-1") == 1 }, 2*time.Second, 10*time.Millisecond)

	s.CloseDoc("doc-1")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))
	assert.Eventually(t, func() bool { return s.Sessions("doc-1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
