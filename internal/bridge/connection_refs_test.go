package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/internal/chat"
	"github.com/chatrelay/chatrelay/internal/foreign/inproc"
)

// The connection owns the clone it mints at dial time and must pair its
// acquire with a release when the read loop exits, so that dropping the
// subscriber's own bridge afterwards returns the object to its baseline.
func TestConnectionReleasesItsListenerClone(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	rt := inproc.NewRuntime()
	obj := rt.RegisterObject(ExpectedListenerType, &recordingCallee{})
	b, err := NewListenerBridge(context.Background(), rt, obj)
	require.NoError(t, err)
	require.Equal(t, 1, rt.RefCount(obj))

	conn, err := chat.Dial(context.Background(), chat.DialConfig{URL: url}, b, nil)
	require.NoError(t, err)
	require.Equal(t, 2, rt.RefCount(obj))

	require.NoError(t, conn.Close())
	<-conn.Done()
	assert.Equal(t, 1, rt.RefCount(obj))

	b.Release()
	assert.Equal(t, 0, rt.RefCount(obj))
}
