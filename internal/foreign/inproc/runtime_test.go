package inproc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatrelay/chatrelay/internal/foreign"
)

type nopCallee struct{}

func (nopCallee) Invoke(string, []foreign.Value) error { return nil }

func TestAttachCurrentThread_IdempotentPerGoroutine(t *testing.T) {
	rt := NewRuntime()

	env1, err := rt.AttachCurrentThread()
	require.NoError(t, err)
	env2, err := rt.AttachCurrentThread()
	require.NoError(t, err)

	assert.Same(t, env1, env2)
	assert.Equal(t, 1, rt.Attachments())
}

func TestAttachCurrentThread_SeparateGoroutines(t *testing.T) {
	rt := NewRuntime()

	_, err := rt.AttachCurrentThread()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, gerr := rt.AttachCurrentThread()
		assert.NoError(t, gerr)
	}()
	wg.Wait()

	assert.Equal(t, 2, rt.Attachments())
}

func TestDetachCurrentThread(t *testing.T) {
	rt := NewRuntime()

	_, err := rt.AttachCurrentThread()
	require.NoError(t, err)
	require.Equal(t, 1, rt.Attachments())

	rt.DetachCurrentThread()
	assert.Equal(t, 0, rt.Attachments())
}

func TestAttachCurrentThread_FailsAfterShutdown(t *testing.T) {
	rt := NewRuntime()
	rt.Shutdown()

	_, err := rt.AttachCurrentThread()
	require.Error(t, err)
	assert.True(t, foreign.IsAttachError(err))
}

func TestGlobalRef_AcquireCloneRelease(t *testing.T) {
	rt := NewRuntime()
	obj := rt.RegisterObject("io.chatrelay.client.ChatListener", nopCallee{})
	require.Equal(t, 0, rt.RefCount(obj))

	ref, err := rt.NewGlobalRef(obj)
	require.NoError(t, err)
	assert.Equal(t, 1, rt.RefCount(obj))

	clone := rt.CloneGlobalRef(ref)
	assert.Equal(t, 2, rt.RefCount(obj))
	assert.Same(t, obj, clone.Object())

	rt.DeleteGlobalRef(clone)
	rt.DeleteGlobalRef(ref)
	assert.Equal(t, 0, rt.RefCount(obj))
}

func TestGlobalRef_CloneAfterFullReleasePanics(t *testing.T) {
	rt := NewRuntime()
	obj := rt.RegisterObject("io.chatrelay.client.ChatListener", nopCallee{})

	ref, err := rt.NewGlobalRef(obj)
	require.NoError(t, err)
	rt.DeleteGlobalRef(ref)

	require.Panics(t, func() {
		rt.CloneGlobalRef(ref)
	})
}

func TestNewGlobalRef_RejectsForeignObject(t *testing.T) {
	rt := NewRuntime()

	_, err := rt.NewGlobalRef(otherObject{})
	require.Error(t, err)
}

type otherObject struct{}

func (otherObject) TypeName() string { return "elsewhere" }

func TestEnv_TokenValueMintsResolvableHandle(t *testing.T) {
	rt := NewRuntime()
	env, err := rt.AttachCurrentThread()
	require.NoError(t, err)

	token := &struct{ name string }{name: "pending ack"}
	v, err := env.TokenValue(token)
	require.NoError(t, err)

	handle := v.(uint64)
	require.NotZero(t, handle)

	resolved, ok := rt.Acks().Resolve(handle)
	require.True(t, ok)
	assert.Same(t, token, resolved)
}

type bindingToken struct {
	handles []uint64
}

func (b *bindingToken) HandleBound(handle uint64) {
	b.handles = append(b.handles, handle)
}

func TestEnv_TokenValueReportsMintedHandleToToken(t *testing.T) {
	rt := NewRuntime()
	env, err := rt.AttachCurrentThread()
	require.NoError(t, err)

	token := &bindingToken{}
	v, err := env.TokenValue(token)
	require.NoError(t, err)

	assert.Equal(t, []uint64{v.(uint64)}, token.handles)
}

func TestEnv_ConcurrentRefCounting(t *testing.T) {
	rt := NewRuntime()
	obj := rt.RegisterObject("io.chatrelay.client.ChatListener", nopCallee{})

	base, err := rt.NewGlobalRef(obj)
	require.NoError(t, err)

	const k = 16
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref := rt.CloneGlobalRef(base)
			rt.DeleteGlobalRef(ref)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, rt.RefCount(obj))
	rt.DeleteGlobalRef(base)
	assert.Equal(t, 0, rt.RefCount(obj))
}
