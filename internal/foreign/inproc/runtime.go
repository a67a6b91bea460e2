// Package inproc is an in-process foreign runtime. It hosts listener
// objects implemented in Go behind the foreign boundary, with observable
// reference counts and per-goroutine attach bookkeeping, so the loopback
// mode of the daemon and the tests can stand in for a real foreign runtime.
package inproc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chatrelay/chatrelay/internal/ack"
	"github.com/chatrelay/chatrelay/internal/foreign"
)

// Callee is the behavior of one hosted object. Invoke receives the fixed
// method names the bridge issues; an unknown method is an error.
type Callee interface {
	Invoke(method string, args []foreign.Value) error
}

// Throwable is the runtime's exception representation, produced by error
// translation and passed to onConnectionInterrupted.
type Throwable struct {
	Cause error
}

type object struct {
	typeName string
	callee   Callee
}

func (o *object) TypeName() string { return o.typeName }

type globalRef struct {
	obj *object
}

func (r *globalRef) Object() foreign.Object { return r.obj }

// Runtime implements foreign.Runtime in-process.
type Runtime struct {
	acks *ack.Registry

	mu       sync.Mutex
	refs     map[*object]int
	attached map[uint64]*env
	closed   bool
}

var _ foreign.Runtime = (*Runtime)(nil)

func NewRuntime() *Runtime {
	return &Runtime{
		acks:     ack.NewRegistry(),
		refs:     make(map[*object]int),
		attached: make(map[uint64]*env),
	}
}

// RegisterObject creates a hosted object with the given declared type name.
// The object starts with a reference count of zero.
func (r *Runtime) RegisterObject(typeName string, callee Callee) foreign.Object {
	return &object{typeName: typeName, callee: callee}
}

// Acks exposes the acknowledgement-handle registry backing TokenValue.
func (r *Runtime) Acks() *ack.Registry {
	return r.acks
}

// AttachCurrentThread implements foreign.Runtime. It is idempotent per
// goroutine: attaching an already-attached goroutine returns its existing
// environment.
func (r *Runtime) AttachCurrentThread() (foreign.Env, error) {
	gid := goroutineID()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, &foreign.AttachError{Err: errors.New("runtime is shut down")}
	}
	if e, ok := r.attached[gid]; ok {
		return e, nil
	}
	e := &env{rt: r}
	r.attached[gid] = e
	return e, nil
}

// Attachments reports how many goroutines are currently attached.
func (r *Runtime) Attachments() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.attached)
}

// DetachCurrentThread releases the calling goroutine's attachment. The
// bridge never calls this; it exists for thread-teardown policy.
func (r *Runtime) DetachCurrentThread() {
	gid := goroutineID()
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attached, gid)
}

// NewGlobalRef implements foreign.Runtime.
func (r *Runtime) NewGlobalRef(obj foreign.Object) (foreign.GlobalRef, error) {
	o, ok := obj.(*object)
	if !ok {
		return nil, fmt.Errorf("object %T does not belong to this runtime", obj)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("runtime is shut down")
	}
	r.refs[o]++
	return &globalRef{obj: o}, nil
}

// CloneGlobalRef implements foreign.Runtime. The source reference must
// still be held.
func (r *Runtime) CloneGlobalRef(ref foreign.GlobalRef) foreign.GlobalRef {
	src := ref.(*globalRef)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[src.obj] == 0 {
		panic("inproc: CloneGlobalRef on a released reference")
	}
	r.refs[src.obj]++
	return &globalRef{obj: src.obj}
}

// DeleteGlobalRef implements foreign.Runtime.
func (r *Runtime) DeleteGlobalRef(ref foreign.GlobalRef) {
	gr, ok := ref.(*globalRef)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.refs[gr.obj] == 0 {
		panic("inproc: DeleteGlobalRef without a matching acquire")
	}
	r.refs[gr.obj]--
	if r.refs[gr.obj] == 0 {
		delete(r.refs, gr.obj)
	}
}

// RefCount reports the current strong-reference count of obj.
func (r *Runtime) RefCount(obj foreign.Object) int {
	o, ok := obj.(*object)
	if !ok {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs[o]
}

// Shutdown makes all later attach attempts fail, simulating a runtime that
// is going away. Held references stay valid for release.
func (r *Runtime) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.attached = make(map[uint64]*env)
}

type env struct {
	rt *Runtime
}

var _ foreign.Env = (*env)(nil)

func (e *env) BytesValue(b []byte) (foreign.Value, error) {
	// The caller only lends the envelope for the duration of the call.
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

func (e *env) TimestampValue(t time.Time) (foreign.Value, error) {
	return t.UnixMilli(), nil
}

func (e *env) TokenValue(token any) (foreign.Value, error) {
	if token == nil {
		return nil, &foreign.ConversionError{Kind: "token", Err: errors.New("nil token")}
	}
	handle := e.rt.acks.Register(token)
	// Tokens that track the handle minted for them get told about it.
	if b, ok := token.(interface{ HandleBound(uint64) }); ok {
		b.HandleBound(handle)
	}
	return handle, nil
}

func (e *env) CallVoidMethod(ref foreign.GlobalRef, method string, args ...foreign.Value) error {
	gr, ok := ref.(*globalRef)
	if !ok {
		return &foreign.InvocationError{Method: method, Err: fmt.Errorf("reference %T does not belong to this runtime", ref)}
	}
	if err := gr.obj.callee.Invoke(method, args); err != nil {
		return &foreign.InvocationError{Method: method, Err: err}
	}
	return nil
}

func (e *env) ThrowableValue(cause error) (foreign.Value, error) {
	if cause == nil {
		return nil, &foreign.TranslationError{Cause: cause, Err: errors.New("nil cause")}
	}
	return Throwable{Cause: cause}, nil
}
