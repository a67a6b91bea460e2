package bridge

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/chatrelay/chatrelay/internal/foreign"
)

type mockObject struct {
	typeName string
}

func (o *mockObject) TypeName() string { return o.typeName }

type mockGlobalRef struct {
	obj foreign.Object
}

func (r *mockGlobalRef) Object() foreign.Object { return r.obj }

type mockRuntime struct {
	mock.Mock
}

func (m *mockRuntime) AttachCurrentThread() (foreign.Env, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(foreign.Env), args.Error(1)
}

func (m *mockRuntime) NewGlobalRef(obj foreign.Object) (foreign.GlobalRef, error) {
	args := m.Called(obj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(foreign.GlobalRef), args.Error(1)
}

func (m *mockRuntime) CloneGlobalRef(ref foreign.GlobalRef) foreign.GlobalRef {
	args := m.Called(ref)
	return args.Get(0).(foreign.GlobalRef)
}

func (m *mockRuntime) DeleteGlobalRef(ref foreign.GlobalRef) {
	m.Called(ref)
}

type mockEnv struct {
	mock.Mock
}

func (m *mockEnv) BytesValue(b []byte) (foreign.Value, error) {
	args := m.Called(b)
	return args.Get(0), args.Error(1)
}

func (m *mockEnv) TimestampValue(t time.Time) (foreign.Value, error) {
	args := m.Called(t)
	return args.Get(0), args.Error(1)
}

func (m *mockEnv) TokenValue(token any) (foreign.Value, error) {
	args := m.Called(token)
	return args.Get(0), args.Error(1)
}

func (m *mockEnv) CallVoidMethod(ref foreign.GlobalRef, method string, args ...foreign.Value) error {
	callArgs := m.Called(ref, method, args)
	return callArgs.Error(0)
}

func (m *mockEnv) ThrowableValue(cause error) (foreign.Value, error) {
	args := m.Called(cause)
	return args.Get(0), args.Error(1)
}
