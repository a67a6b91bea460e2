// Package foreign defines the boundary between native code and a foreign
// runtime that owns listener objects. Native code never interprets foreign
// values or objects; it only converts arguments, issues named calls and
// manages object references through the interfaces below.
package foreign

import "time"

// Value is a foreign-runtime representation of a native value. It is
// meaningful only to the runtime whose Env produced it.
type Value any

// Object is an opaque handle to an object on the foreign heap. Native code
// reads only its identity and declared type name.
type Object interface {
	TypeName() string
}

// GlobalRef is a runtime-managed strong reference keeping a foreign object
// alive beyond the scope that created it. The reference count lives on the
// runtime side; the native side's only obligation is one paired acquire and
// release per reference.
type GlobalRef interface {
	Object() Object
}

// ValueConverter converts native values into foreign representations.
type ValueConverter interface {
	// BytesValue converts a byte sequence into a foreign byte array.
	BytesValue(b []byte) (Value, error)
	// TimestampValue converts a timestamp into a foreign 64-bit
	// epoch-millisecond value.
	TimestampValue(t time.Time) (Value, error)
	// TokenValue converts an opaque native token into its 64-bit handle
	// representation, minting the handle. Ownership of the handle's
	// semantics stays with the subsystem that registered the token.
	TokenValue(token any) (Value, error)
}

// Invoker performs a named call with positional arguments against a foreign
// object.
type Invoker interface {
	CallVoidMethod(ref GlobalRef, method string, args ...Value) error
}

// ErrorTranslator converts a native error value into a foreign exception
// object.
type ErrorTranslator interface {
	ThrowableValue(cause error) (Value, error)
}

// Env is a per-thread environment handle. It is valid only on the thread
// that attached it.
type Env interface {
	ValueConverter
	Invoker
	ErrorTranslator
}

// Runtime is the process-wide handle to the foreign runtime. It is un-owned:
// all bridge instances share the same Runtime value for the process
// lifetime.
type Runtime interface {
	// AttachCurrentThread associates the calling thread with the runtime
	// and returns its environment. Attachment is idempotent: a nested
	// attach on an already-attached thread is a no-op, never an error.
	// Failure means the runtime is unreachable and is unrecoverable.
	AttachCurrentThread() (Env, error)

	// NewGlobalRef acquires a strong reference to obj. Does not require an
	// attached thread.
	NewGlobalRef(obj Object) (GlobalRef, error)

	// CloneGlobalRef re-derives a strong reference from an existing valid
	// reference. The source must still be held; under that invariant the
	// operation cannot fail.
	CloneGlobalRef(ref GlobalRef) GlobalRef

	// DeleteGlobalRef releases one strong reference.
	DeleteGlobalRef(ref GlobalRef)
}
