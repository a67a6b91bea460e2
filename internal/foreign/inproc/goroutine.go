package inproc

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the current goroutine's ID from the stack header,
// "goroutine N [running]:". The ID only keys attach bookkeeping; it never
// leaves this package.
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseUint(string(buf), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
