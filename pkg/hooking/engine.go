package hooking

import (
	"bytes"
	"context"
)

// FrameHandle is an engine-owned call frame. The core never inspects it.
type FrameHandle any

// Engine adapts one host engine version to the core.
// Implementations are request-local and need not be safe for concurrent use.
type Engine interface {
	// CurrentFrame returns the frame currently executing, if any.
	CurrentFrame() (FrameHandle, bool)

	// FunctionKey returns the key of the callable executing in frame.
	// Returns false when the frame has no callable.
	FunctionKey(frame FrameHandle) (FunctionKey, bool)

	// FunctionName returns the declaring class (empty for bare functions)
	// and the function name of frame.
	FunctionName(frame FrameHandle) (class, function string)
}

// HostString is an engine-owned string handle carrying its own length.
type HostString struct {
	val string
}

// NewHostString wraps s in a handle.
func NewHostString(s string) *HostString {
	return &HostString{val: s}
}

// View returns the text of the handle; nil handles view as "".
func (h *HostString) View() string {
	if h == nil {
		return ""
	}
	return h.val
}

// CString is a raw NUL-terminated buffer as passed by older engines.
type CString []byte

// View returns the text up to the first NUL; nil buffers view as "".
func (c CString) View() string {
	if c == nil {
		return ""
	}
	if i := bytes.IndexByte(c, 0); i >= 0 {
		return string(c[:i])
	}
	return string(c)
}

// ErrorCallback is the shape of the host's diagnostic-channel callback.
// FileNameArg depends on the engine ABI the module is built for.
type ErrorCallback func(ctx context.Context, kind int, fileName FileNameArg, line uint32, message *HostString)

// DiagnosticChannel is the host's native error-reporting channel.
type DiagnosticChannel interface {
	RegisterErrorCallback(cb ErrorCallback)
}

// ErrorEvent is one diagnostic raised by the host, normalized to text views.
type ErrorEvent struct {
	Kind     int
	FileName string
	Line     uint32
	Message  string
}

// ErrorHandler receives the events the Observer forwards.
type ErrorHandler interface {
	HandleError(kind int, fileName string, line uint32, message string)
}

// ErrorHandlerFunc adapts a function to ErrorHandler.
type ErrorHandlerFunc func(kind int, fileName string, line uint32, message string)

// HandleError calls f.
func (f ErrorHandlerFunc) HandleError(kind int, fileName string, line uint32, message string) {
	f(kind, fileName, line, message)
}
