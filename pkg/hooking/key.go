package hooking

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// FunctionKey identifies a (declaring class, function name) pair for the
// lifetime of a request.
type FunctionKey uint64

// String formats the key the way debug logs print it.
func (k FunctionKey) String() string {
	return fmt.Sprintf("0x%016X", uint64(k))
}

var keySeparator = [1]byte{0}

// KeyOf derives the key of class::function. A bare function has an empty
// class. The names are streamed through a stack digest, so no string is built.
func KeyOf(class, function string) FunctionKey {
	var d xxhash.Digest
	d.Reset()
	_, _ = d.WriteString(class)
	_, _ = d.Write(keySeparator[:])
	_, _ = d.WriteString(function)
	return FunctionKey(d.Sum64())
}

// ComputeKey returns the key of the callable executing in frame. It returns
// false when the frame has no resolvable callable, e.g. top-level file scope.
func ComputeKey(engine Engine, frame FrameHandle) (FunctionKey, bool) {
	if engine == nil || frame == nil {
		return 0, false
	}
	return engine.FunctionKey(frame)
}

// KeyFromNames derives a frame's key from its names with KeyOf. Engines that
// have no interned identity for callables implement FunctionKey with it.
func KeyFromNames(engine Engine, frame FrameHandle) (FunctionKey, bool) {
	class, function := engine.FunctionName(frame)
	if function == "" {
		return 0, false
	}
	return KeyOf(class, function), true
}
