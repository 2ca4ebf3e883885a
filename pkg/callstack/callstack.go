// Package callstack is a reference hooking.Engine for interpreters hosted in
// Go: the host pushes a frame when a script function starts and pops it when
// the function returns.
package callstack

import (
	"context"

	"github.com/strongdm/apmcore/pkg/hooking"
)

// Site identifies where a script function executes.
type Site struct {
	Class    string
	Function string
	File     string
	Line     int
}

// Frame is one entry of the stack. Its key is derived once, at push time.
type Frame struct {
	Site
	key    hooking.FunctionKey
	hasKey bool
}

// Stack is the call stack of one request. It is not safe for concurrent use.
type Stack struct {
	frames []*Frame
}

var _ hooking.Engine = (*Stack)(nil)

// New returns an empty stack. With no frame pushed, the request is at file
// scope.
func New() *Stack {
	return &Stack{}
}

// Push enters site and returns its frame.
func (s *Stack) Push(site Site) *Frame {
	f := &Frame{Site: site}
	if site.Function != "" {
		f.key = hooking.KeyOf(site.Class, site.Function)
		f.hasKey = true
	}
	s.frames = append(s.frames, f)
	return f
}

// Pop leaves the innermost frame.
func (s *Stack) Pop() (*Frame, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

// Depth returns the number of frames on the stack.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Trace returns up to limit sites, innermost first. A negative limit returns
// every site; zero returns none.
func (s *Stack) Trace(limit int) []Site {
	n := len(s.frames)
	if limit >= 0 && limit < n {
		n = limit
	}
	sites := make([]Site, 0, n)
	for i := len(s.frames) - 1; i >= 0 && len(sites) < n; i-- {
		sites = append(sites, s.frames[i].Site)
	}
	return sites
}

// CurrentFrame implements hooking.Engine.
func (s *Stack) CurrentFrame() (hooking.FrameHandle, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	return s.frames[len(s.frames)-1], true
}

// FunctionKey implements hooking.Engine.
func (s *Stack) FunctionKey(frame hooking.FrameHandle) (hooking.FunctionKey, bool) {
	f, ok := frame.(*Frame)
	if !ok || f == nil || !f.hasKey {
		return 0, false
	}
	return f.key, true
}

// FunctionName implements hooking.Engine.
func (s *Stack) FunctionName(frame hooking.FrameHandle) (class, function string) {
	f, ok := frame.(*Frame)
	if !ok || f == nil {
		return "", ""
	}
	return f.Class, f.Function
}

// Call runs fn as the body of site: the frame is pushed for the duration of
// the call and the call goes through in, so hooks registered for site run
// around fn.
func (s *Stack) Call(ctx context.Context, in *hooking.Interceptor, site Site, this any, args []any, fn func(ctx context.Context, args []any) (any, error)) (any, error) {
	f := s.Push(site)
	defer s.Pop()

	if in == nil {
		return fn(ctx, args)
	}
	return in.Invoke(ctx, f, &hooking.Call{
		This: this,
		Args: args,
		File: site.File,
		Line: site.Line,
	}, fn)
}

type stackKey struct{}

// WithStack returns a context carrying s.
func WithStack(ctx context.Context, s *Stack) context.Context {
	return context.WithValue(ctx, stackKey{}, s)
}

// FromContext returns the stack carried by ctx.
func FromContext(ctx context.Context) (*Stack, bool) {
	s, ok := ctx.Value(stackKey{}).(*Stack)
	return s, ok && s != nil
}
