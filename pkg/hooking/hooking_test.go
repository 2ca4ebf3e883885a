package hooking

import (
	"bytes"
	"log/slog"

	"go.uber.org/mock/gomock"

	"github.com/strongdm/apmcore/pkg/logging"
)

//go:generate go run go.uber.org/mock/mockgen -destination mock_hooking_test.go -self_package=github.com/strongdm/apmcore/pkg/hooking -package $GOPACKAGE -write_package_comment=false github.com/strongdm/apmcore/pkg/hooking Engine,ErrorHandler

// frame is the FrameHandle used by the tests.
type frame struct {
	class    string
	function string
}

// frameSource holds the frame the test engine reports as executing.
type frameSource struct {
	current *frame
}

// newFrameEngine returns a mock engine deriving keys from frame names and
// reporting src.current as the executing frame.
func newFrameEngine(ctrl *gomock.Controller, src *frameSource) *MockEngine {
	e := NewMockEngine(ctrl)
	e.EXPECT().CurrentFrame().DoAndReturn(func() (FrameHandle, bool) {
		if src == nil || src.current == nil {
			return nil, false
		}
		return src.current, true
	}).AnyTimes()
	e.EXPECT().FunctionKey(gomock.Any()).DoAndReturn(func(f FrameHandle) (FunctionKey, bool) {
		fr := f.(*frame)
		if fr.function == "" {
			return 0, false
		}
		return KeyOf(fr.class, fr.function), true
	}).AnyTimes()
	e.EXPECT().FunctionName(gomock.Any()).DoAndReturn(func(f FrameHandle) (string, string) {
		fr := f.(*frame)
		return fr.class, fr.function
	}).AnyTimes()
	return e
}

// bufferLogger returns a debug logger writing into a buffer.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.New(logging.Options{Level: logging.LevelDebug, Output: &buf}), &buf
}
