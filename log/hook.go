package log

import (
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// stackHook attaches the caller frames to error and fatal events.
type stackHook struct{}

func (h *stackHook) Run(e *zerolog.Event, level zerolog.Level, _ string) {
	if level < zerolog.ErrorLevel || level == zerolog.NoLevel {
		return
	}

	arr := zerolog.Arr()
	for _, f := range callerFrames(5) {
		arr.Dict(zerolog.Dict().
			Str("function", f.Function).
			Str("file", f.File).
			Int("line", f.Line),
		)
	}
	e.Array("stack", arr)
}

func callerFrames(skip int) []runtime.Frame {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	out := make([]runtime.Frame, 0, n)
	for {
		frame, more := frames.Next()
		// Frames inside zerolog itself are noise.
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "github.com/rs/zerolog.") {
			out = append(out, frame)
		}
		if !more {
			break
		}
	}

	return out
}
