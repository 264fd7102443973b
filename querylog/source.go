package querylog

import (
	"reflect"
	"runtime"
	"strings"
)

// SourceFilter decides which stack frame a statement is attributed to.
// Prefixes are matched against the frame's function name and file path.
// A frame is skipped when it matches Skip, unless it also matches Allow.
type SourceFilter struct {
	Skip  []string
	Allow []string
}

const maxDepth = 64

// DefaultSkip lists the frames that never count as a statement's origin:
// the runtime, database/sql, this package and the sqlite driver. Callers
// append the packages of their own data layer.
func DefaultSkip() []string {
	return []string{
		"runtime.",
		"database/sql.",
		reflect.TypeOf(Param{}).PkgPath() + ".",
		"github.com/mattn/go-sqlite3",
	}
}

func (f SourceFilter) accepts(frame runtime.Frame) bool {
	if frame.File == "" {
		return false
	}
	if hasAnyPrefix(frame.Function, f.Allow) || hasAnyPrefix(frame.File, f.Allow) {
		return true
	}
	return !hasAnyPrefix(frame.Function, f.Skip) && !hasAnyPrefix(frame.File, f.Skip)
}

// locate walks the stack above skip frames and returns the first accepted
// frame, or nil.
func (f SourceFilter) locate(skip int) *Source {
	pcs := make([]uintptr, maxDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if f.accepts(frame) {
			return &Source{File: frame.File, Line: frame.Line, Function: frame.Function}
		}
		if !more {
			return nil
		}
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
