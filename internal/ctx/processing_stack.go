package ctx

import (
	"github.com/hlasm-tools/hlasmcore/internal/lexspan"
	"github.com/hlasm-tools/hlasmcore/internal/reslocation"
)

// FrameKind distinguishes the reason a processing-stack frame was pushed
// (spec §4.1 "processing stack").
type FrameKind int

const (
	FrameOpenCode FrameKind = iota
	FrameMacroCall
	FrameCopyMember
	FrameLookahead
)

// Frame is one entry of the processing stack: a nested macro call, a COPY
// expansion, or a lookahead excursion, each with the source location that
// invoked it.
type Frame struct {
	Kind     FrameKind
	Name     idType // macro or copy member name; empty for FrameOpenCode/FrameLookahead
	Location reslocation.Location
	Range    lexspan.Range
}

// Stack is the nested sequence of active macro calls, COPY expansions, and
// lookahead excursions a statement is being processed under. Ctx keeps one
// instance for the life of an analysis.
type Stack struct {
	frames []Frame
}

// Push enters a new frame.
func (s *Stack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop leaves the innermost frame. ok is false if the stack was empty.
func (s *Stack) Pop() (Frame, bool) {
	n := len(s.frames)
	if n == 0 {
		return Frame{}, false
	}

	f := s.frames[n-1]
	s.frames = s.frames[:n-1]

	return f, true
}

// Depth returns the current nesting depth.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// Top returns the innermost frame without removing it.
func (s *Stack) Top() (Frame, bool) {
	n := len(s.frames)
	if n == 0 {
		return Frame{}, false
	}

	return s.frames[n-1], true
}

// Snapshot copies the current stack, outermost first, for attaching to a
// Symbol at definition time.
func (s *Stack) Snapshot() []Frame {
	if len(s.frames) == 0 {
		return nil
	}

	return append([]Frame(nil), s.frames...)
}

// PushFrame enters a new processing-stack frame and updates the
// max-nesting metric.
func (c *Ctx) PushFrame(f Frame) {
	c.stack.Push(f)

	if d := c.stack.Depth(); d > c.metrics.MaxNesting {
		c.metrics.MaxNesting = d
	}
}

// PopFrame leaves the innermost processing-stack frame.
func (c *Ctx) PopFrame() (Frame, bool) {
	return c.stack.Pop()
}

// StackDepth returns the current processing-stack nesting depth.
func (c *Ctx) StackDepth() int {
	return c.stack.Depth()
}
