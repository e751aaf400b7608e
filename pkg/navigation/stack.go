package navigation

// Stack is the menu history of a single user. The zero value is an empty stack.
type Stack struct {
	Frames []Frame `json:"frames"`
}

// Push places a frame on top of the stack.
func (s *Stack) Push(f Frame) {
	s.Frames = append(s.Frames, f)
}

// Pop goes back one step. When more than one frame is held it discards the top
// frame and returns the new top. At depth 1 or below it returns false and the
// stack is left untouched.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.Frames) <= 1 {
		return Frame{}, false
	}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return s.Frames[len(s.Frames)-1], true
}

// Top returns the frame currently showing.
func (s *Stack) Top() (Frame, bool) {
	if len(s.Frames) == 0 {
		return Frame{}, false
	}
	return s.Frames[len(s.Frames)-1], true
}

// Depth reports how many frames are held.
func (s *Stack) Depth() int {
	return len(s.Frames)
}

// Reset discards the history and makes root the only frame.
func (s *Stack) Reset(root Frame) {
	s.Frames = []Frame{root}
}

// Clone returns an independent copy. Pushing onto the copy never writes into
// the original backing array.
func (s Stack) Clone() Stack {
	if s.Frames == nil {
		return Stack{}
	}
	frames := make([]Frame, len(s.Frames))
	for i, f := range s.Frames {
		frames[i] = f.Clone()
	}
	return Stack{Frames: frames}
}
