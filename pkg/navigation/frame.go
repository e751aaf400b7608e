package navigation

// Choice is one selectable action of a menu.
type Choice struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

// Frame is a snapshot of a rendered menu.
type Frame struct {
	Prompt string     `json:"prompt"`
	Rows   [][]Choice `json:"rows"`
}

// NewFrame builds a frame from rows of choices.
func NewFrame(prompt string, rows ...[]Choice) Frame {
	return Frame{Prompt: prompt, Rows: rows}
}

// Row is a convenience constructor for one line of choices.
func Row(choices ...Choice) []Choice {
	return choices
}

// Choices returns every choice of the frame in display order.
func (f Frame) Choices() []Choice {
	var out []Choice
	for _, row := range f.Rows {
		out = append(out, row...)
	}
	return out
}

// Lookup finds a choice by its token.
func (f Frame) Lookup(token string) (Choice, bool) {
	for _, row := range f.Rows {
		for _, c := range row {
			if c.Token == token {
				return c, true
			}
		}
	}
	return Choice{}, false
}

// Clone returns a deep copy of the frame.
func (f Frame) Clone() Frame {
	rows := make([][]Choice, len(f.Rows))
	for i, row := range f.Rows {
		rows[i] = append([]Choice(nil), row...)
	}
	return Frame{Prompt: f.Prompt, Rows: rows}
}
