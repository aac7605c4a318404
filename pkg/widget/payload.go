package widget

import "math"

// Range is the value model of sliders and status bars.
type Range struct {
	Min, Max float64
	Value    float64
	// Step quantizes SetValue when positive.
	Step float64
}

// SetMinMax sets the bounds, swapping them if given inverted, and re-clamps
// the current value.
func (r *Range) SetMinMax(lo, hi float64) {
	if lo > hi {
		lo, hi = hi, lo
	}
	r.Min, r.Max = lo, hi
	r.Value = r.clamp(r.Value)
}

// SetValue stores v clamped to [Min, Max] and snapped to Step.
func (r *Range) SetValue(v float64) {
	if math.IsNaN(v) {
		return
	}
	if r.Step > 0 {
		v = r.Min + math.Round((v-r.Min)/r.Step)*r.Step
	}
	r.Value = r.clamp(v)
}

// Fraction returns the value's position between Min and Max in [0, 1].
func (r *Range) Fraction() float64 {
	if r.Max <= r.Min {
		return 0
	}
	return (r.Value - r.Min) / (r.Max - r.Min)
}

func (r *Range) clamp(v float64) float64 {
	return max(r.Min, min(v, r.Max))
}

// InsertMode selects which end of a message log new lines are added to.
type InsertMode int

const (
	InsertBottom InsertMode = iota
	InsertTop
)

// MessageLine is a single line of a message frame.
type MessageLine struct {
	Text    string
	R, G, B float64
	// Age is the number of seconds since the line was added.
	Age float64
}

// MessageLog holds the lines of a message frame and fades them over time.
type MessageLog struct {
	Lines        []MessageLine
	MaxLines     int
	TimeVisible  float64
	FadeDuration float64
	Fading       bool
	Insert       InsertMode
}

// NewMessageLog returns a log with the host's defaults.
func NewMessageLog() *MessageLog {
	return &MessageLog{
		MaxLines:     120,
		TimeVisible:  10,
		FadeDuration: 3,
		Fading:       true,
		Insert:       InsertBottom,
	}
}

// Add appends a white line, dropping the oldest lines past MaxLines.
func (m *MessageLog) Add(text string) {
	m.AddColored(text, 1, 1, 1)
}

// AddColored appends a line with the given color.
func (m *MessageLog) AddColored(text string, r, g, b float64) {
	line := MessageLine{Text: text, R: r, G: g, B: b}
	if m.Insert == InsertTop {
		m.Lines = append([]MessageLine{line}, m.Lines...)
		if m.MaxLines > 0 && len(m.Lines) > m.MaxLines {
			m.Lines = m.Lines[:m.MaxLines]
		}
		return
	}
	m.Lines = append(m.Lines, line)
	if m.MaxLines > 0 && len(m.Lines) > m.MaxLines {
		m.Lines = m.Lines[len(m.Lines)-m.MaxLines:]
	}
}

// Tick ages every line by dt seconds.
func (m *MessageLog) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	for i := range m.Lines {
		m.Lines[i].Age += dt
	}
}

// Alpha returns the opacity of line i in [0, 1].
func (m *MessageLog) Alpha(i int) float64 {
	if i < 0 || i >= len(m.Lines) {
		return 0
	}
	if !m.Fading {
		return 1
	}
	age := m.Lines[i].Age
	switch {
	case age < m.TimeVisible:
		return 1
	case m.FadeDuration <= 0:
		return 0
	case age < m.TimeVisible+m.FadeDuration:
		return 1 - (age-m.TimeVisible)/m.FadeDuration
	default:
		return 0
	}
}

// VisibleLines returns the text of every line that has not fully faded, in
// display order.
func (m *MessageLog) VisibleLines() []string {
	var out []string
	for i, l := range m.Lines {
		if m.Alpha(i) > 0 {
			out = append(out, l.Text)
		}
	}
	return out
}

// Clear drops every line.
func (m *MessageLog) Clear() {
	m.Lines = nil
}
