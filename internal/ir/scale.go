package ir

// Scale is the value-mapper table the engine carries for an external
// renderer: a named list of semitone intervals within one octave.
type Scale struct {
	Name      string `json:"name" yaml:"name"`
	Intervals []int  `json:"intervals" yaml:"intervals"`
}

// Chromatic is the default scale: every semitone 0..11.
func Chromatic() Scale {
	return Scale{
		Name:      "Chromatic",
		Intervals: []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
	}
}

// Map converts an array value into a pitch offset in octaves.
//
// The value selects an interval with a true (non-negative) modulo and whole
// wraps of the table add octaves. offset is expressed in semitones.
// An empty table maps every value to offset/12.
func (s Scale) Map(value, offset int) float64 {
	n := len(s.Intervals)
	base := float64(offset) / 12
	if n == 0 {
		return base
	}
	idx := ((value % n) + n) % n
	octave := floorDiv(value, n)
	return float64(s.Intervals[idx])/12 + float64(octave) + base
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Clone returns a deep copy of s.
func (s Scale) Clone() Scale {
	out := Scale{Name: s.Name}
	if s.Intervals != nil {
		out.Intervals = append([]int(nil), s.Intervals...)
	}
	return out
}
