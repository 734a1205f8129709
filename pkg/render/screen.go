package render

import (
	"strconv"
	"strings"
	"sync"
)

// Screen is a minimal virtual terminal that understands the sequences the
// renderer emits: cursor up and down, column moves, line and screen
// erasure. Styling sequences are dropped. It is used to check what a user
// would actually see after a series of paints.
type Screen struct {
	mu    sync.Mutex
	lines [][]rune
	row   int
	col   int
	// pending holds an escape sequence split across writes
	pending []byte
}

// NewScreen returns an empty screen
func NewScreen() *Screen { return &Screen{} }

// Write implements io.Writer
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := append(s.pending, p...)
	s.pending = nil

	text := []rune(string(data))
	for i := 0; i < len(text); i++ {
		switch r := text[i]; r {
		case '\r':
			s.col = 0
		case '\n':
			s.row++
			s.col = 0
		case 0x1b:
			n, ok := s.escape(text[i:])
			if !ok {
				s.pending = []byte(string(text[i:]))
				return len(p), nil
			}
			i += n - 1
		default:
			s.put(r)
		}
	}
	return len(p), nil
}

// escape applies the CSI sequence at the start of seq and returns its
// length. ok is false when the sequence is incomplete.
func (s *Screen) escape(seq []rune) (int, bool) {
	if len(seq) < 2 {
		return 0, false
	}
	if seq[1] != '[' {
		return 2, true
	}
	for j := 2; j < len(seq); j++ {
		c := seq[j]
		if c < 0x40 || c > 0x7e {
			continue
		}
		s.csi(string(seq[2:j]), c)
		return j + 1, true
	}
	return 0, false
}

func (s *Screen) csi(params string, final rune) {
	if strings.HasPrefix(params, "?") {
		return
	}
	n := 0
	if params != "" && !strings.Contains(params, ";") {
		n, _ = strconv.Atoi(params)
	}
	switch final {
	case 'A':
		s.row -= max(n, 1)
		if s.row < 0 {
			s.row = 0
		}
	case 'B':
		s.row += max(n, 1)
	case 'G':
		s.col = max(n, 1) - 1
	case 'K':
		s.grow()
		line := s.lines[s.row]
		switch n {
		case 2:
			s.lines[s.row] = nil
		case 0:
			if s.col < len(line) {
				s.lines[s.row] = line[:s.col]
			}
		}
	case 'J':
		s.grow()
		if s.col < len(s.lines[s.row]) {
			s.lines[s.row] = s.lines[s.row][:s.col]
		}
		s.lines = s.lines[:s.row+1]
	}
}

func (s *Screen) grow() {
	for len(s.lines) <= s.row {
		s.lines = append(s.lines, nil)
	}
}

func (s *Screen) put(r rune) {
	s.grow()
	line := s.lines[s.row]
	for len(line) < s.col {
		line = append(line, ' ')
	}
	if s.col < len(line) {
		line[s.col] = r
	} else {
		line = append(line, r)
	}
	s.lines[s.row] = line
	s.col++
}

// Lines returns the visible rows, trailing blank rows removed
func (s *Screen) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	for i, l := range s.lines {
		out[i] = strings.TrimRight(string(l), " ")
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// Cursor returns the cursor position
func (s *Screen) Cursor() (row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.row, s.col
}
