package ui

// consoleKey is the buffer for connection, server and admin notices.
const consoleKey = ""

type buffer struct {
	lines  []string
	unread int
}

// viewState holds the scrollback of every open buffer. It is only
// touched from the tview event loop.
type viewState struct {
	order    []string
	buffers  map[string]*buffer
	current  string
	maxLines int
}

func newViewState(maxLines int) *viewState {
	s := &viewState{
		buffers:  make(map[string]*buffer),
		maxLines: maxLines,
	}
	s.open(consoleKey)
	return s
}

// open creates the buffer if needed and reports whether it was new.
func (s *viewState) open(key string) bool {
	if _, ok := s.buffers[key]; ok {
		return false
	}
	s.buffers[key] = &buffer{}
	s.order = append(s.order, key)
	return true
}

// close drops a buffer. Closing the selected buffer selects its left
// neighbour. The console cannot be closed.
func (s *viewState) close(key string) {
	if key == consoleKey {
		return
	}
	idx := s.index(key)
	if idx < 0 {
		return
	}
	delete(s.buffers, key)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	if s.current == key {
		s.current = s.order[idx-1]
	}
}

func (s *viewState) index(key string) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	return -1
}

func (s *viewState) append(key string, lines ...string) {
	s.open(key)
	b := s.buffers[key]
	b.lines = append(b.lines, lines...)
	if over := len(b.lines) - s.maxLines; s.maxLines > 0 && over > 0 {
		b.lines = append([]string(nil), b.lines[over:]...)
	}
	if key != s.current {
		b.unread += len(lines)
	}
}

func (s *viewState) selectBuffer(key string) bool {
	b, ok := s.buffers[key]
	if !ok {
		return false
	}
	s.current = key
	b.unread = 0
	return true
}

func (s *viewState) lines(key string) []string {
	if b, ok := s.buffers[key]; ok {
		return b.lines
	}
	return nil
}

func (s *viewState) unread(key string) int {
	if b, ok := s.buffers[key]; ok {
		return b.unread
	}
	return 0
}

func (s *viewState) keys() []string {
	return append([]string(nil), s.order...)
}
