package lottery

import "x-lotto/util/common"

// Session is a value snapshot of the in-progress draw.
type Session struct {
	UniverseSize int   `json:"universeSize"`
	DrawnNumbers []int `json:"drawnNumbers"`
}

// Engine draws numbers in [1, universe] without replacement.
//
// The not-yet-drawn values live in pool; a draw picks a uniform index and
// swap-removes it, so every draw costs O(1) however full the session is.
// Engine is not safe for concurrent use.
type Engine struct {
	maxUniverse int
	universe    int
	drawn       []int
	pool        []int
	marked      []bool // marked[n] reports whether n was drawn
	src         Source
}

// NewEngine returns an engine configured for universe, accepting later
// reconfiguration up to maxUniverse. A nil src uses DefaultSource.
func NewEngine(universe, maxUniverse int, src Source) (*Engine, error) {
	if maxUniverse < 1 {
		return nil, common.NewErrorf("lottery: max universe must be positive, got %d", maxUniverse)
	}
	if src == nil {
		src = DefaultSource()
	}
	e := &Engine{maxUniverse: maxUniverse, src: src}
	if err := e.Configure(universe); err != nil {
		return nil, err
	}
	return e, nil
}

// ValidateUniverse checks n against [1, MaxUniverse] without changing state.
func (e *Engine) ValidateUniverse(n int) error {
	if n < 1 || n > e.maxUniverse {
		return &ValidationError{Field: "universe size", Value: n, Min: 1, Max: e.maxUniverse}
	}
	return nil
}

// Configure sets the universe size and empties the session. On a validation
// error the previous configuration and session are kept.
func (e *Engine) Configure(n int) error {
	if err := e.ValidateUniverse(n); err != nil {
		return err
	}
	e.universe = n
	e.Reset()
	return nil
}

// Reset empties the session and keeps the universe size.
func (e *Engine) Reset() {
	e.drawn = e.drawn[:0]
	e.marked = make([]bool, e.universe+1)
	if cap(e.pool) < e.universe {
		e.pool = make([]int, e.universe)
	}
	e.pool = e.pool[:e.universe]
	for i := range e.pool {
		e.pool[i] = i + 1
	}
}

// DrawNext commits one new value. On a complete session it changes nothing
// and returns ErrDrawComplete.
func (e *Engine) DrawNext() (int, error) {
	if len(e.pool) == 0 {
		return 0, ErrDrawComplete
	}
	i := e.src.Intn(len(e.pool))
	last := len(e.pool) - 1
	n := e.pool[i]
	e.pool[i] = e.pool[last]
	e.pool = e.pool[:last]

	e.drawn = append(e.drawn, n)
	e.marked[n] = true
	return n, nil
}

// Preview returns a random value that has not been drawn yet, without
// committing it. False when the session is complete.
func (e *Engine) Preview() (int, bool) {
	if len(e.pool) == 0 {
		return 0, false
	}
	return e.pool[e.src.Intn(len(e.pool))], true
}

// Restore replaces the session with s after checking that s is a state the
// engine could have produced: universe in range, numbers unique and in
// [1, universe].
func (e *Engine) Restore(s Session) error {
	if err := e.ValidateUniverse(s.UniverseSize); err != nil {
		return err
	}
	if len(s.DrawnNumbers) > s.UniverseSize {
		return common.NewErrorf("lottery: %d numbers drawn from a universe of %d", len(s.DrawnNumbers), s.UniverseSize)
	}
	seen := make([]bool, s.UniverseSize+1)
	for _, n := range s.DrawnNumbers {
		if n < 1 || n > s.UniverseSize {
			return common.NewErrorf("lottery: drawn number %d outside [1, %d]", n, s.UniverseSize)
		}
		if seen[n] {
			return common.NewErrorf("lottery: drawn number %d repeated", n)
		}
		seen[n] = true
	}

	e.universe = s.UniverseSize
	e.drawn = append(e.drawn[:0], s.DrawnNumbers...)
	e.marked = seen
	e.pool = e.pool[:0]
	for n := 1; n <= e.universe; n++ {
		if !seen[n] {
			e.pool = append(e.pool, n)
		}
	}
	return nil
}

func (e *Engine) IsComplete() bool {
	return len(e.drawn) == e.universe
}

func (e *Engine) IsDrawn(n int) bool {
	return n >= 1 && n <= e.universe && e.marked[n]
}

func (e *Engine) Remaining() int {
	return len(e.pool)
}

func (e *Engine) UniverseSize() int {
	return e.universe
}

func (e *Engine) MaxUniverse() int {
	return e.maxUniverse
}

// Drawn returns a copy of the drawn numbers in draw order.
func (e *Engine) Drawn() []int {
	out := make([]int, len(e.drawn))
	copy(out, e.drawn)
	return out
}

func (e *Engine) Session() Session {
	return Session{UniverseSize: e.universe, DrawnNumbers: e.Drawn()}
}
