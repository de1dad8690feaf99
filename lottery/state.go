package lottery

import (
	"fmt"
	"time"

	"x-lotto/logger"
	"x-lotto/util/common"
)

type Options struct {
	MaxUniverse     int
	DefaultUniverse int
	Retention       int
	Source          Source
	// Now and NewID override the clock and id generator of the history.
	Now   func() time.Time
	NewID func() string
}

// State is a rendering snapshot; it shares nothing with AppState.
type State struct {
	Session         Session        `json:"session"`
	History         []HistoryEntry `json:"history"`
	Complete        bool           `json:"complete"`
	Remaining       int            `json:"remaining"`
	MaxUniverse     int            `json:"maxUniverse"`
	DefaultUniverse int            `json:"defaultUniverse"`
	Retention       int            `json:"retention"`
}

// AppState owns the engine, the history log and their persistence. It is
// read from storage once by Load and every mutation writes through to the
// store; Save rewrites everything. AppState is not safe for concurrent use.
type AppState struct {
	opts    Options
	engine  *Engine
	history *History
	store   *Store
}

func NewAppState(kv KeyValueStore, opts Options) (*AppState, error) {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	engine, err := NewEngine(opts.DefaultUniverse, opts.MaxUniverse, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("default universe: %w", err)
	}
	history := NewHistory(opts.Retention)
	if opts.Now != nil {
		history.now = opts.Now
	}
	if opts.NewID != nil {
		history.newID = opts.NewID
	}
	return &AppState{
		opts:    opts,
		engine:  engine,
		history: history,
		store:   NewStore(kv, opts.DefaultUniverse),
	}, nil
}

// Load restores the session and the history. Missing or undecodable data
// leaves the corresponding part empty and is only logged; the returned error
// is reserved for a failing store.
func (a *AppState) Load() error {
	sess, found, err := a.store.LoadSession()
	switch {
	case IsDecode(err):
		logger.Warning("discarding saved session:", err)
	case err != nil:
		return fmt.Errorf("load session: %w", err)
	case found:
		if err := a.engine.Restore(sess); err != nil {
			logger.Warningf("discarding saved session %v: %v", sess.DrawnNumbers, err)
			a.engine.Reset()
		}
	}

	entries, found, err := a.store.LoadHistory()
	switch {
	case IsDecode(err):
		logger.Warning("discarding saved history:", err)
	case err != nil:
		return fmt.Errorf("load history: %w", err)
	case found:
		a.history.Restore(entries)
	}

	logger.Infof("state loaded: universe %d, %d drawn, %d history entries",
		a.engine.UniverseSize(), len(a.engine.drawn), a.history.Len())
	return nil
}

func (a *AppState) Save() error {
	return common.Combine(a.saveSession(), a.saveHistory())
}

func (a *AppState) saveSession() error {
	if err := a.store.SaveSession(a.engine.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (a *AppState) saveHistory() error {
	if err := a.store.SaveHistory(a.history.Entries()); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

// Configure changes the universe size. A session abandoned by the change is
// archived first. Invalid sizes return a *ValidationError and keep the
// current configuration and session.
func (a *AppState) Configure(n int) error {
	if err := a.engine.ValidateUniverse(n); err != nil {
		return err
	}
	_, archived := a.history.Archive(a.engine.Drawn())
	if err := a.engine.Configure(n); err != nil {
		return err
	}
	if archived {
		return a.Save()
	}
	return a.saveSession()
}

// Draw commits the next number and persists the session. A store failure is
// returned together with the committed number.
func (a *AppState) Draw() (int, error) {
	n, err := a.engine.DrawNext()
	if err != nil {
		return 0, err
	}
	return n, a.saveSession()
}

// Reset finishes the current session: a non-empty one is archived, then the
// drawn numbers are cleared.
func (a *AppState) Reset() (HistoryEntry, bool, error) {
	entry, archived := a.history.Archive(a.engine.Drawn())
	a.engine.Reset()
	if archived {
		return entry, true, a.Save()
	}
	return entry, false, a.saveSession()
}

// Discard clears the drawn numbers without archiving them.
func (a *AppState) Discard() error {
	a.engine.Reset()
	return a.saveSession()
}

// Archive adds numbers to the history as a finished session, independent of
// the current one.
func (a *AppState) Archive(numbers []int) (HistoryEntry, bool, error) {
	entry, ok := a.history.Archive(numbers)
	if !ok {
		return entry, false, nil
	}
	return entry, true, a.saveHistory()
}

// ClearAll wipes the session, the history and their stored keys, and goes
// back to the default universe size.
func (a *AppState) ClearAll() error {
	if err := a.engine.Configure(a.opts.DefaultUniverse); err != nil {
		return err
	}
	a.history.Clear()
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	return nil
}

func (a *AppState) Preview() (int, bool) {
	return a.engine.Preview()
}

func (a *AppState) IsComplete() bool {
	return a.engine.IsComplete()
}

func (a *AppState) Remaining() int {
	return a.engine.Remaining()
}

func (a *AppState) UniverseSize() int {
	return a.engine.UniverseSize()
}

func (a *AppState) MaxUniverse() int {
	return a.engine.MaxUniverse()
}

func (a *AppState) DefaultUniverse() int {
	return a.opts.DefaultUniverse
}

func (a *AppState) Session() Session {
	return a.engine.Session()
}

func (a *AppState) Entry(id string) (HistoryEntry, error) {
	e, ok := a.history.Find(id)
	if !ok {
		return HistoryEntry{}, ErrEntryNotFound
	}
	return e, nil
}

func (a *AppState) Snapshot() State {
	return State{
		Session:         a.engine.Session(),
		History:         a.history.Entries(),
		Complete:        a.engine.IsComplete(),
		Remaining:       a.engine.Remaining(),
		MaxUniverse:     a.engine.MaxUniverse(),
		DefaultUniverse: a.opts.DefaultUniverse,
		Retention:       a.history.Limit(),
	}
}
