package lottery

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// RecordVersion is the version written into every persisted record.
// Version 0 is the legacy layout: a bare JSON array with no envelope.
const RecordVersion = 1

type sessionRecord struct {
	Version      int   `json:"version"`
	UniverseSize int   `json:"universeSize"`
	Numbers      []int `json:"numbers"`
}

type historyRecord struct {
	Version int           `json:"version"`
	Entries []entryRecord `json:"entries"`
}

type entryRecord struct {
	ID        entryID   `json:"id"`
	Numbers   []int     `json:"numbers"`
	Timestamp time.Time `json:"timestamp"`
}

// entryID accepts both string ids and the numeric millisecond ids written by
// the legacy layout.
type entryID string

func (id *entryID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = entryID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("history id %s is neither a string nor a number", b)
	}
	*id = entryID(b)
	return nil
}

func EncodeSession(s Session) ([]byte, error) {
	numbers := s.DrawnNumbers
	if numbers == nil {
		numbers = []int{}
	}
	return json.Marshal(sessionRecord{
		Version:      RecordVersion,
		UniverseSize: s.UniverseSize,
		Numbers:      numbers,
	})
}

// DecodeSession reads either a versioned session record or a legacy bare
// array. Legacy arrays carry no universe size, so defaultUniverse is used.
// The result is not checked against the session invariants; Engine.Restore
// does that.
func DecodeSession(data []byte, defaultUniverse int) (Session, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Session{}, errors.New("empty record")
	}
	if data[0] == '[' {
		var numbers []int
		if err := json.Unmarshal(data, &numbers); err != nil {
			return Session{}, err
		}
		return Session{UniverseSize: defaultUniverse, DrawnNumbers: numbers}, nil
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return Session{}, err
	}
	if rec.Version != RecordVersion {
		return Session{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
	}
	return Session{UniverseSize: rec.UniverseSize, DrawnNumbers: rec.Numbers}, nil
}

func EncodeHistory(entries []HistoryEntry) ([]byte, error) {
	rec := historyRecord{
		Version: RecordVersion,
		Entries: make([]entryRecord, len(entries)),
	}
	for i, e := range entries {
		rec.Entries[i] = entryRecord{
			ID:        entryID(e.ID),
			Numbers:   e.Numbers,
			Timestamp: e.Timestamp,
		}
	}
	return json.Marshal(rec)
}

// DecodeHistory reads a versioned history record or a legacy bare array of
// {id, numbers, timestamp} objects.
func DecodeHistory(data []byte) ([]HistoryEntry, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty record")
	}

	var records []entryRecord
	if data[0] == '[' {
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
	} else {
		var rec historyRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, err
		}
		if rec.Version != RecordVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, rec.Version)
		}
		records = rec.Entries
	}

	entries := make([]HistoryEntry, 0, len(records))
	for i, r := range records {
		if r.ID == "" {
			return nil, fmt.Errorf("history entry %d has no id", i)
		}
		if r.Timestamp.IsZero() {
			return nil, fmt.Errorf("history entry %s has no timestamp", r.ID)
		}
		entries = append(entries, HistoryEntry{
			ID:        string(r.ID),
			Numbers:   r.Numbers,
			Timestamp: r.Timestamp,
		})
	}
	return entries, nil
}
