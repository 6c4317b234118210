package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/qrls/qrls-bot/internal/models"
)

const waiverFileName = "waivers.json"

// ErrWaiverNotFound is returned when no record exists for a player
var ErrWaiverNotFound = errors.New("waiver not found")

// WaiverStorage handles persistent storage of waivers, keyed by player ID
type WaiverStorage struct {
	mu       sync.Mutex
	filePath string
}

// NewWaiverStorage creates a new waiver storage instance under dataDir
func NewWaiverStorage(dataDir string) (*WaiverStorage, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, err
	}
	return &WaiverStorage{filePath: filepath.Join(dataDir, waiverFileName)}, nil
}

func (ws *WaiverStorage) Path() string {
	return ws.filePath
}

// load reads every record. A corrupt file reads as empty and reports
// ErrCorrupt; null entries are dropped and reported the same way.
func (ws *WaiverStorage) load() (map[string]*models.Waiver, error) {
	records := make(map[string]*models.Waiver)
	if err := readJSON(ws.filePath, &records); err != nil {
		if errors.Is(err, ErrCorrupt) {
			backupCorrupt(ws.filePath)
		}
		return make(map[string]*models.Waiver), err
	}
	var empty []string
	for id, w := range records {
		if w == nil {
			delete(records, id)
			empty = append(empty, id)
		}
	}
	if len(empty) > 0 {
		sort.Strings(empty)
		return records, fmt.Errorf("%w: %s: empty record for %s", ErrCorrupt, waiverFileName, strings.Join(empty, ", "))
	}
	return records, nil
}

func (ws *WaiverStorage) save(records map[string]*models.Waiver) error {
	return writeJSON(ws.filePath, records)
}

// All returns every waiver record sorted by expiry
func (ws *WaiverStorage) All() ([]*models.Waiver, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	records, err := ws.load()
	out := make([]*models.Waiver, 0, len(records))
	for id, w := range records {
		if w.PlayerID == "" {
			w.PlayerID = id
		}
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, err
}

// Get returns the record for playerID
func (ws *WaiverStorage) Get(playerID string) (*models.Waiver, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	records, err := ws.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	w, ok := records[playerID]
	if !ok {
		return nil, ErrWaiverNotFound
	}
	if w.PlayerID == "" {
		w.PlayerID = playerID
	}
	return w, nil
}

// Put creates or replaces the record for w.PlayerID
func (ws *WaiverStorage) Put(w *models.Waiver) error {
	if w.PlayerID == "" {
		return fmt.Errorf("waiver has no player ID")
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()

	records, err := ws.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	records[w.PlayerID] = w
	return ws.save(records)
}

// Update applies fn to the record for playerID and saves the result. fn
// runs under the storage lock; returning an error aborts the write.
func (ws *WaiverStorage) Update(playerID string, fn func(w *models.Waiver) error) (*models.Waiver, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	records, err := ws.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return nil, err
	}
	w, ok := records[playerID]
	if !ok {
		return nil, ErrWaiverNotFound
	}
	if err := fn(w); err != nil {
		return nil, err
	}
	if err := ws.save(records); err != nil {
		return nil, err
	}
	return w, nil
}

// Delete removes the record for playerID. Deleting a missing record is not an error.
func (ws *WaiverStorage) Delete(playerID string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	records, err := ws.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if _, ok := records[playerID]; !ok {
		return nil
	}
	delete(records, playerID)
	return ws.save(records)
}
