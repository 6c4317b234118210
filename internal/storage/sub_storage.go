package storage

import (
	"errors"
	"path/filepath"
	"sort"
	"sync"

	"github.com/qrls/qrls-bot/internal/models"
)

const subFileName = "subs.json"

// SubStorage persists sub contracts so their role removal survives a restart
type SubStorage struct {
	mu       sync.Mutex
	filePath string
}

func NewSubStorage(dataDir string) (*SubStorage, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, err
	}
	return &SubStorage{filePath: filepath.Join(dataDir, subFileName)}, nil
}

func (ss *SubStorage) load() (map[string]*models.SubContract, error) {
	records := make(map[string]*models.SubContract)
	if err := readJSON(ss.filePath, &records); err != nil {
		return make(map[string]*models.SubContract), err
	}
	return records, nil
}

// All returns every contract sorted by expiry
func (ss *SubStorage) All() ([]*models.SubContract, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	records, err := ss.load()
	out := make([]*models.SubContract, 0, len(records))
	for _, s := range records {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ExpiresAt.Before(out[j].ExpiresAt)
	})
	return out, err
}

func (ss *SubStorage) Put(s *models.SubContract) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	records, err := ss.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	records[s.Key()] = s
	return writeJSON(ss.filePath, records)
}

func (ss *SubStorage) Delete(key string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	records, err := ss.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if _, ok := records[key]; !ok {
		return nil
	}
	delete(records, key)
	return writeJSON(ss.filePath, records)
}
