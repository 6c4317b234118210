package storage

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/qrls/qrls-bot/internal/models"
)

const proposalFileName = "proposals.json"

// ProposalStorage keeps one pending match time per scheduling channel
type ProposalStorage struct {
	mu       sync.Mutex
	filePath string
}

func NewProposalStorage(dataDir string) (*ProposalStorage, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, err
	}
	return &ProposalStorage{filePath: filepath.Join(dataDir, proposalFileName)}, nil
}

func (ps *ProposalStorage) load() (map[string]*models.Proposal, error) {
	records := make(map[string]*models.Proposal)
	if err := readJSON(ps.filePath, &records); err != nil {
		if errors.Is(err, ErrCorrupt) {
			return make(map[string]*models.Proposal), nil
		}
		return nil, err
	}
	return records, nil
}

// Get returns the channel's proposal, or nil when there is none
func (ps *ProposalStorage) Get(channelID string) (*models.Proposal, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	records, err := ps.load()
	if err != nil {
		return nil, err
	}
	return records[channelID], nil
}

// Put replaces the channel's proposal
func (ps *ProposalStorage) Put(channelID string, p *models.Proposal) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	records, err := ps.load()
	if err != nil {
		return err
	}
	records[channelID] = p
	return writeJSON(ps.filePath, records)
}

func (ps *ProposalStorage) Delete(channelID string) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	records, err := ps.load()
	if err != nil {
		return err
	}
	if _, ok := records[channelID]; !ok {
		return nil
	}
	delete(records, channelID)
	return writeJSON(ps.filePath, records)
}
