package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qrls/qrls-bot/internal/models"
)

const transactionFileName = "transactions.csv"

var transactionHeaders = []string{
	"ID", "Type", "PlayerID", "FromTeam", "ToTeam", "ApprovedBy", "Timestamp", "Detail",
}

// TransactionStorage is an append-only CSV ledger of applied roster moves
type TransactionStorage struct {
	mu       sync.RWMutex
	filePath string
}

// NewTransactionStorage creates a new transaction storage instance
func NewTransactionStorage(dataDir string) (*TransactionStorage, error) {
	if err := ensureDir(dataDir); err != nil {
		return nil, err
	}

	filePath := filepath.Join(dataDir, transactionFileName)
	ts := &TransactionStorage{
		filePath: filePath,
	}

	// Create file if it doesn't exist
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := ts.createFile(); err != nil {
			return nil, err
		}
	}

	return ts, nil
}

// createFile creates the CSV file with headers
func (ts *TransactionStorage) createFile() error {
	file, err := os.Create(ts.filePath)
	if err != nil {
		return fmt.Errorf("failed to create transaction file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(transactionHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	writer.Flush()

	return writer.Error()
}

// Append adds a transaction, filling in the ID and timestamp when unset
func (ts *TransactionStorage) Append(tx models.Transaction) (models.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = time.Now().UTC()
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	file, err := os.OpenFile(ts.filePath, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return tx, fmt.Errorf("failed to open transaction file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	record := []string{
		tx.ID,
		string(tx.Type),
		tx.PlayerID,
		tx.FromTeam,
		tx.ToTeam,
		tx.ApprovedBy,
		tx.Timestamp.Format(time.RFC3339),
		tx.Detail,
	}
	if err := writer.Write(record); err != nil {
		return tx, fmt.Errorf("failed to write transaction record: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return tx, fmt.Errorf("failed to flush transaction record: %w", err)
	}

	return tx, nil
}

// GetAllTransactions returns all stored transactions, oldest first
func (ts *TransactionStorage) GetAllTransactions() ([]models.Transaction, error) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	file, err := os.Open(ts.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open transaction file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction file: %w", err)
	}

	var transactions []models.Transaction
	// Skip header row
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < len(transactionHeaders) {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339, record[6])
		if err != nil {
			continue
		}

		transactions = append(transactions, models.Transaction{
			ID:         record[0],
			Type:       models.TransactionType(record[1]),
			PlayerID:   record[2],
			FromTeam:   record[3],
			ToTeam:     record[4],
			ApprovedBy: record[5],
			Timestamp:  timestamp,
			Detail:     record[7],
		})
	}

	return transactions, nil
}

// Recent returns the newest n transactions, newest first
func (ts *TransactionStorage) Recent(n int) ([]models.Transaction, error) {
	all, err := ts.GetAllTransactions()
	if err != nil {
		return nil, err
	}
	var out []models.Transaction
	for i := len(all) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

// GroupTransactionsByTeam groups transactions by every team they touched
func GroupTransactionsByTeam(transactions []models.Transaction) map[string][]models.Transaction {
	groups := make(map[string][]models.Transaction)
	for _, tx := range transactions {
		if tx.FromTeam != "" {
			groups[tx.FromTeam] = append(groups[tx.FromTeam], tx)
		}
		if tx.ToTeam != "" && tx.ToTeam != tx.FromTeam {
			groups[tx.ToTeam] = append(groups[tx.ToTeam], tx)
		}
	}
	return groups
}
