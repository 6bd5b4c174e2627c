package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BatchStatus tracks a batch through the pipeline. Validation only ever runs
// once a batch is ready: fields must not change underneath a running check.
type BatchStatus string

const (
	BatchStatusExtracting BatchStatus = "extracting"
	BatchStatusReview     BatchStatus = "review"
	BatchStatusReady      BatchStatus = "ready"
	BatchStatusDone       BatchStatus = "done"
)

var ErrBatchNotFound = errors.New("batch not found")

type Batch struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Status    BatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// CreateBatch inserts a new batch into the database.
func (b *Batch) CreateBatch(db *sql.DB) error {
	if b.Status == "" {
		b.Status = BatchStatusExtracting
	}
	_, err := db.Exec(
		`INSERT INTO batches (id, name, status) VALUES (?, ?, ?)`,
		b.ID, b.Name, string(b.Status),
	)
	if err != nil {
		return fmt.Errorf("error inserting batch %s: %w", b.ID, err)
	}
	return nil
}

func GetBatch(db *sql.DB, batchID string) (*Batch, error) {
	var b Batch
	var status string
	err := db.QueryRow(
		`SELECT id, name, status, created_at, updated_at FROM batches WHERE id = ?`,
		batchID,
	).Scan(&b.ID, &b.Name, &status, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrBatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error querying batch %s: %w", batchID, err)
	}
	b.Status = BatchStatus(status)
	return &b, nil
}

// UpdateStatus moves the batch to a new lifecycle state.
func (b *Batch) UpdateStatus(db *sql.DB, status BatchStatus) error {
	res, err := db.Exec(
		`UPDATE batches SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), b.ID,
	)
	if err != nil {
		return fmt.Errorf("error updating status for batch %s: %w", b.ID, err)
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrBatchNotFound
	}
	b.Status = status
	return nil
}
