package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

type Severity string

const (
	SeverityError Severity = "ERROR"
	SeverityWarn  Severity = "WARN"
)

// FieldPointer locates one offending field for UI highlighting.
type FieldPointer struct {
	DocID    string  `json:"doc_id"`
	FieldKey string  `json:"field_key"`
	Value    *string `json:"value,omitempty"`
}

// ValidationMessage is one finding of a validation run. Messages are produced
// fresh on every run and replace the previous report wholesale.
type ValidationMessage struct {
	RuleID   string         `json:"rule_id"`
	Severity Severity       `json:"severity"`
	Message  string         `json:"message"`
	Refs     []FieldPointer `json:"refs"`
}

// ReplaceBatchMessages deletes the batch's previous report and inserts the new
// one inside a caller-supplied transaction, so re-validation is idempotent and
// a failed run never leaves a half-written report behind.
func ReplaceBatchMessages(tx *sql.Tx, batchID string, messages []ValidationMessage) error {
	if _, err := tx.Exec(`DELETE FROM validation_messages WHERE batch_id = ?`, batchID); err != nil {
		return fmt.Errorf("error deleting previous messages for batch %s: %w", batchID, err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO validation_messages (batch_id, position, rule_id, severity, message, refs) VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("error preparing message insert for batch %s: %w", batchID, err)
	}
	defer stmt.Close()

	for i, msg := range messages {
		refs := msg.Refs
		if refs == nil {
			refs = []FieldPointer{}
		}
		refsJSON, err := json.Marshal(refs)
		if err != nil {
			return fmt.Errorf("error encoding refs for batch %s rule %s: %w", batchID, msg.RuleID, err)
		}
		if _, err := stmt.Exec(batchID, i, msg.RuleID, string(msg.Severity), msg.Message, string(refsJSON)); err != nil {
			return fmt.Errorf("error inserting message %d for batch %s: %w", i, batchID, err)
		}
	}
	return nil
}

// FetchBatchMessages returns the persisted report in its original order.
func FetchBatchMessages(db *sql.DB, batchID string) ([]ValidationMessage, error) {
	rows, err := db.Query(
		`SELECT rule_id, severity, message, refs FROM validation_messages WHERE batch_id = ? ORDER BY position ASC`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying messages for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var messages []ValidationMessage
	for rows.Next() {
		var msg ValidationMessage
		var severity, refsJSON string
		if err := rows.Scan(&msg.RuleID, &severity, &msg.Message, &refsJSON); err != nil {
			return nil, fmt.Errorf("error scanning message row for batch %s: %w", batchID, err)
		}
		msg.Severity = Severity(severity)
		if err := json.Unmarshal([]byte(refsJSON), &msg.Refs); err != nil {
			return nil, fmt.Errorf("error decoding refs for batch %s: %w", batchID, err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over message rows for batch %s: %w", batchID, err)
	}
	return messages, nil
}
