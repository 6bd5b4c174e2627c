package models

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// FilledField is one historical value assigned to a (document, field_key)
// pair. The ledger is append-only: a correction never touches an existing row,
// it inserts the next version and flips the previous latest flag off. For any
// (document, field_key) exactly one row has latest = true and versions form a
// contiguous sequence starting at 1.
type FilledField struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	FieldKey   string    `json:"field_key"`
	Value      *string   `json:"value"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	Version    int       `json:"version"`
	Latest     bool      `json:"latest"`
	Page       *int      `json:"page,omitempty"`
	BBox       *string   `json:"bbox,omitempty"`
	TokenRefs  *string   `json:"token_refs,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasValue reports whether the entry carries a non-blank value. A NULL or
// whitespace-only value counts as missing everywhere in the pipeline.
func (f *FilledField) HasValue() bool {
	return f.Value != nil && strings.TrimSpace(*f.Value) != ""
}

// RawValue returns the stored value or "" when NULL.
func (f *FilledField) RawValue() string {
	if f.Value == nil {
		return ""
	}
	return *f.Value
}

// AppendFieldValue records a new value for (documentID, fieldKey) as the next
// ledger version. The previous latest row (if any) is demoted in the same
// transaction so the one-latest-per-key invariant holds at every commit point.
func AppendFieldValue(db *sql.DB, field *FilledField) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("error beginning ledger transaction: %w", err)
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM filled_fields WHERE document_id = ? AND field_key = ?`,
		field.DocumentID, field.FieldKey,
	).Scan(&maxVersion)
	if err != nil {
		return fmt.Errorf("error reading ledger version for %s/%s: %w", field.DocumentID, field.FieldKey, err)
	}

	if maxVersion > 0 {
		_, err = tx.Exec(
			`UPDATE filled_fields SET latest = FALSE WHERE document_id = ? AND field_key = ? AND latest = TRUE`,
			field.DocumentID, field.FieldKey,
		)
		if err != nil {
			return fmt.Errorf("error demoting previous ledger entry for %s/%s: %w", field.DocumentID, field.FieldKey, err)
		}
	}

	field.Version = maxVersion + 1
	field.Latest = true
	res, err := tx.Exec(
		`INSERT INTO filled_fields (document_id, field_key, value, confidence, source, version, latest, page, bbox, token_refs)
		 VALUES (?, ?, ?, ?, ?, ?, TRUE, ?, ?, ?)`,
		field.DocumentID, field.FieldKey, field.Value, field.Confidence, field.Source,
		field.Version, field.Page, field.BBox, field.TokenRefs,
	)
	if err != nil {
		return fmt.Errorf("error inserting ledger entry for %s/%s: %w", field.DocumentID, field.FieldKey, err)
	}
	if id, err := res.LastInsertId(); err == nil {
		field.ID = id
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing ledger entry for %s/%s: %w", field.DocumentID, field.FieldKey, err)
	}
	return nil
}

// FetchLatestFields returns only latest ledger entries for a whole batch,
// grouped document id -> field key -> entry. This is the snapshot validation
// runs read; historical versions never reach the engine.
func FetchLatestFields(db *sql.DB, batchID string) (map[string]map[string]FilledField, error) {
	rows, err := db.Query(
		`SELECT ff.id, ff.document_id, ff.field_key, ff.value, ff.confidence, ff.source,
		        ff.version, ff.latest, ff.page, ff.bbox, ff.token_refs, ff.created_at
		 FROM filled_fields ff
		 JOIN documents d ON d.id = ff.document_id
		 WHERE d.batch_id = ? AND ff.latest = TRUE
		 ORDER BY ff.document_id ASC, ff.field_key ASC`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying latest fields for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	fields := make(map[string]map[string]FilledField)
	for rows.Next() {
		var f FilledField
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FieldKey, &f.Value, &f.Confidence, &f.Source,
			&f.Version, &f.Latest, &f.Page, &f.BBox, &f.TokenRefs, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning ledger row for batch %s: %w", batchID, err)
		}
		if fields[f.DocumentID] == nil {
			fields[f.DocumentID] = make(map[string]FilledField)
		}
		fields[f.DocumentID][f.FieldKey] = f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ledger rows for batch %s: %w", batchID, err)
	}
	return fields, nil
}

// FetchFieldHistory returns every version for one (document, field_key) pair,
// oldest first. Used by the review UI to show how a value evolved.
func FetchFieldHistory(db *sql.DB, documentID, fieldKey string) ([]FilledField, error) {
	rows, err := db.Query(
		`SELECT id, document_id, field_key, value, confidence, source, version, latest,
		        page, bbox, token_refs, created_at
		 FROM filled_fields
		 WHERE document_id = ? AND field_key = ?
		 ORDER BY version ASC`,
		documentID, fieldKey,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying field history for %s/%s: %w", documentID, fieldKey, err)
	}
	defer rows.Close()

	var history []FilledField
	for rows.Next() {
		var f FilledField
		if err := rows.Scan(&f.ID, &f.DocumentID, &f.FieldKey, &f.Value, &f.Confidence, &f.Source,
			&f.Version, &f.Latest, &f.Page, &f.BBox, &f.TokenRefs, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning history row for %s/%s: %w", documentID, fieldKey, err)
		}
		history = append(history, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over history rows for %s/%s: %w", documentID, fieldKey, err)
	}
	return history, nil
}
