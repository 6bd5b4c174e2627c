package models

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DocType is the closed set of trade document kinds the pipeline understands.
// Extraction classifies every uploaded scan into one of these; anything the
// classifier cannot place stays UNKNOWN and is ignored by the rule catalog.
type DocType string

const (
	DocTypeUnknown               DocType = "UNKNOWN"
	DocTypeContract              DocType = "CONTRACT"
	DocTypeProforma              DocType = "PROFORMA"
	DocTypeInvoice               DocType = "INVOICE"
	DocTypePackingList           DocType = "PACKING_LIST"
	DocTypeBillOfLading          DocType = "BILL_OF_LADING"
	DocTypeCertificateOfOrigin   DocType = "CERTIFICATE_OF_ORIGIN"
	DocTypeVeterinaryCertificate DocType = "VETERINARY_CERTIFICATE"
	DocTypeQualityCertificate    DocType = "QUALITY_CERTIFICATE"
	DocTypeExportDeclaration     DocType = "EXPORT_DECLARATION"
)

var allDocTypes = []DocType{
	DocTypeContract,
	DocTypeProforma,
	DocTypeInvoice,
	DocTypePackingList,
	DocTypeBillOfLading,
	DocTypeCertificateOfOrigin,
	DocTypeVeterinaryCertificate,
	DocTypeQualityCertificate,
	DocTypeExportDeclaration,
}

// ParseDocType resolves a document-type name to a member of the closed set.
// The boolean is false for names outside the set (including "UNKNOWN" itself,
// which is never a valid rule target).
func ParseDocType(name string) (DocType, bool) {
	candidate := DocType(strings.ToUpper(strings.TrimSpace(name)))
	for _, dt := range allDocTypes {
		if dt == candidate {
			return dt, true
		}
	}
	return DocTypeUnknown, false
}

type Document struct {
	ID        string    `json:"id"`
	BatchID   string    `json:"batch_id"`
	DocType   DocType   `json:"doc_type"`
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateDocument inserts a new document into the database.
func (d *Document) CreateDocument(db *sql.DB) error {
	if d.DocType == "" {
		d.DocType = DocTypeUnknown
	}
	_, err := db.Exec(
		`INSERT INTO documents (id, batch_id, doc_type, filename) VALUES (?, ?, ?, ?)`,
		d.ID, d.BatchID, string(d.DocType), d.Filename,
	)
	if err != nil {
		return fmt.Errorf("error inserting document %s: %w", d.ID, err)
	}
	return nil
}

// FetchBatchDocuments returns a batch's documents ordered by id so that every
// validation run sees them in the same order.
func FetchBatchDocuments(db *sql.DB, batchID string) ([]Document, error) {
	rows, err := db.Query(
		`SELECT id, batch_id, doc_type, filename, created_at FROM documents WHERE batch_id = ? ORDER BY id ASC`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying documents for batch %s: %w", batchID, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var docType string
		if err := rows.Scan(&d.ID, &d.BatchID, &docType, &d.Filename, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning document row for batch %s: %w", batchID, err)
		}
		if dt, ok := ParseDocType(docType); ok {
			d.DocType = dt
		} else {
			d.DocType = DocTypeUnknown
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over document rows for batch %s: %w", batchID, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}
