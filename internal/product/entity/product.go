package entity

import (
	"encoding/json"
	"time"
)

// Product is one uploaded catalog row. Data holds the row as uploaded (JSONB);
// BusinessID and Department are lifted out of it for lookups and filtering.
type Product struct {
	DBID       string    `db:"id"`
	BusinessID string    `db:"business_id"`
	Department int       `db:"department"`
	Data       string    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
}

// MarshalJSON renders the uploaded document with the storage key and the indexed
// fields overlaid.
func (p Product) MarshalJSON() ([]byte, error) {
	doc := map[string]any{}
	if p.Data != "" {
		if err := json.Unmarshal([]byte(p.Data), &doc); err != nil {
			return nil, err
		}
	}
	doc["dbId"] = p.DBID
	doc["id"] = p.BusinessID
	doc["department"] = p.Department
	return json.Marshal(doc)
}

// NewProduct is a row ready for insertion. Nil BusinessID or Department are stored as
// NULL and rejected by the table constraints.
type NewProduct struct {
	DBID       string    `db:"id"`
	BusinessID *string   `db:"business_id"`
	Department *int      `db:"department"`
	Data       string    `db:"data"`
	CreatedAt  time.Time `db:"created_at"`
}
