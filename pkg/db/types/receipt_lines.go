package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptLine is one settled cart line as stored on a receipt.
type ReceiptLine struct {
	ItemID   int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// ReceiptLines stores settled lines as a JSON array in a text column so the
// same model works on SQLite and Postgres.
type ReceiptLines []ReceiptLine

func (l *ReceiptLines) Scan(src any) error {
	if src == nil {
		*l = ReceiptLines{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return l.parse([]byte(v))
	case []byte:
		return l.parse(v)
	default:
		return fmt.Errorf("ReceiptLines: unsupported Scan type %T", src)
	}
}

func (l ReceiptLines) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	out, err := json.Marshal([]ReceiptLine(l))
	if err != nil {
		return nil, fmt.Errorf("ReceiptLines: marshal: %w", err)
	}
	return string(out), nil
}

// Units sums the quantities.
func (l ReceiptLines) Units() int {
	total := 0
	for _, line := range l {
		total += line.Quantity
	}
	return total
}

func (l *ReceiptLines) parse(raw []byte) error {
	if strings.TrimSpace(string(raw)) == "" {
		*l = ReceiptLines{}
		return nil
	}
	var out []ReceiptLine
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("ReceiptLines: parse: %w", err)
	}
	if out == nil {
		out = []ReceiptLine{}
	}
	*l = ReceiptLines(out)
	return nil
}
