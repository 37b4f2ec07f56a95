package dbtypes

import "testing"

func TestReceiptLinesValueScan(t *testing.T) {
	lines := ReceiptLines{{ItemID: 1, Name: "water", Quantity: 2}, {ItemID: 9, Name: "rope", Quantity: 1}}

	value, err := lines.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	raw, ok := value.(string)
	if !ok {
		t.Fatalf("expected string value, got %T", value)
	}

	var scanned ReceiptLines
	if err := scanned.Scan([]byte(raw)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 2 || scanned[1].Name != "rope" || scanned.Units() != 3 {
		t.Fatalf("unexpected lines %+v", scanned)
	}
}

func TestReceiptLinesEmpty(t *testing.T) {
	value, err := ReceiptLines(nil).Value()
	if err != nil || value != "[]" {
		t.Fatalf("unexpected empty value %v (%v)", value, err)
	}

	var scanned ReceiptLines
	for _, src := range []any{nil, "", "null", "[]"} {
		if err := scanned.Scan(src); err != nil {
			t.Fatalf("scan %v: %v", src, err)
		}
		if scanned == nil || len(scanned) != 0 {
			t.Fatalf("scan %v: expected empty non-nil lines, got %#v", src, scanned)
		}
	}
}

func TestReceiptLinesScanRejects(t *testing.T) {
	var scanned ReceiptLines
	if err := scanned.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
	if err := scanned.Scan("{broken"); err == nil {
		t.Fatal("expected parse error")
	}
}
