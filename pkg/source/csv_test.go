package source

import (
	"testing"

	kerrors "github.com/kindredtree/kindred/pkg/errors"
)

func TestDecodeRows(t *testing.T) {
	data := []byte("ID, Name ,Born\np1,Ann,1950-01-01\np2,Ben,\n")

	rows, err := DecodeRows(data)
	if err != nil {
		t.Fatalf("DecodeRows error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	// Headers canonicalize: trimmed, lower-cased, aliases resolved.
	if rows[0]["id"] != "p1" || rows[0]["name"] != "Ann" {
		t.Errorf("row 0 = %v", rows[0])
	}
	if rows[0]["birthdate"] != "1950-01-01" {
		t.Errorf("born alias should map to birthdate: %v", rows[0])
	}
}

func TestDecodeRows_ShortRecordsPadded(t *testing.T) {
	data := []byte("id,name,spouseid\np1,Ann\n")

	rows, err := DecodeRows(data)
	if err != nil {
		t.Fatalf("DecodeRows error: %v", err)
	}
	if got, ok := rows[0]["spouseid"]; !ok || got != "" {
		t.Errorf("missing trailing field should decode empty, got %q (present=%v)", got, ok)
	}
}

func TestDecodeRows_Empty(t *testing.T) {
	_, err := DecodeRows(nil)
	if !kerrors.Is(err, kerrors.ErrCodeInvalidDataset) {
		t.Errorf("error = %v, want INVALID_DATASET", err)
	}
}

func TestDecodeRows_MalformedQuote(t *testing.T) {
	data := []byte("id,name\np1,\"unterminated\n")
	_, err := DecodeRows(data)
	if !kerrors.Is(err, kerrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestDemoRows(t *testing.T) {
	rows := DemoRows()
	if len(rows) < 10 {
		t.Fatalf("demo dataset too small: %d rows", len(rows))
	}
	seen := make(map[string]bool)
	for _, row := range rows {
		if row["id"] == "" || row["name"] == "" {
			t.Errorf("demo row missing mandatory fields: %v", row)
		}
		if seen[row["id"]] {
			t.Errorf("duplicate demo id %s", row["id"])
		}
		seen[row["id"]] = true
	}
}
