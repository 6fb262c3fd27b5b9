package tree

import (
	"errors"
	"testing"
)

func TestNormalizeRow_Valid(t *testing.T) {
	row := Row{
		"id":        " 7 ",
		"name":      " Ada Vance ",
		"alias":     "Granny Ada",
		"gender":    "F",
		"fatherid":  "1",
		"motherid":  "2",
		"spouseid":  "8",
		"birthdate": "1921-03-04",
		"bio":       "Kept bees.",
	}

	p, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("NormalizeRow() error: %v", err)
	}
	if p.ID != "7" {
		t.Errorf("ID = %q, want %q", p.ID, "7")
	}
	if p.Name != "Ada Vance" {
		t.Errorf("Name = %q, want trimmed %q", p.Name, "Ada Vance")
	}
	if p.Gender != GenderFemale {
		t.Errorf("Gender = %q, want %q", p.Gender, GenderFemale)
	}
	if p.FatherID != "1" || p.MotherID != "2" || p.SpouseID != "8" {
		t.Errorf("references = %q/%q/%q, want 1/2/8", p.FatherID, p.MotherID, p.SpouseID)
	}
	if p.Spouse != nil || p.Children != nil {
		t.Error("derived relations must start unresolved")
	}
}

func TestNormalizeRow_MandatoryFields(t *testing.T) {
	tests := []struct {
		name string
		row  Row
		want error
	}{
		{"missing id", Row{"name": "X"}, ErrMissingID},
		{"blank id", Row{"id": "  ", "name": "X"}, ErrMissingID},
		{"missing name", Row{"id": "1"}, ErrMissingName},
		{"blank name", Row{"id": "1", "name": " "}, ErrMissingName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NormalizeRow(tt.row); !errors.Is(err, tt.want) {
				t.Errorf("NormalizeRow() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeRow_ExtraColumnsPassThrough(t *testing.T) {
	p, err := NormalizeRow(Row{"id": "1", "name": "X", "clan": "north", "bio": "b"})
	if err != nil {
		t.Fatalf("NormalizeRow() error: %v", err)
	}
	if p.Extra["clan"] != "north" {
		t.Errorf(`Extra["clan"] = %q, want "north"`, p.Extra["clan"])
	}
	if _, ok := p.Extra["bio"]; ok {
		t.Error("recognized column must not leak into Extra")
	}
}

func TestNormalizeAll_DropsBadRowsWithoutAborting(t *testing.T) {
	rows := []Row{
		{"id": "1", "name": "A"},
		{"id": "2"}, // no name: dropped
		{"name": "C"},
		{"id": "3", "name": "D"},
	}

	accepted, dropped := NormalizeAll(rows)
	if len(accepted) != 2 {
		t.Errorf("accepted = %d, want 2", len(accepted))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"Male", GenderMale},
		{"m", GenderMale},
		{"FEMALE", GenderFemale},
		{"f", GenderFemale},
		{"", GenderOther},
		{"nonbinary", GenderOther},
	}
	for _, tt := range tests {
		if got := ParseGender(tt.in); got != tt.want {
			t.Errorf("ParseGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" FatherID ", "fatherid"},
		{"father", "fatherid"},
		{"Born", "birthdate"},
		{"clan", "clan"},
	}
	for _, tt := range tests {
		if got := CanonicalColumn(tt.in); got != tt.want {
			t.Errorf("CanonicalColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
