package tree

import (
	"errors"
	"strings"
)

var (
	// ErrMissingID is returned by [NormalizeRow] when the row has no id field.
	// The id is one of the two mandatory fields; such rows are dropped.
	ErrMissingID = errors.New("row has no id")

	// ErrMissingName is returned by [NormalizeRow] when the row has no name
	// field. Like the id, the name is mandatory.
	ErrMissingName = errors.New("row has no name")
)

// Row is one raw tabular record, keyed by column name.
// Keys are matched case-insensitively and values are trimmed before use.
type Row map[string]string

// Recognized column names (canonical, lower-case form).
const (
	colID            = "id"
	colName          = "name"
	colAlias         = "alias"
	colGender        = "gender"
	colFather        = "fatherid"
	colMother        = "motherid"
	colSpouse        = "spouseid"
	colImageURL      = "imageurl"
	colBirthDate     = "birthdate"
	colBirthPlace    = "birthplace"
	colDeathDate     = "deathdate"
	colMarriageDate  = "marriagedate"
	colMarriagePlace = "marriageplace"
	colBio           = "bio"
)

// Column aliases tolerated in legacy exports. The father/mother references
// in particular appear under several headings in the wild.
var columnAliases = map[string]string{
	"father":   colFather,
	"mother":   colMother,
	"spouse":   colSpouse,
	"image":    colImageURL,
	"imageuri": colImageURL,
	"born":     colBirthDate,
	"died":     colDeathDate,
}

var recognizedColumns = map[string]bool{
	colID: true, colName: true, colAlias: true, colGender: true,
	colFather: true, colMother: true, colSpouse: true, colImageURL: true,
	colBirthDate: true, colBirthPlace: true, colDeathDate: true,
	colMarriageDate: true, colMarriagePlace: true, colBio: true,
}

// CanonicalColumn maps a raw header name to its canonical lower-case form,
// resolving known aliases. Unknown headers are returned trimmed and
// lower-cased so they can be carried through opaquely.
func CanonicalColumn(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	if canon, ok := columnAliases[key]; ok {
		return canon
	}
	return key
}

// NormalizeRow validates one raw row and produces a Person with empty
// derived relations. It returns ErrMissingID or ErrMissingName when the
// mandatory fields are absent; every other field is optional and malformed
// values degrade to their zero state rather than rejecting the row.
//
// Unrecognized columns are preserved in Person.Extra.
func NormalizeRow(row Row) (*Person, error) {
	get := func(key string) string {
		return strings.TrimSpace(row[key])
	}

	id := get(colID)
	if id == "" {
		return nil, ErrMissingID
	}
	name := get(colName)
	if name == "" {
		return nil, ErrMissingName
	}

	p := &Person{
		ID:            id,
		Name:          name,
		Alias:         get(colAlias),
		Gender:        ParseGender(get(colGender)),
		FatherID:      get(colFather),
		MotherID:      get(colMother),
		SpouseID:      get(colSpouse),
		ImageURL:      get(colImageURL),
		BirthDate:     get(colBirthDate),
		BirthPlace:    get(colBirthPlace),
		DeathDate:     get(colDeathDate),
		MarriageDate:  get(colMarriageDate),
		MarriagePlace: get(colMarriagePlace),
		Bio:           get(colBio),
	}

	for key, val := range row {
		canon := CanonicalColumn(key)
		if recognizedColumns[canon] {
			continue
		}
		if v := strings.TrimSpace(val); v != "" {
			if p.Extra == nil {
				p.Extra = make(map[string]string)
			}
			p.Extra[canon] = v
		}
	}

	return p, nil
}

// NormalizeAll normalizes a batch of rows, dropping rejected ones.
// No individual row failure aborts the batch. The returned dropped count is
// the number of rejected rows; callers surface it as a warning, not an error.
func NormalizeAll(rows []Row) (accepted []*Person, dropped int) {
	accepted = make([]*Person, 0, len(rows))
	for _, row := range rows {
		p, err := NormalizeRow(row)
		if err != nil {
			dropped++
			continue
		}
		accepted = append(accepted, p)
	}
	return accepted, dropped
}
