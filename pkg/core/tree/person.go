// Package tree reconstructs a navigable family forest from flat person
// records.
//
// Records arrive as string-keyed rows (one per person) carrying parent and
// spouse references by identifier. The package normalizes rows into [Person]
// values, links them into a validated forest ([Build]), derives focused
// sub-forests ([Focus]), and sequences an animated generation-by-generation
// reveal ([Sequence], [Player]).
//
// The lookup produced by [Build] is shared, read-only state: downstream
// consumers must never mutate it. [Focus] returns deep clones for exactly
// this reason.
package tree

import (
	"strings"
	"time"
)

// Gender is the enumerated gender of a person record.
type Gender string

// Recognized gender values. Unrecognized input maps to GenderOther.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ParseGender maps a raw field value to a Gender.
// Matching is case-insensitive and accepts single-letter forms ("m", "f").
func ParseGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	default:
		return GenderOther
	}
}

// Person is one genealogical record. ID is the unique identity; Name is the
// only other mandatory field. FatherID, MotherID and SpouseID reference other
// persons by id and may dangle (reference ids absent from the dataset).
//
// Spouse and Children are derived by [Build], never read from input. After
// Build returns, Person values in the shared lookup are read-only; use
// [Focus] to obtain mutable clones.
type Person struct {
	ID     string
	Name   string
	Alias  string
	Gender Gender

	FatherID string
	MotherID string
	SpouseID string

	ImageURL      string
	BirthDate     string
	BirthPlace    string
	DeathDate     string
	MarriageDate  string
	MarriagePlace string
	Bio           string

	// Extra holds unrecognized input columns, passed through opaquely.
	Extra map[string]string

	// Derived relations, resolved by Build.
	Spouse   *Person
	Children []*Person
}

// HasParents reports whether the record declares a father or mother id.
// The references may still dangle; Build treats only resolved parents as
// disqualifying a root candidate.
func (p *Person) HasParents() bool {
	return p.FatherID != "" || p.MotherID != ""
}

// DisplayName returns the alias when set, otherwise the name.
func (p *Person) DisplayName() string {
	if p.Alias != "" {
		return p.Alias
	}
	return p.Name
}

// calendarDateLayout is the ISO date form used by birth/death/marriage fields.
// Dates carry no time component.
const calendarDateLayout = "2006-01-02"

// parseCalendarDate parses s as a local calendar date. Local, not UTC: the
// values are day-precision and comparing them as UTC instants risks
// off-by-one-day errors near midnight for callers in other zones.
func parseCalendarDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(calendarDateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// born returns the parsed birth date. ok is false for missing or
// unparseable values, which sort after all dated siblings.
func (p *Person) born() (time.Time, bool) {
	if p.BirthDate == "" {
		return time.Time{}, false
	}
	return parseCalendarDate(p.BirthDate)
}
