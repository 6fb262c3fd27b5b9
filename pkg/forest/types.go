// Package forest defines the canonical serialization format for resolved
// family forests.
//
// The format is used for API responses, cache payloads, and the `parse`
// command's output. It is flat — one record per person, relations by id —
// and round-trips through [ToForest]/[FromForest]: derived links (spouse
// pointers, children lists, roots) are recomputed on read so a document can
// never smuggle in an inconsistent graph.
package forest

import "github.com/kindredtree/kindred/pkg/avatar"

// Document is the canonical wire form of a forest.
type Document struct {
	Persons []Record `json:"persons" bson:"persons"`
}

// Record is one person in wire form. Only declared data is serialized;
// derived relations are rebuilt on read.
type Record struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Alias  string `json:"alias,omitempty" bson:"alias,omitempty"`
	Gender string `json:"gender,omitempty" bson:"gender,omitempty"`

	FatherID string `json:"father_id,omitempty" bson:"father_id,omitempty"`
	MotherID string `json:"mother_id,omitempty" bson:"mother_id,omitempty"`
	SpouseID string `json:"spouse_id,omitempty" bson:"spouse_id,omitempty"`

	ImageURL      string `json:"image_url,omitempty" bson:"image_url,omitempty"`
	BirthDate     string `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	BirthPlace    string `json:"birth_place,omitempty" bson:"birth_place,omitempty"`
	DeathDate     string `json:"death_date,omitempty" bson:"death_date,omitempty"`
	MarriageDate  string `json:"marriage_date,omitempty" bson:"marriage_date,omitempty"`
	MarriagePlace string `json:"marriage_place,omitempty" bson:"marriage_place,omitempty"`
	Bio           string `json:"bio,omitempty" bson:"bio,omitempty"`

	Extra map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`

	// Avatar is derived from ImageURL and Name on write and ignored on read.
	Avatar *avatar.Avatar `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Tree is the nested form used by focus responses, where the pruned
// display roots cannot be expressed as a flat record list without
// resurrecting the pruned siblings.
type Tree struct {
	Record   `bson:",inline"`
	Spouse   *Record `json:"spouse,omitempty" bson:"spouse,omitempty"`
	Children []Tree  `json:"children,omitempty" bson:"children,omitempty"`
}

// FocusDocument is the wire form of a focus view.
type FocusDocument struct {
	Roots       []Tree   `json:"roots"`
	Highlighted []string `json:"highlighted"`
}

// RevealStep is the wire form of one reveal action.
type RevealStep struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	CenterID string `json:"center_id"`
}
