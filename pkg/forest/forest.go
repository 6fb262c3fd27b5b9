package forest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/kindredtree/kindred/pkg/avatar"
	"github.com/kindredtree/kindred/pkg/core/tree"
)

// MarshalForest converts a resolved forest to JSON bytes.
// Output is deterministic: records appear in the forest's input order.
func MarshalForest(f *tree.Forest) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeForestTo(f, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteForestFile writes a forest to a JSON file with 0644 permissions.
func WriteForestFile(f *tree.Forest, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()
	return writeForestTo(f, out)
}

// WriteForest writes a forest as JSON to an io.Writer.
func WriteForest(f *tree.Forest, w io.Writer) error {
	return writeForestTo(f, w)
}

// ReadForest decodes a JSON document from r and rebuilds the forest.
// Records missing an id or name are dropped, mirroring row normalization,
// so a document read back always satisfies the builder's invariants.
func ReadForest(r io.Reader) (*tree.Forest, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToForest(doc), nil
}

// ReadForestFile reads a JSON file and rebuilds the forest.
func ReadForestFile(path string) (*tree.Forest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadForest(f)
}

// FromForest flattens a forest into its wire document. Records keep the
// forest's input order: the builder breaks undated-sibling ties by input
// order, so reordering here would change sibling order on a read back.
func FromForest(f *tree.Forest) Document {
	doc := Document{Persons: make([]Record, 0, f.Size())}
	for _, id := range f.IDs() {
		p, _ := f.Person(id)
		doc.Persons = append(doc.Persons, FromPerson(p))
	}
	return doc
}

// ToForest rebuilds a resolved forest from a wire document. Derived
// relations are recomputed by the builder, never trusted from the wire.
func ToForest(doc Document) *tree.Forest {
	persons := make([]*tree.Person, 0, len(doc.Persons))
	for _, rec := range doc.Persons {
		if strings.TrimSpace(rec.ID) == "" || strings.TrimSpace(rec.Name) == "" {
			continue
		}
		persons = append(persons, toPerson(rec))
	}
	return tree.Build(persons)
}

// FromPerson converts one person to its wire record. The avatar is derived
// on write so clients never have to re-implement the placeholder rules.
func FromPerson(p *tree.Person) Record {
	av := avatar.Resolve(p.ImageURL, p.Name)
	return Record{
		Avatar:        &av,
		ID:            p.ID,
		Name:          p.Name,
		Alias:         p.Alias,
		Gender:        string(p.Gender),
		FatherID:      p.FatherID,
		MotherID:      p.MotherID,
		SpouseID:      p.SpouseID,
		ImageURL:      p.ImageURL,
		BirthDate:     p.BirthDate,
		BirthPlace:    p.BirthPlace,
		DeathDate:     p.DeathDate,
		MarriageDate:  p.MarriageDate,
		MarriagePlace: p.MarriagePlace,
		Bio:           p.Bio,
		Extra:         p.Extra,
	}
}

func toPerson(rec Record) *tree.Person {
	return &tree.Person{
		ID:            strings.TrimSpace(rec.ID),
		Name:          strings.TrimSpace(rec.Name),
		Alias:         rec.Alias,
		Gender:        tree.ParseGender(rec.Gender),
		FatherID:      rec.FatherID,
		MotherID:      rec.MotherID,
		SpouseID:      rec.SpouseID,
		ImageURL:      rec.ImageURL,
		BirthDate:     rec.BirthDate,
		BirthPlace:    rec.BirthPlace,
		DeathDate:     rec.DeathDate,
		MarriageDate:  rec.MarriageDate,
		MarriagePlace: rec.MarriagePlace,
		Bio:           rec.Bio,
		Extra:         rec.Extra,
	}
}

// FromTree converts a display subtree (focus mode output) to its nested
// wire form. Spouse records are embedded one level deep, matching the
// renderer's spouse-slot mechanism.
func FromTree(p *tree.Person) Tree {
	t := Tree{Record: FromPerson(p)}
	if p.Spouse != nil {
		rec := FromPerson(p.Spouse)
		t.Spouse = &rec
	}
	for _, c := range p.Children {
		t.Children = append(t.Children, FromTree(c))
	}
	return t
}

// FromFocus converts a focus view to its wire document. The highlighted
// ids are sorted for deterministic output.
func FromFocus(v tree.FocusView) FocusDocument {
	doc := FocusDocument{Highlighted: make([]string, 0, len(v.Highlighted))}
	for id := range v.Highlighted {
		doc.Highlighted = append(doc.Highlighted, id)
	}
	slices.Sort(doc.Highlighted)
	for _, root := range v.DisplayRoots {
		doc.Roots = append(doc.Roots, FromTree(root))
	}
	return doc
}

// FromSteps converts reveal steps to their wire form.
func FromSteps(steps []tree.Step) []RevealStep {
	out := make([]RevealStep, len(steps))
	for i, s := range steps {
		out[i] = RevealStep{Kind: string(s.Kind), ID: s.ID, CenterID: s.CenterID}
	}
	return out
}

func writeForestTo(f *tree.Forest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromForest(f)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
