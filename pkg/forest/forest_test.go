package forest

import (
	"bytes"
	"testing"

	"github.com/kindredtree/kindred/pkg/core/tree"
)

func sampleForest() *tree.Forest {
	r := &tree.Person{ID: "r", Name: "Root", SpouseID: "s", BirthDate: "1950-02-11"}
	s := &tree.Person{ID: "s", Name: "Spouse", SpouseID: "r"}
	c := &tree.Person{ID: "c", Name: "Child", FatherID: "r", MotherID: "s"}
	return tree.Build([]*tree.Person{r, s, c})
}

func TestForest_RoundTrip(t *testing.T) {
	f := sampleForest()

	var buf bytes.Buffer
	if err := WriteForest(f, &buf); err != nil {
		t.Fatalf("WriteForest() error: %v", err)
	}

	got, err := ReadForest(&buf)
	if err != nil {
		t.Fatalf("ReadForest() error: %v", err)
	}

	if got.Size() != f.Size() {
		t.Errorf("size = %d, want %d", got.Size(), f.Size())
	}
	if len(got.Roots) != 1 || got.Roots[0].ID != "r" {
		t.Errorf("roots not rebuilt: %v", got.Roots)
	}
	child, ok := got.Person("c")
	if !ok || child.FatherID != "r" {
		t.Error("child record lost in round trip")
	}
	if got.Lookup["r"].Spouse == nil {
		t.Error("spouse link not recomputed on read")
	}
}

func TestFromPerson_DerivesAvatar(t *testing.T) {
	rec := FromPerson(&tree.Person{ID: "r", Name: "Rosa Whitfield"})
	if rec.Avatar == nil {
		t.Fatal("record should carry a derived avatar")
	}
	if rec.Avatar.Initials != "RW" {
		t.Errorf("initials = %q, want RW", rec.Avatar.Initials)
	}
	if rec.Avatar.Color == "" {
		t.Error("placeholder avatar should have a color")
	}

	rec = FromPerson(&tree.Person{ID: "r", Name: "Rosa", ImageURL: "https://img.example.com/r.jpg"})
	if rec.Avatar == nil || rec.Avatar.URL == "" {
		t.Error("image-backed avatar should carry the URL through")
	}
	if rec.Avatar.Initials != "" {
		t.Error("image-backed avatar should not carry placeholder initials")
	}
}

func TestToForest_DropsInvalidRecords(t *testing.T) {
	doc := Document{Persons: []Record{
		{ID: "1", Name: "A"},
		{ID: "", Name: "B"},
		{ID: "3", Name: "  "},
	}}
	if got := ToForest(doc).Size(); got != 1 {
		t.Errorf("size = %d, want invalid records dropped", got)
	}
}

func TestFromForest_PreservesInputOrder(t *testing.T) {
	f := sampleForest()
	a := FromForest(f)
	b := FromForest(f)
	for i := range a.Persons {
		if a.Persons[i].ID != b.Persons[i].ID {
			t.Fatal("record order must be deterministic")
		}
	}
	want := f.IDs()
	for i, rec := range a.Persons {
		if rec.ID != want[i] {
			t.Fatalf("record order = %v, want input order %v", recordIDs(a.Persons), want)
		}
	}
}

func recordIDs(recs []Record) []string {
	ids := make([]string, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	return ids
}

func TestForest_RoundTripKeepsUndatedSiblingOrder(t *testing.T) {
	// Undated siblings tie on birth date, so the builder keeps input order.
	// A round trip must not reorder them.
	persons := []*tree.Person{
		{ID: "r", Name: "Root"},
		{ID: "9", Name: "Younger-looking ID", FatherID: "r"},
		{ID: "1", Name: "Older-looking ID", FatherID: "r"},
	}
	f := tree.Build(persons)

	data, err := MarshalForest(f)
	if err != nil {
		t.Fatalf("MarshalForest() error: %v", err)
	}
	got, err := ReadForest(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadForest() error: %v", err)
	}

	before := childIDs(f.Lookup["r"])
	after := childIDs(got.Lookup["r"])
	if len(before) != len(after) {
		t.Fatalf("children lost in round trip: before=%v after=%v", before, after)
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("undated sibling order changed on round trip: before=%v after=%v", before, after)
		}
	}
}

func childIDs(p *tree.Person) []string {
	ids := make([]string, len(p.Children))
	for i, c := range p.Children {
		ids[i] = c.ID
	}
	return ids
}

func TestFromFocus(t *testing.T) {
	f := sampleForest()
	doc := FromFocus(tree.Focus(f.Lookup, "c"))

	if len(doc.Roots) != 1 {
		t.Fatalf("roots = %d, want 1", len(doc.Roots))
	}
	root := doc.Roots[0]
	if root.ID != "r" || root.Spouse == nil || root.Spouse.ID != "s" {
		t.Errorf("focus root = %+v, want father clone with spouse slot", root.Record)
	}
	if len(root.Children) != 1 || root.Children[0].ID != "c" {
		t.Error("focus root must carry only the focused child")
	}
	want := []string{"c", "r", "s"}
	if len(doc.Highlighted) != len(want) {
		t.Fatalf("highlighted = %v, want %v", doc.Highlighted, want)
	}
	for i, id := range want {
		if doc.Highlighted[i] != id {
			t.Errorf("highlighted[%d] = %s, want %s (sorted)", i, doc.Highlighted[i], id)
		}
	}
}
