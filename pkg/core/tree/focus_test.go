package tree

import "testing"

func TestFocus_ChildWithSingleParent(t *testing.T) {
	p := person("1", "P")
	c := person("2", "C")
	c.FatherID = "1"
	f := Build([]*Person{p, c})

	view := Focus(f.Lookup, "2")

	if len(view.Highlighted) != 2 || !view.Highlighted["1"] || !view.Highlighted["2"] {
		t.Errorf("highlighted = %v, want {1, 2}", view.Highlighted)
	}
	if len(view.DisplayRoots) != 1 {
		t.Fatalf("display roots = %d, want 1", len(view.DisplayRoots))
	}
	root := view.DisplayRoots[0]
	if root.ID != "1" {
		t.Errorf("display root = %s, want parent clone 1", root.ID)
	}
	if len(root.Children) != 1 || root.Children[0].ID != "2" {
		t.Errorf("clone children = %v, want only the focused child", childIDs(root))
	}
	if root == f.Lookup["1"] {
		t.Error("display root must be a clone, not the shared person")
	}
}

func TestFocus_SiblingsPruned(t *testing.T) {
	p := person("1", "P")
	c := person("2", "C")
	c.FatherID = "1"
	sib := person("3", "Sib")
	sib.FatherID = "1"
	f := Build([]*Person{p, c, sib})

	view := Focus(f.Lookup, "2")

	root := view.DisplayRoots[0]
	if got := childIDs(root); len(got) != 1 || got[0] != "2" {
		t.Errorf("clone children = %v, want siblings pruned to [2]", got)
	}
	if view.Highlighted["3"] {
		t.Error("sibling must not be highlighted")
	}
	// The shared lookup must be untouched.
	if got := childIDs(f.Lookup["1"]); len(got) != 2 {
		t.Errorf("shared parent children = %v, focus must not mutate the lookup", got)
	}
}

func TestFocus_TwoParentsGetMutualSpouseClones(t *testing.T) {
	dad := person("1", "Dad")
	mom := person("2", "Mom")
	c := person("3", "C")
	c.FatherID = "1"
	c.MotherID = "2"
	f := Build([]*Person{dad, mom, c})

	view := Focus(f.Lookup, "3")

	if len(view.DisplayRoots) != 1 {
		t.Fatalf("display roots = %d, want single father clone", len(view.DisplayRoots))
	}
	fc := view.DisplayRoots[0]
	if fc.ID != "1" {
		t.Errorf("display root = %s, want father clone", fc.ID)
	}
	if fc.Spouse == nil || fc.Spouse.ID != "2" {
		t.Fatal("father clone must link to mother clone")
	}
	if fc.Spouse.Spouse != fc {
		t.Error("spouse link between clones must be mutual")
	}
	if fc.Spouse == f.Lookup["2"] {
		t.Error("mother must be cloned, not shared")
	}
	for _, id := range []string{"1", "2", "3"} {
		if !view.Highlighted[id] {
			t.Errorf("id %s missing from highlighted set", id)
		}
	}
}

func TestFocus_DescendantClosureIncludesSpouses(t *testing.T) {
	f := demoForest(t)

	view := Focus(f.Lookup, "b")

	for _, id := range []string{"b", "a", "g", "r", "s"} {
		if !view.Highlighted[id] {
			t.Errorf("id %s missing from highlighted set %v", id, view.Highlighted)
		}
	}
	if view.Highlighted["c"] {
		t.Error("uncle branch must not be highlighted")
	}
}

func TestFocus_RootPersonKeepsOwnSubtree(t *testing.T) {
	f := demoForest(t)

	view := Focus(f.Lookup, "r")

	if len(view.DisplayRoots) != 1 || view.DisplayRoots[0].ID != "r" {
		t.Fatalf("display roots = %v, want [r]", view.DisplayRoots)
	}
	if view.DisplayRoots[0] == f.Lookup["r"] {
		t.Error("subtree must be deep-cloned")
	}
	if got := len(view.DisplayRoots[0].Children); got != 2 {
		t.Errorf("clone children = %d, want full descendant subtree", got)
	}
}

func TestFocus_UnknownIDIsNoOp(t *testing.T) {
	f := demoForest(t)

	view := Focus(f.Lookup, "nobody")

	if len(view.DisplayRoots) != 0 {
		t.Errorf("display roots = %v, want none", view.DisplayRoots)
	}
	if len(view.Highlighted) != 0 {
		t.Errorf("highlighted = %v, want empty", view.Highlighted)
	}
}
