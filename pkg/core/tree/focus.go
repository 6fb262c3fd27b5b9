package tree

// FocusView is the derived state for a focused person: the reduced forest to
// display and the set of ids to keep at full brightness while everything
// else is dimmed.
type FocusView struct {
	// DisplayRoots is the pruned forest for the focus mode. When the focused
	// person has parents it holds a single synthetic parent clone whose
	// Children contain only the focused subtree; otherwise it holds the
	// focused person's own cloned subtree.
	DisplayRoots []*Person

	// Highlighted contains the focused person, their full descendant closure
	// including every descendant's resolved spouse, and the immediate
	// parents together with each parent's resolved spouse.
	Highlighted map[string]bool
}

// Focus derives the focus view for id against the shared lookup.
//
// The lookup is never written to: every person reachable from DisplayRoots
// is a clone. An unknown id resolves to an empty view, not an error, so a
// stale deep link degrades to "nothing highlighted".
func Focus(lookup map[string]*Person, id string) FocusView {
	view := FocusView{Highlighted: make(map[string]bool)}

	p, ok := lookup[id]
	if !ok {
		return view
	}

	markDescendants(p, view.Highlighted)

	father := resolveParent(lookup, p.FatherID)
	mother := resolveParent(lookup, p.MotherID)
	for _, parent := range []*Person{father, mother} {
		if parent == nil {
			continue
		}
		view.Highlighted[parent.ID] = true
		if parent.Spouse != nil {
			view.Highlighted[parent.Spouse.ID] = true
		}
	}

	subtree := cloneSubtree(p, make(map[string]bool))

	if father == nil && mother == nil {
		view.DisplayRoots = []*Person{subtree}
		return view
	}

	// Synthetic parent clones carry only the focused person's line; the
	// focused person's siblings are pruned. The mutual spouse link between
	// the two clones is re-established so the renderer picks up the second
	// parent through the normal spouse slot.
	var fatherClone, motherClone *Person
	if father != nil {
		cp := *father
		cp.Spouse = nil
		cp.Children = []*Person{subtree}
		fatherClone = &cp
	}
	if mother != nil {
		cp := *mother
		cp.Spouse = nil
		cp.Children = []*Person{subtree}
		motherClone = &cp
	}
	if fatherClone != nil && motherClone != nil {
		fatherClone.Spouse = motherClone
		motherClone.Spouse = fatherClone
	}

	if fatherClone != nil {
		view.DisplayRoots = []*Person{fatherClone}
	} else {
		view.DisplayRoots = []*Person{motherClone}
	}
	return view
}

func resolveParent(lookup map[string]*Person, id string) *Person {
	if id == "" {
		return nil
	}
	return lookup[id]
}

// markDescendants adds p, p's resolved spouse, and the full descendant
// closure (with each descendant's spouse) to set. The seen guard makes the
// walk terminate even on corrupt data where a person descends from itself.
func markDescendants(p *Person, set map[string]bool) {
	if set[p.ID] {
		return
	}
	set[p.ID] = true
	if p.Spouse != nil {
		set[p.Spouse.ID] = true
	}
	for _, c := range p.Children {
		markDescendants(c, set)
	}
}

// cloneSubtree deep-clones p and its descendant chain. Spouse pointers keep
// referencing the shared lookup: they are read-only for the renderer and
// cloning them would detach spouse-side children.
func cloneSubtree(p *Person, seen map[string]bool) *Person {
	cp := *p
	seen[p.ID] = true
	cp.Children = make([]*Person, 0, len(p.Children))
	for _, c := range p.Children {
		if seen[c.ID] {
			continue
		}
		cp.Children = append(cp.Children, cloneSubtree(c, seen))
	}
	return &cp
}
