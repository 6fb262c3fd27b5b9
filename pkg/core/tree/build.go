package tree

import "slices"

// Forest is the resolved family graph: a lookup of every accepted person by
// id plus the deduplicated list of tree roots. It is produced once per data
// load by [Build] and treated as read-only by every downstream consumer.
type Forest struct {
	Lookup map[string]*Person
	Roots  []*Person

	// order preserves input order for deterministic iteration.
	order []string
}

// Person returns the person with the given id, or nil and false.
func (f *Forest) Person(id string) (*Person, bool) {
	p, ok := f.Lookup[id]
	return p, ok
}

// Size returns the number of persons in the lookup.
func (f *Forest) Size() int { return len(f.Lookup) }

// IDs returns all person ids in input order.
func (f *Forest) IDs() []string { return slices.Clone(f.order) }

// Build links normalized persons into a forest.
//
// The algorithm, in order:
//
//  1. Materialize one mutable copy per person into the lookup with empty
//     derived relations. The first occurrence of a duplicate id wins.
//  2. Resolve spouse references one-directionally: a person whose SpouseID
//     is present in the lookup gets Spouse set. One-sided declarations stay
//     one-sided; legacy data depends on the asymmetry being preserved.
//  3. Attach each person to its resolved father's and mother's Children,
//     skipping ids already present (both parents may resolve to the same
//     person, and two rows may independently claim the same child). Anyone
//     attached to at least one resolved parent is marked non-root.
//  4. Sort every Children list ascending by birth date. Undated children
//     sort after all dated ones; ties and undated runs keep input order.
//  5. Root candidates are the persons never marked non-root.
//  6. Spouse-of-non-root exclusion: a candidate whose resolved spouse is a
//     non-root is dropped. It renders inside the spouse's branch instead.
//  7. Root deduplication: walk remaining candidates in input order, skipping
//     any candidate already consumed as an earlier root's spouse. Keeping a
//     root consumes both its own id and its spouse's.
//
// Build never mutates its input slice elements; it operates on copies.
func Build(persons []*Person) *Forest {
	f := &Forest{Lookup: make(map[string]*Person, len(persons))}

	for _, p := range persons {
		if _, dup := f.Lookup[p.ID]; dup {
			continue
		}
		cp := *p
		cp.Spouse = nil
		cp.Children = nil
		f.Lookup[cp.ID] = &cp
		f.order = append(f.order, cp.ID)
	}

	for _, id := range f.order {
		p := f.Lookup[id]
		if p.SpouseID == "" {
			continue
		}
		if spouse, ok := f.Lookup[p.SpouseID]; ok && spouse != p {
			p.Spouse = spouse
		}
	}

	nonRoot := make(map[string]bool, len(f.Lookup))
	for _, id := range f.order {
		p := f.Lookup[id]
		attached := false
		if father, ok := f.Lookup[p.FatherID]; ok && p.FatherID != "" {
			attachChild(father, p)
			attached = true
		}
		if mother, ok := f.Lookup[p.MotherID]; ok && p.MotherID != "" {
			attachChild(mother, p)
			attached = true
		}
		if attached {
			nonRoot[p.ID] = true
		}
	}

	for _, id := range f.order {
		sortChildren(f.Lookup[id].Children)
	}

	consumed := make(map[string]bool)
	for _, id := range f.order {
		p := f.Lookup[id]
		if nonRoot[p.ID] || consumed[p.ID] {
			continue
		}
		if p.Spouse != nil && nonRoot[p.Spouse.ID] {
			continue
		}
		f.Roots = append(f.Roots, p)
		consumed[p.ID] = true
		if p.Spouse != nil {
			consumed[p.Spouse.ID] = true
		}
	}

	return f
}

// attachChild appends child to parent's Children unless already present by
// id. Attachment is idempotent so duplicate claims collapse to one slot.
func attachChild(parent, child *Person) {
	for _, c := range parent.Children {
		if c.ID == child.ID {
			return
		}
	}
	parent.Children = append(parent.Children, child)
}

// sortChildren orders siblings by birth date ascending. The sort is stable:
// undated siblings keep their relative input order at the end of the list.
func sortChildren(children []*Person) {
	slices.SortStableFunc(children, func(a, b *Person) int {
		at, aok := a.born()
		bt, bok := b.born()
		switch {
		case aok && bok:
			return at.Compare(bt)
		case aok:
			return -1
		case bok:
			return 1
		default:
			return 0
		}
	})
}
