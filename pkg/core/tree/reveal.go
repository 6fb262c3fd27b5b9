package tree

// StepKind distinguishes the two atomic reveal actions.
type StepKind string

const (
	// StepPerson shows a person's card.
	StepPerson StepKind = "person"
	// StepSpouse shows the spouse slot next to an already-revealed person.
	StepSpouse StepKind = "spouse"
)

// Step is one atomic action of the animated first paint. CenterID names the
// person the viewport should re-center on while the step plays.
type Step struct {
	Kind     StepKind
	ID       string
	CenterID string
}

// Sequence computes the ordered reveal steps for the forest.
//
// It walks the forest breadth-first from the roots, one generation per
// level, deduplicating within a level by id so a person reachable through
// two paths (cousin intermarriage) is revealed exactly once, at the
// generation of first discovery. Within a generation each not-yet-revealed
// person yields a StepPerson; a resolved, not-yet-revealed spouse yields a
// StepSpouse immediately after. The next generation collects the children
// of both the person and the spouse, so families hanging off an excluded
// root's partner are still reached.
func Sequence(f *Forest) []Step {
	var steps []Step
	visited := make(map[string]bool, len(f.Lookup))

	level := dedupe(f.Roots)
	for len(level) > 0 {
		var next []*Person
		for _, p := range level {
			if !visited[p.ID] {
				visited[p.ID] = true
				steps = append(steps, Step{Kind: StepPerson, ID: p.ID, CenterID: p.ID})
				if s := p.Spouse; s != nil && !visited[s.ID] {
					visited[s.ID] = true
					steps = append(steps, Step{Kind: StepSpouse, ID: s.ID, CenterID: s.ID})
				}
			}
			next = append(next, p.Children...)
			if p.Spouse != nil {
				next = append(next, p.Spouse.Children...)
			}
		}
		level = dedupe(next)
	}

	return steps
}

func dedupe(persons []*Person) []*Person {
	seen := make(map[string]bool, len(persons))
	out := persons[:0:0]
	for _, p := range persons {
		if !seen[p.ID] {
			seen[p.ID] = true
			out = append(out, p)
		}
	}
	return out
}

// RevealAll returns the full id set as already visible: the escape used
// both when sequencing yields no meaningful levels and when the user skips
// the animation.
func RevealAll(f *Forest) map[string]bool {
	visible := make(map[string]bool, len(f.Lookup))
	for id := range f.Lookup {
		visible[id] = true
	}
	return visible
}

// Player drives a reveal sequence one step at a time.
//
// Cancellation uses a generation counter rather than shared flags: every
// scheduled step captures the generation it was issued under, and Step
// refuses to apply when the counter has moved on. Skip and Restart bump the
// counter, so a step scheduled before the skip can never mutate visibility
// after it. The Player is owned by a single event loop and is not safe for
// concurrent use.
type Player struct {
	steps   []Step
	next    int
	gen     uint64
	visible map[string]bool
	forest  *Forest
}

// NewPlayer builds a player for the forest's reveal sequence.
// An empty sequence (no roots) starts fully revealed so the view is never
// left blank.
func NewPlayer(f *Forest) *Player {
	p := &Player{
		steps:   Sequence(f),
		visible: make(map[string]bool, f.Size()),
		forest:  f,
	}
	if len(p.steps) == 0 {
		p.visible = RevealAll(f)
	}
	return p
}

// Generation returns the current cancellation generation. Schedulers capture
// it when queueing a step and pass it back to Step.
func (p *Player) Generation() uint64 { return p.gen }

// Step applies the next reveal action if gen still matches the current
// generation and steps remain. It returns the applied step and true, or a
// zero step and false when the sequence is cancelled or exhausted.
func (p *Player) Step(gen uint64) (Step, bool) {
	if gen != p.gen || p.next >= len(p.steps) {
		return Step{}, false
	}
	step := p.steps[p.next]
	p.next++
	p.visible[step.ID] = true
	return step, true
}

// Skip cancels any in-flight sequence and reveals everything at once.
func (p *Player) Skip() {
	p.gen++
	p.next = len(p.steps)
	p.visible = RevealAll(p.forest)
}

// Restart cancels any in-flight sequence and rewinds to the beginning.
func (p *Player) Restart() {
	p.gen++
	p.next = 0
	p.visible = make(map[string]bool, p.forest.Size())
	if len(p.steps) == 0 {
		p.visible = RevealAll(p.forest)
	}
}

// Done reports whether every step has been applied.
func (p *Player) Done() bool { return p.next >= len(p.steps) }

// Visible reports whether the person with the given id has been revealed.
func (p *Player) Visible(id string) bool { return p.visible[id] }

// VisibleCount returns the number of revealed ids.
func (p *Player) VisibleCount() int { return len(p.visible) }
