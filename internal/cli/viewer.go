package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kindredtree/kindred/pkg/avatar"
	"github.com/kindredtree/kindred/pkg/core/tree"
	"github.com/kindredtree/kindred/pkg/core/view"
	kerrors "github.com/kindredtree/kindred/pkg/errors"
	"github.com/kindredtree/kindred/pkg/layout"
)

// Explorer timing and chrome constants.
const (
	revealInterval = 120 * time.Millisecond
	chromeRows     = 2 // header + footer
	panStepX       = 6.0
	panStepY       = 3.0
	zoomInFactor   = 1.2
	zoomOutFactor  = 1.0 / 1.2
	minimapWidth   = 24
	minimapHeight  = 10
)

// Explorer styles.
var (
	styleCardBorder  = lipgloss.NewStyle().Foreground(colorDim)
	styleCardName    = lipgloss.NewStyle().Foreground(colorWhite)
	styleCardDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleCardFocus   = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleMinimapBox  = lipgloss.NewStyle().Foreground(colorGray)
	styleMinimapView = lipgloss.NewStyle().Foreground(colorCyan)
	styleStatusBar   = lipgloss.NewStyle().Foreground(colorGray)
	styleSearchBar   = lipgloss.NewStyle().Foreground(colorYellow)
)

// revealStepMsg drives the animated first paint. It carries the player
// generation captured when the tick was scheduled so a skipped or restarted
// sequence can refuse stale ticks.
type revealStepMsg struct {
	gen uint64
}

// =============================================================================
// treeModel - Interactive family tree explorer
// =============================================================================

// treeModel is the bubbletea model for the tree explorer. The full forest is
// immutable shared state; focus mode swaps in cloned display roots and a
// layout computed from them.
type treeModel struct {
	forest *tree.Forest
	source string

	// Current display state. In focus mode these differ from the full forest.
	roots       []*tree.Person
	grid        *layout.Layout
	highlighted map[string]bool
	focusID     string

	vp     *view.Viewport
	player *tree.Player
	taps   *view.TapTracker

	width  int
	height int
	sized  bool

	showMinimap bool
	dragging    bool
	dragLast    view.Point

	searching bool
	query     string
	matches   []string
	matchIdx  int

	status string
}

// newTreeModel builds the explorer model. A non-empty focusID opens directly
// in focus mode with the reveal animation skipped.
func newTreeModel(f *tree.Forest, source, focusID string) (treeModel, error) {
	m := treeModel{
		forest:      f,
		source:      source,
		roots:       f.Roots,
		grid:        layout.Compute(f.Roots),
		vp:          view.NewViewport(),
		player:      tree.NewPlayer(f),
		taps:        &view.TapTracker{},
		showMinimap: true,
	}
	m.vp.SetContentSize(m.grid.Bounds())

	if focusID != "" {
		if _, ok := f.Person(focusID); !ok {
			return m, kerrors.New(kerrors.ErrCodePersonNotFound, "person %q not found in dataset", focusID)
		}
		m.enterFocus(focusID)
		m.player.Skip()
	}
	return m, nil
}

// enterFocus swaps the display state to the focus view for id. The player is
// left alone; callers decide whether the reveal should replay.
func (m *treeModel) enterFocus(id string) {
	fv := tree.Focus(m.forest.Lookup, id)
	m.focusID = id
	m.roots = fv.DisplayRoots
	m.highlighted = fv.Highlighted
	m.grid = layout.Compute(fv.DisplayRoots)
	m.vp.SetContentSize(m.grid.Bounds())
	m.vp.FitToTop()
}

// leaveFocus restores the full forest display.
func (m *treeModel) leaveFocus() {
	m.focusID = ""
	m.roots = m.forest.Roots
	m.highlighted = nil
	m.grid = layout.Compute(m.forest.Roots)
	m.vp.SetContentSize(m.grid.Bounds())
	m.vp.FitToTop()
}

func (m treeModel) Init() tea.Cmd {
	if m.player.Done() {
		return nil
	}
	return m.revealTick()
}

// revealTick schedules the next reveal step against the current generation.
func (m treeModel) revealTick() tea.Cmd {
	gen := m.player.Generation()
	return tea.Tick(revealInterval, func(time.Time) tea.Msg {
		return revealStepMsg{gen: gen}
	})
}

func (m treeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.SetContainerSize(view.Size{
			Width:  float64(msg.Width),
			Height: float64(msg.Height - chromeRows),
		})
		if !m.sized {
			m.sized = true
			m.vp.FitToTop()
		}
		return m, nil

	case revealStepMsg:
		step, ok := m.player.Step(msg.gen)
		if !ok {
			return m, nil
		}
		if box, found := m.grid.Box(step.CenterID); found {
			m.vp.CenterOnContentRect(box, 0)
		}
		if m.player.Done() {
			return m, nil
		}
		return m, m.revealTick()

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)
	}
	return m, nil
}

// updateKey handles key input, switching between search entry and navigation.
func (m treeModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.query = ""
		case "enter":
			m.searching = false
			m.runSearch()
		case "backspace":
			if len(m.query) > 0 {
				m.query = m.query[:len(m.query)-1]
			}
		default:
			if msg.Type == tea.KeyRunes {
				m.query += string(msg.Runes)
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.vp.PanBy(panStepX, 0)
	case "right", "l":
		m.vp.PanBy(-panStepX, 0)
	case "up", "k":
		m.vp.PanBy(0, panStepY)
	case "down", "j":
		m.vp.PanBy(0, -panStepY)
	case "+", "=":
		m.vp.ZoomStep(zoomInFactor)
	case "-", "_":
		m.vp.ZoomStep(zoomOutFactor)
	case "f":
		m.vp.FitToTop()
	case "o":
		m.vp.FitOverview()
	case "m":
		m.showMinimap = !m.showMinimap
	case "s":
		m.player.Skip()
	case "r":
		m.player.Restart()
		return m, m.revealTick()
	case "/":
		m.searching = true
		m.query = ""
	case "n":
		m.nextMatch()
	case "esc":
		if m.focusID != "" {
			m.leaveFocus()
		}
	case "enter":
		// Focus the person nearest the container center.
		if id := m.personAtCenter(); id != "" {
			m.enterFocus(id)
			m.player.Skip()
		}
	}
	return m, nil
}

// updateMouse handles wheel zoom, drag pan, and tap-to-focus.
func (m treeModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := view.Point{X: float64(msg.X), Y: float64(msg.Y - 1)} // below header

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.vp.ZoomAt(p, zoomInFactor)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.vp.ZoomAt(p, zoomOutFactor)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			if m.showMinimap && m.minimapJump(p) {
				return m, nil
			}
			m.taps.Begin(m.personAt(p), p, time.Now())
			m.dragging = true
			m.dragLast = p
		}
	case tea.MouseActionMotion:
		if m.dragging {
			m.taps.Move(p)
			m.vp.PanBy(p.X-m.dragLast.X, p.Y-m.dragLast.Y)
			m.dragLast = p
		}
	case tea.MouseActionRelease:
		m.dragging = false
		kind, target := m.taps.End(time.Now())
		if kind == view.TapDouble && target != "" {
			m.enterFocus(target)
			m.player.Skip()
		} else if kind == view.TapSingle && target != "" {
			if person, ok := m.forest.Person(target); ok {
				m.status = personSummary(person)
			}
		}
	}
	return m, nil
}

// runSearch collects persons whose name or alias contains the query and
// jumps to the first match.
func (m *treeModel) runSearch() {
	m.matches = m.matches[:0]
	m.matchIdx = 0
	q := strings.ToLower(strings.TrimSpace(m.query))
	if q == "" {
		return
	}
	for _, id := range m.grid.IDs() {
		p, ok := m.forest.Person(id)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(p.Name), q) ||
			(p.Alias != "" && strings.Contains(strings.ToLower(p.Alias), q)) {
			m.matches = append(m.matches, id)
		}
	}
	if len(m.matches) == 0 {
		m.status = fmt.Sprintf("no match for %q", m.query)
		return
	}
	m.centerOnMatch()
}

// nextMatch advances the search cursor and recenters.
func (m *treeModel) nextMatch() {
	if len(m.matches) == 0 {
		return
	}
	m.matchIdx = (m.matchIdx + 1) % len(m.matches)
	m.centerOnMatch()
}

func (m *treeModel) centerOnMatch() {
	id := m.matches[m.matchIdx]
	if box, ok := m.grid.Box(id); ok {
		m.vp.CenterOnContentRect(box, 0)
	}
	if p, ok := m.forest.Person(id); ok {
		m.status = fmt.Sprintf("match %d/%d: %s", m.matchIdx+1, len(m.matches), p.Name)
	}
}

// minimapJump recenters the viewport on a clicked minimap point. It reports
// false when the click is outside the minimap or its rendered content.
func (m *treeModel) minimapJump(p view.Point) bool {
	ox := float64(m.width - minimapWidth - 1)
	if ox < 0 || p.X < ox || p.X >= ox+minimapWidth || p.Y < 0 || p.Y >= minimapHeight {
		return false
	}
	local := view.Point{X: p.X - ox, Y: p.Y}
	norm, ok := view.Inverse(local, m.vp.State(), view.Size{Width: minimapWidth, Height: minimapHeight})
	if !ok {
		return false
	}
	return m.vp.CenterOnNormalized(norm)
}

// personAt returns the id of the card under the given screen point, or "".
func (m treeModel) personAt(p view.Point) string {
	for _, id := range m.grid.IDs() {
		box, ok := m.grid.Box(id)
		if !ok {
			continue
		}
		if m.vp.ContentRectToScreen(box).Contains(p) {
			return id
		}
	}
	return ""
}

// personAtCenter returns the id of the card nearest the container center.
func (m treeModel) personAtCenter() string {
	center := view.Point{
		X: float64(m.width) / 2,
		Y: float64(m.height-chromeRows) / 2,
	}
	best := ""
	bestDist := -1.0
	for _, id := range m.grid.IDs() {
		box, ok := m.grid.Box(id)
		if !ok {
			continue
		}
		c := m.vp.ContentRectToScreen(box).Center()
		dx, dy := c.X-center.X, c.Y-center.Y
		d := dx*dx + dy*dy
		if bestDist < 0 || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best
}

// =============================================================================
// Rendering
// =============================================================================

func (m treeModel) View() string {
	if m.width == 0 || m.height < chromeRows+1 {
		return ""
	}

	canvas := newCanvas(m.width, m.height-chromeRows)

	for _, id := range m.grid.IDs() {
		if !m.player.Visible(id) {
			continue
		}
		box, ok := m.grid.Box(id)
		if !ok {
			continue
		}
		p, ok := m.forest.Person(id)
		if !ok {
			continue
		}
		dimmed := m.highlighted != nil && !m.highlighted[id]
		canvas.drawCard(m.vp.ContentRectToScreen(box), p, id == m.focusID, dimmed)
	}

	if m.showMinimap {
		m.drawMinimap(canvas)
	}

	var b strings.Builder
	b.WriteString(m.headerLine())
	b.WriteString("\n")
	b.WriteString(canvas.render())
	b.WriteString("\n")
	b.WriteString(m.footerLine())
	return b.String()
}

// headerLine renders the title row with dataset and zoom info.
func (m treeModel) headerLine() string {
	title := StyleTitle.Render(appName)
	info := fmt.Sprintf("  %s  %d persons  %d%%", m.source, m.forest.Size(), int(m.vp.Scale()*100))
	if m.focusID != "" {
		if p, ok := m.forest.Person(m.focusID); ok {
			info += "  focus: " + p.Name
		}
	}
	return truncateLine(title+styleStatusBar.Render(info), m.width)
}

// footerLine renders the key hints, the search prompt, or the status message.
func (m treeModel) footerLine() string {
	if m.searching {
		return truncateLine(styleSearchBar.Render("/"+m.query+"█"), m.width)
	}
	if m.status != "" {
		return truncateLine(styleStatusBar.Render(m.status), m.width)
	}
	hints := "arrows pan  +/- zoom  f fit  o overview  enter focus  / search  m minimap  q quit"
	if !m.player.Done() {
		hints = "s skip reveal  " + hints
	}
	return truncateLine(StyleDim.Render(hints), m.width)
}

// drawMinimap paints the minimap overlay into the top-right canvas corner.
func (m treeModel) drawMinimap(c *canvas) {
	proj, ok := view.Project(m.vp.State(), view.Size{Width: minimapWidth, Height: minimapHeight})
	if !ok {
		return
	}
	ox := c.width - minimapWidth - 1
	if ox < 0 {
		return
	}

	c.fillRect(ox, 0, minimapWidth, minimapHeight, ' ', cellBorder)
	c.strokeRect(ox, 0, minimapWidth, minimapHeight, cellBorder)

	// Content footprint, then the viewport indicator on top.
	cr := proj.ContentRect
	c.fillRect(ox+int(cr.X), int(cr.Y), int(cr.Width), int(cr.Height), '·', cellMinimap)

	in := proj.Indicator
	c.strokeRect(ox+int(in.X), int(in.Y), int(in.Width), int(in.Height), cellMinimapView)
}

// personSummary formats the one-line status shown after a single tap.
func personSummary(p *tree.Person) string {
	parts := []string{p.Name}
	if p.BirthDate != "" {
		parts = append(parts, "b. "+p.BirthDate)
	}
	if p.DeathDate != "" {
		parts = append(parts, "d. "+p.DeathDate)
	}
	if p.Spouse != nil {
		parts = append(parts, "spouse: "+p.Spouse.Name)
	}
	return strings.Join(parts, "  ")
}

// =============================================================================
// canvas - styled cell buffer
// =============================================================================

// Cell style classes, resolved to lipgloss styles at render time.
const (
	cellPlain = iota
	cellBorder
	cellName
	cellDim
	cellFocus
	cellMinimap
	cellMinimapView
)

var cellStyles = map[int]lipgloss.Style{
	cellBorder:      styleCardBorder,
	cellName:        styleCardName,
	cellDim:         styleCardDim,
	cellFocus:       styleCardFocus,
	cellMinimap:     styleMinimapBox,
	cellMinimapView: styleMinimapView,
}

// canvas is a fixed-size buffer of styled cells the tree is composed into.
type canvas struct {
	width  int
	height int
	runes  [][]rune
	styles [][]int
}

func newCanvas(w, h int) *canvas {
	c := &canvas{width: w, height: h}
	c.runes = make([][]rune, h)
	c.styles = make([][]int, h)
	for y := 0; y < h; y++ {
		c.runes[y] = make([]rune, w)
		c.styles[y] = make([]int, w)
		for x := 0; x < w; x++ {
			c.runes[y][x] = ' '
		}
	}
	return c
}

func (c *canvas) put(x, y int, ch rune, style int) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.runes[y][x] = ch
	c.styles[y][x] = style
}

func (c *canvas) text(x, y int, s string, style int) {
	for i, ch := range s {
		c.put(x+i, y, ch, style)
	}
}

func (c *canvas) fillRect(x, y, w, h int, ch rune, style int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			c.put(x+dx, y+dy, ch, style)
		}
	}
}

func (c *canvas) strokeRect(x, y, w, h, style int) {
	if w < 2 || h < 2 {
		c.fillRect(x, y, max(w, 1), max(h, 1), '▪', style)
		return
	}
	c.put(x, y, '┌', style)
	c.put(x+w-1, y, '┐', style)
	c.put(x, y+h-1, '└', style)
	c.put(x+w-1, y+h-1, '┘', style)
	for dx := 1; dx < w-1; dx++ {
		c.put(x+dx, y, '─', style)
		c.put(x+dx, y+h-1, '─', style)
	}
	for dy := 1; dy < h-1; dy++ {
		c.put(x, y+dy, '│', style)
		c.put(x+w-1, y+dy, '│', style)
	}
}

// drawCard paints one person card at its screen rect. Cards too small to
// carry text are drawn as a single block so deep overviews stay legible.
func (c *canvas) drawCard(r view.Rect, p *tree.Person, focused, dimmed bool) {
	x, y := int(r.X), int(r.Y)
	w, h := int(r.Width), int(r.Height)

	borderStyle := cellBorder
	nameStyle := cellName
	if focused {
		borderStyle = cellFocus
		nameStyle = cellFocus
	} else if dimmed {
		borderStyle = cellDim
		nameStyle = cellDim
	}

	if w < 8 || h < 3 {
		// Too small for text: show the avatar initials as the marker.
		c.text(x+w/2, y+h/2, truncateText(avatar.Initials(p.Name), max(w, 1)), borderStyle)
		return
	}

	c.strokeRect(x, y, w, h, borderStyle)
	c.text(x+2, y+1, truncateText(p.Name, w-4), nameStyle)
	if h >= 5 && p.BirthDate != "" {
		c.text(x+2, y+2, truncateText("b. "+p.BirthDate, w-4), cellDim)
	}
	if h >= 5 && p.DeathDate != "" {
		c.text(x+2, y+3, truncateText("d. "+p.DeathDate, w-4), cellDim)
	}
}

// render assembles the buffer into styled lines, grouping runs of cells
// sharing a style class to keep the escape-sequence overhead down.
func (c *canvas) render() string {
	var b strings.Builder
	for y := 0; y < c.height; y++ {
		runStart := 0
		runStyle := c.styles[y][0]
		for x := 1; x <= c.width; x++ {
			if x < c.width && c.styles[y][x] == runStyle {
				continue
			}
			seg := string(c.runes[y][runStart:x])
			if style, ok := cellStyles[runStyle]; ok {
				b.WriteString(style.Render(seg))
			} else {
				b.WriteString(seg)
			}
			if x < c.width {
				runStart = x
				runStyle = c.styles[y][x]
			}
		}
		if y < c.height-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func truncateText(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return string(r[:1])
	}
	return string(r[:max-1]) + "…"
}

func truncateLine(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	return s[:max]
}
