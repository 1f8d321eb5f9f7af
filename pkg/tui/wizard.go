// Package tui holds the interactive terminal front ends: the test-run wizard
// and the results dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/dkoosis/qarun/pkg/form"
	"github.com/dkoosis/qarun/pkg/report"
	"github.com/dkoosis/qarun/pkg/stepper"
	"github.com/dkoosis/qarun/pkg/walkthrough"
	"github.com/dkoosis/qarun/pkg/wizard"
)

// WizardOptions configures the wizard model.
type WizardOptions struct {
	Theme *Theme
	// Tour, when set, is shown as an overlay until it is done.
	Tour *walkthrough.Tour
	// OnTourDone runs once when the tour finishes or is skipped.
	OnTourDone func(ctx context.Context) error
	Log        *zap.Logger
}

type itemKind int

const (
	itemField itemKind = iota
	itemSection
	itemRow
)

// item is one selectable line of the current step.
type item struct {
	kind    itemKind
	field   form.Field
	section *form.Section
	row     *form.Row
	key     string // fold key of the section, or of the row's enclosing section
	depth   int
}

// Wizard is the bubbletea model of a test run.
type Wizard struct {
	ctx    context.Context
	s      *wizard.Session
	styles *Styles
	log    *zap.Logger

	keys     wizardKeys
	tourKeys tourKeys
	help     help.Model
	input    textinput.Model
	viewport viewport.Model

	items   []item
	cursor  int
	folded  map[string]bool
	editing string // field being edited, or ""
	jumping bool   // the input holds a step number

	tour       *walkthrough.Tour
	onTourDone func(ctx context.Context) error

	status     string
	statusErr  bool
	submission *wizard.Submission

	width  int
	height int
}

// NewWizard returns the model for s.
func NewWizard(ctx context.Context, s *wizard.Session, opts WizardOptions) *Wizard {
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 500

	m := &Wizard{
		ctx:        ctx,
		s:          s,
		styles:     theme.Compile(),
		log:        opts.Log,
		keys:       newWizardKeys(),
		tourKeys:   newTourKeys(),
		help:       help.New(),
		input:      ti,
		viewport:   viewport.New(80, 16),
		folded:     map[string]bool{},
		tour:       opts.Tour,
		onTourDone: opts.OnTourDone,
		width:      80,
		height:     24,
	}
	if s.Restored() {
		m.setStatus(fmt.Sprintf("Resumed at step %d of %d.", s.Step(), s.Plan().Total()), false)
	}
	if m.tour != nil && m.tour.Index() < 0 {
		m.advanceTour()
	}
	m.rebuild()
	return m
}

// Submission returns the written report after a successful submit.
func (m *Wizard) Submission() *wizard.Submission { return m.submission }

func (m *Wizard) Init() tea.Cmd { return nil }

func (m *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = msg.Width - 8
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if m.editing != "" {
			return m, m.updateEditing(msg)
		}
		if m.jumping {
			return m, m.updateJump(msg)
		}
		if m.touring() {
			return m, m.updateTour(msg)
		}
		return m, m.updateKeys(msg)
	}
	return m, nil
}

func (m *Wizard) touring() bool { return m.tour != nil && !m.tour.Done() }

func (m *Wizard) updateKeys(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		return tea.Quit
	}
	if m.submission != nil {
		return nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Cycle):
		m.cycleStatus(1)
	case key.Matches(msg, m.keys.Back):
		m.cycleStatus(-1)
	case key.Matches(msg, m.keys.Pass):
		m.setRowStatus(report.StatusPass)
	case key.Matches(msg, m.keys.Fail):
		m.setRowStatus(report.StatusFail)
	case key.Matches(msg, m.keys.Blocked):
		m.setRowStatus(report.StatusBlocked)
	case key.Matches(msg, m.keys.Edit):
		return m.activate()
	case key.Matches(msg, m.keys.Detail):
		if it, ok := m.current(); ok && it.kind == itemRow {
			m.s.ToggleDetail(it.row.Case.ID)
			m.render()
		}
	case key.Matches(msg, m.keys.Fold):
		m.toggleFold()
	case key.Matches(msg, m.keys.Next):
		m.navigate(m.s.Next(m.ctx))
	case key.Matches(msg, m.keys.Prev):
		m.navigate(m.s.Prev(m.ctx))
	case key.Matches(msg, m.keys.Jump):
		m.navigate(m.s.Jump(m.ctx, int(msg.String()[0]-'0')))
	case key.Matches(msg, m.keys.GoTo):
		return m.startJump()
	case key.Matches(msg, m.keys.Submit):
		m.submit()
	case key.Matches(msg, m.keys.Reset):
		if err := m.s.Reset(m.ctx); err != nil {
			m.fail(err)
			return nil
		}
		m.folded = map[string]bool{}
		m.cursor = 0
		m.rebuild()
		m.setStatus("Progress cleared.", false)
	}
	return nil
}

func (m *Wizard) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := m.input.Value()
		field := m.editing
		m.stopEditing()
		if id, ok := strings.CutSuffix(field, "_comment"); ok && m.isRow(id) {
			m.check(m.s.SetComment(m.ctx, id, strings.TrimSpace(value)))
		} else {
			m.check(m.s.SetValue(m.ctx, field, strings.TrimSpace(value)))
		}
		m.render()
		return nil
	case tea.KeyEsc:
		m.stopEditing()
		m.render()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.render()
	return cmd
}

// startJump opens the step prompt, which reaches steps the digit keys cannot.
func (m *Wizard) startJump() tea.Cmd {
	m.jumping = true
	m.input.Reset()
	m.input.Placeholder = fmt.Sprintf("Go to step (1-%d)", m.s.Plan().Total())
	m.layout()
	return m.input.Focus()
}

func (m *Wizard) stopJump() {
	m.jumping = false
	m.input.Blur()
	m.input.Reset()
	m.layout()
}

func (m *Wizard) updateJump(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		raw := strings.TrimSpace(m.input.Value())
		m.stopJump()
		total := m.s.Plan().Total()
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > total {
			m.setStatus(fmt.Sprintf("Enter a step number from 1 to %d.", total), true)
			m.render()
			return nil
		}
		m.navigate(m.s.Jump(m.ctx, n))
		return nil
	case tea.KeyEsc:
		m.stopJump()
		m.render()
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Wizard) updateTour(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.tourKeys.Next):
		m.advanceTour()
	case key.Matches(msg, m.tourKeys.Prev):
		m.tour.Prev()
	case key.Matches(msg, m.tourKeys.Finish):
		m.tour.Finish()
		m.tourFinished()
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	}
	m.rebuild()
	return nil
}

func (m *Wizard) advanceTour() {
	if err := m.tour.Next(m.ctx); err != nil {
		m.log.Warn("tour step failed", zap.Error(err))
		m.fail(err)
	}
	if m.tour.Done() {
		m.tourFinished()
		return
	}
	if step, ok := m.tour.Current(); ok {
		switch step.Target {
		case walkthrough.TargetDetails, walkthrough.TargetStatus, walkthrough.TargetComment:
			m.rebuild()
			m.focusFirstRow()
		}
	}
}

func (m *Wizard) tourFinished() {
	if m.onTourDone != nil {
		if err := m.onTourDone(m.ctx); err != nil {
			m.fail(err)
			return
		}
	}
	m.setStatus("Tour finished. Press q to quit.", false)
}

func (m *Wizard) activate() tea.Cmd {
	it, ok := m.current()
	if !ok {
		return nil
	}
	switch it.kind {
	case itemSection:
		m.toggleFold()
		return nil
	case itemField:
		return m.startEditing(it.field.Name, it.field.Label)
	default:
		return m.startEditing(it.row.CommentField(), "Comment for "+it.row.Case.ID)
	}
}

func (m *Wizard) startEditing(field, placeholder string) tea.Cmd {
	m.editing = field
	m.input.SetValue(m.s.Value(field))
	m.input.Placeholder = placeholder
	m.input.CursorEnd()
	m.layout()
	return m.input.Focus()
}

func (m *Wizard) stopEditing() {
	m.editing = ""
	m.input.Blur()
	m.input.Reset()
	m.layout()
}

func (m *Wizard) isRow(id string) bool {
	_, ok := m.s.Plan().Row(id)
	return ok
}

func (m *Wizard) cycleStatus(dir int) {
	it, ok := m.current()
	if !ok || it.kind != itemRow {
		return
	}
	order := append([]report.Status{report.StatusUnset}, report.Statuses...)
	cur := m.s.Value(it.row.StatusField())
	idx := 0
	for i, st := range order {
		if string(st) == cur {
			idx = i
		}
	}
	next := order[(idx+dir+len(order))%len(order)]
	m.setRowStatus(next)
}

func (m *Wizard) setRowStatus(st report.Status) {
	it, ok := m.current()
	if !ok || it.kind != itemRow {
		return
	}
	m.check(m.s.SetStatus(m.ctx, it.row.Case.ID, st))
	if st.NeedsComment() && strings.TrimSpace(m.s.Value(it.row.CommentField())) == "" {
		m.setStatus("A comment is required for "+string(st)+". Press enter to add one.", false)
	}
	m.render()
}

func (m *Wizard) toggleFold() {
	it, ok := m.current()
	if !ok || it.key == "" {
		return
	}
	m.folded[it.key] = !m.folded[it.key]
	m.rebuild()
	for i, other := range m.items {
		if other.kind == itemSection && other.key == it.key {
			m.cursor = i
			break
		}
	}
	m.render()
}

func (m *Wizard) navigate(err error) {
	prev := m.cursor
	m.cursor = 0
	m.rebuild()
	if err != nil {
		if !m.handleValidation(err) {
			m.cursor = prev
			m.fail(err)
		}
		return
	}
	m.viewport.GotoTop()
	m.setStatus("", false)
}

func (m *Wizard) submit() {
	if !m.s.IsLast() {
		m.setStatus("Submit is available on the last step.", true)
		return
	}
	sub, err := m.s.Submit(m.ctx)
	if err != nil {
		m.rebuild()
		if !m.handleValidation(err) {
			m.fail(err)
		}
		return
	}
	m.submission = sub
	m.setStatus("", false)
	m.render()
}

// handleValidation moves the cursor to the field named by a validation error
// and unfolds its section.
func (m *Wizard) handleValidation(err error) bool {
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	if verr.Step != m.s.Step() {
		// A jump stopped at an earlier step; the field is not on screen.
		m.setStatus(fmt.Sprintf("Step %d: %s", verr.Step, verr.Message), true)
		m.render()
		return true
	}
	if verr.CaseID != "" {
		m.unfoldTo(verr.CaseID)
	}
	m.rebuild()
	for i, it := range m.items {
		if (it.kind == itemRow && it.row.Case.ID == verr.CaseID) ||
			(it.kind == itemField && it.field.Name == verr.Field) {
			m.cursor = i
			break
		}
	}
	m.setStatus(verr.Message, true)
	m.render()
	return true
}

func (m *Wizard) unfoldTo(id string) {
	step := m.s.Plan().Step(m.s.Step())
	if step == nil {
		return
	}
	var walk func(secs []*form.Section, prefix string) bool
	walk = func(secs []*form.Section, prefix string) bool {
		found := false
		for _, sec := range secs {
			k := prefix + "/" + sec.Key
			hit := false
			for _, r := range sec.Rows {
				if r.Case.ID == id {
					hit = true
				}
			}
			if walk(sec.Sections, k) {
				hit = true
			}
			if hit {
				delete(m.folded, k)
				found = true
			}
		}
		return found
	}
	walk(step.Sections, step.Key)
}

func (m *Wizard) check(err error) {
	if err != nil {
		m.fail(err)
	}
}

func (m *Wizard) fail(err error) {
	switch {
	case errors.Is(err, stepper.ErrStepLocked):
		m.setStatus("Complete the earlier steps first.", true)
	default:
		m.setStatus(err.Error(), true)
	}
}

func (m *Wizard) setStatus(msg string, isErr bool) {
	m.status = msg
	m.statusErr = isErr
}

func (m *Wizard) current() (item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return item{}, false
	}
	return m.items[m.cursor], true
}

func (m *Wizard) move(delta int) {
	if len(m.items) == 0 {
		return
	}
	m.cursor = max(0, min(len(m.items)-1, m.cursor+delta))
	m.render()
}

func (m *Wizard) focusFirstRow() {
	for i, it := range m.items {
		if it.kind == itemRow {
			m.cursor = i
			m.render()
			return
		}
	}
}

// rebuild recomputes the selectable items of the current step.
func (m *Wizard) rebuild() {
	step := m.s.Plan().Step(m.s.Step())
	m.items = m.items[:0]
	if step != nil {
		for _, f := range step.Fields {
			m.items = append(m.items, item{kind: itemField, field: f})
		}
		for _, r := range step.Rows {
			m.items = append(m.items, item{kind: itemRow, row: r})
		}
		m.appendSections(step.Sections, step.Key, 0)
	}
	if m.cursor >= len(m.items) {
		m.cursor = max(0, len(m.items)-1)
	}
	m.render()
}

func (m *Wizard) appendSections(secs []*form.Section, prefix string, depth int) {
	for _, sec := range secs {
		k := prefix + "/" + sec.Key
		m.items = append(m.items, item{kind: itemSection, section: sec, key: k, depth: depth})
		if m.folded[k] {
			continue
		}
		for _, r := range sec.Rows {
			m.items = append(m.items, item{kind: itemRow, row: r, key: k, depth: depth + 1})
		}
		m.appendSections(sec.Sections, k, depth+1)
	}
}

func (m *Wizard) layout() {
	chrome := 4 // title, indicator, status, blank
	chrome += lipgloss.Height(m.help.View(m.helpKeys()))
	if m.touring() {
		chrome += 4
	}
	if m.editing != "" || m.jumping {
		chrome++
	}
	m.viewport.Width = m.width
	m.viewport.Height = max(3, m.height-chrome)
	m.render()
}

func (m *Wizard) helpKeys() help.KeyMap {
	if m.touring() {
		return m.tourKeys
	}
	return m.keys
}

// render refreshes the viewport and keeps the cursor line visible.
func (m *Wizard) render() {
	var lines []string
	cursorLine := 0
	for i, it := range m.items {
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderItem(it, i == m.cursor)...)
	}
	if len(lines) == 0 {
		lines = []string{m.styles.Muted.Render("This step has no test cases.")}
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))

	switch {
	case cursorLine < m.viewport.YOffset:
		m.viewport.SetYOffset(cursorLine)
	case cursorLine >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(cursorLine - m.viewport.Height + 1)
	}
}

func (m *Wizard) renderItem(it item, selected bool) []string {
	marker := "  "
	if selected {
		marker = m.styles.Icons.Select + " "
	}
	indent := strings.Repeat("  ", it.depth)

	switch it.kind {
	case itemField:
		label := it.field.Label
		if it.field.Required {
			label += "*"
		}
		value := m.s.Value(it.field.Name)
		line := fmt.Sprintf("%s%-13s %s", marker, label+":", value)
		if selected {
			line = m.styles.Selected.Render(line)
		}
		return []string{line}

	case itemSection:
		icon := m.styles.Icons.Section
		if m.folded[it.key] {
			icon = m.styles.Icons.Folded
		}
		done, total := m.sectionProgress(it.section)
		line := fmt.Sprintf("%s%s%s %s (%d/%d)", marker, indent, icon, it.section.Title, done, total)
		if selected {
			return []string{m.styles.Selected.Render(line)}
		}
		return []string{m.styles.Section.Render(line)}
	}

	r := it.row
	st := report.Status(m.s.Value(r.StatusField()))
	head := fmt.Sprintf("%s%s%s %s  %s", marker, indent, m.statusIcon(st, selected), r.Case.ID, r.Case.Scenario)
	if selected {
		head = m.styles.Selected.Render(head)
	} else {
		head = m.styles.Row.Render(head)
	}
	lines := []string{head}

	pad := "    " + indent
	if c := m.s.Value(r.CommentField()); c != "" {
		lines = append(lines, m.styles.Muted.Render(pad+"↳ "+c))
	}
	if m.s.DetailOpen(r.Case.ID) {
		d := r.Detail()
		var b strings.Builder
		b.WriteString("Feature: " + d.Feature + "\n")
		b.WriteString("Steps:\n")
		for i, s := range d.Steps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
		}
		b.WriteString("Expected: " + d.Expected)
		box := m.styles.Detail.Width(max(20, m.width-len(pad)-4)).Render(b.String())
		for _, l := range strings.Split(box, "\n") {
			lines = append(lines, pad+l)
		}
	}
	if m.editing == r.CommentField() {
		lines = append(lines, pad+m.input.View())
	}
	return lines
}

func (m *Wizard) statusIcon(st report.Status, raw bool) string {
	icon, style := m.styles.Icons.Unset, m.styles.Muted
	switch st {
	case report.StatusPass:
		icon, style = m.styles.Icons.Pass, m.styles.Pass
	case report.StatusFail:
		icon, style = m.styles.Icons.Fail, m.styles.Fail
	case report.StatusBlocked:
		icon, style = m.styles.Icons.Blocked, m.styles.Blocked
	}
	if raw {
		return icon
	}
	return style.Render(icon)
}

func (m *Wizard) sectionProgress(sec *form.Section) (done, total int) {
	var walk func(*form.Section)
	walk = func(s *form.Section) {
		for _, r := range s.Rows {
			total++
			if m.s.Value(r.StatusField()) != "" {
				done++
			}
		}
		for _, c := range s.Sections {
			walk(c)
		}
	}
	walk(sec)
	return done, total
}

func (m *Wizard) View() string {
	if m.submission != nil {
		return m.viewSubmitted()
	}

	step := m.s.Plan().Step(m.s.Step())
	titleText := strings.TrimSpace(m.styles.Titles.Icon + " " + m.styles.Titles.Wizard)
	if step != nil {
		titleText += " · " + step.Title
	}
	title := m.styles.Title.Width(m.width).Render(titleText)

	parts := []string{title, m.viewIndicator()}
	if m.touring() {
		parts = append(parts, m.viewNarration())
	}
	parts = append(parts, m.viewport.View())
	if m.jumping || (m.editing != "" && !strings.HasSuffix(m.editing, "_comment")) {
		parts = append(parts, m.input.View())
	}

	status := m.status
	switch {
	case status == "" && m.s.IsLast():
		status = "Last step. Press ctrl+s to submit."
	case status == "" && m.s.DevMode():
		status = "Development mode: required fields are not enforced."
	}
	if m.statusErr {
		parts = append(parts, m.styles.Error.Render(status))
	} else {
		parts = append(parts, m.styles.StatusBar.Render(status))
	}
	parts = append(parts, m.help.View(m.helpKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Wizard) viewIndicator() string {
	ind := m.s.Indicator()
	cells := make([]string, 0, len(ind.Steps))
	for _, st := range ind.Steps {
		label := fmt.Sprintf("%d", st.Number)
		switch st.State {
		case stepper.StateCompleted:
			cells = append(cells, m.styles.StepDone.Render(m.styles.Icons.Complete+label))
		case stepper.StateActive:
			cells = append(cells, m.styles.StepNow.Render("["+label+"]"))
		default:
			if st.Clickable {
				cells = append(cells, m.styles.Row.Render(label))
			} else {
				cells = append(cells, m.styles.StepNext.Render(label))
			}
		}
	}
	return fmt.Sprintf("%s  %d%%", strings.Join(cells, " "), ind.Percent)
}

func (m *Wizard) viewNarration() string {
	step, ok := m.tour.Current()
	if !ok {
		return ""
	}
	text := fmt.Sprintf("(%d/%d) %s", m.tour.Index()+1, m.tour.Len(), step.Narration)
	return m.styles.Narration.Width(max(20, m.width-4)).Render(text)
}

func (m *Wizard) viewSubmitted() string {
	sub := m.submission
	counts := map[report.Status]int{}
	for _, r := range sub.Report.Results {
		counts[r.Status]++
	}
	lines := []string{
		m.styles.Title.Width(m.width).Render(strings.TrimSpace(m.styles.Titles.Icon + " " + m.styles.Titles.Wizard)),
		"",
		m.styles.Pass.Render("Results submitted."),
		fmt.Sprintf("Report: %s", sub.Path),
		fmt.Sprintf("%d results: %d passed, %d failed, %d blocked",
			len(sub.Report.Results), counts[report.StatusPass], counts[report.StatusFail], counts[report.StatusBlocked]),
		"",
		m.styles.StatusBar.Render("Press q to quit."),
	}
	return strings.Join(lines, "\n")
}

// RunWizard runs the wizard full-screen until the user quits.
func RunWizard(ctx context.Context, s *wizard.Session, opts WizardOptions) (*wizard.Submission, error) {
	m := NewWizard(ctx, s, opts)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(*Wizard).Submission(), nil
}
