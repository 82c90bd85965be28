package controller

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"simpleedit.dev/pkg/simpleedit/internal/adapter"
	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

const (
	// title bar, status line and help line.
	chromeLines   = 3
	panelWidth    = 64
	inputWidth    = 40
	inputLimit    = 4096
	defaultWidth  = 80
	defaultHeight = 24

	// rows the bubbles text area keeps; SetValue drops the rest.
	editorMaxLines = 10000

	helpLine = "^N new  ^O open  ^S save  ^W save as  ^R replace  ^F search  ^T stats  ^Z undo  ^Y copy  ^Q exit"
)

type panel int

const (
	panelNone panel = iota
	panelReplace
	panelSearch
	panelStats
	panelPrompt
	panelConfirm
)

type promptPurpose int

const (
	promptOpen promptPurpose = iota
	promptSaveAs
)

type pendingAction int

const (
	actionNone pendingAction = iota
	actionNew
	actionOpen
	actionExit
	actionEdit
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1).
			Width(panelWidth)
	panelTitleStyle = lipgloss.NewStyle().Bold(true)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// replaceTool owns the inputs of the Replace window.
type replaceTool struct {
	old   textinput.Model
	new   textinput.Model
	focus int
}

// searchTool owns the inputs and last result of the Search window.
type searchTool struct {
	needle  textinput.Model
	result  string
	matches int
	ran     bool
}

// promptTool asks for a file path.
type promptTool struct {
	input   textinput.Model
	purpose promptPurpose
}

// editorModel is the Bubble Tea model of an editing session. It drives an
// EditableDocument and turns every document error into a notification.
type editorModel struct {
	doc           EditableDocument
	clipboard     adapter.Clipboard
	suggestedPath m.Path

	editor textarea.Model
	// editor value right after the last refresh from the document.
	synced string
	// lines of a document too long for the text area; zero when it fits.
	overflow int
	// what the text area rewrites in the document; empty when it is exact.
	lossy []string
	// the user agreed to edit despite lossy.
	lossAccepted bool

	replace replaceTool
	search  searchTool
	prompt  promptTool

	active  panel
	pending pendingAction

	status    string
	statusErr bool

	closeRequested bool

	width  int
	height int
}

func newEditorModel(doc EditableDocument, cfg EditConfig) editorModel {
	editor := textarea.New()
	editor.ShowLineNumbers = true
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.Placeholder = "Start typing..."

	em := editorModel{
		doc:           doc,
		clipboard:     cfg.clipboard,
		suggestedPath: cfg.suggestedPath,
		editor:        editor,
		replace: replaceTool{
			old: newToolInput("text to replace"),
			new: newToolInput("replacement"),
		},
		search: searchTool{needle: newToolInput("text to find")},
		prompt: promptTool{input: newToolInput("path/to/file.txt")},
	}

	em.resize(defaultWidth, defaultHeight)
	em.refreshEditor()
	em.editor.Focus()

	switch {
	case cfg.startupErr != nil:
		em.setError(cfg.startupErr)
	case cfg.notice != "" && em.status == "":
		em.setStatus(cfg.notice)
	}

	return em
}

func newToolInput(placeholder string) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = inputLimit
	input.Width = inputWidth

	return input
}

func (em editorModel) Init() tea.Cmd {
	return textarea.Blink
}

func (em editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		em.resize(msg.Width, msg.Height)
		return em, nil

	case tea.KeyMsg:
		model, cmd := em.handleKeyPress(msg)
		if next, ok := model.(editorModel); ok {
			next.resize(next.width, next.height)
			return next, cmd
		}

		return model, cmd
	}

	var cmd tea.Cmd

	switch em.active {
	case panelReplace:
		em.replace.old, cmd = em.replace.old.Update(msg)
	case panelSearch:
		em.search.needle, cmd = em.search.needle.Update(msg)
	case panelPrompt:
		em.prompt.input, cmd = em.prompt.input.Update(msg)
	default:
		em.editor, cmd = em.editor.Update(msg)
	}

	return em, cmd
}

//nolint:cyclop // Menu dispatch is a flat key table.
func (em editorModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if em.active == panelConfirm {
		return em.handleConfirmKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "ctrl+q":
		return em.request(actionExit)
	case "ctrl+n":
		return em.request(actionNew)
	case "ctrl+o":
		return em.request(actionOpen)
	case "ctrl+s":
		return em.save()
	case "ctrl+w":
		return em.openPrompt(promptSaveAs)
	case "ctrl+r":
		return em.togglePanel(panelReplace)
	case "ctrl+f":
		return em.togglePanel(panelSearch)
	case "ctrl+t":
		return em.togglePanel(panelStats)
	case "ctrl+z":
		return em.undo()
	case "ctrl+y":
		return em.copyToClipboard()
	case "esc":
		if em.active != panelNone {
			return em.closePanel(), nil
		}
	}

	switch em.active {
	case panelReplace:
		return em.updateReplace(msg)
	case panelSearch:
		return em.updateSearch(msg)
	case panelPrompt:
		return em.updatePrompt(msg)
	case panelNone, panelStats, panelConfirm:
	}

	return em.updateEditor(msg)
}

// updateEditor forwards a key to the text area and pushes real edits into
// the document. A text area that does not hold the document exactly only
// takes cursor movement.
func (em editorModel) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !em.isNavigation(msg) {
		switch {
		case em.overflow > 0:
			em.setError(em.overflowError())
			return em, nil
		case len(em.lossy) > 0 && !em.lossAccepted:
			em.pending = actionEdit
			em.active = panelConfirm
			em.editor.Blur()

			return em, nil
		}
	}

	var cmd tea.Cmd

	em.editor, cmd = em.editor.Update(msg)

	value := em.editor.Value()
	if value != em.synced {
		em.doc.SetText(value)
		em.synced = value
	}

	return em, cmd
}

// request runs action, asking for confirmation first when it would discard
// unsaved changes.
func (em editorModel) request(action pendingAction) (tea.Model, tea.Cmd) {
	if em.doc.Dirty() {
		em = em.closePanel()
		em.pending = action
		em.active = panelConfirm
		em.editor.Blur()

		return em, nil
	}

	return em.perform(action)
}

func (em editorModel) perform(action pendingAction) (tea.Model, tea.Cmd) {
	switch action {
	case actionNew:
		em.doc.Clear()
		em.refreshEditor()
		em.setStatus("New document")

		return em, nil

	case actionOpen:
		return em.openPrompt(promptOpen)

	case actionExit:
		em.closeRequested = true
		return em, tea.Quit

	case actionEdit:
		em.lossAccepted = true
		em.setStatus(fmt.Sprintf("Editing enabled; %s will be rewritten", joinKinds(em.lossy)))

		return em, nil

	case actionNone:
	}

	return em, nil
}

func (em editorModel) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		action := em.pending
		em.pending = actionNone
		em.active = panelNone
		em.editor.Focus()

		return em.perform(action)

	case "n", "esc", "ctrl+c":
		em.pending = actionNone
		em.active = panelNone
		em.editor.Focus()
		em.setStatus("Cancelled")
	}

	return em, nil
}

func (em editorModel) save() (tea.Model, tea.Cmd) {
	path, bound := em.doc.Path()
	if !bound {
		return em.openPrompt(promptSaveAs)
	}

	changed, err := em.doc.ChangedOnDisk()
	if err != nil {
		em.setError(err)
		return em, nil
	}

	if err := em.doc.Save(""); err != nil {
		em.setError(err)
		return em, nil
	}

	if changed {
		em.setStatus(fmt.Sprintf("Saved %s (overwrote changes made on disk)", path))
	} else {
		em.setStatus(fmt.Sprintf("Saved %s", path))
	}

	return em, nil
}

func (em editorModel) openPrompt(purpose promptPurpose) (tea.Model, tea.Cmd) {
	em = em.closePanel()
	em.prompt.purpose = purpose
	em.prompt.input.Reset()

	if purpose == promptSaveAs {
		if path, bound := em.doc.Path(); bound {
			em.prompt.input.SetValue(string(path))
		} else if !em.suggestedPath.IsZero() {
			em.prompt.input.SetValue(string(em.suggestedPath))
		}
	}

	em.active = panelPrompt
	em.editor.Blur()

	return em, em.prompt.input.Focus()
}

func (em editorModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type != tea.KeyEnter {
		var cmd tea.Cmd

		em.prompt.input, cmd = em.prompt.input.Update(msg)

		return em, cmd
	}

	path := m.Path(strings.TrimSpace(em.prompt.input.Value()))
	if path.IsZero() {
		em.setError(errors.New("a file path is required"))
		return em, nil
	}

	purpose := em.prompt.purpose
	em = em.closePanel()

	switch purpose {
	case promptOpen:
		if err := em.doc.Load(path); err != nil {
			em.setError(err)
			return em, nil
		}

		em.refreshEditor()

		if em.status == "" {
			em.setStatus(fmt.Sprintf("Opened %s", path))
		}

	case promptSaveAs:
		if err := em.doc.Save(path); err != nil {
			em.setError(err)
			return em, nil
		}

		em.setStatus(fmt.Sprintf("Saved %s", path))
	}

	return em, nil
}

func (em editorModel) togglePanel(p panel) (tea.Model, tea.Cmd) {
	if em.active == p {
		return em.closePanel(), nil
	}

	em = em.closePanel()
	em.active = p

	switch p {
	case panelReplace:
		em.editor.Blur()
		em.replace.focus = 0
		em.replace.new.Blur()

		return em, em.replace.old.Focus()

	case panelSearch:
		em.editor.Blur()
		return em, em.search.needle.Focus()

	case panelNone, panelStats, panelPrompt, panelConfirm:
	}

	return em, nil
}

// closePanel hides the active tool window. Replace and Search forget their
// inputs when closed.
func (em editorModel) closePanel() editorModel {
	switch em.active {
	case panelReplace:
		em.replace.old.Reset()
		em.replace.new.Reset()
		em.replace.old.Blur()
		em.replace.new.Blur()
		em.replace.focus = 0

	case panelSearch:
		em.search.needle.Reset()
		em.search.needle.Blur()
		em.search.result = ""
		em.search.matches = 0
		em.search.ran = false

	case panelPrompt:
		em.prompt.input.Reset()
		em.prompt.input.Blur()

	case panelNone, panelStats, panelConfirm:
	}

	em.active = panelNone
	em.editor.Focus()

	return em
}

func (em editorModel) updateReplace(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		em.replace.focus = 1 - em.replace.focus
		if em.replace.focus == 0 {
			em.replace.new.Blur()
			return em, em.replace.old.Focus()
		}

		em.replace.old.Blur()

		return em, em.replace.new.Focus()

	case "enter":
		count := em.doc.ReplaceAll(em.replace.old.Value(), em.replace.new.Value())
		if count > 0 {
			em.refreshEditor()
		}

		em = em.closePanel()
		em.setStatus(fmt.Sprintf("Replaced %d occurrence(s)", count))

		return em, nil
	}

	var cmd tea.Cmd
	if em.replace.focus == 0 {
		em.replace.old, cmd = em.replace.old.Update(msg)
	} else {
		em.replace.new, cmd = em.replace.new.Update(msg)
	}

	return em, cmd
}

func (em editorModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		offsets := em.doc.FindAll(em.search.needle.Value())
		em.search.result = formatOffsets(offsets)
		em.search.matches = len(offsets)
		em.search.ran = true

		return em, nil
	}

	var cmd tea.Cmd

	em.search.needle, cmd = em.search.needle.Update(msg)

	return em, cmd
}

func (em editorModel) undo() (tea.Model, tea.Cmd) {
	ok, err := em.doc.Undo()

	switch {
	case err != nil:
		em.setError(err)
	case !ok:
		em.setStatus("Nothing to undo")
	default:
		em.refreshEditor()
		em.setStatus("Undone")
	}

	return em, nil
}

func (em editorModel) copyToClipboard() (tea.Model, tea.Cmd) {
	if em.clipboard == nil {
		em.setError(errors.New("clipboard unavailable"))
		return em, nil
	}

	if err := em.clipboard.WriteAll(em.doc.Text()); err != nil {
		em.setError(fmt.Errorf("copy to clipboard: %w", err))
		return em, nil
	}

	em.setStatus(fmt.Sprintf("Copied %d character(s) to clipboard", em.doc.CharCount()))

	return em, nil
}

// refreshEditor loads the document text into the text area and records
// whether the text area holds it exactly.
func (em *editorModel) refreshEditor() {
	text := em.doc.Text()

	em.editor.SetValue(text)
	em.synced = em.editor.Value()
	em.overflow = 0
	em.lossy = nil
	em.lossAccepted = false
	em.status = ""
	em.statusErr = false

	if lines := textareaLines(text); lines > editorMaxLines {
		em.overflow = lines
		em.setError(em.overflowError())

		return
	}

	if em.synced != text {
		em.lossy = rewrittenKinds(text)
		em.setStatus(fmt.Sprintf("The editor cannot keep the %s in this file; it stays unchanged until you edit it", joinKinds(em.lossy)))
	}
}

func (em editorModel) overflowError() error {
	return fmt.Errorf(
		"document has %d lines, the editor shows at most %d; it is read-only here, use simpleedit replace to change it",
		em.overflow, editorMaxLines,
	)
}

// isNavigation reports whether msg only moves the cursor of the text area.
func (em editorModel) isNavigation(msg tea.KeyMsg) bool {
	km := em.editor.KeyMap

	return key.Matches(msg,
		km.CharacterBackward, km.CharacterForward,
		km.WordBackward, km.WordForward,
		km.LineNext, km.LinePrevious,
		km.LineStart, km.LineEnd,
		km.InputBegin, km.InputEnd,
	)
}

// textareaLines counts the rows the text area needs for text; it splits on
// carriage returns too.
func textareaLines(text string) int {
	return strings.Count(text, "\n") + strings.Count(text, "\r") + 1
}

// rewrittenKinds names the characters of text the text area does not keep.
func rewrittenKinds(text string) []string {
	var tabs, returns, controls, replacements bool

	for _, r := range text {
		switch {
		case r == '\n':
		case r == '\t':
			tabs = true
		case r == '\r':
			returns = true
		case r == utf8.RuneError:
			replacements = true
		case unicode.IsControl(r):
			controls = true
		}
	}

	var kinds []string

	if tabs {
		kinds = append(kinds, "tabs (shown as spaces)")
	}

	if returns {
		kinds = append(kinds, "carriage returns (shown as newlines)")
	}

	if controls {
		kinds = append(kinds, "control characters (dropped)")
	}

	if replacements {
		kinds = append(kinds, "U+FFFD characters (dropped)")
	}

	return kinds
}

func joinKinds(kinds []string) string {
	switch len(kinds) {
	case 0:
		return ""
	case 1:
		return kinds[0]
	}

	return strings.Join(kinds[:len(kinds)-1], ", ") + " and " + kinds[len(kinds)-1]
}

func (em *editorModel) resize(width, height int) {
	em.width = width
	em.height = height

	editorHeight := height - chromeLines
	if em.active != panelNone {
		editorHeight -= em.panelHeight()
	}

	if editorHeight < 1 {
		editorHeight = 1
	}

	em.editor.SetWidth(width)
	em.editor.SetHeight(editorHeight)
}

func (em editorModel) panelHeight() int {
	return lipgloss.Height(em.panelView())
}

func (em *editorModel) setStatus(text string) {
	em.status = text
	em.statusErr = false
}

func (em *editorModel) setError(err error) {
	em.status = err.Error()
	em.statusErr = true
}

func (em editorModel) View() string {
	if em.closeRequested {
		return ""
	}

	var b strings.Builder

	b.WriteString(em.titleView())
	b.WriteString("\n")
	b.WriteString(em.editor.View())
	b.WriteString("\n")

	if p := em.panelView(); p != "" {
		b.WriteString(p)
		b.WriteString("\n")
	}

	b.WriteString(em.statusView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine))

	return b.String()
}

func (em editorModel) titleView() string {
	name := noneLabel
	if path, bound := em.doc.Path(); bound {
		name = string(path)
	}

	if em.doc.Dirty() {
		name += " [modified]"
	}

	return titleStyle.Render("simpleedit: " + name)
}

func (em editorModel) statusView() string {
	if em.status == "" {
		return ""
	}

	if em.statusErr {
		return errorStyle.Render("Error: " + em.status)
	}

	return statusStyle.Render(em.status)
}

func (em editorModel) panelView() string {
	var body string

	switch em.active {
	case panelReplace:
		body = strings.Join([]string{
			panelTitleStyle.Render("Replace"),
			"Replaces every occurrence of Old with New.",
			"Old: " + em.replace.old.View(),
			"New: " + em.replace.new.View(),
			helpStyle.Render("enter replace • tab switch field • esc skip"),
		}, "\n")

	case panelSearch:
		lines := []string{
			panelTitleStyle.Render("Search"),
			"Search: " + em.search.needle.View(),
		}

		if em.search.ran {
			result := fmt.Sprintf("Result (%d): %s", em.search.matches, em.search.result)
			lines = append(lines, wordwrap.String(result, panelWidth-4))
		}

		lines = append(lines, helpStyle.Render("enter search • esc close"))
		body = strings.Join(lines, "\n")

	case panelStats:
		body = strings.Join(append(
			[]string{panelTitleStyle.Render("Statistics")},
			append(statsLines(em.doc.Stats()), helpStyle.Render("esc close"))...,
		), "\n")

	case panelPrompt:
		title := "Open file"
		if em.prompt.purpose == promptSaveAs {
			title = "Save as"
		}

		body = strings.Join([]string{
			panelTitleStyle.Render(title),
			"Path: " + em.prompt.input.View(),
			helpStyle.Render("enter confirm • esc cancel"),
		}, "\n")

	case panelConfirm:
		if em.pending == actionEdit {
			body = strings.Join([]string{
				panelTitleStyle.Render("Lossy edit"),
				wordwrap.String(fmt.Sprintf("Editing rewrites the %s of this file.", joinKinds(em.lossy)), panelWidth-4),
				"Edit anyway? (y/n)",
			}, "\n")

			break
		}

		body = strings.Join([]string{
			panelTitleStyle.Render("Unsaved changes"),
			"Discard unsaved changes? (y/n)",
		}, "\n")

	case panelNone:
		return ""
	}

	return panelStyle.Render(body)
}

func statsLines(st m.Stats) []string {
	return []string{
		fmt.Sprintf("Currently opened: %s", pathLabel(st.Path)),
		fmt.Sprintf("Number of chars: %d", st.Chars),
		fmt.Sprintf("Bytes: %d  Lines: %d  Words: %d  Graphemes: %d", st.Bytes, st.Lines, st.Words, st.Graphemes),
	}
}
