package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/folio/internal/editor"
	"github.com/naveenspark/folio/internal/imaging"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

// returnDelay is how long the success toast stays before going back to
// the list.
const returnDelay = 600 * time.Millisecond

type rowKind int

const (
	rowTitle rowKind = iota
	rowSlug
	rowPublisher
	rowLink
	rowType
	rowHeader
	rowCategories
	rowDescription
	rowAddDescription
	rowScreenshot
	rowAddScreenshot
)

type editorRow struct {
	kind  rowKind
	index int
}

type editorMode int

const (
	modeEdit editorMode = iota
	modePath
	modeConfirmSave
	modeConfirmLeave
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

type editorModel struct {
	client     *client.Client
	saver      *editor.Saver
	blobs      *imaging.BlobStore
	id         int64
	draft      *domain.Draft
	guard      *editor.Guard
	categories []domain.Category

	slugTouched bool
	focus       int
	catCursor   int
	mode        editorMode
	pathInput   string
	pathTarget  imaging.Target
	pathIndex   int
	crop        *cropModel
	quitOnLeave bool

	loading bool
	saving  bool
	saved   bool
	loadErr error
	toast   string
	toastK  toastKind
	frame   int
	width   int
	height  int
}

type portfolioLoadedMsg struct {
	portfolio *domain.Portfolio
	err       error
}

type saveResultMsg struct {
	result *editor.Result
	err    error
}

type saveReturnMsg struct{}

// editorClosedMsg tells the app to leave the editor.
type editorClosedMsg struct {
	reload bool
	quit   bool
}

func newEditorModel(c *client.Client, saver *editor.Saver, blobs *imaging.BlobStore, id int64, cats []domain.Category) editorModel {
	m := editorModel{
		client:     c,
		saver:      saver,
		blobs:      blobs,
		id:         id,
		categories: cats,
	}
	if id == 0 {
		m.draft = domain.NewDraft()
		m.guard = editor.NewGuard(m.draft)
	} else {
		m.loading = true
	}
	return m
}

func (m editorModel) Init() tea.Cmd {
	if m.id == 0 {
		return nil
	}
	c, id := m.client, m.id
	return func() tea.Msg {
		p, err := c.GetPortfolio(context.Background(), id)
		return portfolioLoadedMsg{portfolio: p, err: err}
	}
}

func (m editorModel) creating() bool {
	return m.id == 0
}

// dirty reports whether the draft has unsaved changes.
func (m editorModel) dirty() bool {
	return m.draft != nil && m.guard != nil && m.guard.Dirty(m.draft)
}

func (m *editorModel) setToast(msg string, kind toastKind) {
	m.toast = msg
	m.toastK = kind
}

func (m editorModel) rows() []editorRow {
	rows := []editorRow{
		{kind: rowTitle}, {kind: rowSlug}, {kind: rowPublisher}, {kind: rowLink},
		{kind: rowType}, {kind: rowHeader}, {kind: rowCategories},
	}
	if m.draft == nil {
		return rows
	}
	for i := range m.draft.Descriptions {
		rows = append(rows, editorRow{kind: rowDescription, index: i})
	}
	rows = append(rows, editorRow{kind: rowAddDescription})
	for i := range m.draft.Images {
		rows = append(rows, editorRow{kind: rowScreenshot, index: i})
	}
	return append(rows, editorRow{kind: rowAddScreenshot})
}

func (m editorModel) current() editorRow {
	rows := m.rows()
	if m.focus < 0 || m.focus >= len(rows) {
		return editorRow{kind: rowTitle}
	}
	return rows[m.focus]
}

// focusRow moves focus to the first row matching kind and index.
func (m *editorModel) focusRow(kind rowKind, index int) {
	for i, r := range m.rows() {
		if r.kind == kind && r.index == index {
			m.focus = i
			return
		}
	}
}

func (m editorModel) Update(msg tea.Msg) (editorModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.crop != nil {
			c, _ := m.crop.Update(msg)
			m.crop = &c
		}
		return m, nil

	case portfolioLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.draft = domain.DraftFromPortfolio(msg.portfolio)
		m.guard = editor.NewGuard(m.draft)
		return m, nil

	case categoriesLoadedMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}
		return m, nil

	case cropDoneMsg:
		m.crop = nil
		m.applyCrop(msg)
		return m, nil

	case cropCancelledMsg:
		m.crop = nil
		return m, nil

	case saveResultMsg:
		return m.handleSaveResult(msg)

	case saveReturnMsg:
		m.releaseBlobs()
		return m, func() tea.Msg { return editorClosedMsg{reload: true} }

	case tea.KeyMsg:
		if m.crop != nil {
			c, cmd := m.crop.Update(msg)
			m.crop = &c
			return m, cmd
		}
		if m.loading || m.draft == nil {
			if msg.String() == "esc" {
				return m, func() tea.Msg { return editorClosedMsg{} }
			}
			return m, nil
		}
		if m.saving || m.saved {
			return m, nil
		}
		switch m.mode {
		case modePath:
			return m.updatePath(msg)
		case modeConfirmSave:
			return m.updateConfirmSave(msg)
		case modeConfirmLeave:
			return m.updateConfirmLeave(msg)
		}
		return m.updateEdit(msg)
	}
	return m, nil
}

// requestLeave is called for esc and quit. It asks first when the draft
// has unsaved changes.
func (m editorModel) requestLeave(quit bool) (editorModel, tea.Cmd) {
	if m.dirty() {
		m.mode = modeConfirmLeave
		m.quitOnLeave = quit
		return m, nil
	}
	m.releaseBlobs()
	return m, func() tea.Msg { return editorClosedMsg{quit: quit} }
}

func (m editorModel) updateConfirmLeave(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	m.mode = modeEdit
	if msg.String() != "y" {
		return m, nil
	}
	m.releaseBlobs()
	quit := m.quitOnLeave
	return m, func() tea.Msg { return editorClosedMsg{quit: quit} }
}

// releaseBlobs frees locally held crops referenced by the draft.
func (m editorModel) releaseBlobs() {
	if m.draft == nil || m.blobs == nil {
		return
	}
	m.blobs.Revoke(m.draft.HeaderImageURL)
	for _, img := range m.draft.Images {
		m.blobs.Revoke(img.ImageURL)
	}
}

func (m editorModel) updateEdit(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	key := msg.String()
	row := m.current()
	rows := m.rows()

	switch key {
	case "ctrl+s":
		return m.requestSave()
	case "esc":
		return m.requestLeave(false)
	case "tab", "down":
		m.focus = (m.focus + 1) % len(rows)
		return m, nil
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + len(rows)) % len(rows)
		return m, nil
	case "alt+up", "alt+k":
		m.reorder(row, -1)
		return m, nil
	case "alt+down", "alt+j":
		m.reorder(row, 1)
		return m, nil
	case "ctrl+d":
		m.deleteAt(row)
		return m, nil
	}

	switch row.kind {
	case rowCategories:
		switch key {
		case "left", "h":
			if m.catCursor > 0 {
				m.catCursor--
			}
		case "right", "l":
			if m.catCursor < len(m.categories)-1 {
				m.catCursor++
			}
		case " ", "space", "enter":
			if m.catCursor < len(m.categories) {
				m.draft.ToggleCategory(m.categories[m.catCursor].ID)
			}
		}
		return m, nil

	case rowHeader:
		if key == "enter" {
			m.openPath(imaging.TargetHeader, -1)
		}
		return m, nil

	case rowAddScreenshot:
		if key == "enter" {
			m.openPath(imaging.TargetScreenshot, -1)
		}
		return m, nil

	case rowAddDescription:
		if key == "enter" {
			m.draft.AddDescription()
			m.focusRow(rowDescription, len(m.draft.Descriptions)-1)
		}
		return m, nil

	case rowScreenshot:
		if key == "enter" {
			m.openPath(imaging.TargetScreenshot, row.index)
			return m, nil
		}
		alt := editKey(m.draft.Images[row.index].AltText, msg)
		m.draft.SetAltText(row.index, alt) //nolint:errcheck // index comes from rows()
		return m, nil
	}

	if key == "enter" {
		m.focus = (m.focus + 1) % len(rows)
		return m, nil
	}
	m.editText(row, msg)
	return m, nil
}

func (m *editorModel) editText(row editorRow, msg tea.KeyMsg) {
	d := m.draft
	switch row.kind {
	case rowTitle:
		d.SetTitle(editKey(d.Title, msg), m.creating() && !m.slugTouched)
	case rowSlug:
		if !m.creating() {
			m.setToast("the slug cannot be changed after creation", toastInfo)
			return
		}
		next := editKey(d.Slug, msg)
		if next != d.Slug {
			m.slugTouched = next != ""
			d.SetField(domain.FieldSlug, next) //nolint:errcheck // known field
		}
	case rowPublisher:
		d.SetField(domain.FieldPublisherName, editKey(d.PublisherName, msg)) //nolint:errcheck
	case rowLink:
		d.SetField(domain.FieldProjectLink, editKey(d.ProjectLink, msg)) //nolint:errcheck
	case rowType:
		d.SetField(domain.FieldProjectType, editKey(d.ProjectType, msg)) //nolint:errcheck
	case rowDescription:
		d.UpdateDescriptionAt(row.index, editKey(d.Descriptions[row.index], msg)) //nolint:errcheck
	}
}

func (m *editorModel) reorder(row editorRow, delta int) {
	to := row.index + delta
	switch row.kind {
	case rowDescription:
		if err := m.draft.ReorderDescriptions(row.index, to); err == nil {
			m.focusRow(rowDescription, to)
		}
	case rowScreenshot:
		if err := m.draft.ReorderImages(row.index, to); err == nil {
			m.focusRow(rowScreenshot, to)
		}
	}
}

func (m *editorModel) deleteAt(row editorRow) {
	switch row.kind {
	case rowDescription:
		m.draft.DeleteDescriptionAt(row.index) //nolint:errcheck // index comes from rows()
		m.focusRow(rowDescription, min(row.index, len(m.draft.Descriptions)-1))
	case rowScreenshot:
		removed, err := m.draft.DeleteImageAt(row.index)
		if err != nil {
			return
		}
		m.blobs.Revoke(removed.ImageURL)
		m.setToast("Screenshot removed", toastInfo)
		if len(m.draft.Images) == 0 {
			m.focusRow(rowAddScreenshot, 0)
		} else {
			m.focusRow(rowScreenshot, min(row.index, len(m.draft.Images)-1))
		}
	case rowHeader:
		if m.draft.HeaderImageURL != "" {
			m.blobs.Revoke(m.draft.HeaderImageURL)
			m.draft.SetField(domain.FieldHeaderImage, "") //nolint:errcheck
		}
	}
}

func (m *editorModel) openPath(target imaging.Target, index int) {
	m.mode = modePath
	m.pathInput = ""
	m.pathTarget = target
	m.pathIndex = index
}

func (m editorModel) updatePath(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeEdit
		return m, nil
	case "enter":
		src, err := imaging.IntakeFile(strings.TrimSpace(m.pathInput))
		if err != nil {
			if errors.Is(err, imaging.ErrNotImage) {
				m.setToast("Please select an image file", toastError)
			} else {
				m.setToast(err.Error(), toastError)
			}
			return m, nil
		}
		m.mode = modeEdit
		crop := newCropModel(src, m.pathTarget, m.pathIndex, m.blobs, m.width, m.height)
		m.crop = &crop
		return m, nil
	default:
		m.pathInput = editKey(m.pathInput, msg)
	}
	return m, nil
}

func (m *editorModel) applyCrop(msg cropDoneMsg) {
	if msg.target == imaging.TargetHeader {
		m.blobs.Revoke(m.draft.HeaderImageURL)
		m.draft.SetField(domain.FieldHeaderImage, msg.url) //nolint:errcheck
		m.setToast("Header image updated", toastSuccess)
		return
	}
	if msg.index >= 0 {
		old, err := m.draft.ReplaceImageAt(msg.index, msg.url)
		if err == nil {
			m.blobs.Revoke(old)
			m.setToast("Screenshot replaced", toastSuccess)
			return
		}
	}
	m.draft.AppendImage(msg.url, "")
	m.focusRow(rowScreenshot, len(m.draft.Images)-1)
	m.setToast("Screenshot added", toastSuccess)
}

func (m editorModel) requestSave() (editorModel, tea.Cmd) {
	if m.saver.Busy() {
		return m, nil
	}
	if err := m.draft.Validate(); err != nil {
		m.setToast(err.Error(), toastError)
		return m, nil
	}
	m.mode = modeConfirmSave
	return m, nil
}

func (m editorModel) saveSummary() string {
	original, verb := m.guard.Original(), "Save changes"
	if m.creating() {
		original, verb = nil, "Create portfolio"
	}
	slots := editor.Plan(m.draft, original, m.saver.Policy())
	return fmt.Sprintf("%s %q? %s to upload. (y/n)", verb, m.draft.Title, plural(editor.NewCount(slots), "image"))
}

func (m editorModel) updateConfirmSave(msg tea.KeyMsg) (editorModel, tea.Cmd) {
	m.mode = modeEdit
	if msg.String() != "y" {
		return m, nil
	}
	m.saving = true
	m.setToast("", toastInfo)
	saver := m.saver
	req := editor.SaveRequest{
		ID:         m.id,
		Draft:      m.draft.Clone(),
		Original:   m.guard.Original(),
		Categories: m.categories,
	}
	return m, func() tea.Msg {
		res, err := saver.Save(context.Background(), req)
		return saveResultMsg{result: res, err: err}
	}
}

func (m editorModel) handleSaveResult(msg saveResultMsg) (editorModel, tea.Cmd) {
	m.saving = false
	if msg.err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.Is(msg.err, editor.ErrSaveInProgress):
			return m, nil
		case errors.As(msg.err, &verr):
			m.setToast(verr.Message, toastError)
		case m.creating():
			m.setToast(client.Message(msg.err, "Failed to create portfolio"), toastError)
		default:
			m.setToast(client.Message(msg.err, "Failed to update portfolio"), toastError)
		}
		return m, nil
	}

	m.guard.MarkSaved(m.draft)
	m.saved = true
	text := "Portfolio updated successfully"
	if msg.result.Created {
		text = "Portfolio created successfully"
	}
	if msg.result.Uploaded > 0 {
		text += fmt.Sprintf(" (%s, %s)", plural(msg.result.Uploaded, "image"), formatBytes(msg.result.Bytes))
	}
	m.setToast(text, toastSuccess)
	return m, tea.Tick(returnDelay, func(time.Time) tea.Msg { return saveReturnMsg{} })
}

func (m editorModel) View() string {
	if m.crop != nil {
		return m.crop.View()
	}

	var b strings.Builder
	title := "NEW PORTFOLIO"
	if !m.creating() {
		title = fmt.Sprintf("EDIT PORTFOLIO #%d", m.id)
	}
	b.WriteString(" " + sectionHeaderStyle.Render(title))
	if m.dirty() {
		b.WriteString("  " + warnStyle.Render("● unsaved changes"))
	}
	b.WriteString("\n")
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", max(m.width-2, 4))) + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading portfolio..."))
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString(" " + errorStyle.Render(client.Message(m.loadErr, "Failed to load portfolio")))
		return b.String()
	}

	rows := m.rows()
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = m.renderRow(r, i == m.focus)
	}
	start, end := scrollWindow(m.focus, len(lines), max(m.height-6, 5))
	for _, l := range lines[start:end] {
		b.WriteString(l + "\n")
	}

	b.WriteString("\n")
	switch {
	case m.mode == modePath:
		b.WriteString(renderInput(m.pathTarget.String()+" file", m.pathInput, "~/Pictures/shot.png", true, false, m.frame) + "\n")
	case m.mode == modeConfirmSave:
		b.WriteString(" " + warnStyle.Render(m.saveSummary()) + "\n")
	case m.mode == modeConfirmLeave:
		b.WriteString(" " + warnStyle.Render("Discard unsaved changes? (y/n)") + "\n")
	case m.saving:
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	}
	if m.toast != "" {
		style := dimStyle
		switch m.toastK {
		case toastSuccess:
			style = successStyle
		case toastError:
			style = errorStyle
		}
		b.WriteString(" " + style.Render(m.toast))
	}
	return b.String()
}

func (m editorModel) renderRow(r editorRow, focused bool) string {
	d := m.draft
	switch r.kind {
	case rowTitle:
		return m.field("title", d.Title, "Project title", true, focused)
	case rowSlug:
		return m.field("slug", d.Slug, "project-slug", true, focused)
	case rowPublisher:
		return m.field("publisher", d.PublisherName, "Company name", false, focused)
	case rowLink:
		return m.field("link", d.ProjectLink, "https://...", false, focused)
	case rowType:
		return m.field("type", d.ProjectType, "Project type", true, focused)
	case rowHeader:
		return m.imageLine("header", d.HeaderImageURL, "", focused)
	case rowCategories:
		return m.categoryLine(focused)
	case rowDescription:
		label := fmt.Sprintf("para %d", r.index+1)
		return m.field(label, d.Descriptions[r.index], "Description paragraph", false, focused)
	case rowAddDescription:
		return m.action("+ add paragraph", focused)
	case rowScreenshot:
		img := d.Images[r.index]
		return m.imageLine(fmt.Sprintf("shot %d", r.index+1), img.ImageURL, img.AltText, focused)
	case rowAddScreenshot:
		return m.action("+ add screenshot", focused)
	}
	return ""
}

func (m editorModel) field(label, value, placeholder string, required, focused bool) string {
	if required {
		label += requiredStyle.Render("*")
	} else {
		label += " "
	}
	if focused {
		return renderInput(fmt.Sprintf("%-11s", label), value, placeholder, true, false, m.frame)
	}
	w := max(m.width-16, 10)
	return renderInput(fmt.Sprintf("%-11s", label), truncStr(cleanLine(value), w), placeholder, false, false, m.frame)
}

func (m editorModel) action(label string, focused bool) string {
	if focused {
		return inputPromptStyle.Render("> ") + accentStyle.Render(label)
	}
	return "  " + dimStyle.Render(label)
}

func (m editorModel) imageLine(label, url, alt string, focused bool) string {
	prefix := "  "
	lbl := labelStyle.Render(fmt.Sprintf("%-11s", label))
	if focused {
		prefix = inputPromptStyle.Render("> ")
		lbl = selectedStyle.Render(fmt.Sprintf("%-11s", label))
	}
	var val string
	switch {
	case url == "":
		val = inputPlaceholderStyle.Render("none -- enter to choose a file")
	case imaging.IsLocal(url):
		val = newBadgeStyle.Render("NEW") + " " + dimStyle.Render("cropped, uploads on save")
	default:
		val = dimStyle.Render(truncStr(url, max(m.width-40, 16)))
	}
	if label != "header" {
		altText := alt
		if focused && (m.frame/4)%2 == 0 {
			altText += "█"
		}
		if altText == "" {
			altText = inputPlaceholderStyle.Render("alt text")
		}
		val += "  " + metaStyle.Render("alt:") + " " + normalStyle.Render(altText)
	}
	return prefix + lbl + "  " + val
}

func (m editorModel) categoryLine(focused bool) string {
	prefix := "  "
	lbl := labelStyle.Render(fmt.Sprintf("%-11s", "categories") + requiredStyle.Render("*"))
	if focused {
		prefix = inputPromptStyle.Render("> ")
		lbl = selectedStyle.Render(fmt.Sprintf("%-11s", "categories")) + requiredStyle.Render("*")
	}
	if len(m.categories) == 0 {
		return prefix + lbl + " " + inputPlaceholderStyle.Render("no categories -- add some with 2")
	}
	parts := make([]string, 0, len(m.categories))
	for i, c := range m.categories {
		mark := "[ ]"
		style := dimStyle
		if m.draft.HasCategory(c.ID) {
			mark = "[x]"
			style = CategoryStyle(c.Slug)
		}
		item := style.Render(mark + " " + c.Name)
		if focused && i == m.catCursor {
			item = selectedRowBg.Render(item)
		}
		parts = append(parts, item)
	}
	return prefix + lbl + " " + strings.Join(parts, " ")
}

func (m editorModel) helpKeys() string {
	if m.crop != nil {
		return m.crop.helpKeys()
	}
	switch m.mode {
	case modePath:
		return helpBar(helpEntry("enter", "open"), helpEntry("esc", "cancel"))
	case modeConfirmSave, modeConfirmLeave:
		return helpBar(helpEntry("y", "yes"), helpEntry("n", "no"))
	}
	entries := []string{helpEntry("tab", "next"), helpEntry("ctrl+s", "save"), helpEntry("esc", "back")}
	switch m.current().kind {
	case rowDescription, rowScreenshot:
		entries = append(entries, helpEntry("alt+↑/↓", "move"), helpEntry("ctrl+d", "delete"))
		if m.current().kind == rowScreenshot {
			entries = append(entries, helpEntry("enter", "replace"))
		}
	case rowHeader, rowAddScreenshot:
		entries = append(entries, helpEntry("enter", "choose file"))
	case rowCategories:
		entries = append(entries, helpEntry("←/→", "move"), helpEntry("space", "toggle"))
	}
	return helpBar(entries...)
}
