package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

type categoryMode int

const (
	catBrowse categoryMode = iota
	catAdding
	catRenaming
	catConfirmDelete
)

type categoriesModel struct {
	client     *client.Client
	categories []domain.Category
	cursor     int
	mode       categoryMode
	input      string
	busy       bool
	loading    bool
	err        error
	statusMsg  string
	statusErr  bool
	frame      int
	width      int
	height     int
}

type categoriesLoadedMsg struct {
	categories []domain.Category
	err        error
}

type categorySavedMsg struct {
	verb string
	err  error
}

func newCategoriesModel(c *client.Client) categoriesModel {
	return categoriesModel{client: c, loading: true}
}

func loadCategories(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		cats, err := c.ListCategories(context.Background())
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

func (m categoriesModel) Init() tea.Cmd {
	return loadCategories(m.client)
}

func (m *categoriesModel) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m categoriesModel) Update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
		return m, nil

	case categoriesLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.categories = msg.categories
		}
		if m.cursor >= len(m.categories) {
			m.cursor = max(len(m.categories)-1, 0)
		}
		return m, nil

	case categorySavedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus(client.Message(msg.err, "Failed to "+msg.verb+" category"), true)
			return m, nil
		}
		m.setStatus("Category "+msg.verb+"d", false)
		m.loading = true
		return m, loadCategories(m.client)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.statusMsg = ""
		switch m.mode {
		case catAdding, catRenaming:
			return m.updateInput(msg)
		case catConfirmDelete:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m categoriesModel) updateBrowse(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "a", "n":
		m.mode = catAdding
		m.input = ""
	case "e", "enter":
		if m.cursor < len(m.categories) {
			m.mode = catRenaming
			m.input = m.categories[m.cursor].Name
		}
	case "d":
		if m.cursor < len(m.categories) {
			m.mode = catConfirmDelete
		}
	case "r":
		m.loading = true
		return m, loadCategories(m.client)
	}
	return m, nil
}

func (m categoriesModel) updateInput(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = catBrowse
		m.input = ""
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.input)
		if err := domain.ValidateCategoryName(name); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		c := m.client
		m.busy = true
		if m.mode == catAdding {
			m.mode = catBrowse
			return m, func() tea.Msg {
				return categorySavedMsg{verb: "create", err: c.CreateCategory(context.Background(), name)}
			}
		}
		id := m.categories[m.cursor].ID
		m.mode = catBrowse
		return m, func() tea.Msg {
			return categorySavedMsg{verb: "update", err: c.UpdateCategory(context.Background(), id, name)}
		}
	default:
		m.input = editKey(m.input, msg)
	}
	return m, nil
}

func (m categoriesModel) updateConfirm(msg tea.KeyMsg) (categoriesModel, tea.Cmd) {
	m.mode = catBrowse
	if msg.String() != "y" || m.cursor >= len(m.categories) {
		return m, nil
	}
	id := m.categories[m.cursor].ID
	c := m.client
	m.busy = true
	return m, func() tea.Msg {
		return categorySavedMsg{verb: "delete", err: c.DeleteCategory(context.Background(), id)}
	}
}

func (m categoriesModel) editing() bool {
	return m.mode != catBrowse
}

func (m categoriesModel) View() string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("CATEGORIES") + "  " + metaStyle.Render(plural(len(m.categories), "category")) + "\n")
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", max(m.width-2, 4))) + "\n")

	switch m.mode {
	case catAdding:
		b.WriteString(renderInput("new category", m.input, "category name", true, false, m.frame) + "\n")
	case catRenaming:
		b.WriteString(renderInput("rename", m.input, "category name", true, false, m.frame) + "\n")
	case catConfirmDelete:
		if m.cursor < len(m.categories) {
			c := m.categories[m.cursor]
			b.WriteString(" " + warnStyle.Render(fmt.Sprintf("Delete category %q? (y/n)", c.Name)) + "\n")
		}
	}
	if m.busy {
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	} else if m.statusMsg != "" {
		style := successStyle
		if m.statusErr {
			style = errorStyle
		}
		b.WriteString(" " + style.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(client.Message(m.err, "Failed to load categories")))
		return b.String()
	}
	if len(m.categories) == 0 {
		b.WriteString(" " + dimStyle.Render("no categories yet -- press a to add one"))
		return b.String()
	}

	start, end := scrollWindow(m.cursor, len(m.categories), max(m.height-5, 3))
	for i := start; i < end; i++ {
		c := m.categories[i]
		cursor := "  "
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
		}
		count := ""
		if c.TotalProjects != nil {
			count = metaStyle.Render(plural(*c.TotalProjects, "project"))
		}
		fmt.Fprintf(&b, "%s%s  %s  %s\n", cursor, CategoryStyle(c.Slug).Render(c.Name), metaStyle.Render(c.Slug), count)
	}
	return b.String()
}

func (m categoriesModel) helpKeys() string {
	switch m.mode {
	case catAdding, catRenaming:
		return helpBar(helpEntry("enter", "save"), helpEntry("esc", "cancel"))
	case catConfirmDelete:
		return helpBar(helpEntry("y", "delete"), helpEntry("n", "cancel"))
	}
	return helpBar(
		helpEntry("j/k", "nav"), helpEntry("a", "add"), helpEntry("e", "rename"),
		helpEntry("d", "delete"), helpEntry("r", "reload"), helpEntry("1", "portfolios"),
		helpEntry("q", "quit"),
	)
}
