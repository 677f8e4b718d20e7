package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/folio/internal/browser"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

type portfoliosModel struct {
	client     *client.Client
	siteURL    string
	all        []domain.Portfolio
	categories []domain.Category
	query      domain.ListQuery
	cursor     int
	searching  bool
	confirmDel bool
	loading    bool
	err        error
	statusMsg  string
	statusErr  bool
	width      int
	height     int
}

type portfoliosLoadedMsg struct {
	portfolios []domain.Portfolio
	err        error
}

type portfolioDeletedMsg struct {
	title string
	err   error
}

type copyResultMsg struct {
	url string
	err error
}

// openEditorMsg asks the app to open the editor; id 0 creates.
type openEditorMsg struct {
	id int64
}

func newPortfoliosModel(c *client.Client, siteURL string) portfoliosModel {
	return portfoliosModel{
		client:  c,
		siteURL: siteURL,
		loading: true,
		query:   domain.ListQuery{Category: domain.FilterAll, Type: domain.FilterAll, Sort: domain.SortNewest},
	}
}

func (m portfoliosModel) load() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		list, err := c.ListPortfolios(context.Background())
		return portfoliosLoadedMsg{portfolios: list, err: err}
	}
}

func (m portfoliosModel) Init() tea.Cmd {
	return m.load()
}

// visible returns the filtered, sorted rows.
func (m portfoliosModel) visible() []domain.Portfolio {
	return domain.FilterPortfolios(m.all, m.query)
}

func (m portfoliosModel) selected() (domain.Portfolio, bool) {
	rows := m.visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return domain.Portfolio{}, false
	}
	return rows[m.cursor], true
}

func (m portfoliosModel) publicURL(slug string) string {
	return strings.TrimRight(m.siteURL, "/") + "/portfolio-details/" + slug
}

func (m *portfoliosModel) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}

func (m portfoliosModel) Update(msg tea.Msg) (portfoliosModel, tea.Cmd) {
	switch msg := msg.(type) {
	case portfoliosLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.all = msg.portfolios
		}
		m.clampCursor()
		return m, nil

	case categoriesLoadedMsg:
		if msg.err == nil {
			m.categories = msg.categories
		}
		return m, nil

	case portfolioDeletedMsg:
		if msg.err != nil {
			m.setStatus(client.Message(msg.err, "Failed to delete portfolio"), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Deleted %q", msg.title), false)
		m.loading = true
		return m, m.load()

	case copyResultMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("copy failed: %v", msg.err), true)
		} else {
			m.setStatus("copied "+msg.url, false)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.confirmDel {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m portfoliosModel) updateSearch(msg tea.KeyMsg) (portfoliosModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.query.Search = ""
	default:
		m.query.Search = editKey(m.query.Search, msg)
	}
	m.cursor = 0
	return m, nil
}

func (m portfoliosModel) updateConfirm(msg tea.KeyMsg) (portfoliosModel, tea.Cmd) {
	m.confirmDel = false
	if msg.String() != "y" {
		return m, nil
	}
	p, ok := m.selected()
	if !ok {
		return m, nil
	}
	c := m.client
	return m, func() tea.Msg {
		err := c.DeletePortfolio(context.Background(), p.ID)
		return portfolioDeletedMsg{title: p.Title, err: err}
	}
}

func (m portfoliosModel) updateList(msg tea.KeyMsg) (portfoliosModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "/":
		m.searching = true
	case "c":
		slugs := []string{domain.FilterAll}
		for _, c := range m.categories {
			slugs = append(slugs, c.Slug)
		}
		m.query.Category = domain.NextOption(slugs, m.query.Category)
		m.cursor = 0
	case "t":
		types := append([]string{domain.FilterAll}, domain.ProjectTypes(m.all)...)
		m.query.Type = domain.NextOption(types, m.query.Type)
		m.cursor = 0
	case "s":
		m.query.Sort = domain.NextOption(domain.SortOrders, m.query.Sort)
		m.cursor = 0
	case "x":
		m.query = domain.ListQuery{Category: domain.FilterAll, Type: domain.FilterAll, Sort: domain.SortNewest}
		m.cursor = 0
	case "r":
		m.loading = true
		return m, m.load()
	case "n":
		return m, func() tea.Msg { return openEditorMsg{} }
	case "enter":
		if p, ok := m.selected(); ok {
			id := p.ID
			return m, func() tea.Msg { return openEditorMsg{id: id} }
		}
	case "d":
		if _, ok := m.selected(); ok {
			m.confirmDel = true
		}
	case "y":
		if p, ok := m.selected(); ok {
			url := m.publicURL(p.Slug)
			return m, func() tea.Msg {
				return copyResultMsg{url: url, err: clipboard.WriteAll(url)}
			}
		}
	case "o":
		if p, ok := m.selected(); ok {
			link := p.ProjectLink
			if link == "" {
				link = m.publicURL(p.Slug)
			}
			if err := browser.Open(link); err != nil {
				m.setStatus(link, false)
			}
		}
	}
	return m, nil
}

func (m *portfoliosModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

func (m portfoliosModel) categoryName(slug string) string {
	if slug == "" || slug == domain.FilterAll {
		return "all"
	}
	for _, c := range m.categories {
		if c.Slug == slug {
			return c.Name
		}
	}
	return slug
}

// editing reports whether the list is capturing text.
func (m portfoliosModel) editing() bool {
	return m.searching || m.confirmDel
}

func (m portfoliosModel) View() string {
	var b strings.Builder

	// Search line
	switch {
	case m.searching:
		b.WriteString(" " + searchStyle.Render("/ "+m.query.Search+"█"))
	case m.query.Search != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.query.Search))
	default:
		b.WriteString(" " + dimStyle.Render("/ search title, slug, publisher..."))
	}
	b.WriteString("\n")

	// Filter bar
	filters := []string{
		helpKeyStyle.Render("c") + " " + CategoryStyle(m.query.Category).Render(m.categoryName(m.query.Category)),
		helpKeyStyle.Render("t") + " " + normalStyle.Render(displayType(m.query.Type)),
		helpKeyStyle.Render("s") + " " + searchStyle.Render(m.query.Sort),
	}
	rows := m.visible()
	count := metaStyle.Render(fmt.Sprintf("%d of %s", len(rows), plural(len(m.all), "portfolio")))
	b.WriteString(" " + strings.Join(filters, "   ") + "   " + count + "\n")

	sepW := max(m.width-2, 4)
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.confirmDel {
		if p, ok := m.selected(); ok {
			b.WriteString(" " + warnStyle.Render(fmt.Sprintf("Delete %q? This cannot be undone. (y/n)", p.Title)) + "\n")
		}
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
		b.WriteString(" " + errorStyle.Render(client.Message(m.err, "Failed to load portfolios")))
		return b.String()
	}
	if len(rows) == 0 {
		if m.query.IsDefault() {
			b.WriteString(" " + dimStyle.Render("no portfolios yet -- press n to add one"))
		} else {
			b.WriteString(" " + dimStyle.Render("no portfolios match the current filters"))
		}
		return b.String()
	}

	start, end := scrollWindow(m.cursor, len(rows), max(m.height-6, 3))
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(rows[i], i == m.cursor) + "\n")
	}
	return b.String()
}

func (m portfoliosModel) renderRow(p domain.Portfolio, selected bool) string {
	cursor := "  "
	titleStyle := dimStyle
	if selected {
		cursor = accentStyle.Render("▸") + " "
		titleStyle = normalStyle.Bold(true)
	}

	var cats []string
	for _, c := range p.Categories {
		cats = append(cats, CategoryStyle(c.Slug).Render(c.Name))
	}
	right := metaStyle.Render(fmt.Sprintf("%-10s %10s", truncStr(displayType(p.ProjectType), 10), formatTime(p.CreatedAt)))
	if m.width >= 90 && len(cats) > 0 {
		right = strings.Join(cats, metaStyle.Render(", ")) + "  " + right
	}

	titleW := max(m.width-4-lipgloss.Width(right), 10)
	title := truncStr(p.Title, titleW)
	pad := max(titleW-lipgloss.Width(title), 0)
	line := cursor + titleStyle.Render(title) + strings.Repeat(" ", pad) + " " + right
	if selected {
		return selectedRowBg.Render(line)
	}
	return line
}

func displayType(t string) string {
	if t == "" || t == domain.FilterAll {
		return "all types"
	}
	return t
}

func (m portfoliosModel) helpKeys() string {
	switch {
	case m.searching:
		return helpBar(helpEntry("enter", "apply"), helpEntry("esc", "clear"))
	case m.confirmDel:
		return helpBar(helpEntry("y", "delete"), helpEntry("n", "cancel"))
	}
	return helpBar(
		helpEntry("j/k", "nav"), helpEntry("/", "search"), helpEntry("c/t/s", "filter"),
		helpEntry("enter", "edit"), helpEntry("n", "new"), helpEntry("d", "delete"),
		helpEntry("y", "copy url"), helpEntry("o", "open"), helpEntry("2", "categories"),
		helpEntry("h", "help"), helpEntry("q", "quit"),
	)
}
