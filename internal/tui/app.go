package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/folio/internal/browser"
	"github.com/naveenspark/folio/internal/editor"
	"github.com/naveenspark/folio/internal/imaging"
	"github.com/naveenspark/folio/internal/session"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

type view int

const (
	viewLogin view = iota
	viewPortfolios
	viewCategories
	viewEditor
)

// sessionExpiredNotice is shown on the login view after a 401.
const sessionExpiredNotice = "Your session has expired. Please sign in again."

// SessionExpiredMsg is sent by the API client's unauthorized handler. The
// app tears the session down and returns to the login view.
type SessionExpiredMsg struct{}

// profileLoadedMsg carries the result of GetProfile.
type profileLoadedMsg struct {
	admin *domain.Admin
	err   error
}

// Options wires the app's collaborators.
type Options struct {
	Client   *client.Client
	Sessions *session.Store
	Saver    *editor.Saver
	Blobs    *imaging.BlobStore
	SiteURL  string
	Version  string
	Logger   *slog.Logger
}

// App is the root Bubbletea model.
type App struct {
	client     *client.Client
	sessions   *session.Store
	saver      *editor.Saver
	blobs      *imaging.BlobStore
	siteURL    string
	version    string
	logger     *slog.Logger
	view       view
	login      loginModel
	portfolios portfoliosModel
	categories categoriesModel
	editor     editorModel
	catList    []domain.Category
	admin      *domain.Admin
	helpOpen   bool
	helpCursor int
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates a new TUI application. It starts on the login view
// unless the client already holds a token.
func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Blobs == nil {
		opts.Blobs = imaging.NewBlobStore()
	}
	if opts.Saver == nil {
		opts.Saver = editor.NewSaver(opts.Client, opts.Blobs, editor.WithLogger(opts.Logger))
	}
	a := App{
		client:     opts.Client,
		sessions:   opts.Sessions,
		saver:      opts.Saver,
		blobs:      opts.Blobs,
		siteURL:    opts.SiteURL,
		version:    opts.Version,
		logger:     opts.Logger,
		view:       viewLogin,
		login:      newLoginModel(opts.Client, ""),
		portfolios: newPortfoliosModel(opts.Client, opts.SiteURL),
		categories: newCategoriesModel(opts.Client),
	}
	if opts.Client != nil && opts.Client.Token() != "" {
		a.view = viewPortfolios
	}
	if opts.Sessions != nil {
		a.admin = opts.Sessions.Current().Admin
	}
	return a
}

func (a App) Init() tea.Cmd {
	if a.view == viewLogin {
		return shimmerTickCmd()
	}
	return tea.Batch(shimmerTickCmd(), a.loadAll())
}

func (a App) loadAll() tea.Cmd {
	return tea.Batch(a.portfolios.Init(), loadCategories(a.client), a.loadProfile())
}

func (a App) loadProfile() tea.Cmd {
	c := a.client
	return func() tea.Msg {
		admin, err := c.GetProfile(context.Background())
		return profileLoadedMsg{admin: admin, err: err}
	}
}

func (a App) bodySize() tea.WindowSizeMsg {
	// Chrome: header(2) + tabs(1) + help(1) = 4 lines
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - 4}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		body := a.bodySize()
		a.portfolios, _ = a.portfolios.Update(body)
		a.categories, _ = a.categories.Update(body)
		a.editor, _ = a.editor.Update(body)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		a.login, _ = a.login.Update(msg)
		a.categories, _ = a.categories.Update(msg)
		if a.view == viewEditor {
			a.editor, _ = a.editor.Update(msg)
		}
		return a, shimmerTickCmd()

	case SessionExpiredMsg:
		return a.signOut(sessionExpiredNotice), nil

	case loginResultMsg:
		a.login, _ = a.login.Update(msg)
		if msg.err != nil {
			a.logger.Warn("login failed", "err", msg.err)
			return a, nil
		}
		admin := msg.resp.Admin
		a.admin = &admin
		if a.sessions != nil {
			if err := a.sessions.Save(msg.resp.Token, &admin); err != nil {
				a.logger.Error("session save failed", "err", err)
			}
		}
		a.logger.Info("signed in", "admin", admin.Email)
		a.view = viewPortfolios
		a.login = newLoginModel(a.client, "")
		a.portfolios.loading = true
		return a, tea.Batch(a.portfolios.Init(), loadCategories(a.client))

	case profileLoadedMsg:
		if msg.err == nil && msg.admin != nil {
			a.admin = msg.admin
		}
		return a, nil

	case categoriesLoadedMsg:
		if msg.err == nil {
			a.catList = msg.categories
		}
		a.portfolios, _ = a.portfolios.Update(msg)
		a.categories, _ = a.categories.Update(msg)
		a.editor, _ = a.editor.Update(msg)
		return a, nil

	case openEditorMsg:
		a.editor = newEditorModel(a.client, a.saver, a.blobs, msg.id, a.catList)
		a.editor, _ = a.editor.Update(a.bodySize())
		a.view = viewEditor
		return a, a.editor.Init()

	case editorClosedMsg:
		if msg.quit {
			return a, tea.Quit
		}
		a.view = viewPortfolios
		if msg.reload {
			a.portfolios.loading = true
			return a, tea.Batch(a.portfolios.Init(), loadCategories(a.client))
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	return a.route(msg)
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := helpItems(a.siteURL)

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q", "ctrl+c":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(items)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if item := items[a.helpCursor]; item.url != "" {
				browser.Open(item.url) //nolint:errcheck // best-effort browser open
			}
		}
		return a, nil
	}

	switch a.view {
	case viewLogin:
		if msg.String() == "ctrl+c" || msg.String() == "esc" {
			return a, tea.Quit
		}
	case viewEditor:
		if msg.String() == "ctrl+c" {
			var cmd tea.Cmd
			a.editor, cmd = a.editor.requestLeave(true)
			return a, cmd
		}
	default:
		if !a.isEditing() {
			switch msg.String() {
			case "h":
				a.helpOpen = true
				a.helpCursor = 0
				return a, nil
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.view = viewPortfolios
				return a, nil
			case "2":
				if a.view != viewCategories {
					a.view = viewCategories
					a.categories.loading = true
					return a, a.categories.Init()
				}
				return a, nil
			case "L":
				return a.signOut("Signed out."), nil
			}
		} else if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}
	return a.route(msg)
}

func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewPortfolios:
		a.portfolios, cmd = a.portfolios.Update(msg)
	case viewCategories:
		a.categories, cmd = a.categories.Update(msg)
	case viewEditor:
		a.editor, cmd = a.editor.Update(msg)
	}
	return a, cmd
}

// signOut tears the session down and shows the login view with notice.
func (a App) signOut(notice string) App {
	if a.sessions != nil {
		if _, err := a.sessions.Teardown(); err != nil {
			a.logger.Error("session teardown failed", "err", err)
		}
	}
	if a.client != nil {
		a.client.SetToken("")
	}
	if a.view == viewEditor {
		a.editor.releaseBlobs()
	}
	a.logger.Info("session ended", "reason", notice)
	a.admin = nil
	a.helpOpen = false
	a.view = viewLogin
	a.login = newLoginModel(a.client, notice)
	a.editor = editorModel{}
	return a
}

func (a App) isEditing() bool {
	switch a.view {
	case viewLogin, viewEditor:
		return true
	case viewPortfolios:
		return a.portfolios.editing()
	case viewCategories:
		return a.categories.editing()
	}
	return false
}

func (a App) View() string {
	// Header: centered shimmer logo
	logo := renderShimmerLogo(a.frame)
	logoPad := max((a.width-lipgloss.Width(logo))/2, 0)
	header := strings.Repeat(" ", logoPad) + logo

	statsLine := ""
	if a.admin != nil {
		statsLine = metaStyle.Render(fmt.Sprintf("%s · %s", a.admin.DisplayName(), a.admin.Email))
	} else if a.view == viewLogin && a.version != "" {
		statsLine = metaStyle.Render(a.version)
	}
	statsPad := max((a.width-lipgloss.Width(statsLine))/2, 0)
	header += "\n" + strings.Repeat(" ", statsPad) + statsLine

	// Tab bar
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Portfolios", viewPortfolios},
		{"2", "Categories", viewCategories},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	if a.view != viewLogin {
		for _, t := range tabs {
			var label string
			active := t.v == a.view || (t.v == viewPortfolios && a.view == viewEditor)
			if active {
				label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
			} else {
				label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
			}
			labelWidth := lipgloss.Width(label)
			leftPad := max((colWidth-labelWidth)/2, 0)
			rightPad := max(colWidth-labelWidth-leftPad, 0)
			tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
		}
	}

	var body, help string
	switch a.view {
	case viewLogin:
		body = a.login.View()
		help = helpBar(helpEntry("tab", "next"), helpEntry("enter", "sign in"), helpEntry("esc", "quit"))
	case viewPortfolios:
		body = a.portfolios.View()
		help = a.portfolios.helpKeys()
	case viewCategories:
		body = a.categories.View()
		help = a.categories.helpKeys()
	case viewEditor:
		body = a.editor.View()
		help = a.editor.helpKeys()
	}

	if a.helpOpen {
		body = helpView(helpItems(a.siteURL), a.helpCursor)
		help = helpBar(helpEntry("j/k", "nav"), helpEntry("enter", "open"), helpEntry("esc", "close"))
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}
