package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/folio/internal/session"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestApp() App {
	a := NewApp(Options{})
	a.width = 80
	a.height = 30
	return a
}

// newSignedInApp returns an app on the portfolios view with a session
// persisted under a temp dir. No command it returns is executed.
func newSignedInApp(t *testing.T) (App, *session.Store) {
	t.Helper()
	store := session.NewStore(t.TempDir(), "")
	admin := &domain.Admin{ID: 1, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}
	if err := store.Save("tok", admin); err != nil {
		t.Fatalf("save session: %v", err)
	}
	a := NewApp(Options{
		Client:   client.New("http://127.0.0.1:1/api", "tok"),
		Sessions: store,
		SiteURL:  "https://example.com",
	})
	a.width = 100
	a.height = 30
	return a, store
}

func TestAppStartsOnLoginWithoutToken(t *testing.T) {
	a := newTestApp()
	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if !strings.Contains(a.View(), "ADMIN SIGN IN") {
		t.Error("login view should render the sign in form")
	}
}

func TestAppStartsOnPortfoliosWithToken(t *testing.T) {
	a, _ := newSignedInApp(t)
	if a.view != viewPortfolios {
		t.Fatalf("view = %d, want viewPortfolios", a.view)
	}
	if a.admin == nil || a.admin.Email != "ada@example.com" {
		t.Errorf("admin should be restored from the session, got %+v", a.admin)
	}
}

func TestAppTabSwitching(t *testing.T) {
	tests := []struct {
		key      string
		wantView view
	}{
		{"1", viewPortfolios},
		{"2", viewCategories},
	}

	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			app, _ := newSignedInApp(t)
			model, _ := app.Update(keyRunes(tc.key))
			a := model.(App)
			if a.view != tc.wantView {
				t.Errorf("after key %q: view = %d, want %d", tc.key, a.view, tc.wantView)
			}
		})
	}
}

func TestAppGlobalQuitOnQ(t *testing.T) {
	app, _ := newSignedInApp(t)
	_, cmd := app.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestAppQNotFiredWhenSearching(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(keyRunes("/"))
	model, cmd := model.(App).Update(keyRunes("q"))
	a := model.(App)
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q while searching should type, not quit")
		}
	}
	if a.portfolios.query.Search != "q" {
		t.Errorf("search = %q, want %q", a.portfolios.query.Search, "q")
	}
}

func TestAppSessionExpiredReturnsToLogin(t *testing.T) {
	app, store := newSignedInApp(t)
	model, _ := app.Update(SessionExpiredMsg{})
	a := model.(App)

	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if a.client.Token() != "" {
		t.Error("client token should be cleared")
	}
	if a.admin != nil {
		t.Error("admin should be cleared")
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file should be removed, stat err = %v", err)
	}
	if !strings.Contains(a.View(), sessionExpiredNotice) {
		t.Error("login view should explain the session expired")
	}
}

func TestAppSignOutKey(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(keyRunes("L"))
	a := model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if a.login.notice != "Signed out." {
		t.Errorf("notice = %q", a.login.notice)
	}
}

func TestAppLoginResultSavesSession(t *testing.T) {
	dir := t.TempDir()
	store := session.NewStore(dir, "")
	c := client.New("http://127.0.0.1:1/api", "")
	a := NewApp(Options{Client: c, Sessions: store})

	resp := &client.LoginResponse{
		Success: true,
		Token:   "fresh",
		Admin:   domain.Admin{ID: 2, FirstName: "Grace", Email: "grace@example.com"},
	}
	model, cmd := a.Update(loginResultMsg{resp: resp})
	a = model.(App)

	if a.view != viewPortfolios {
		t.Fatalf("view = %d, want viewPortfolios", a.view)
	}
	if cmd == nil {
		t.Error("login should trigger a reload")
	}
	if a.admin == nil || a.admin.Email != "grace@example.com" {
		t.Errorf("admin = %+v", a.admin)
	}
	if got := store.Current().Token; got != "fresh" {
		t.Errorf("stored token = %q, want fresh", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); err != nil {
		t.Errorf("session file missing: %v", err)
	}
}

func TestAppLoginFailureStaysOnLogin(t *testing.T) {
	a := newTestApp()
	err := &client.HTTPError{StatusCode: 401, Message: "Invalid credentials"}
	model, _ := a.Update(loginResultMsg{err: err})
	a = model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want viewLogin", a.view)
	}
	if !strings.Contains(a.View(), "Invalid credentials") {
		t.Error("login view should show the backend message")
	}
}

func TestAppOpenEditorAndClose(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(openEditorMsg{})
	a := model.(App)
	if a.view != viewEditor {
		t.Fatalf("view = %d, want viewEditor", a.view)
	}
	if !strings.Contains(a.View(), "NEW PORTFOLIO") {
		t.Error("editor should render the create title")
	}

	model, _ = a.Update(editorClosedMsg{})
	a = model.(App)
	if a.view != viewPortfolios {
		t.Errorf("view = %d, want viewPortfolios", a.view)
	}
}

func TestAppEditorClosedQuit(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(openEditorMsg{})
	_, cmd := model.(App).Update(editorClosedMsg{quit: true})
	if cmd == nil {
		t.Fatal("quit close should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("editorClosedMsg{quit: true} should quit")
	}
}

func TestAppCtrlCInEditorAsksWhenDirty(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(openEditorMsg{})
	model, _ = model.(App).Update(keyRunes("x"))
	model, cmd := model.(App).Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	a := model.(App)
	if cmd != nil {
		t.Fatal("ctrl+c on a dirty draft should ask first")
	}
	if a.editor.mode != modeConfirmLeave || !a.editor.quitOnLeave {
		t.Errorf("editor mode = %d, quitOnLeave = %v", a.editor.mode, a.editor.quitOnLeave)
	}
}

func TestAppCategoriesCachedForEditor(t *testing.T) {
	app, _ := newSignedInApp(t)
	cats := []domain.Category{{ID: 1, Name: "Web", Slug: "web"}}
	model, _ := app.Update(categoriesLoadedMsg{categories: cats})
	model, _ = model.(App).Update(openEditorMsg{})
	a := model.(App)
	if len(a.editor.categories) != 1 {
		t.Errorf("editor categories = %d, want 1", len(a.editor.categories))
	}
}

func TestAppHelpOverlay(t *testing.T) {
	app, _ := newSignedInApp(t)
	model, _ := app.Update(keyRunes("h"))
	a := model.(App)
	if !a.helpOpen {
		t.Fatal("h should open help")
	}
	if !strings.Contains(a.View(), "folio login") {
		t.Error("help overlay should list commands")
	}
	model, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(App).helpOpen {
		t.Error("esc should close help")
	}
}

func TestAppViewRendersTabBar(t *testing.T) {
	app, _ := newSignedInApp(t)
	out := app.View()
	for _, want := range []string{"Portfolios", "Categories", "ada@example.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppShimmerFrameIncrements(t *testing.T) {
	a := newTestApp()
	model, cmd := a.Update(shimmerTickMsg{})
	if model.(App).frame != 1 {
		t.Errorf("frame = %d, want 1", model.(App).frame)
	}
	if cmd == nil {
		t.Error("shimmer should schedule the next tick")
	}
}

func TestAppLayoutFitsTerminal(t *testing.T) {
	app, _ := newSignedInApp(t)
	var list []domain.Portfolio
	for i := 0; i < 50; i++ {
		list = append(list, domain.Portfolio{ID: int64(i + 1), Title: "Project", Slug: "p", ProjectType: "Web"})
	}
	model, _ := app.Update(portfoliosLoadedMsg{portfolios: list})
	model, _ = model.(App).Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	out := model.(App).View()
	if lines := strings.Count(out, "\n") + 1; lines > 24 {
		t.Errorf("view has %d lines, terminal is 24", lines)
	}
}
