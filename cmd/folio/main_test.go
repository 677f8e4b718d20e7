package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/naveenspark/folio/internal/config"
	"github.com/naveenspark/folio/internal/session"
	"github.com/naveenspark/folio/pkg/client"
)

func TestPromptCredentials(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  ada@example.com \n"))
	var out bytes.Buffer
	email, password, err := promptCredentials(in, &out, func() (string, error) { return "s3cret", nil })
	if err != nil {
		t.Fatalf("promptCredentials: %v", err)
	}
	if email != "ada@example.com" || password != "s3cret" {
		t.Errorf("got %q / %q", email, password)
	}
	if !strings.Contains(out.String(), "Email: ") || !strings.Contains(out.String(), "Password: ") {
		t.Errorf("prompts missing: %q", out.String())
	}
}

func TestPromptCredentialsEmptyInput(t *testing.T) {
	in := bufio.NewReader(strings.NewReader(""))
	_, _, err := promptCredentials(in, &bytes.Buffer{}, func() (string, error) { return "", nil })
	if err == nil {
		t.Fatal("expected an error for closed stdin")
	}
}

func TestReadLineWithoutNewline(t *testing.T) {
	got, err := readLine(bufio.NewReader(strings.NewReader("last")))
	if err != nil || got != "last" {
		t.Errorf("readLine = %q, %v", got, err)
	}
}

func newAPI(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginSavesSession(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		if body["admin_email"] != "ada@example.com" || body["admin_password"] != "s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`)) //nolint:errcheck
			return
		}
		w.Write([]byte(`{"success":true,"token":"tok-1","admin":{"id":1,"firstname":"Ada","lastname":"Lovelace","admin_email":"ada@example.com"}}`)) //nolint:errcheck
	})

	dir := t.TempDir()
	store := session.NewStore(dir, "")
	admin, err := login(context.Background(), client.New(srv.URL+"/api", ""), store, "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if admin.Email != "ada@example.com" {
		t.Errorf("admin = %+v", admin)
	}

	reloaded := session.NewStore(dir, "")
	sess, err := reloaded.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if sess.Token != "tok-1" {
		t.Errorf("saved token = %q, want tok-1", sess.Token)
	}

	_, err = login(context.Background(), client.New(srv.URL+"/api", ""), store, "ada@example.com", "wrong")
	if err == nil || err.Error() != "Invalid email or password" {
		t.Errorf("bad password err = %v", err)
	}
}

func TestLoginValidatesFirst(t *testing.T) {
	called := false
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) { called = true })
	store := session.NewStore(t.TempDir(), "")
	_, err := login(context.Background(), client.New(srv.URL, ""), store, "", "pw")
	if err == nil || err.Error() != "Email is required" {
		t.Errorf("err = %v", err)
	}
	if called {
		t.Error("invalid credentials should not reach the API")
	}
}

func TestRunLogout(t *testing.T) {
	store := session.NewStore(t.TempDir(), "")
	var out bytes.Buffer
	if err := runLogout(&out, store, false); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "Already logged out." {
		t.Errorf("out = %q", out.String())
	}

	if err := store.Save("tok", nil); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := runLogout(&out, store, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Logged out.") || !strings.Contains(out.String(), "FOLIO_TOKEN") {
		t.Errorf("out = %q", out.String())
	}
	if _, err := os.Stat(store.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file still present: %v", err)
	}
}

func TestRunWhoami(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"admin":{"id":1,"firstname":"Ada","lastname":"Lovelace","admin_email":"ada@example.com"}}`)) //nolint:errcheck
	})

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"signed out", "", "Not signed in"},
		{"valid", "good", "Ada Lovelace <ada@example.com>"},
		{"expired", "stale", "Session expired"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			if err := runWhoami(context.Background(), &out, client.New(srv.URL+"/api", tc.token)); err != nil {
				t.Fatalf("runWhoami: %v", err)
			}
			if !strings.Contains(out.String(), tc.want) {
				t.Errorf("out = %q, want %q", out.String(), tc.want)
			}
		})
	}
}

func TestRunCategories(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"categories":[{"id":1,"name":"Web","slug":"web","total_projects":1200},{"id":2,"name":"Mobile","slug":"mobile","total_projects":1}]}`)) //nolint:errcheck
	})
	var out bytes.Buffer
	if err := runCategories(context.Background(), &out, client.New(srv.URL+"/api", "tok")); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Web", "web", "1,200 projects", "1 project\n"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("out missing %q: %q", want, out.String())
		}
	}
}

func TestRunCategoriesError(t *testing.T) {
	srv := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	err := runCategories(context.Background(), &bytes.Buffer{}, client.New(srv.URL+"/api", "tok"))
	if err == nil || err.Error() != "Failed to load categories" {
		t.Errorf("err = %v", err)
	}
}

func TestOpenPortfolioRejectsEmptySlug(t *testing.T) {
	cfg := config.Default()
	if err := openPortfolio(&bytes.Buffer{}, cfg, "  !!  "); err == nil {
		t.Error("expected a usage error")
	}
}
