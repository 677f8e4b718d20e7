package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/term"
	"github.com/dustin/go-humanize"

	"github.com/naveenspark/folio/internal/browser"
	"github.com/naveenspark/folio/internal/config"
	"github.com/naveenspark/folio/internal/editor"
	"github.com/naveenspark/folio/internal/imaging"
	"github.com/naveenspark/folio/internal/session"
	"github.com/naveenspark/folio/internal/tui"
	"github.com/naveenspark/folio/pkg/client"
	"github.com/naveenspark/folio/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

// startupCheckTimeout bounds the profile check before the TUI starts.
const startupCheckTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("folio " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, logCloser, err := cfg.OpenLogger()
	if err != nil {
		return err
	}
	defer logCloser.Close() //nolint:errcheck

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := session.NewStore(dir, cfg.Token)
	sess, err := store.Load()
	if err != nil {
		// A corrupt session file is treated as signed out.
		logger.Warn("session unreadable", "err", err)
	}

	ctx := context.Background()
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "login":
			in := bufio.NewReader(os.Stdin)
			email, password, err := promptCredentials(in, os.Stdout, terminalSecret(in))
			if err != nil {
				return err
			}
			admin, err := login(ctx, client.New(cfg.APIURL, ""), store, email, password)
			if err != nil {
				return err
			}
			logger.Info("signed in", "admin", admin.Email)
			fmt.Printf("Signed in as %s <%s>\n", admin.DisplayName(), admin.Email)
			return nil
		case "logout":
			return runLogout(os.Stdout, store, cfg.Token != "")
		case "whoami":
			return runWhoami(ctx, os.Stdout, client.New(cfg.APIURL, sess.Token))
		case "categories":
			return runCategories(ctx, os.Stdout, client.New(cfg.APIURL, sess.Token))
		case "open":
			if len(os.Args) < 3 {
				return errors.New("usage: folio open <slug>")
			}
			return openPortfolio(os.Stdout, cfg, os.Args[2])
		default:
			return fmt.Errorf("unknown command %q (run folio help)", os.Args[1])
		}
	}

	return runTUI(ctx, cfg, store, sess, logger)
}

func runTUI(ctx context.Context, cfg config.Config, store *session.Store, sess session.Session, logger *slog.Logger) error {
	policy, err := editor.ParseMovePolicy(cfg.MovePolicy)
	if err != nil {
		return err
	}

	// The handler runs on command goroutines after Run starts, so p is set.
	var p *tea.Program
	c := client.New(cfg.APIURL, sess.Token, client.WithUnauthorizedHandler(func() {
		if p != nil {
			p.Send(tui.SessionExpiredMsg{})
		}
	}))

	// Only drop the session on an actual auth failure, not transient errors.
	if c.Token() != "" {
		checkCtx, cancel := context.WithTimeout(ctx, startupCheckTimeout)
		_, err := c.GetProfile(checkCtx)
		cancel()
		if client.IsStatus(err, http.StatusUnauthorized) {
			logger.Info("stored session rejected")
			if _, err := store.Teardown(); err != nil {
				logger.Error("session teardown failed", "err", err)
			}
			c.SetToken("")
		} else if err != nil {
			logger.Warn("profile check failed", "err", err)
		}
	}

	blobs := imaging.NewBlobStore()
	saver := editor.NewSaver(c, blobs,
		editor.WithMovePolicy(policy),
		editor.WithEncoder(imaging.WebPEncoder{Quality: cfg.WebPQuality}),
		editor.WithLogger(logger),
	)
	app := tui.NewApp(tui.Options{
		Client:   c,
		Sessions: store,
		Saver:    saver,
		Blobs:    blobs,
		SiteURL:  cfg.SiteURL,
		Version:  version,
		Logger:   logger,
	})

	logger.Info("starting", "version", version, "api", cfg.APIURL, "move_policy", policy.String())
	p = tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// promptCredentials asks for an email on out and reads it from in; the
// password comes from readSecret so terminals can hide it.
func promptCredentials(in *bufio.Reader, out io.Writer, readSecret func() (string, error)) (string, string, error) {
	fmt.Fprint(out, "Email: ") //nolint:errcheck
	email, err := readLine(in)
	if err != nil {
		return "", "", fmt.Errorf("read email: %w", err)
	}
	fmt.Fprint(out, "Password: ") //nolint:errcheck
	password, err := readSecret()
	if err != nil {
		return "", "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(email), password, nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalSecret reads without echo when stdin is a terminal and falls
// back to a plain line for piped input.
func terminalSecret(in *bufio.Reader) func() (string, error) {
	return func() (string, error) {
		if !term.IsTerminal(os.Stdin.Fd()) {
			return readLine(in)
		}
		b, err := term.ReadPassword(os.Stdin.Fd())
		fmt.Println()
		return string(b), err
	}
}

// login validates the credentials, signs in and persists the session.
func login(ctx context.Context, c *client.Client, store *session.Store, email, password string) (*domain.Admin, error) {
	if err := domain.ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, errors.New(client.Message(err, "Login failed"))
	}
	admin := resp.Admin
	if err := store.Save(resp.Token, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

func runLogout(out io.Writer, store *session.Store, envToken bool) error {
	removed, err := store.Teardown()
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(out, "Logged out.") //nolint:errcheck
	} else {
		fmt.Fprintln(out, "Already logged out.") //nolint:errcheck
	}
	if envToken {
		fmt.Fprintln(out, "FOLIO_TOKEN is still set in your environment.") //nolint:errcheck
	}
	return nil
}

func runWhoami(ctx context.Context, out io.Writer, c *client.Client) error {
	if c.Token() == "" {
		fmt.Fprintln(out, "Not signed in. Run: folio login") //nolint:errcheck
		return nil
	}
	admin, err := c.GetProfile(ctx)
	if err != nil {
		if client.IsStatus(err, http.StatusUnauthorized) {
			fmt.Fprintln(out, "Session expired. Run: folio login") //nolint:errcheck
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "%s <%s>\n", admin.DisplayName(), admin.Email) //nolint:errcheck
	return nil
}

func runCategories(ctx context.Context, out io.Writer, c *client.Client) error {
	cats, err := c.ListCategories(ctx)
	if err != nil {
		return errors.New(client.Message(err, "Failed to load categories"))
	}
	if len(cats) == 0 {
		fmt.Fprintln(out, "No categories yet.") //nolint:errcheck
		return nil
	}
	for _, cat := range cats {
		count := ""
		if cat.TotalProjects != nil {
			count = humanize.Comma(int64(*cat.TotalProjects)) + " projects"
			if *cat.TotalProjects == 1 {
				count = "1 project"
			}
		}
		fmt.Fprintf(out, "%-4d %-24s %-24s %s\n", cat.ID, cat.Name, cat.Slug, count) //nolint:errcheck
	}
	return nil
}

func openPortfolio(out io.Writer, cfg config.Config, slug string) error {
	slug = domain.Slugify(slug)
	if slug == "" {
		return errors.New("usage: folio open <slug>")
	}
	url := cfg.PortfolioURL(slug)
	if err := browser.Open(url); err != nil {
		fmt.Fprintln(out, url) //nolint:errcheck
	}
	return nil
}
