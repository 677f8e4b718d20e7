package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/naveenspark/folio/pkg/domain"
)

const loginPath = "/admin/login"

// Client is the portfolio content API client.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	onUnauthorized func()

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUnauthorizedHandler registers fn to run when an authenticated call
// comes back 401. The client drops its token before calling fn.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// New creates a new API client. baseURL includes the /api prefix.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token returns the bearer token currently held.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// --- Admin ---

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	Admin   domain.Admin `json:"admin"`
	Message string       `json:"message,omitempty"`
}

// Login exchanges credentials for a token. On success the client keeps
// the token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	body := map[string]string{"admin_email": email, "admin_password": password}
	var resp LoginResponse
	if err := c.post(ctx, loginPath, body, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		msg := resp.Message
		if msg == "" {
			msg = "login rejected"
		}
		return nil, fmt.Errorf("client.Login: %w", &HTTPError{StatusCode: http.StatusOK, Message: msg})
	}
	c.SetToken(resp.Token)
	return &resp, nil
}

// GetProfile returns the authenticated admin's profile.
func (c *Client) GetProfile(ctx context.Context) (*domain.Admin, error) {
	var resp struct {
		Admin domain.Admin `json:"admin"`
	}
	if err := c.get(ctx, "/admin/profile", &resp); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &resp.Admin, nil
}

// UpdateProfileRequest is the payload for updating the admin profile.
type UpdateProfileRequest struct {
	FirstName string `json:"firstname,omitempty"`
	LastName  string `json:"lastname,omitempty"`
	Email     string `json:"admin_email,omitempty"`
	Password  string `json:"admin_password,omitempty"`
}

// UpdateProfile updates the authenticated admin's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*domain.Admin, error) {
	var resp struct {
		Admin domain.Admin `json:"admin"`
	}
	if err := c.doRequest(ctx, http.MethodPut, "/admin/profile", req, &resp); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &resp.Admin, nil
}

// --- Categories ---

// ListCategories returns all categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.get(ctx, "/categories", &resp); err != nil {
		return nil, fmt.Errorf("client.ListCategories: %w", err)
	}
	return resp.Categories, nil
}

// GetCategory fetches a single category by ID.
func (c *Client) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var resp struct {
		Category domain.Category `json:"category"`
	}
	if err := c.get(ctx, "/categories/"+strconv.FormatInt(id, 10), &resp); err != nil {
		return nil, fmt.Errorf("client.GetCategory: %w", err)
	}
	return &resp.Category, nil
}

// CreateCategory creates a category with the given name.
func (c *Client) CreateCategory(ctx context.Context, name string) error {
	if err := c.post(ctx, "/categories", map[string]string{"name": name}, nil); err != nil {
		return fmt.Errorf("client.CreateCategory: %w", err)
	}
	return nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id int64, name string) error {
	if err := c.doRequest(ctx, http.MethodPut, "/categories/"+strconv.FormatInt(id, 10), map[string]string{"name": name}, nil); err != nil {
		return fmt.Errorf("client.UpdateCategory: %w", err)
	}
	return nil
}

// DeleteCategory deletes a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/categories/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("client.DeleteCategory: %w", err)
	}
	return nil
}

// --- Portfolios ---

type portfolioList struct {
	Portfolios []domain.Portfolio `json:"portfolios"`
}

type portfolioOne struct {
	Portfolio domain.Portfolio `json:"portfolio"`
}

// ListPortfolios returns every portfolio.
func (c *Client) ListPortfolios(ctx context.Context) ([]domain.Portfolio, error) {
	var resp portfolioList
	if err := c.get(ctx, "/portfolios", &resp); err != nil {
		return nil, fmt.Errorf("client.ListPortfolios: %w", err)
	}
	return resp.Portfolios, nil
}

// GetPortfolio fetches a single portfolio by ID.
func (c *Client) GetPortfolio(ctx context.Context, id int64) (*domain.Portfolio, error) {
	var resp portfolioOne
	if err := c.get(ctx, "/portfolios/"+strconv.FormatInt(id, 10), &resp); err != nil {
		return nil, fmt.Errorf("client.GetPortfolio: %w", err)
	}
	return &resp.Portfolio, nil
}

// GetPortfolioBySlug fetches a single portfolio by slug.
func (c *Client) GetPortfolioBySlug(ctx context.Context, slug string) (*domain.Portfolio, error) {
	var resp portfolioOne
	if err := c.get(ctx, "/portfolios/slug/"+url.PathEscape(slug), &resp); err != nil {
		return nil, fmt.Errorf("client.GetPortfolioBySlug: %w", err)
	}
	return &resp.Portfolio, nil
}

// ListPortfoliosByCategory returns the portfolios tagged with a category slug.
func (c *Client) ListPortfoliosByCategory(ctx context.Context, slug string) ([]domain.Portfolio, error) {
	var resp portfolioList
	if err := c.get(ctx, "/portfolios/category/"+url.PathEscape(slug), &resp); err != nil {
		return nil, fmt.Errorf("client.ListPortfoliosByCategory: %w", err)
	}
	return resp.Portfolios, nil
}

// CreatePortfolio submits a new portfolio as multipart form data.
func (c *Client) CreatePortfolio(ctx context.Context, form *PortfolioForm) error {
	if err := c.sendForm(ctx, http.MethodPost, "/portfolios", form); err != nil {
		return fmt.Errorf("client.CreatePortfolio: %w", err)
	}
	return nil
}

// UpdatePortfolio replaces a portfolio with the submitted form.
func (c *Client) UpdatePortfolio(ctx context.Context, id int64, form *PortfolioForm) error {
	if err := c.sendForm(ctx, http.MethodPut, "/portfolios/"+strconv.FormatInt(id, 10), form); err != nil {
		return fmt.Errorf("client.UpdatePortfolio: %w", err)
	}
	return nil
}

// DeletePortfolio deletes a portfolio.
func (c *Client) DeletePortfolio(ctx context.Context, id int64) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/portfolios/"+strconv.FormatInt(id, 10), nil, nil); err != nil {
		return fmt.Errorf("client.DeletePortfolio: %w", err)
	}
	return nil
}

// maxImageSize caps remote image downloads.
const maxImageSize = 25 << 20

// FetchImage downloads a stored image so it can be re-encoded and
// uploaded again. No credentials are sent.
func (c *Client) FetchImage(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("client.FetchImage: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client.FetchImage: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client.FetchImage: %w", &HTTPError{StatusCode: resp.StatusCode, Message: resp.Status})
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return nil, fmt.Errorf("client.FetchImage: read body: %w", err)
	}
	return data, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}
	contentType := ""
	if body != nil {
		contentType = "application/json"
	}
	return c.send(ctx, method, path, reqBody, contentType, out)
}

func (c *Client) sendForm(ctx context.Context, method, path string, form *PortfolioForm) error {
	body, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode form: %w", err)
	}
	return c.send(ctx, method, path, body, contentType, nil)
}

func (c *Client) send(ctx context.Context, method, path string, reqBody io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	token := c.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(path, token)
		}
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		var apiErr struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(respBody, &apiErr) == nil {
			if apiErr.Message != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Message}
			}
			if apiErr.Error != "" {
				return &HTTPError{StatusCode: resp.StatusCode, Message: apiErr.Error}
			}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// handleUnauthorized clears the session after a 401, except for the login
// call itself and for calls made without a token.
func (c *Client) handleUnauthorized(path, token string) {
	if path == loginPath || token == "" {
		return
	}
	c.SetToken("")
	if c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
