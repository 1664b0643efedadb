package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/itsiBahar/IMRS-V2/internal/domain"
)

const authTimeout = 30 * time.Second

// Client implements domain.IdentityProvider against a GoTrue-style
// identity service (password grant + bearer-token user lookup).
// A signed-in session is persisted to disk so a restarted client
// resumes it without prompting.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
	sessionPath string
}

// NewClient creates a new identity provider client
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: authTimeout,
		},
		logger:      logger,
		sessionPath: defaultSessionPath(),
	}
}

// defaultSessionPath returns where the persisted session lives
func defaultSessionPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "imrs", "session.json")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "imrs", "session.json")
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// doAuthRequest performs a request against the identity service
func (c *Client) doAuthRequest(ctx context.Context, method, path, bearer string, payload interface{}) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("auth request failed", "error", err)
		return nil, 0, domain.ErrBackendUnreachable
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// SignIn performs a password-grant sign-in
func (c *Client) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	body, status, err := c.doAuthRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "",
		credentialsPayload{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, domain.ErrAuthFailed
	}
	if status != http.StatusOK {
		c.logger.Error("sign-in error", "status", status, "body", string(body))
		return nil, fmt.Errorf("sign-in failed with status %d", status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}

	session := &domain.Session{
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
		AccessToken: tok.AccessToken,
	}
	c.persistSession(session)
	return session, nil
}

// SignUp registers a new account and returns its session
func (c *Client) SignUp(ctx context.Context, email, password string) (*domain.Session, error) {
	body, status, err := c.doAuthRequest(ctx, http.MethodPost, "/auth/v1/signup", "",
		credentialsPayload{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnprocessableEntity {
		return nil, domain.ErrAuthFailed
	}
	if status != http.StatusOK {
		c.logger.Error("sign-up error", "status", status, "body", string(body))
		return nil, fmt.Errorf("sign-up failed with status %d", status)
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w", err)
	}

	session := &domain.Session{
		UserID:      tok.User.ID,
		Email:       tok.User.Email,
		AccessToken: tok.AccessToken,
	}
	c.persistSession(session)
	return session, nil
}

// SignOut revokes the token and drops the persisted session
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	c.clearPersistedSession()

	_, status, err := c.doAuthRequest(ctx, http.MethodPost, "/auth/v1/logout", accessToken, nil)
	if err != nil {
		// Local sign-out already happened; a dead identity service
		// should not keep the user signed in.
		c.logger.Warn("remote sign-out failed", "error", err)
		return nil
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("remote sign-out rejected", "status", status)
	}
	return nil
}

// CurrentSession resolves a previously persisted session, validating the
// token against the identity service. Returns nil without error when no
// session exists or the token is no longer accepted.
func (c *Client) CurrentSession(ctx context.Context) (*domain.Session, error) {
	stored, err := c.loadPersistedSession()
	if err != nil || stored == nil {
		return nil, nil
	}

	body, status, err := c.doAuthRequest(ctx, http.MethodGet, "/auth/v1/user", stored.AccessToken, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.clearPersistedSession()
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("session validation failed with status %d", status)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	return &domain.Session{
		UserID:      user.ID,
		Email:       user.Email,
		AccessToken: stored.AccessToken,
	}, nil
}

type persistedSession struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
}

func (c *Client) persistSession(s *domain.Session) {
	if err := os.MkdirAll(filepath.Dir(c.sessionPath), 0755); err != nil {
		c.logger.Warn("failed to create session directory", "error", err)
		return
	}
	data, err := json.Marshal(persistedSession{
		AccessToken: s.AccessToken,
		UserID:      s.UserID,
		Email:       s.Email,
	})
	if err != nil {
		return
	}
	if err := os.WriteFile(c.sessionPath, data, 0600); err != nil {
		c.logger.Warn("failed to persist session", "error", err)
	}
}

func (c *Client) loadPersistedSession() (*domain.Session, error) {
	data, err := os.ReadFile(c.sessionPath)
	if err != nil {
		return nil, nil
	}
	var stored persistedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, nil
	}
	if stored.AccessToken == "" {
		return nil, nil
	}
	return &domain.Session{
		UserID:      stored.UserID,
		Email:       stored.Email,
		AccessToken: stored.AccessToken,
	}, nil
}

func (c *Client) clearPersistedSession() {
	os.Remove(c.sessionPath)
}
