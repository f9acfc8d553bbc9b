package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/buildtrack/internal/common"
	"github.com/Veraticus/buildtrack/internal/model"
)

// consentTimeout bounds how long the interactive flow waits for the browser.
const consentTimeout = 5 * time.Minute

// ErrNoAuthCode is returned when Google redirects back without a code.
var ErrNoAuthCode = errors.New("no authorization code received")

// OAuth2Config holds the installed-app OAuth2 settings.
type OAuth2Config struct {
	Logger *slog.Logger
	// ShowURL presents the consent URL. It defaults to logging it.
	ShowURL      func(url string)
	ClientID     string
	ClientSecret string
	TokenFile    string
	ListenAddr   string
}

func (c OAuth2Config) oauth(redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// callback receives the consent redirect and hands the code to the flow.
type callback struct {
	codes chan string
	errs  chan error
	state string
}

func newCallback(state string) *callback {
	return &callback{state: state, codes: make(chan string, 1), errs: make(chan error, 1)}
}

func (cb *callback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("state") != cb.state {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	if reason := q.Get("error"); reason != "" {
		cb.fail(fmt.Errorf("consent denied: %s", reason))
		http.Error(w, "BuildTrack was not authorized. You can close this window.", http.StatusForbidden)
		return
	}

	code := q.Get("code")
	if code == "" {
		cb.fail(ErrNoAuthCode)
		http.Error(w, "No authorization code received. Run buildtrack auth sheets again.", http.StatusBadRequest)
		return
	}

	select {
	case cb.codes <- code:
	default:
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = fmt.Fprint(w, "<html><body><h1>BuildTrack is authorized</h1><p>Return to the terminal.</p></body></html>")
}

func (cb *callback) fail(err error) {
	select {
	case cb.errs <- err:
	default:
	}
}

// AuthenticateOAuth2Interactive runs the browser consent flow, receiving the
// code on a local callback server, and stores the token in TokenFile when
// one is configured.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	logger := common.OrDefault(config.Logger)

	addr := config.ListenAddr
	if addr == "" {
		addr = "localhost:8080"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	oauthConfig := config.oauth("http://" + listener.Addr().String() + "/callback")
	cb := newCallback(model.NewID())

	mux := http.NewServeMux()
	mux.Handle("/callback", cb)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			cb.fail(fmt.Errorf("callback server: %w", err))
		}
	}()
	defer func() {
		if err := server.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Callback server shutdown failed", "error", err)
		}
	}()

	authURL := oauthConfig.AuthCodeURL(cb.state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if config.ShowURL != nil {
		config.ShowURL(authURL)
	} else {
		logger.Info("Open this URL to authorize Google Sheets", "url", authURL)
	}

	timeout := time.NewTimer(consentTimeout)
	defer timeout.Stop()

	var code string
	select {
	case code = <-cb.codes:
	case err := <-cb.errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("no response from the browser within %s", consentTimeout)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if config.TokenFile != "" {
		if err := SaveToken(config.TokenFile, token); err != nil {
			logger.Warn("Failed to save token", "file", config.TokenFile, "error", err)
		}
	}
	return token, nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return &token, nil
}

// SaveToken writes a token to path, readable only by the owner.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// savingTokenSource writes each newly minted access token back to a file
// so the next run starts from it.
type savingTokenSource struct {
	src    oauth2.TokenSource
	logger *slog.Logger
	path   string
	last   string
	mu     sync.Mutex
}

func newSavingTokenSource(src oauth2.TokenSource, path string, logger *slog.Logger) oauth2.TokenSource {
	if path == "" {
		return src
	}
	return &savingTokenSource{src: src, path: path, logger: common.OrDefault(logger)}
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := SaveToken(s.path, token); err != nil {
			s.logger.Warn("Failed to save refreshed token", "file", s.path, "error", err)
		}
	}
	return token, nil
}
