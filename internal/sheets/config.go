// Package sheets is the remote store adapter: the collection schema, the row
// codec, and the Store backends that persist a ledger in a spreadsheet.
package sheets

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
)

// DefaultSpreadsheetName is the title given to newly provisioned spreadsheets.
const DefaultSpreadsheetName = "BuildTrack Data"

var (
	// ErrNoCredentials is returned when neither OAuth nor a service account is set.
	ErrNoCredentials = errors.New("no authentication method configured")
	// ErrAmbiguousCredentials is returned when both OAuth and a service account are set.
	ErrAmbiguousCredentials = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
)

// AuthMethod names how the Google backend obtains tokens.
type AuthMethod string

// Supported auth methods.
const (
	AuthNone           AuthMethod = ""
	AuthOAuth          AuthMethod = "oauth"
	AuthServiceAccount AuthMethod = "service_account"
)

// Config holds the configuration for the Google Sheets backend.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetName    string
	TimeZone           string
	RequestsPerMinute  int
	RetryAttempts      int
	RetryDelay         time.Duration
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:   DefaultSpreadsheetName,
		TimeZone:          "Asia/Kolkata",
		RequestsPerMinute: 60,
		RetryAttempts:     3,
		RetryDelay:        500 * time.Millisecond,
	}
}

// Auth reports the configured auth method. It is AuthNone when the OAuth
// credentials are incomplete and no service account is given.
func (c *Config) Auth() (AuthMethod, error) {
	oauth := c.ClientID != "" && c.ClientSecret != "" && (c.RefreshToken != "" || c.TokenFile != "")
	service := c.ServiceAccountPath != ""

	switch {
	case oauth && service:
		return AuthNone, ErrAmbiguousCredentials
	case oauth:
		return AuthOAuth, nil
	case service:
		return AuthServiceAccount, nil
	default:
		return AuthNone, ErrNoCredentials
	}
}

// Validate checks credentials, rate and retry settings, and the time zone.
func (c *Config) Validate() error {
	if _, err := c.Auth(); err != nil {
		return err
	}

	switch {
	case c.RequestsPerMinute <= 0:
		return fmt.Errorf("requests per minute must be positive, got %d", c.RequestsPerMinute)
	case c.RetryAttempts < 0:
		return fmt.Errorf("retry attempts cannot be negative, got %d", c.RetryAttempts)
	case c.RetryDelay < 0:
		return fmt.Errorf("retry delay cannot be negative, got %s", c.RetryDelay)
	}

	if c.TimeZone != "" {
		if _, err := time.LoadLocation(c.TimeZone); err != nil {
			return fmt.Errorf("unknown time zone %q: %w", c.TimeZone, err)
		}
	}
	return nil
}

// Retry returns the retry policy for calls against this backend. Unset
// fields fall back to common.DefaultRetryOptions.
func (c *Config) Retry() common.RetryOptions {
	opts := common.DefaultRetryOptions()
	if c.RetryAttempts > 0 {
		opts.MaxAttempts = c.RetryAttempts
	}
	if c.RetryDelay > 0 {
		opts.InitialDelay = c.RetryDelay
	}
	return opts
}
