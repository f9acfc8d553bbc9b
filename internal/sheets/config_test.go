package sheets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/buildtrack/internal/common"
)

func serviceAccount() Config {
	c := DefaultConfig()
	c.ServiceAccountPath = "/keys/site-office.json"
	return c
}

func TestConfigAuth(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		want    AuthMethod
		config  Config
	}{
		{
			name:   "refresh token",
			config: Config{ClientID: "id", ClientSecret: "secret", RefreshToken: "token"},
			want:   AuthOAuth,
		},
		{
			name:   "token file",
			config: Config{ClientID: "id", ClientSecret: "secret", TokenFile: "/tmp/token.json"},
			want:   AuthOAuth,
		},
		{
			name:   "service account",
			config: Config{ServiceAccountPath: "/keys/sa.json"},
			want:   AuthServiceAccount,
		},
		{
			name:    "secret missing",
			config:  Config{ClientID: "id", RefreshToken: "token"},
			wantErr: ErrNoCredentials,
		},
		{
			name:    "nothing set",
			wantErr: ErrNoCredentials,
		},
		{
			name: "both set",
			config: Config{
				ClientID:           "id",
				ClientSecret:       "secret",
				RefreshToken:       "token",
				ServiceAccountPath: "/keys/sa.json",
			},
			wantErr: ErrAmbiguousCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.Auth()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, AuthNone, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		modify  func(c *Config)
		name    string
		errMsg  string
		wantErr bool
	}{
		{name: "defaults with service account", modify: func(*Config) {}},
		{name: "utc", modify: func(c *Config) { c.TimeZone = "UTC" }},
		{
			name:    "no credentials",
			modify:  func(c *Config) { c.ServiceAccountPath = "" },
			wantErr: true,
			errMsg:  "no authentication method configured",
		},
		{
			name:    "zero request rate",
			modify:  func(c *Config) { c.RequestsPerMinute = 0 },
			wantErr: true,
			errMsg:  "requests per minute must be positive",
		},
		{
			name:    "negative retry attempts",
			modify:  func(c *Config) { c.RetryAttempts = -1 },
			wantErr: true,
			errMsg:  "retry attempts cannot be negative",
		},
		{
			name:    "negative retry delay",
			modify:  func(c *Config) { c.RetryDelay = -time.Second },
			wantErr: true,
			errMsg:  "retry delay cannot be negative",
		},
		{
			name:    "unknown time zone",
			modify:  func(c *Config) { c.TimeZone = "Mars/Olympus" },
			wantErr: true,
			errMsg:  "unknown time zone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := serviceAccount()
			tt.modify(&c)

			err := c.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfigRetry(t *testing.T) {
	c := serviceAccount()
	c.RetryAttempts = 5
	c.RetryDelay = 2 * time.Second

	got := c.Retry()
	assert.Equal(t, 5, got.MaxAttempts)
	assert.Equal(t, 2*time.Second, got.InitialDelay)
	assert.Equal(t, common.DefaultRetryOptions().MaxDelay, got.MaxDelay)

	assert.Equal(t, common.DefaultRetryOptions(), (&Config{}).Retry())
}
