package config

import (
	"os"
	"strconv"
	"time"

	"github.com/Veraticus/buildtrack/internal/sheets"
)

// LoadSheetsConfig loads the Google Sheets backend configuration. It follows
// this precedence:
// 1. sheets.* keys (config file or BUILDTRACK_SHEETS_* env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig(v Getter) (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if s := v.GetString("sheets.service_account_path"); s != "" {
		config.ServiceAccountPath = ExpandPath(s)
	}
	if s := v.GetString("sheets.client_id"); s != "" {
		config.ClientID = s
	}
	if s := v.GetString("sheets.client_secret"); s != "" {
		config.ClientSecret = s
	}
	if s := v.GetString("sheets.refresh_token"); s != "" {
		config.RefreshToken = s
	}
	if s := v.GetString("sheets.token_file"); s != "" {
		config.TokenFile = ExpandPath(s)
	}
	if s := v.GetString("sheets.spreadsheet_name"); s != "" {
		config.SpreadsheetName = s
	}
	if s := v.GetString("sheets.time_zone"); s != "" {
		config.TimeZone = s
	}
	if n := v.GetInt("sheets.requests_per_minute"); n > 0 {
		config.RequestsPerMinute = n
	}
	if n := v.GetInt("sheets.retry_attempts"); n > 0 {
		config.RetryAttempts = n
	}
	if d := v.GetDuration("sheets.retry_delay"); d > 0 {
		config.RetryDelay = d
	}

	if config.ServiceAccountPath == "" {
		config.ServiceAccountPath = ExpandPath(os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.TokenFile == "" {
		config.TokenFile = ExpandPath(os.Getenv("GOOGLE_SHEETS_TOKEN_FILE"))
	}
	if config.SpreadsheetName == sheets.DefaultSpreadsheetName {
		if s := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); s != "" {
			config.SpreadsheetName = s
		}
	}
	if s := os.Getenv("GOOGLE_SHEETS_REQUESTS_PER_MINUTE"); s != "" && v.GetInt("sheets.requests_per_minute") == 0 {
		if n, err := strconv.Atoi(s); err == nil {
			config.RequestsPerMinute = n
		}
	}
	if s := os.Getenv("GOOGLE_SHEETS_RETRY_DELAY"); s != "" && v.GetDuration("sheets.retry_delay") == 0 {
		if d, err := time.ParseDuration(s); err == nil {
			config.RetryDelay = d
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}
