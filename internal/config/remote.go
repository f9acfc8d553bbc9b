package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Veraticus/buildtrack/internal/common"
)

// Remote backends.
const (
	BackendFunction = "function"
	BackendGoogle   = "google"
	BackendMemory   = "memory"
)

// RemoteConfig selects the remote store the engine syncs with.
type RemoteConfig struct {
	Backend  string
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// LoadRemoteConfig reads remote.* keys. The backend defaults to function.
func LoadRemoteConfig(v Getter) (*RemoteConfig, error) {
	config := &RemoteConfig{
		Backend:  v.GetString("remote.backend"),
		Endpoint: v.GetString("remote.endpoint"),
		APIKey:   v.GetString("remote.api_key"),
		Timeout:  v.GetDuration("remote.timeout"),
	}
	if config.Backend == "" {
		config.Backend = BackendFunction
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that the backend is known and, for function, that the
// endpoint is an absolute http(s) URL.
func (c *RemoteConfig) Validate() error {
	switch c.Backend {
	case BackendGoogle, BackendMemory:
		return nil
	case BackendFunction:
	default:
		return fmt.Errorf("%w: unknown remote backend %q", common.ErrInvalidConfig, c.Backend)
	}

	if c.Endpoint == "" {
		return fmt.Errorf("%w: remote.endpoint", common.ErrMissingConfig)
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: remote.endpoint %q is not an http(s) URL", common.ErrInvalidConfig, c.Endpoint)
	}
	return nil
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr           string
	APIKey         string
	CertDir        string
	AllowedOrigins []string
	TLSHosts       []string
}

// LoadServerConfig reads server.* keys. The address defaults to :8080 and
// the certificate directory to ~/.config/buildtrack/certs.
func LoadServerConfig(v Getter) *ServerConfig {
	config := &ServerConfig{
		Addr:           v.GetString("server.addr"),
		APIKey:         v.GetString("server.api_key"),
		CertDir:        ExpandPath(v.GetString("server.cert_dir")),
		AllowedOrigins: v.GetStringSlice("server.allowed_origins"),
		TLSHosts:       v.GetStringSlice("server.tls_hosts"),
	}
	if config.Addr == "" {
		config.Addr = ":8080"
	}
	if config.CertDir == "" {
		config.CertDir = ExpandPath("~/.config/buildtrack/certs")
	}
	return config
}
