package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/martinsuchenak/thingprobe/internal/model"
	"github.com/paularlott/cli"
)

const (
	defaultListenAddr = "127.0.0.1:8080"
	defaultTimeout    = 30 * time.Second
)

// Config holds the application configuration
type Config struct {
	Host         string
	Port         string
	Timeout      time.Duration
	ListenAddr   string
	APIAuthToken string
	MCPAuthToken string
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Command-line parameters (passed as opts)
// 2. Environment variables (a .env file is merged into the environment by main)
// 3. Default values
//
// Host and port have no default; when both sources leave them empty the
// caller asks for them interactively.
func Load(opts *Config) *Config {
	cfg := &Config{
		Host:         os.Getenv("THINGPROBE_HOST"),
		Port:         os.Getenv("THINGPROBE_PORT"),
		Timeout:      envSeconds("THINGPROBE_TIMEOUT", defaultTimeout),
		ListenAddr:   coalesce(os.Getenv("THINGPROBE_LISTEN_ADDR"), defaultListenAddr),
		APIAuthToken: os.Getenv("THINGPROBE_API_TOKEN"),
		MCPAuthToken: os.Getenv("THINGPROBE_MCP_TOKEN"),
	}

	if opts != nil {
		cfg.Host = coalesce(opts.Host, cfg.Host)
		cfg.Port = coalesce(opts.Port, cfg.Port)
		cfg.ListenAddr = coalesce(opts.ListenAddr, cfg.ListenAddr)
		cfg.APIAuthToken = coalesce(opts.APIAuthToken, cfg.APIAuthToken)
		cfg.MCPAuthToken = coalesce(opts.MCPAuthToken, cfg.MCPAuthToken)
		if opts.Timeout > 0 {
			cfg.Timeout = opts.Timeout
		}
	}

	return cfg
}

// ErrUnprotectedListen means the server would relay probes for any caller
// reachable over the network
var ErrUnprotectedListen = errors.New("non-loopback listen address requires both --api-token and --mcp-token")

// ValidateServer refuses a listen address outside loopback unless both the
// API and MCP endpoints require a token.
func (c *Config) ValidateServer() error {
	if IsLoopback(c.ListenAddr) {
		return nil
	}
	if !c.IsAPIAuthEnabled() || !c.IsMCPEnabled() {
		return fmt.Errorf("%w: %s", ErrUnprotectedListen, c.ListenAddr)
	}
	return nil
}

// IsLoopback reports whether a listen address binds only the loopback
// interface. An empty host binds every interface.
func IsLoopback(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Target returns the configured host and port
func (c *Config) Target() model.Target {
	return model.Target{Host: c.Host, Port: c.Port}
}

// HasTarget reports whether both host and port are known
func (c *Config) HasTarget() bool {
	return c.Host != "" && c.Port != ""
}

// IsAPIAuthEnabled checks if the HTTP API requires a bearer token
func (c *Config) IsAPIAuthEnabled() bool {
	return c.APIAuthToken != ""
}

// IsMCPEnabled checks if MCP authentication is configured
func (c *Config) IsMCPEnabled() bool {
	return c.MCPAuthToken != ""
}

func (c *Config) String() string {
	return fmt.Sprintf("target=%s timeout=%s listen=%s", c.Target(), c.Timeout, c.ListenAddr)
}

// ProbeFlags are the flags shared by commands that talk to a device
func ProbeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "host",
			Usage: "Device IP or hostname (env THINGPROBE_HOST, prompted when unset)",
		},
		&cli.StringFlag{
			Name:  "port",
			Usage: "Device port (env THINGPROBE_PORT, prompted when unset)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Request timeout in seconds (env THINGPROBE_TIMEOUT, default 30)",
		},
	}
}

// ProbeOptions reads ProbeFlags from a command
func ProbeOptions(cmd *cli.Command) *Config {
	return &Config{
		Host:    cmd.GetString("host"),
		Port:    cmd.GetString("port"),
		Timeout: time.Duration(cmd.GetInt("timeout")) * time.Second,
	}
}

// GetFlags returns the flags of the server command
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "listen-addr",
			Usage: "Server listen address (env THINGPROBE_LISTEN_ADDR, default 127.0.0.1:8080; other addresses need both tokens)",
		},
		&cli.StringFlag{
			Name:  "api-token",
			Usage: "Bearer token required on /api/ (env THINGPROBE_API_TOKEN)",
		},
		&cli.StringFlag{
			Name:  "mcp-token",
			Usage: "Bearer token required on /mcp (env THINGPROBE_MCP_TOKEN)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Per-probe request timeout in seconds (env THINGPROBE_TIMEOUT, default 30)",
		},
	}
}

// ServerOptions reads GetFlags from a command
func ServerOptions(cmd *cli.Command) *Config {
	return &Config{
		ListenAddr:   cmd.GetString("listen-addr"),
		APIAuthToken: cmd.GetString("api-token"),
		MCPAuthToken: cmd.GetString("mcp-token"),
		Timeout:      time.Duration(cmd.GetInt("timeout")) * time.Second,
	}
}

// envSeconds reads a whole number of seconds from key
func envSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// coalesce returns the first non-empty string value
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
