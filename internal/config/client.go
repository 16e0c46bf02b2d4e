package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Client is the trackerctl config file.
type Client struct {
	BaseURL  string        `yaml:"base_url"`
	Token    string        `yaml:"token"`
	PageSize int           `yaml:"page_size"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ClientFlags are command-line overrides; zero values mean "not set".
type ClientFlags struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
}

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second
)

func LoadClient(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var c Client
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	c.BaseURL = expandEnv(c.BaseURL)
	c.Token = expandEnv(c.Token)
	return &c, nil
}

// Resolve layers flags over the file and fills defaults.
func (c *Client) Resolve(f ClientFlags) Client {
	out := *c
	if f.BaseURL != "" {
		out.BaseURL = f.BaseURL
	}
	if f.Token != "" {
		out.Token = f.Token
	}
	if f.PageSize > 0 {
		out.PageSize = f.PageSize
	}
	if f.Timeout > 0 {
		out.Timeout = f.Timeout
	}

	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	out.BaseURL = strings.TrimRight(out.BaseURL, "/")
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}

func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	return os.ExpandEnv(s)
}
