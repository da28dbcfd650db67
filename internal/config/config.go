// Package config loads the optional flrload.yaml project file.
//
// Every setting in the file is a default: command-line flags and
// environment variables override it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/flrload/pkg/flrload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AppName        string `yaml:"application_name,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type ProjectConfig struct {
	Connection ConnectionConfig  `yaml:"connection"`
	Source     string            `yaml:"source"`
	LayoutFile string            `yaml:"layout_file"`
	BatchSize  int               `yaml:"batch_size"`
	Validate   bool              `yaml:"validate"`
	Timeout    string            `yaml:"timeout"`
	Tables     map[string]string `yaml:"tables"`
}

const ConfigFileName = "flrload.yaml"

// Load reads ConfigFileName from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates the config file at path. A relative
// layout_file is resolved against the directory of path.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.LayoutFile != "" && !filepath.IsAbs(cfg.LayoutFile) {
		cfg.LayoutFile = filepath.Join(filepath.Dir(path), cfg.LayoutFile)
	}
	return &cfg, nil
}

func (c *ProjectConfig) validate() error {
	var errs []error
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch_size cannot be negative: %w", flrload.ErrInvalidConfig))
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseAuthMethod(c.Connection.AuthMethod); err != nil {
		errs = append(errs, err)
	}
	for rt, table := range c.Tables {
		if strings.TrimSpace(table) == "" {
			errs = append(errs, fmt.Errorf("tables.%s is empty: %w", rt, flrload.ErrInvalidConfig))
		}
	}
	return errors.Join(errs...)
}

// TimeoutDuration parses Timeout. An empty value yields zero.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, flrload.ErrInvalidConfig)
	}
	return d, nil
}

// TableMap converts Tables to record-type keys.
func (c *ProjectConfig) TableMap() map[flrload.RecordType]string {
	if len(c.Tables) == 0 {
		return nil
	}
	out := make(map[flrload.RecordType]string, len(c.Tables))
	for rt, table := range c.Tables {
		out[flrload.RecordType(rt)] = table
	}
	return out
}

// ParseAuthMethod maps the auth_method spelling to an AuthMethod.
// The empty string selects standard password authentication.
func ParseAuthMethod(s string) (flrload.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return flrload.AuthMethodStandard, nil
	case "aws", "aws_iam", "aws-iam":
		return flrload.AuthMethodAWSIAM, nil
	case "google", "google_iam", "google-iam", "gcp":
		return flrload.AuthMethodGoogleIAM, nil
	case "azure", "azure_entra_id", "entra", "entra-id":
		return flrload.AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("unknown auth_method %q: %w", s, flrload.ErrInvalidConfig)
	}
}
