package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".webcrawler"

// ErrConfigNotFound is returned when the configuration file does not
// exist. Callers decide whether that is fatal based on whether the path
// was given explicitly.
var ErrConfigNotFound = errors.New("configuration file not found")

// DomainConfig holds per-domain crawl overrides.
type DomainConfig struct {
	// Delay overrides the politeness base delay for this domain.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Headers are extra HTTP headers to send with requests to this
	// domain, e.g. a session cookie for content behind a login.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// File represents the structure of the .webcrawler configuration file.
type File struct {
	// Domains maps lowercase host names to their overrides.
	Domains map[string]DomainConfig `yaml:"domains,omitempty"`

	// Defaults is applied to every domain unless overridden.
	Defaults DomainConfig `yaml:"defaults,omitempty"`
}

// LoadConfigFile loads per-domain overrides from a YAML file.
// Returns ErrConfigNotFound if the file does not exist.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Domains == nil {
		f.Domains = make(map[string]DomainConfig)
	}
	return &f, nil
}

// FindConfigFile searches for the configuration file:
//  1. the explicit path, if given
//  2. .webcrawler in the current directory
//  3. .webcrawler in the user's home directory
//
// Returns "" if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// GetDomainConfig returns the effective configuration for a domain,
// merging the domain-specific section over the defaults.
func (f *File) GetDomainConfig(domain string) DomainConfig {
	result := f.Defaults

	dc, ok := f.Domains[domain]
	if !ok {
		return result
	}
	if dc.Delay != 0 {
		result.Delay = dc.Delay
	}
	if len(dc.Headers) > 0 {
		// Copy before merging so the shared defaults map stays untouched.
		merged := make(map[string]string, len(result.Headers)+len(dc.Headers))
		for k, v := range result.Headers {
			merged[k] = v
		}
		for k, v := range dc.Headers {
			merged[k] = v
		}
		result.Headers = merged
	}
	return result
}

// DomainDelays flattens the file into the delay-override map the
// throttle consumes. Domains inheriting the global delay are omitted.
func (f *File) DomainDelays() map[string]time.Duration {
	delays := make(map[string]time.Duration)
	for domain := range f.Domains {
		if dc := f.GetDomainConfig(domain); dc.Delay != 0 {
			delays[domain] = dc.Delay
		}
	}
	return delays
}

// DomainHeaders flattens the file into the per-domain header map the
// HTTP fetcher consumes.
func (f *File) DomainHeaders() map[string]map[string]string {
	headers := make(map[string]map[string]string)
	for domain := range f.Domains {
		if dc := f.GetDomainConfig(domain); len(dc.Headers) > 0 {
			headers[domain] = dc.Headers
		}
	}
	return headers
}
