// Package config provides configuration parsing and management for the
// directory core.
package config

import (
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Parser errors.
var (
	ErrInvalidYAML       = errors.New("invalid YAML format")
	ErrInvalidDuration   = errors.New("invalid duration format")
	ErrFileNotFound      = errors.New("configuration file not found")
	ErrMissingConfigFile = errors.New("config file path is required")
	ErrMissingOnChange   = errors.New("onChange callback is required")
)

// LoadConfig loads configuration from a file path.
// It reads the file, substitutes environment variables, parses YAML,
// and applies defaults for missing values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}

	return ParseConfig(data)
}

// ParseConfig parses configuration from YAML data.
// It substitutes environment variables and applies defaults for missing values.
func ParseConfig(data []byte) (*Config, error) {
	data = substituteEnvVars(data)

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Join(ErrInvalidYAML, err)
	}

	return config, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment variable values.
func substituteEnvVars(data []byte) []byte {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllFunc(data, func(match []byte) []byte {
		content := string(match[2 : len(match)-1])

		if idx := strings.Index(content, ":-"); idx != -1 {
			varName := content[:idx]
			defaultVal := content[idx+2:]
			if val := os.Getenv(varName); val != "" {
				return []byte(val)
			}
			return []byte(defaultVal)
		}

		return []byte(os.Getenv(content))
	})
}

// UnmarshalYAML decodes ServerConfig, translating its readTimeout and
// writeTimeout fields from duration strings ("30s") since yaml.v3 has
// no built-in support for time.Duration.
func (s *ServerConfig) UnmarshalYAML(node *yaml.Node) error {
	type alias ServerConfig
	aux := struct {
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
		*alias
	}{alias: (*alias)(s)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.ReadTimeout != "" {
		d, err := parseDuration(aux.ReadTimeout)
		if err != nil {
			return errors.Join(ErrInvalidDuration, err)
		}
		s.ReadTimeout = d
	}
	if aux.WriteTimeout != "" {
		d, err := parseDuration(aux.WriteTimeout)
		if err != nil {
			return errors.Join(ErrInvalidDuration, err)
		}
		s.WriteTimeout = d
	}
	return nil
}

// UnmarshalYAML decodes StorageConfig's checkpointInterval duration string.
func (s *StorageConfig) UnmarshalYAML(node *yaml.Node) error {
	type alias StorageConfig
	aux := struct {
		CheckpointInterval string `yaml:"checkpointInterval"`
		*alias
	}{alias: (*alias)(s)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.CheckpointInterval != "" {
		d, err := parseDuration(aux.CheckpointInterval)
		if err != nil {
			return errors.Join(ErrInvalidDuration, err)
		}
		s.CheckpointInterval = d
	}
	return nil
}

// UnmarshalYAML decodes PasswordPolicyConfig's maxAge duration string.
func (p *PasswordPolicyConfig) UnmarshalYAML(node *yaml.Node) error {
	type alias PasswordPolicyConfig
	aux := struct {
		MaxAge string `yaml:"maxAge"`
		*alias
	}{alias: (*alias)(p)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.MaxAge != "" {
		d, err := parseDuration(aux.MaxAge)
		if err != nil {
			return errors.Join(ErrInvalidDuration, err)
		}
		p.MaxAge = d
	}
	return nil
}

// UnmarshalYAML decodes RateLimitConfig's lockoutDuration duration string.
func (r *RateLimitConfig) UnmarshalYAML(node *yaml.Node) error {
	type alias RateLimitConfig
	aux := struct {
		LockoutDuration string `yaml:"lockoutDuration"`
		*alias
	}{alias: (*alias)(r)}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	if aux.LockoutDuration != "" {
		d, err := parseDuration(aux.LockoutDuration)
		if err != nil {
			return errors.Join(ErrInvalidDuration, err)
		}
		r.LockoutDuration = d
	}
	return nil
}

// parseDuration parses a duration string, extending time.ParseDuration
// with a trailing "d" (day) unit, since configuration files commonly
// express password-policy and retention windows in days.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if strings.HasSuffix(s, "d") && !strings.ContainsAny(s[:len(s)-1], "hms") {
		days, err := strconv.ParseFloat(s[:len(s)-1], 64)
		if err != nil {
			return 0, ErrInvalidDuration
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.Join(ErrInvalidDuration, err)
	}
	return d, nil
}

// parseBool parses common truthy/falsy string spellings found in
// environment-substituted configuration values.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true
	default:
		return false
	}
}
