package quill

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	valueSource   = "value"
	envSource     = "env"
	fileSource    = "file"
	keyringSource = "keyring"

	// DefaultPrefix is the conventional name for an application's single vault.
	DefaultPrefix = "default"
)

// Settings is the declared configuration for all applications, usually
// loaded from a YAML file.
type Settings struct {
	Apps map[string]AppSettings `yaml:"apps"`
}

// AppSettings declares an application's environments and its vaults, one per
// namespace prefix.
type AppSettings struct {
	// Environments the audit sweep iterates for this application.
	Environments []string `yaml:"environments,omitempty"`

	// Vaults maps a namespace prefix to its vault settings.
	Vaults map[string]VaultSettings `yaml:"vaults"`
}

// VaultSettings declares how one namespace stores its secrets.
type VaultSettings struct {
	Cipher      string         `yaml:"cipher"`
	StorageRoot string         `yaml:"storage_root"`
	Password    PasswordSource `yaml:"password,omitempty"`
}

// PasswordSource declares where encryption password material comes from.
// Type must be one of: "value", "env", "file", "keyring".
type PasswordSource struct {
	Type string `yaml:"type"`
	// Literal password (for "value" type)
	Value string `yaml:"value,omitempty"`
	// Environment variable name (for "env" type)
	Name string `yaml:"name,omitempty"`
	// Path to the password file (for "file" type)
	Path string `yaml:"path,omitempty"`
	// Keyring service and user (for "keyring" type)
	Service string `yaml:"service,omitempty"`
	User    string `yaml:"user,omitempty"`
}

// Overrides carries invocation-supplied values that take precedence over the
// declared settings, field by field. Zero values mean "use the declaration".
type Overrides struct {
	Cipher      string
	StorageRoot string
	Prefix      string
	Password    string
}

// ResolvedConfig is the fully-merged configuration one invocation operates
// under. It is built once by Resolve and never mutated afterwards.
type ResolvedConfig struct {
	AppID       string
	Prefix      string
	StorageRoot string

	cipher   Cipher
	password []byte
}

func (c ResolvedConfig) Cipher() Cipher {
	return c.cipher
}

// LoadSettings reads the declared settings from a YAML file.
func LoadSettings(path string) (Settings, error) {
	expanded, err := expandPath(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to expand settings path %s: %w", path, err)
	}

	data, err := os.ReadFile(filepath.Clean(expanded))
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}

	return LoadSettingsFromBytes(data)
}

// LoadSettingsFromBytes parses declared settings from YAML bytes.
func LoadSettingsFromBytes(data []byte) (Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes the declared settings to a YAML file, creating parent
// directories as needed.
func SaveSettings(settings Settings, path string) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand settings path %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(expanded), 0750); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(expanded, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Resolve merges the declared settings for (appID, prefix) with the supplied
// overrides and produces the configuration the invocation runs under.
//
// Prefix selection: an explicit prefix (override or argument) must be
// declared; when no prefix is supplied and the application declares exactly
// one vault, that vault is used; with multiple vaults a prefix is required.
func Resolve(settings Settings, appID, prefix string, overrides Overrides) (ResolvedConfig, error) {
	app, exists := settings.Apps[appID]
	if !exists || len(app.Vaults) == 0 {
		return ResolvedConfig{}, fmt.Errorf("%w: app %q", ErrNoVaultsConfigured, appID)
	}

	if overrides.Prefix != "" {
		prefix = overrides.Prefix
	}
	if prefix == "" {
		if len(app.Vaults) > 1 {
			return ResolvedConfig{}, fmt.Errorf("%w: app %q declares %d vaults",
				ErrNoPrefixProvided, appID, len(app.Vaults))
		}
		for declared := range app.Vaults {
			prefix = declared
		}
	}

	declared, exists := app.Vaults[prefix]
	if !exists {
		return ResolvedConfig{}, fmt.Errorf("%w: %q", ErrNoConfigurationForPrefix, prefix)
	}

	cipherName := declared.Cipher
	if overrides.Cipher != "" {
		cipherName = overrides.Cipher
	}
	cipher, err := CipherNamed(cipherName)
	if err != nil {
		return ResolvedConfig{}, err
	}

	storageRoot := declared.StorageRoot
	if overrides.StorageRoot != "" {
		storageRoot = overrides.StorageRoot
	}
	storageRoot, err = expandPath(storageRoot)
	if err != nil {
		return ResolvedConfig{}, fmt.Errorf("failed to expand storage root: %w", err)
	}

	source := declared.Password
	if overrides.Password != "" {
		source = PasswordSource{Type: valueSource, Value: overrides.Password}
	}
	password, err := resolvePassword(source, cipher)
	if err != nil {
		return ResolvedConfig{}, err
	}

	return ResolvedConfig{
		AppID:       appID,
		Prefix:      prefix,
		StorageRoot: storageRoot,
		cipher:      cipher,
		password:    password,
	}, nil
}

// resolvePassword retrieves the password material a source declares. The
// plaintext cipher needs none; every other cipher requires a non-empty
// password.
func resolvePassword(source PasswordSource, cipher Cipher) ([]byte, error) {
	var password string

	switch source.Type {
	case "":
		if !cipher.Plaintext() {
			return nil, fmt.Errorf("%w: cipher %q requires a password source",
				ErrUnknownPasswordSource, cipher.Name())
		}
		return nil, nil
	case valueSource:
		password = source.Value
	case envSource:
		password = os.Getenv(source.Name)
		if password == "" {
			return nil, fmt.Errorf("environment variable %s is not set or empty", source.Name)
		}
	case fileSource:
		expanded, err := expandPath(source.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand password file path %s: %w", source.Path, err)
		}
		data, err := os.ReadFile(filepath.Clean(expanded))
		if err != nil {
			return nil, fmt.Errorf("failed to read password file %s: %w", expanded, err)
		}
		password = strings.TrimSpace(string(data))
	case keyringSource:
		value, err := keyring.Get(source.Service, source.User)
		if err != nil {
			return nil, fmt.Errorf("failed to read password from keyring (%s/%s): %w",
				source.Service, source.User, err)
		}
		password = value
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPasswordSource, source.Type)
	}

	if password == "" && !cipher.Plaintext() {
		return nil, fmt.Errorf("empty password resolved for cipher %q", cipher.Name())
	}

	return []byte(password), nil
}
