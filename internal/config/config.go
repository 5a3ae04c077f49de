package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// LibraryDir holds the shadow files: friendly shadows directly under
	// playlists/ and untruncated full dumps under playlists/full/.
	LibraryDir string `toml:"library_dir"`
}

// YouTube contains Remote Source configuration.
type YouTube struct {
	BaseURL string `toml:"base_url"`
	// TokenPath points at a JSON file holding the OAuth token
	// (access_token/refresh_token). The YOUTUBE_OAUTH_TOKEN env var
	// overrides it with a static bearer token.
	TokenPath string `toml:"token_path"`
	Token     string `toml:"-"`
	PageSize  int    `toml:"page_size"`
}

// Index contains companion video index configuration.
type Index struct {
	Enabled bool `toml:"enabled"`
	// Path of the SQLite file; empty means <library_dir>/videos.db.
	Path string `toml:"path"`
}

// Logging contains log output configuration.
type Logging struct {
	Level string `toml:"level"`
	// Format is "console", "json", or "auto" (console on a TTY, json
	// otherwise).
	Format string `toml:"format"`
}

// Config is the top-level shadowlist configuration.
type Config struct {
	Paths   Paths   `toml:"paths"`
	YouTube YouTube `toml:"youtube"`
	Index   Index   `toml:"index"`
	Logging Logging `toml:"logging"`
}

// LibraryDir returns the expanded library directory.
func (c *Config) LibraryDir() string { return c.Paths.LibraryDir }

// PlaylistsDir returns the directory holding friendly shadow files.
func (c *Config) PlaylistsDir() string { return filepath.Join(c.Paths.LibraryDir, "playlists") }

// FullDumpDir returns the directory holding untruncated full dumps.
func (c *Config) FullDumpDir() string { return filepath.Join(c.PlaylistsDir(), "full") }

// IndexPath returns the companion video index location.
func (c *Config) IndexPath() string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	return filepath.Join(c.Paths.LibraryDir, "videos.db")
}

// LockPath returns the lock file guarding mutating runs against each other.
func (c *Config) LockPath() string { return filepath.Join(c.Paths.LibraryDir, ".shadowlist.lock") }

// EnsureDirectories creates the library directory tree.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.PlaylistsDir(), c.FullDumpDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultConfigPath returns the standard config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "shadowlist", "config.toml"), nil
}

// Load reads the config at path, or the default location when path is empty.
// A missing file is not an error: defaults apply. Returns the config, the
// resolved path, and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		resolved = defaultPath
	}
	expanded, err := ExpandPath(resolved)
	if err != nil {
		return "", false, err
	}

	if _, err := os.Stat(expanded); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LibraryDir, err = ExpandPath(c.Paths.LibraryDir); err != nil {
		return err
	}
	if c.YouTube.TokenPath, err = ExpandPath(c.YouTube.TokenPath); err != nil {
		return err
	}
	if c.Index.Path != "" {
		if c.Index.Path, err = ExpandPath(c.Index.Path); err != nil {
			return err
		}
	}
	c.YouTube.BaseURL = strings.TrimRight(strings.TrimSpace(c.YouTube.BaseURL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	if token := strings.TrimSpace(os.Getenv("YOUTUBE_OAUTH_TOKEN")); token != "" {
		c.YouTube.Token = token
	}
	return nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("cannot expand user-relative path %q", path)
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
