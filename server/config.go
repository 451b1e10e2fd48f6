package server

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// DefaultWebAddress is the default address of the HTTP server.
	DefaultWebAddress = "localhost:8000"

	// DefaultSnapshotName is the snapshot the server restores on start and
	// saves on shutdown.
	DefaultSnapshotName = "world"
)

type Config struct {
	Server  WebConfig   `toml:"server"`
	Logging LogConfig   `toml:"logging"`
	Store   StoreConfig `toml:"store"`
}

type WebConfig struct {
	Address       string   `toml:"address"`
	CORSOrigins   []string `toml:"cors_origins"`
	ShutdownDelay int      `toml:"shutdown_delay"` // seconds
}

type StoreConfig struct {
	Path     string `toml:"path"` // Bolt file; empty keeps snapshots in memory
	Snapshot string `toml:"snapshot"`
	DumpFile string `toml:"dump_file"` // binary World written on shutdown
	Demo     bool   `toml:"demo"`      // seed the sample world when nothing is restored
}

func DefaultConfig() *Config {
	return &Config{
		Server: WebConfig{
			Address:       DefaultWebAddress,
			CORSOrigins:   []string{"*"},
			ShutdownDelay: 5,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Snapshot: DefaultSnapshotName,
		},
	}
}

// LoadConfig reads a TOML file over the defaults. An empty path returns the
// defaults. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()
	if path == "" {
		return c, nil
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := c.convertPathsToAbsolute(path); err != nil {
		return nil, err
	}
	if c.Store.Snapshot == "" {
		c.Store.Snapshot = DefaultSnapshotName
	}
	return c, nil
}

// Paths in the config file are relative to the file's own directory.
func (c *Config) convertPathsToAbsolute(configPath string) error {
	configDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return fmt.Errorf("config %s: %w", configPath, err)
	}
	for _, p := range []*string{&c.Logging.Logfile, &c.Store.Path, &c.Store.DumpFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	return nil
}
