package dupefilehash

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-ini/ini"
)

// Config is the dfhdupes configuration, an INI file with [filehash], [output],
// [verbose], [performance] and [scan] sections
type Config struct {
	configPath string
	ini        *ini.File
}

// HashConfig selects the digest algorithm
type HashConfig struct {
	Default string // sha256, sha512_256 or blake3
}

// OutputConfig selects the report format and how often scan progress is logged
type OutputConfig struct {
	Format           string        // human, json or fdupes
	ProgressInterval time.Duration // 0 disables progress lines
}

// VerboseConfig holds logging settings
type VerboseConfig struct {
	Level int    // 0=quiet, 1=basic, 2=detailed, 3=trace
	Debug string // comma-separated debug flags
}

// PerformanceConfig tunes hashing throughput
type PerformanceConfig struct {
	HashWorkers int    // concurrent index workers
	HashBuffer  string // read buffer per hash, e.g. "64K"
}

// ScanConfig controls which files the walker indexes
type ScanConfig struct {
	MinSize    int64  // files smaller than this are not indexed
	IgnoreFile string // optional file of regexp ignore patterns
}

// AllConfig groups every section
type AllConfig struct {
	Hash        *HashConfig
	Output      *OutputConfig
	Verbose     *VerboseConfig
	Performance *PerformanceConfig
	Scan        *ScanConfig
}

// configKey is one setting: its section and default value. Keys are unique
// across sections so overrides can name them without a section.
type configKey struct {
	section string
	name    string
	def     string
}

var configKeys = []configKey{
	{"filehash", "default", DefaultHashAlgorithm},
	{"output", "format", DefaultOutputFormat},
	{"output", "progress_interval", DefaultProgressInterval},
	{"verbose", "level", "0"},
	{"verbose", "debug", ""},
	{"performance", "hash_workers", strconv.Itoa(DefaultHashWorkers)},
	{"performance", "hash_buffer", DefaultHashBuffer},
	{"scan", "min_size", "0"},
	{"scan", "ignore_file", ""},
}

func findConfigKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

// DefaultConfig returns an in-memory configuration holding the defaults
func DefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty()}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads configPath. An empty path gives the defaults without
// touching disk; a missing file is created holding the defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.configPath = configPath
		if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		VerboseLog(1, "wrote default configuration to %s", configPath)
		return cfg, nil
	}

	iniFile, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return &Config{configPath: configPath, ini: iniFile}, nil
}

func (c *Config) setDefaults() {
	for _, k := range configKeys {
		c.ini.Section(k.section).Key(k.name).SetValue(k.def)
	}
}

// Path returns the file backing this configuration, or "" for in-memory config
func (c *Config) Path() string {
	return c.configPath
}

// value returns the configured string for a key, or its default when the key
// or its section is absent
func (c *Config) value(name string) string {
	k, _ := findConfigKey(name)
	if !c.ini.HasSection(k.section) || !c.ini.Section(k.section).HasKey(name) {
		return k.def
	}
	return c.ini.Section(k.section).Key(name).String()
}

func (c *Config) intValue(name string) int {
	k, _ := findConfigKey(name)
	def, _ := strconv.Atoi(k.def)
	if !c.ini.HasSection(k.section) {
		return def
	}
	return c.ini.Section(k.section).Key(name).MustInt(def)
}

// GetHashConfig returns the hash configuration
func (c *Config) GetHashConfig() *HashConfig {
	return &HashConfig{Default: c.value("default")}
}

// GetOutputConfig returns the output configuration. An unparsable
// progress_interval reads as 0; Validate reports it.
func (c *Config) GetOutputConfig() *OutputConfig {
	oc := &OutputConfig{Format: c.value("format")}
	if interval, err := ParseProgressInterval(c.value("progress_interval")); err == nil {
		oc.ProgressInterval = interval
	}
	return oc
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	return &VerboseConfig{
		Level: c.intValue("level"),
		Debug: c.value("debug"),
	}
}

// GetPerformanceConfig returns the performance configuration
func (c *Config) GetPerformanceConfig() *PerformanceConfig {
	pc := &PerformanceConfig{
		HashWorkers: c.intValue("hash_workers"),
		HashBuffer:  c.value("hash_buffer"),
	}
	if pc.HashBuffer == "" {
		pc.HashBuffer = DefaultHashBuffer
	}
	return pc
}

// GetScanConfig returns the scan configuration. An unparsable min_size reads
// as 0; Validate reports it.
func (c *Config) GetScanConfig() *ScanConfig {
	sc := &ScanConfig{IgnoreFile: c.value("ignore_file")}
	if minSize, err := ParseHumanSize64(c.value("min_size")); err == nil {
		sc.MinSize = minSize
	}
	return sc
}

// GetAllConfig returns every section
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Hash:        c.GetHashConfig(),
		Output:      c.GetOutputConfig(),
		Verbose:     c.GetVerboseConfig(),
		Performance: c.GetPerformanceConfig(),
		Scan:        c.GetScanConfig(),
	}
}

// Validate checks every configured value
func (c *Config) Validate() error {
	all := c.GetAllConfig()
	if err := ValidateHashAlgorithm(all.Hash.Default); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if _, err := ParseProgressInterval(c.value("progress_interval")); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	if err := ValidateHashWorkers(all.Performance.HashWorkers); err != nil {
		return err
	}
	if _, err := ParseHumanSize(all.Performance.HashBuffer); err != nil {
		return fmt.Errorf("invalid hash_buffer: %w", err)
	}
	if _, err := ParseHumanSize64(c.value("min_size")); err != nil {
		return fmt.Errorf("invalid min_size: %w", err)
	}
	return nil
}

// Save writes the configuration to its backing file
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("config has no backing file")
	}
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides sets values from "key:value" strings such as "default:blake3",
// "format:json", "level:2" or "min_size:4K". Values are checked by Validate.
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		name, value, ok := strings.Cut(override, ":")
		if !ok {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}
		name = strings.TrimSpace(name)

		k, found := findConfigKey(name)
		if !found {
			names := make([]string, 0, len(configKeys))
			for _, k := range configKeys {
				names = append(names, k.name)
			}
			return fmt.Errorf("unsupported override key '%s' (supported: %s)", name, strings.Join(names, ", "))
		}
		c.ini.Section(k.section).Key(k.name).SetValue(strings.TrimSpace(value))
	}
	return nil
}

// ValidateHashAlgorithm checks that algorithm names a supported digest
func ValidateHashAlgorithm(algorithm string) error {
	if _, err := GetHashAlgorithm(algorithm); err != nil {
		return fmt.Errorf("%w (supported: sha256, sha512_256, blake3)", err)
	}
	return nil
}

// ValidateOutputFormat checks that format is a known report format
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatHuman, FormatJSON, FormatFdupes:
		return nil
	}
	return fmt.Errorf("unsupported output format: %s (supported: human, json, fdupes)", format)
}

// ParseProgressInterval parses a duration such as "10s" or "500ms". A bare
// number is taken as seconds and "0" turns progress lines off.
func ParseProgressInterval(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if seconds, err := strconv.Atoi(value); err == nil {
		value = strconv.Itoa(seconds) + "s"
	}
	interval, err := time.ParseDuration(value)
	if err != nil || interval < 0 {
		return 0, fmt.Errorf("invalid progress_interval: %q", value)
	}
	return interval, nil
}

// ValidateVerboseLevel checks 0 <= level <= 3
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateHashWorkers checks 1 <= workers <= 64
func ValidateHashWorkers(workers int) error {
	if workers < 1 || workers > 64 {
		return fmt.Errorf("hash_workers must be between 1 and 64, got: %d", workers)
	}
	return nil
}
