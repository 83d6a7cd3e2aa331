package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	baseCfgPath = "packard/config.toml"

	DefaultCount uint32 = 8
	DefaultSkip  uint32 = 0
)

var (
	ErrNoListSelected = errors.New("no list selected, set selected_list in the config or pass --selected-list")
	ErrUnknownList    = errors.New("selected list is not defined in the config")
)

type Config struct {
	Count        *uint32             `toml:"count"`
	SkipAmount   *uint32             `toml:"skip_amount"`
	SelectedList string              `toml:"selected_list"`
	Lists        map[string][]string `toml:"lists"`        // List name to ordered feed URLs
	Timeout      Duration            `toml:"timeout"`      // Per-feed fetch timeout, zero means none
	UserAgent    string              `toml:"user_agent"`   // Sent with every feed request
	Filters      map[string]Filter   `toml:"filters"`      // Named filters that can be referenced by lists
	ListFilters  map[string][]string `toml:"list_filters"` // List name to filter names applied in order
}

// Filter defines rules for filtering feed items
type Filter struct {
	MinLength         int      `toml:"min_length"`         // Minimum character count (0 = no limit)
	MinWords          int      `toml:"min_words"`          // Minimum word count (0 = no limit)
	ExcludePatterns   []string `toml:"exclude_patterns"`   // Regex patterns to exclude
	RequireParagraphs bool     `toml:"require_paragraphs"` // Must have multiple lines/paragraphs
}

// Duration is a time.Duration written as a Go duration string, e.g. "30s"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", text)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Overrides holds values given on the command line. Nil or empty means not set.
type Overrides struct {
	Count        *uint32
	SkipAmount   *uint32
	SelectedList string
	Timeout      *time.Duration
}

// Params are the values a single run works with after precedence is applied
type Params struct {
	Count     uint32
	Skip      uint32
	List      string
	Sources   []string
	Filters   []string
	Timeout   time.Duration
	UserAgent string
}

// Resolve merges command line overrides over the config file over built-in defaults
func (c Config) Resolve(o Overrides) (Params, error) {
	p := Params{
		Count:     DefaultCount,
		Skip:      DefaultSkip,
		Timeout:   c.Timeout.Duration,
		UserAgent: c.UserAgent,
	}

	switch {
	case o.Count != nil:
		p.Count = *o.Count
	case c.Count != nil:
		p.Count = *c.Count
	}

	switch {
	case o.SkipAmount != nil:
		p.Skip = *o.SkipAmount
	case c.SkipAmount != nil:
		p.Skip = *c.SkipAmount
	}

	if o.Timeout != nil {
		p.Timeout = *o.Timeout
	}

	p.List = c.SelectedList
	if o.SelectedList != "" {
		p.List = o.SelectedList
	}
	if p.List == "" {
		return p, ErrNoListSelected
	}

	sources, ok := c.Lists[p.List]
	if !ok {
		return p, fmt.Errorf("%w: '%s'", ErrUnknownList, p.List)
	}
	p.Sources = append([]string(nil), sources...)
	p.Filters = append([]string(nil), c.ListFilters[p.List]...)

	return p, nil
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	slog.Info("config written", "at", cfgPath)
	return nil
}

func Default() Config {
	count, skip := DefaultCount, DefaultSkip
	return Config{
		Count:      &count,
		SkipAmount: &skip,
		Lists:      map[string][]string{},
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}
