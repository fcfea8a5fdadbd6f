// Package config holds the runtime-tunable thresholds for the trigger,
// tracker and session layers.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from Go duration strings
// ("250ms", "2s") in YAML.
type Duration time.Duration

// UnmarshalYAML parses a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Options holds all tunable thresholds. Zero values mean "use default";
// Default() returns a fully populated set.
type Options struct {
	// RecentEditWindow is how far back an edit on the current line still
	// counts as recent for the edit-prediction gate.
	RecentEditWindow Duration `yaml:"recent_edit_window"`

	// PauseWindow is how long the cursor must rest at a position for the
	// pause booster to fire.
	PauseWindow Duration `yaml:"pause_window"`

	// RejectionCooldown suppresses edit-prediction triggering after an
	// explicit rejection.
	RejectionCooldown Duration `yaml:"rejection_cooldown"`

	// CursorHistory caps the per-document cursor record history.
	CursorHistory int `yaml:"cursor_history"`

	// EditHistory caps the per-document edit record history.
	EditHistory int `yaml:"edit_history"`

	// EditMaxAge is the absolute age past which edit records are purged.
	EditMaxAge Duration `yaml:"edit_max_age"`

	// SessionLog caps the retained suggestion session log.
	SessionLog int `yaml:"session_log"`

	// ResultCap is the maximum number of candidate suggestions requested
	// from the provider per session.
	ResultCap int `yaml:"result_cap"`

	// SnapshotEntries and SnapshotTTL bound the document snapshot arena.
	SnapshotEntries int      `yaml:"snapshot_entries"`
	SnapshotTTL     Duration `yaml:"snapshot_ttl"`

	// SweepInterval is how often closed-document tracker state is swept.
	SweepInterval Duration `yaml:"sweep_interval"`
}

// Default returns the default option set.
func Default() Options {
	return Options{
		RecentEditWindow:  Duration(30 * time.Second),
		PauseWindow:       Duration(2 * time.Second),
		RejectionCooldown: Duration(10 * time.Second),
		CursorHistory:     100,
		EditHistory:       100,
		EditMaxAge:        Duration(5 * time.Minute),
		SessionLog:        5,
		ResultCap:         5,
		SnapshotEntries:   128,
		SnapshotTTL:       Duration(5 * time.Minute),
		SweepInterval:     Duration(time.Minute),
	}
}

// Config is a mutable holder of Options. Reads return a copy so callers can
// never mutate shared state; writes take effect for subsequent reads.
type Config struct {
	mu   sync.RWMutex
	opts Options
}

// New creates a Config seeded with opts, filling unset fields from Default.
func New(opts Options) *Config {
	return &Config{opts: withDefaults(opts)}
}

// Get returns a copy of the current options.
func (c *Config) Get() Options {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// Set replaces the current options, filling unset fields from Default.
func (c *Config) Set(opts Options) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = withDefaults(opts)
}

// Apply merges a partial YAML document into the current options. Fields not
// present in the document keep their current values.
func (c *Config) Apply(raw []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	opts := c.opts
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return fmt.Errorf("applying config: %w", err)
	}
	c.opts = withDefaults(opts)
	return nil
}

// Load reads options from a YAML file, filling unset fields from Default.
func Load(path string) (Options, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("reading config: %w", err)
	}
	var opts Options
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing config: %w", err)
	}
	return withDefaults(opts), nil
}

func withDefaults(opts Options) Options {
	def := Default()
	if opts.RecentEditWindow <= 0 {
		opts.RecentEditWindow = def.RecentEditWindow
	}
	if opts.PauseWindow <= 0 {
		opts.PauseWindow = def.PauseWindow
	}
	if opts.RejectionCooldown <= 0 {
		opts.RejectionCooldown = def.RejectionCooldown
	}
	if opts.CursorHistory <= 0 {
		opts.CursorHistory = def.CursorHistory
	}
	if opts.EditHistory <= 0 {
		opts.EditHistory = def.EditHistory
	}
	if opts.EditMaxAge <= 0 {
		opts.EditMaxAge = def.EditMaxAge
	}
	if opts.SessionLog <= 0 {
		opts.SessionLog = def.SessionLog
	}
	if opts.ResultCap <= 0 {
		opts.ResultCap = def.ResultCap
	}
	if opts.SnapshotEntries <= 0 {
		opts.SnapshotEntries = def.SnapshotEntries
	}
	if opts.SnapshotTTL <= 0 {
		opts.SnapshotTTL = def.SnapshotTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = def.SweepInterval
	}
	return opts
}
