// ABOUTME: Settings loading with global + project config deep merge
// ABOUTME: YAML or TOML configuration for tick timing, rule thresholds, broadcast, and badge

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mauromedda/intentd/internal/intent"
	pilog "github.com/mauromedda/intentd/internal/log"
)

// Settings holds the merged configuration. Zero fields mean "use the default".
type Settings struct {
	Interval      time.Duration     `yaml:"interval,omitempty" toml:"interval" validate:"omitempty,min=100ms"`
	IdleThreshold time.Duration     `yaml:"idle_threshold,omitempty" toml:"idle_threshold" validate:"gte=0"`
	LogLevel      string            `yaml:"log_level,omitempty" toml:"log_level" validate:"loglevel"`
	Thresholds    ThresholdSettings `yaml:"thresholds,omitempty" toml:"thresholds"`
	Broadcast     BroadcastSettings `yaml:"broadcast,omitempty" toml:"broadcast"`
	Badge         BadgeSettings     `yaml:"badge,omitempty" toml:"badge"`
}

// ThresholdSettings overrides individual rule constants.
type ThresholdSettings struct {
	UndoBurst            int     `yaml:"undo_burst,omitempty" toml:"undo_burst" validate:"gte=0"`
	CommentRatio         float64 `yaml:"comment_ratio,omitempty" toml:"comment_ratio" validate:"gte=0,lte=1"`
	RewriteMinChars      int     `yaml:"rewrite_min_chars,omitempty" toml:"rewrite_min_chars" validate:"gte=0"`
	RewriteRatio         float64 `yaml:"rewrite_ratio,omitempty" toml:"rewrite_ratio" validate:"gte=0,lte=1"`
	RenameBurst          int     `yaml:"rename_burst,omitempty" toml:"rename_burst" validate:"gte=0"`
	GrowthMinChars       int     `yaml:"growth_min_chars,omitempty" toml:"growth_min_chars" validate:"gte=0"`
	GrowthFactor         int     `yaml:"growth_factor,omitempty" toml:"growth_factor" validate:"gte=0"`
	CursorBrowseMoves    int     `yaml:"cursor_browse_moves,omitempty" toml:"cursor_browse_moves" validate:"gte=0"`
	CursorBrowseMaxChars int     `yaml:"cursor_browse_max_chars,omitempty" toml:"cursor_browse_max_chars" validate:"gte=0"`
}

// BroadcastSettings configures forwarding of intent changes to the realtime layer.
type BroadcastSettings struct {
	Command string        `yaml:"command,omitempty" toml:"command"` // shell command receiving each update on stdin
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout" validate:"gte=0"`
	Listen  string        `yaml:"listen,omitempty" toml:"listen" validate:"omitempty,hostname_port"` // websocket hub address, e.g. 127.0.0.1:5000
	Origins []string      `yaml:"origins,omitempty" toml:"origins"`                                    // allowed browser origins for the hub
}

// BadgeSettings configures the rendered intent badge.
type BadgeSettings struct {
	Compact bool `yaml:"compact,omitempty" toml:"compact"`
	Width   int  `yaml:"width,omitempty" toml:"width" validate:"gte=0"` // pad to this many cells when > 0
}

// Load reads and merges global and project-local settings.
// Project settings override global settings.
func Load(projectRoot string) (*Settings, error) {
	return LoadFiles(Files(projectRoot)...)
}

// LoadFiles merges the given files in order; later files win. Missing files
// are skipped. The result has env vars expanded and is validated.
func LoadFiles(paths ...string) (*Settings, error) {
	merged := &Settings{}
	for _, p := range paths {
		s, err := loadFile(p)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		pilog.Debug("config: loaded %s", p)
		merged = merge(merged, s)
	}

	ResolveEnvVarsWith(merged, dotenvLookup(paths))
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return merged, nil
}

// loadFile reads Settings from a YAML or TOML file, chosen by extension.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Settings
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return &s, nil
}

// merge deep-merges project settings onto global settings.
// Non-zero project values override global values.
func merge(global, project *Settings) *Settings {
	if global == nil {
		global = &Settings{}
	}
	if project == nil {
		return global
	}

	result := *global

	if project.Interval != 0 {
		result.Interval = project.Interval
	}
	if project.IdleThreshold != 0 {
		result.IdleThreshold = project.IdleThreshold
	}
	if project.LogLevel != "" {
		result.LogLevel = project.LogLevel
	}

	pt, rt := project.Thresholds, &result.Thresholds
	overrideInt(&rt.UndoBurst, pt.UndoBurst)
	overrideFloat(&rt.CommentRatio, pt.CommentRatio)
	overrideInt(&rt.RewriteMinChars, pt.RewriteMinChars)
	overrideFloat(&rt.RewriteRatio, pt.RewriteRatio)
	overrideInt(&rt.RenameBurst, pt.RenameBurst)
	overrideInt(&rt.GrowthMinChars, pt.GrowthMinChars)
	overrideInt(&rt.GrowthFactor, pt.GrowthFactor)
	overrideInt(&rt.CursorBrowseMoves, pt.CursorBrowseMoves)
	overrideInt(&rt.CursorBrowseMaxChars, pt.CursorBrowseMaxChars)

	if project.Broadcast.Command != "" {
		result.Broadcast.Command = project.Broadcast.Command
	}
	if project.Broadcast.Timeout != 0 {
		result.Broadcast.Timeout = project.Broadcast.Timeout
	}
	if project.Broadcast.Listen != "" {
		result.Broadcast.Listen = project.Broadcast.Listen
	}
	if len(project.Broadcast.Origins) > 0 {
		result.Broadcast.Origins = project.Broadcast.Origins
	}

	if project.Badge.Compact {
		result.Badge.Compact = true
	}
	if project.Badge.Width != 0 {
		result.Badge.Width = project.Badge.Width
	}

	return &result
}

func overrideInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

func overrideFloat(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

// Validate rejects values the engine cannot use.
func (s *Settings) Validate() error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describe(fe))
	}
	sort.Strings(problems)
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

// EngineThresholds fills the rule table from settings, defaulting unset fields.
func (s *Settings) EngineThresholds() intent.Thresholds {
	t := intent.DefaultThresholds()
	st := s.Thresholds
	overrideInt(&t.UndoBurst, st.UndoBurst)
	overrideFloat(&t.CommentRatio, st.CommentRatio)
	overrideInt(&t.RewriteMinChars, st.RewriteMinChars)
	overrideFloat(&t.RewriteRatio, st.RewriteRatio)
	overrideInt(&t.RenameBurst, st.RenameBurst)
	overrideInt(&t.GrowthMinChars, st.GrowthMinChars)
	overrideInt(&t.GrowthFactor, st.GrowthFactor)
	overrideInt(&t.CursorBrowseMoves, st.CursorBrowseMoves)
	overrideInt(&t.CursorBrowseMaxChars, st.CursorBrowseMaxChars)
	if s.IdleThreshold > 0 {
		t.IdleThreshold = s.IdleThreshold
	}
	return t
}

// EngineInterval returns the tick period, defaulting when unset.
func (s *Settings) EngineInterval() time.Duration {
	if s.Interval > 0 {
		return s.Interval
	}
	return intent.DefaultInterval
}

// BroadcastTimeout returns the broadcast command timeout, 5s when unset.
func (s *Settings) BroadcastTimeout() time.Duration {
	if s.Broadcast.Timeout > 0 {
		return s.Broadcast.Timeout
	}
	return 5 * time.Second
}
