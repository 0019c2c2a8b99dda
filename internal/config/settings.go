package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/taskrank/internal/scoring"
)

// DefaultSettingsPath is the config file read when --config is not given.
const DefaultSettingsPath = ".taskrank.yml"

// Settings holds persistent CLI defaults loaded from a config file.
type Settings struct {
	TopN          int    `yaml:"top_n"`
	Format        string `yaml:"format"`         // text or json
	Timezone      string `yaml:"timezone"`       // IANA name; empty = local
	Today         string `yaml:"today"`          // pin "today" (YYYY-MM-DD) for reproducible rankings
	HistoryDB     string `yaml:"history_db"`     // sqlite file for recorded runs
	RecordHistory bool   `yaml:"record_history"` // record every analyze run

	Policy *PolicyOverrides `yaml:"policy,omitempty"`
}

// PolicyOverrides replaces individual scoring weights. Unset fields keep
// their defaults.
type PolicyOverrides struct {
	OverdueBoost         *float64 `yaml:"overdue_boost,omitempty"`
	SoonBoost            *float64 `yaml:"soon_boost,omitempty"`
	ImportanceWeight     *float64 `yaml:"importance_weight,omitempty"`
	QuickWinBonus        *float64 `yaml:"quick_win_bonus,omitempty"`
	DependencyBonus      *float64 `yaml:"dependency_bonus,omitempty"`
	CyclePenalty         *float64 `yaml:"cycle_penalty,omitempty"`
	EffortPenaltyPerHour *float64 `yaml:"effort_penalty_per_hour,omitempty"`
	EffortFreeHours      *int     `yaml:"effort_free_hours,omitempty"`
	DecayWindowDays      *int     `yaml:"decay_window_days,omitempty"`
	SoonWindowDays       *int     `yaml:"soon_window_days,omitempty"`
}

// LoadSettings reads a YAML config file into Settings.
// If the file does not exist, it returns zero-value Settings and nil error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &s, nil
}

func (s *Settings) validate() error {
	switch s.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", s.Format)
	}
	if s.TopN < 0 {
		return fmt.Errorf("top_n must not be negative, got %d", s.TopN)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	if s.Today != "" {
		if _, err := time.Parse(time.DateOnly, s.Today); err != nil {
			return fmt.Errorf("today must be YYYY-MM-DD, got %q", s.Today)
		}
	}
	if p := s.Policy; p != nil {
		for name, v := range map[string]*int{
			"effort_free_hours": p.EffortFreeHours,
			"decay_window_days": p.DecayWindowDays,
			"soon_window_days":  p.SoonWindowDays,
		} {
			if v != nil && *v < 0 {
				return fmt.Errorf("policy.%s must not be negative, got %d", name, *v)
			}
		}
	}
	return nil
}

// Location returns the configured time zone, or time.Local.
func (s *Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// ScoringPolicy returns the default policy with the configured overrides
// applied.
func (s *Settings) ScoringPolicy() scoring.Policy {
	p := scoring.DefaultPolicy()
	o := s.Policy
	if o == nil {
		return p
	}
	setFloat(&p.OverdueBoost, o.OverdueBoost)
	setFloat(&p.SoonBoost, o.SoonBoost)
	setFloat(&p.ImportanceWeight, o.ImportanceWeight)
	setFloat(&p.QuickWinBonus, o.QuickWinBonus)
	setFloat(&p.DependencyBonus, o.DependencyBonus)
	setFloat(&p.CyclePenalty, o.CyclePenalty)
	setFloat(&p.EffortPenaltyPerHour, o.EffortPenaltyPerHour)
	setInt(&p.EffortFreeHours, o.EffortFreeHours)
	setInt(&p.DecayWindowDays, o.DecayWindowDays)
	setInt(&p.SoonWindowDays, o.SoonWindowDays)
	return p
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
