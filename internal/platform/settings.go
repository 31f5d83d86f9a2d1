// Package platform holds the outer, engine-external concerns: the
// user-facing settings file and (in ebitenhost) the concrete windowing
// backend. Grounded on spec.md §6's settings-file contract — a settings
// file is in scope even though the broader asset pipeline is a Non-goal.
package platform

import (
	"encoding/json"
	"io"
	"os"

	"muscle-dreamer/internal/core/clock"
)

// Settings is the persisted player-facing configuration file.
type Settings struct {
	MasterVolume float64         `json:"masterVolume"`
	SfxVolume    float64         `json:"sfxVolume"`
	BgmVolume    float64         `json:"bgmVolume"`
	TargetFPS    clock.TargetFPS `json:"targetFPS"`
	Fullscreen   bool            `json:"fullscreen"`
}

// DefaultSettings returns the settings a fresh install starts with.
func DefaultSettings() Settings {
	return Settings{
		MasterVolume: 1.0,
		SfxVolume:    1.0,
		BgmVolume:    1.0,
		TargetFPS:    clock.DefaultTargetFPS,
		Fullscreen:   false,
	}
}

// LoadSettings reads and decodes Settings from r.
func LoadSettings(r io.Reader) (Settings, error) {
	var s Settings
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return Settings{}, err
	}
	if !s.TargetFPS.Valid() {
		s.TargetFPS = clock.DefaultTargetFPS
	}
	return s, nil
}

// SaveSettings encodes s as indented JSON to w.
func SaveSettings(w io.Writer, s Settings) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// LoadSettingsFile reads Settings from path, falling back to
// DefaultSettings if the file does not exist.
func LoadSettingsFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	defer f.Close()
	return LoadSettings(f)
}

// SaveSettingsFile writes s to path, creating or truncating it.
func SaveSettingsFile(path string, s Settings) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return SaveSettings(f, s)
}
