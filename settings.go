package delin

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Store persists the settings payload. Injected so tests run against memory
// and production against a file; the settings service never touches ambient
// global state.
type Store interface {
	// Load returns the stored payload, or (nil, nil) when nothing has been
	// saved yet.
	Load() ([]byte, error)
	Save(data []byte) error
}

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	data []byte
}

// Load returns the stored bytes, nil when empty.
func (s *MemoryStore) Load() ([]byte, error) {
	return s.data, nil
}

// Save replaces the stored bytes.
func (s *MemoryStore) Save(data []byte) error {
	s.data = append([]byte(nil), data...)
	return nil
}

// FileStore persists settings as a JSON file.
type FileStore struct {
	Path string
}

// Load reads the file; a missing file is not an error.
func (s FileStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return data, nil
}

// Save writes the file.
func (s FileStore) Save(data []byte) error {
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SettingsValues are the tool preferences. Fields absent from a stored
// payload keep their defaults.
type SettingsValues struct {
	BrushRadius        float64 // screen px
	SmartSensitivity   float64 // stddev multiplier for the adaptive window
	MinStrokeSpacingMM float64
	GhostOpacity       float64
	ContinuousPen      bool
	ShowGhosts         bool
}

// DefaultSettings returns the factory values.
func DefaultSettings() SettingsValues {
	return SettingsValues{
		BrushRadius:        12,
		SmartSensitivity:   1.0,
		MinStrokeSpacingMM: DefaultMinStrokeSpacingMM,
		GhostOpacity:       0.5,
		ContinuousPen:      false,
		ShowGhosts:         true,
	}
}

// settingsPayload is the stored JSON shape. Pointer fields distinguish
// "absent" from zero so partial payloads merge over defaults.
type settingsPayload struct {
	BrushRadius        *float64 `json:"brushRadius,omitempty"`
	SmartSensitivity   *float64 `json:"smartSensitivity,omitempty"`
	MinStrokeSpacingMM *float64 `json:"minStrokeSpacingMm,omitempty"`
	GhostOpacity       *float64 `json:"ghostOpacity,omitempty"`
	ContinuousPen      *bool    `json:"continuousPen,omitempty"`
	ShowGhosts         *bool    `json:"showGhosts,omitempty"`
}

type settingsHandler struct {
	id uint32
	fn func(SettingsValues)
}

// SettingsHandle allows removing a registered change watcher.
type SettingsHandle struct {
	id uint32
	s  *Settings
}

// Remove unregisters this watcher so it no longer fires.
func (h SettingsHandle) Remove() {
	if h.s == nil {
		return
	}
	hs := h.s.handlers
	for i := range hs {
		if hs[i].id == h.id {
			copy(hs[i:], hs[i+1:])
			hs[len(hs)-1] = settingsHandler{}
			h.s.handlers = hs[:len(hs)-1]
			return
		}
	}
}

// Settings is the tool preferences service: load/save/reset against an
// injected Store, typed accessors with fallback to defaults, and change
// watchers.
type Settings struct {
	store    Store
	values   SettingsValues
	handlers []settingsHandler
	nextID   uint32
}

// NewSettings creates a service with defaults, backed by the given store.
// Call Load to pick up persisted values.
func NewSettings(store Store) *Settings {
	return &Settings{store: store, values: DefaultSettings()}
}

// Load reads the store and merges the payload over defaults. An empty store
// leaves defaults in place.
func (s *Settings) Load() error {
	data, err := s.store.Load()
	if err != nil {
		return err
	}
	vals := DefaultSettings()
	if len(data) > 0 {
		var p settingsPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("parse settings: %w", err)
		}
		if p.BrushRadius != nil {
			vals.BrushRadius = *p.BrushRadius
		}
		if p.SmartSensitivity != nil {
			vals.SmartSensitivity = *p.SmartSensitivity
		}
		if p.MinStrokeSpacingMM != nil {
			vals.MinStrokeSpacingMM = *p.MinStrokeSpacingMM
		}
		if p.GhostOpacity != nil {
			vals.GhostOpacity = *p.GhostOpacity
		}
		if p.ContinuousPen != nil {
			vals.ContinuousPen = *p.ContinuousPen
		}
		if p.ShowGhosts != nil {
			vals.ShowGhosts = *p.ShowGhosts
		}
	}
	s.values = vals
	s.notify()
	return nil
}

// Save persists the current values.
func (s *Settings) Save() error {
	v := s.values
	p := settingsPayload{
		BrushRadius:        &v.BrushRadius,
		SmartSensitivity:   &v.SmartSensitivity,
		MinStrokeSpacingMM: &v.MinStrokeSpacingMM,
		GhostOpacity:       &v.GhostOpacity,
		ContinuousPen:      &v.ContinuousPen,
		ShowGhosts:         &v.ShowGhosts,
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.store.Save(data)
}

// Reset restores defaults and persists them.
func (s *Settings) Reset() error {
	s.values = DefaultSettings()
	s.notify()
	return s.Save()
}

// Values returns the current values.
func (s *Settings) Values() SettingsValues {
	return s.values
}

// Set replaces the current values and notifies watchers. Does not persist;
// call Save for that.
func (s *Settings) Set(v SettingsValues) {
	s.values = v
	s.notify()
}

// OnChange registers a watcher called after every value change.
func (s *Settings) OnChange(fn func(SettingsValues)) SettingsHandle {
	s.nextID++
	s.handlers = append(s.handlers, settingsHandler{id: s.nextID, fn: fn})
	return SettingsHandle{id: s.nextID, s: s}
}

func (s *Settings) notify() {
	for _, h := range s.handlers {
		h.fn(s.values)
	}
}
