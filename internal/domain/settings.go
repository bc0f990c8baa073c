package domain

import (
	"encoding/json"
	"fmt"
)

// SettingsVersion is the schema version persisted inside videoSettings.
const SettingsVersion = "2025-01"

// Settings is the structured form of the opaque videoSettings payload.
// Script and Locale are stamped at enqueue time so the worker can hand
// them to the generation engine without re-reading the project. The
// advanced editor options come from an external editing module and stay
// opaque here.
type Settings struct {
	Params   VideoGenerationParams
	Script   string
	Locale   string
	Advanced json.RawMessage
}

type settingsEnvelope struct {
	Version  string                `json:"version"`
	Params   VideoGenerationParams `json:"params"`
	Script   string                `json:"script,omitempty"`
	Locale   string                `json:"locale,omitempty"`
	Advanced json.RawMessage       `json:"advanced,omitempty"`
}

// EncodeSettings packs validated generation settings into the task's
// videoSettings value.
func EncodeSettings(s Settings) (json.RawMessage, error) {
	env := settingsEnvelope{
		Version:  SettingsVersion,
		Params:   s.Params,
		Script:   s.Script,
		Locale:   s.Locale,
		Advanced: s.Advanced,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode video settings: %w", err)
	}
	return b, nil
}

// DecodeSettings unpacks a videoSettings payload. Payloads written by
// other producers may not carry the envelope; those decode as empty
// params with the whole payload preserved as the advanced part.
func DecodeSettings(raw json.RawMessage) (Settings, error) {
	if len(raw) == 0 {
		return Settings{}, nil
	}
	var env settingsEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Settings{}, fmt.Errorf("decode video settings: %w", err)
	}
	if env.Version == "" {
		return Settings{Advanced: raw}, nil
	}
	return Settings{
		Params:   env.Params,
		Script:   env.Script,
		Locale:   env.Locale,
		Advanced: env.Advanced,
	}, nil
}

// MergeAdvanced replaces the advanced-editor portion of an existing
// settings payload, keeping the generation params, script and locale
// intact. Used when an edit derives a new task from an original one.
func MergeAdvanced(raw json.RawMessage, advanced json.RawMessage) (json.RawMessage, error) {
	settings, err := DecodeSettings(raw)
	if err != nil {
		return nil, err
	}
	if len(advanced) > 0 {
		settings.Advanced = advanced
	}
	return EncodeSettings(settings)
}

// MustMarshal marshals v or panics. Reserved for payloads built from
// internal values that cannot fail.
func MustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("json marshal: %w", err))
	}
	return b
}
