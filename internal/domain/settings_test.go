package domain

import (
	"encoding/json"
	"testing"
)

func TestSettings_EncodeDecode(t *testing.T) {
	in := Settings{
		Params: VideoGenerationParams{
			Prompt:      "a city at dawn",
			Duration:    20,
			Quality:     Quality1080p,
			AspectRatio: AspectLandscape,
		},
		Script:   "opening shot over the skyline",
		Locale:   "ja",
		Advanced: json.RawMessage(`{"colorGrade":"warm","transitions":["fade"]}`),
	}

	raw, err := EncodeSettings(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	got, err := DecodeSettings(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Params.Prompt != in.Params.Prompt || got.Params.Quality != in.Params.Quality || got.Params.Duration != in.Params.Duration {
		t.Fatalf("params mangled: %+v", got.Params)
	}
	if got.Script != in.Script || got.Locale != in.Locale {
		t.Fatalf("script/locale lost: %+v", got)
	}
	if string(got.Advanced) != string(in.Advanced) {
		t.Fatalf("advanced payload mangled: %s", got.Advanced)
	}
}

func TestSettings_ForeignPayloadStaysOpaque(t *testing.T) {
	foreign := json.RawMessage(`{"engine":"external","knobs":{"depth":3}}`)
	got, err := DecodeSettings(foreign)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Params.Prompt != "" {
		t.Fatalf("foreign payload should not yield params: %+v", got.Params)
	}
	if string(got.Advanced) != string(foreign) {
		t.Fatalf("foreign payload must be preserved verbatim, got %s", got.Advanced)
	}
}

func TestSettings_MergeAdvanced(t *testing.T) {
	raw, err := EncodeSettings(Settings{
		Params:   VideoGenerationParams{Prompt: "x", Duration: 5, Quality: Quality720p},
		Script:   "narration",
		Locale:   "es",
		Advanced: json.RawMessage(`{"old":true}`),
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	merged, err := MergeAdvanced(raw, json.RawMessage(`{"new":true}`))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	got, err := DecodeSettings(merged)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Params.Prompt != "x" {
		t.Fatalf("params lost during merge: %+v", got.Params)
	}
	if got.Script != "narration" || got.Locale != "es" {
		t.Fatalf("script/locale lost during merge: %+v", got)
	}
	if string(got.Advanced) != `{"new":true}` {
		t.Fatalf("advanced not replaced: %s", got.Advanced)
	}

	// Merging without a new payload keeps the existing one.
	kept, err := MergeAdvanced(raw, nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	got, _ = DecodeSettings(kept)
	if string(got.Advanced) != `{"old":true}` {
		t.Fatalf("advanced dropped: %s", got.Advanced)
	}
}
