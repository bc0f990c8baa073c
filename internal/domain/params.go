package domain

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Quality enumerates supported output resolutions.
type Quality string

const (
	Quality720p  Quality = "720p"
	Quality1080p Quality = "1080p"
	Quality4K    Quality = "4K"
)

// AspectRatio enumerates supported output aspect ratios.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectPortrait  AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
)

var allowedQualities = map[Quality]struct{}{
	Quality720p:  {},
	Quality1080p: {},
	Quality4K:    {},
}

var allowedAspectRatios = map[AspectRatio]struct{}{
	AspectLandscape: {},
	AspectPortrait:  {},
	AspectSquare:    {},
}

// MaxDurationSeconds bounds a single generation request.
const MaxDurationSeconds = 600

// VideoGenerationParams is the input contract for one generation request.
// It is transient: constructed by a caller, validated once, handed to the
// engine, never persisted as such (it travels inside the task's
// videoSettings payload).
type VideoGenerationParams struct {
	Prompt             string      `json:"prompt"`
	Duration           int         `json:"duration"`
	Quality            Quality     `json:"quality"`
	HasAdvancedEffects bool        `json:"hasAdvancedEffects,omitempty"`
	Style              string      `json:"style,omitempty"`
	AspectRatio        AspectRatio `json:"aspectRatio,omitempty"`
	AudioURL           string      `json:"audioUrl,omitempty"`
	Seed               *int64      `json:"seed,omitempty"`
}

// Validate rejects requests that fall outside the contract. Zero duration
// is allowed and means "engine default".
func (p *VideoGenerationParams) Validate() error {
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("%w: prompt is required", ErrInvalidParams)
	}
	if p.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidParams)
	}
	if p.Duration > MaxDurationSeconds {
		return fmt.Errorf("%w: duration must be at most %d seconds", ErrInvalidParams, MaxDurationSeconds)
	}
	if _, ok := allowedQualities[p.Quality]; !ok {
		return fmt.Errorf("%w: quality must be one of 720p, 1080p, 4K", ErrInvalidParams)
	}
	if p.AspectRatio != "" {
		if _, ok := allowedAspectRatios[p.AspectRatio]; !ok {
			return fmt.Errorf("%w: aspect_ratio must be one of 16:9, 9:16, 1:1", ErrInvalidParams)
		}
	}
	if p.AudioURL != "" {
		if _, err := url.ParseRequestURI(p.AudioURL); err != nil {
			return fmt.Errorf("%w: audio url is not a valid url", ErrInvalidParams)
		}
	}
	return nil
}

var styleCaser = cases.Title(language.English)

// NormalizedStyle returns the style hint in canonical title case, or the
// empty string when no hint was given.
func (p *VideoGenerationParams) NormalizedStyle() string {
	s := strings.TrimSpace(p.Style)
	if s == "" {
		return ""
	}
	return styleCaser.String(strings.ToLower(s))
}
