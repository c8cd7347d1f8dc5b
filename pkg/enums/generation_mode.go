package enums

import "fmt"

// GenerationMode distinguishes text-to-media requests from media-to-media ones
// (image edits, animating a still frame).
type GenerationMode string

const (
	GenerationModeText    GenerationMode = "text"
	GenerationModeEdit    GenerationMode = "edit"
	GenerationModeAnimate GenerationMode = "animate"
)

var validGenerationModes = []GenerationMode{
	GenerationModeText,
	GenerationModeEdit,
	GenerationModeAnimate,
}

// String returns the literal string for the mode.
func (m GenerationMode) String() string {
	return string(m)
}

// IsValid reports whether the mode is known.
func (m GenerationMode) IsValid() bool {
	for _, candidate := range validGenerationModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseGenerationMode converts raw input into a GenerationMode.
func ParseGenerationMode(value string) (GenerationMode, error) {
	for _, candidate := range validGenerationModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid generation mode %q", value)
}
