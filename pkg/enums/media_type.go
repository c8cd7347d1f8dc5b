package enums

import "fmt"

// MediaType identifies the kind of generated artifact.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

var validMediaTypes = []MediaType{
	MediaTypeImage,
	MediaTypeVideo,
	MediaTypeAudio,
}

// String returns the literal string for the type.
func (m MediaType) String() string {
	return string(m)
}

// IsValid reports whether the type is known.
func (m MediaType) IsValid() bool {
	for _, candidate := range validMediaTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMediaType converts raw input into a MediaType.
func ParseMediaType(value string) (MediaType, error) {
	for _, candidate := range validMediaTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid media type %q", value)
}

// DefaultMimeType returns the fallback mime type used when a provider response
// omits one.
func (m MediaType) DefaultMimeType() string {
	switch m {
	case MediaTypeVideo:
		return "video/mp4"
	case MediaTypeAudio:
		return "audio/wav"
	default:
		return "image/png"
	}
}

// DefaultExtension returns the fallback file extension for the type.
func (m MediaType) DefaultExtension() string {
	switch m {
	case MediaTypeVideo:
		return "mp4"
	case MediaTypeAudio:
		return "wav"
	default:
		return "png"
	}
}
