package generation

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// The Veo operation response has shipped in several shapes. extraction walks
// a fixed strategy order and the first strategy that yields something wins:
//
//  1. inline video bytes on the generated video,
//  2. a result URI that needs an authenticated download,
//  3. the legacy predictions payload.
//
// A nil result with no error means the strategy found nothing and the next
// one should run.

type extracted struct {
	inline []byte
	uri    string
	mime   string
}

type extractor struct {
	name string
	fn   func(resp *operationResponse) (*extracted, error)
}

var videoExtractors = []extractor{
	{name: "inline_video_bytes", fn: extractInlineVideoBytes},
	{name: "video_uri", fn: extractVideoURI},
	{name: "legacy_predictions", fn: extractLegacyPredictions},
}

type operationResponse struct {
	GeneratedVideos      []generatedVideo       `json:"generatedVideos"`
	GeneratedVideosSnake []generatedVideo       `json:"generated_videos"`
	VideoResponse        *generateVideoResponse `json:"generateVideoResponse"`

	RaiMediaFilteredReasons []string `json:"raiMediaFilteredReasons"`

	Predictions []legacyPrediction `json:"predictions"`
}

type generateVideoResponse struct {
	GeneratedSamples        []generatedVideo `json:"generatedSamples"`
	RaiMediaFilteredReasons []string         `json:"raiMediaFilteredReasons"`
}

type generatedVideo struct {
	Video *videoRef `json:"video"`
}

type videoRef struct {
	URI        string `json:"uri,omitempty"`
	VideoBytes string `json:"videoBytes,omitempty"`
	MimeType   string `json:"mimeType,omitempty"`
}

type legacyPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded,omitempty"`
	Image              string `json:"image,omitempty"`
	MimeType           string `json:"mimeType,omitempty"`
}

func parseOperationResponse(raw json.RawMessage) (*operationResponse, error) {
	var resp operationResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode operation response: %w", err)
	}
	return &resp, nil
}

// filterReason returns the joined safety-filter explanation when the response
// carries one.
func (r *operationResponse) filterReason() string {
	reasons := r.RaiMediaFilteredReasons
	if len(reasons) == 0 && r.VideoResponse != nil {
		reasons = r.VideoResponse.RaiMediaFilteredReasons
	}
	return strings.Join(reasons, "; ")
}

func (r *operationResponse) videos() []generatedVideo {
	if len(r.GeneratedVideos) > 0 {
		return r.GeneratedVideos
	}
	if len(r.GeneratedVideosSnake) > 0 {
		return r.GeneratedVideosSnake
	}
	if r.VideoResponse != nil {
		return r.VideoResponse.GeneratedSamples
	}
	return nil
}

func extractInlineVideoBytes(resp *operationResponse) (*extracted, error) {
	for _, video := range resp.videos() {
		if video.Video == nil || video.Video.VideoBytes == "" {
			continue
		}
		content, err := base64.StdEncoding.DecodeString(video.Video.VideoBytes)
		if err != nil {
			return nil, fmt.Errorf("decode inline video bytes: %w", err)
		}
		return &extracted{inline: content, mime: video.Video.MimeType}, nil
	}
	return nil, nil
}

func extractVideoURI(resp *operationResponse) (*extracted, error) {
	for _, video := range resp.videos() {
		if video.Video == nil || video.Video.URI == "" {
			continue
		}
		return &extracted{uri: video.Video.URI, mime: video.Video.MimeType}, nil
	}
	return nil, nil
}

func extractLegacyPredictions(resp *operationResponse) (*extracted, error) {
	if len(resp.Predictions) == 0 {
		return nil, nil
	}
	first := resp.Predictions[0]
	encoded := first.BytesBase64Encoded
	if encoded == "" {
		encoded = first.Image
	}
	if encoded == "" {
		return nil, nil
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode prediction bytes: %w", err)
	}
	return &extracted{inline: content, mime: first.MimeType}, nil
}

// extractResult runs the strategy chain and returns the first hit. A nil
// result means nothing in the response looked like media.
func extractResult(resp *operationResponse) (*extracted, error) {
	for _, strategy := range videoExtractors {
		found, err := strategy.fn(resp)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strategy.name, err)
		}
		if found != nil {
			return found, nil
		}
	}
	return nil, nil
}
