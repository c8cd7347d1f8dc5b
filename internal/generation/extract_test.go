package generation

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) *operationResponse {
	t.Helper()
	resp, err := parseOperationResponse(json.RawMessage(raw))
	require.NoError(t, err)
	return resp
}

func TestExtractInlineVideoBytesWins(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("mp4"))
	resp := mustParse(t, `{
		"generatedVideos": [{"video": {"videoBytes": "`+encoded+`", "uri": "https://example.com/v", "mimeType": "video/mp4"}}]
	}`)

	found, err := extractResult(resp)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []byte("mp4"), found.inline)
	assert.Empty(t, found.uri)
	assert.Equal(t, "video/mp4", found.mime)
}

func TestExtractFallsBackToURI(t *testing.T) {
	resp := mustParse(t, `{
		"generatedVideos": [{"video": {"uri": "https://example.com/v"}}]
	}`)

	found, err := extractResult(resp)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "https://example.com/v", found.uri)
}

func TestExtractSnakeCaseAndSamplesShapes(t *testing.T) {
	snake := mustParse(t, `{
		"generated_videos": [{"video": {"uri": "https://example.com/snake"}}]
	}`)
	found, err := extractResult(snake)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "https://example.com/snake", found.uri)

	samples := mustParse(t, `{
		"generateVideoResponse": {"generatedSamples": [{"video": {"uri": "https://example.com/sample"}}]}
	}`)
	found, err = extractResult(samples)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "https://example.com/sample", found.uri)
}

func TestExtractLegacyPredictions(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("img"))
	resp := mustParse(t, `{"predictions": [{"bytesBase64Encoded": "`+encoded+`"}]}`)

	found, err := extractResult(resp)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []byte("img"), found.inline)

	// The image field is the alternate legacy spelling.
	resp = mustParse(t, `{"predictions": [{"image": "`+encoded+`"}]}`)
	found, err = extractResult(resp)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, []byte("img"), found.inline)
}

func TestExtractNothingFound(t *testing.T) {
	resp := mustParse(t, `{"someOtherField": true}`)

	found, err := extractResult(resp)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFilterReason(t *testing.T) {
	resp := mustParse(t, `{"raiMediaFilteredReasons": ["blocked: violence"]}`)
	assert.Equal(t, "blocked: violence", resp.filterReason())

	nested := mustParse(t, `{"generateVideoResponse": {"raiMediaFilteredReasons": ["a", "b"]}}`)
	assert.Equal(t, "a; b", nested.filterReason())

	clean := mustParse(t, `{"generatedVideos": []}`)
	assert.Empty(t, clean.filterReason())
}
