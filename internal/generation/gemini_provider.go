package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mvaldez/genstudio-backend/internal/provider/gemini"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

// geminiAPI is the slice of the wire client the adapter needs.
type geminiAPI interface {
	GenerateContent(ctx context.Context, model string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error)
	Predict(ctx context.Context, model string, req *gemini.PredictRequest) (*gemini.PredictResponse, error)
	PredictLongRunning(ctx context.Context, model string, req *gemini.PredictLongRunningRequest) (string, error)
	GetOperation(ctx context.Context, handle string) (*gemini.Operation, error)
	Download(ctx context.Context, uri string) ([]byte, error)
}

// GeminiProvider adapts the wire client to the Provider contract: images and
// speech resolve inline through generateContent, video goes through the
// long-running operation surface.
type GeminiProvider struct {
	api    geminiAPI
	models config.GeminiConfig
}

// NewGeminiProvider builds the provider adapter.
func NewGeminiProvider(api geminiAPI, cfg config.GeminiConfig) (*GeminiProvider, error) {
	if api == nil {
		return nil, fmt.Errorf("gemini client required")
	}
	return &GeminiProvider{api: api, models: cfg}, nil
}

func (p *GeminiProvider) Submit(ctx context.Context, req Request) (*SubmitOutcome, error) {
	switch req.Resource {
	case enums.MediaTypeImage:
		return p.submitImage(ctx, req)
	case enums.MediaTypeVideo:
		return p.submitVideo(ctx, req)
	case enums.MediaTypeAudio:
		return p.submitSpeech(ctx, req)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported resource %q", req.Resource))
	}
}

func (p *GeminiProvider) submitImage(ctx context.Context, req Request) (*SubmitOutcome, error) {
	model := req.Model
	if model == "" {
		model = p.models.ImageModel
	}

	// Imagen-family models only speak the legacy predict surface.
	if strings.HasPrefix(model, "imagen") {
		return p.submitImagePredict(ctx, model, req)
	}

	parts := []gemini.Part{{Text: req.Prompt}}
	if req.Mode == enums.GenerationModeEdit {
		if len(req.SourceImage) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image edit requires a source image")
		}
		parts = append(parts, gemini.Part{InlineData: &gemini.InlineData{
			MimeType: sourceMime(req),
			Data:     base64.StdEncoding.EncodeToString(req.SourceImage),
		}})
	}

	resp, err := p.api.GenerateContent(ctx, model, &gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Parts: parts}},
	})
	if err != nil {
		return nil, err
	}
	if reason := blockReason(resp); reason != "" {
		return nil, pkgerrors.New(pkgerrors.CodeContentFiltered, reason)
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			content, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decode image payload")
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = enums.MediaTypeImage.DefaultMimeType()
			}
			return &SubmitOutcome{Payload: &Payload{Content: content, MimeType: mime}}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeProvider, "no result produced")
}

func (p *GeminiProvider) submitImagePredict(ctx context.Context, model string, req Request) (*SubmitOutcome, error) {
	resp, err := p.api.Predict(ctx, model, &gemini.PredictRequest{
		Instances: []gemini.PredictInstance{{Prompt: req.Prompt}},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Predictions) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "no result produced")
	}
	first := resp.Predictions[0]
	encoded := first.BytesBase64Encoded
	if encoded == "" {
		encoded = first.Image
	}
	if encoded == "" {
		return nil, pkgerrors.New(pkgerrors.CodeProvider, "no result produced")
	}
	content, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decode prediction payload")
	}
	mime := first.MimeType
	if mime == "" {
		mime = enums.MediaTypeImage.DefaultMimeType()
	}
	return &SubmitOutcome{Payload: &Payload{Content: content, MimeType: mime}}, nil
}

func (p *GeminiProvider) submitVideo(ctx context.Context, req Request) (*SubmitOutcome, error) {
	model := req.Model
	if model == "" {
		model = p.models.VideoModel
	}

	instance := gemini.VideoInstance{Prompt: req.Prompt}
	if req.Mode == enums.GenerationModeAnimate {
		if len(req.SourceImage) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "video animate requires a first-frame image")
		}
		instance.Image = &gemini.VideoImage{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString(req.SourceImage),
			MimeType:           sourceMime(req),
		}
	}

	var params *gemini.VideoParameters
	if req.NegativePrompt != "" || req.AspectRatio != "" {
		params = &gemini.VideoParameters{
			NegativePrompt: req.NegativePrompt,
			AspectRatio:    req.AspectRatio,
		}
	}

	handle, err := p.api.PredictLongRunning(ctx, model, &gemini.PredictLongRunningRequest{
		Instances:  []gemini.VideoInstance{instance},
		Parameters: params,
	})
	if err != nil {
		return nil, err
	}
	return &SubmitOutcome{OperationHandle: handle}, nil
}

func (p *GeminiProvider) submitSpeech(ctx context.Context, req Request) (*SubmitOutcome, error) {
	model := req.Model
	if model == "" {
		model = p.models.SpeechModel
	}

	genConfig := &gemini.GenerationConfig{ResponseModalities: []string{"AUDIO"}}
	if req.Voice != "" {
		genConfig.SpeechConfig = &gemini.SpeechConfig{
			VoiceConfig: &gemini.VoiceConfig{
				PrebuiltVoiceConfig: &gemini.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		}
	}

	resp, err := p.api.GenerateContent(ctx, model, &gemini.GenerateContentRequest{
		Contents:         []gemini.Content{{Parts: []gemini.Part{{Text: req.Prompt}}}},
		GenerationConfig: genConfig,
	})
	if err != nil {
		return nil, err
	}
	if reason := blockReason(resp); reason != "" {
		return nil, pkgerrors.New(pkgerrors.CodeContentFiltered, reason)
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "decode speech payload")
			}
			return &SubmitOutcome{Payload: &Payload{
				Content:  wrapPCM(pcm),
				MimeType: "audio/wav",
			}}, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeProvider, "no result produced")
}

// Poll reads a long-running operation once and normalizes its outcome. A
// finished operation runs the extraction chain; a URI hit triggers an
// authenticated download.
func (p *GeminiProvider) Poll(ctx context.Context, handle string) (*PollOutcome, error) {
	op, err := p.api.GetOperation(ctx, handle)
	if err != nil {
		return nil, err
	}
	if !op.Done {
		return &PollOutcome{Done: false}, nil
	}
	if op.Error != nil {
		return &PollOutcome{Done: true, ErrorMessage: op.Error.Message}, nil
	}
	if len(op.Response) == 0 {
		return &PollOutcome{Done: true}, nil
	}

	resp, err := parseOperationResponse(op.Response)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "parse operation response")
	}
	if reason := resp.filterReason(); reason != "" {
		return &PollOutcome{Done: true, FilterReason: reason}, nil
	}

	found, err := extractResult(resp)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeProvider, err, "extract result")
	}
	if found == nil {
		return &PollOutcome{Done: true}, nil
	}

	content := found.inline
	if len(content) == 0 && found.uri != "" {
		content, err = p.api.Download(ctx, found.uri)
		if err != nil {
			return nil, err
		}
	}
	if len(content) == 0 {
		return &PollOutcome{Done: true}, nil
	}

	mime := found.mime
	if mime == "" {
		mime = enums.MediaTypeVideo.DefaultMimeType()
	}
	return &PollOutcome{Done: true, Payload: &Payload{Content: content, MimeType: mime}}, nil
}

func sourceMime(req Request) string {
	if req.SourceImageMime != "" {
		return req.SourceImageMime
	}
	return "image/png"
}

func blockReason(resp *gemini.GenerateContentResponse) string {
	if resp.PromptFeedback == nil || resp.PromptFeedback.BlockReason == "" {
		return ""
	}
	if resp.PromptFeedback.BlockReasonMessage != "" {
		return resp.PromptFeedback.BlockReasonMessage
	}
	return resp.PromptFeedback.BlockReason
}
