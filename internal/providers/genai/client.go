package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"thumbgen/internal/domain"
	"thumbgen/internal/infra"
)

const (
	DefaultBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel           = "gemini-3-pro-image-preview"
	DefaultImageSize       = "1K"
	DefaultTemperature     = 1.0
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 32768
)

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	ImageSize  string
	HTTPClient *http.Client
	Logger     *infra.Logger
	// DisableSafetyFilters sends every harm category with threshold OFF.
	DisableSafetyFilters bool
}

// Client calls the Gemini generateContent endpoint for image output.
type Client struct {
	apiKey        string
	baseURL       string
	model         string
	imageSize     string
	disableSafety bool
	httpClient    *http.Client
	logger        *infra.Logger
}

// ImageRequest represents the information required to generate one image.
type ImageRequest struct {
	Prompt      string
	AspectRatio string
	RequestID   string
}

// ImageAsset is the decoded image returned by the model.
type ImageAsset struct {
	Data     []byte
	MimeType string
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature        float64            `json:"temperature"`
	TopP               float64            `json:"topP"`
	MaxOutputTokens    int                `json:"maxOutputTokens,omitempty"`
	ResponseModalities []string           `json:"responseModalities,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	SafetySettings   []geminiSafetySetting   `json:"safetySettings,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiPromptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates     []geminiCandidate     `json:"candidates"`
	PromptFeedback *geminiPromptFeedback `json:"promptFeedback,omitempty"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

var harmCategories = []string{
	"HARM_CATEGORY_HATE_SPEECH",
	"HARM_CATEGORY_DANGEROUS_CONTENT",
	"HARM_CATEGORY_SEXUALLY_EXPLICIT",
	"HARM_CATEGORY_HARASSMENT",
}

// NewClient constructs a Gemini client with sane defaults. Callers may provide
// a nil HTTP client; one with a two minute timeout is created.
func NewClient(opts Options) (*Client, error) {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("genai: invalid base url: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	imageSize := strings.TrimSpace(opts.ImageSize)
	if imageSize == "" {
		imageSize = DefaultImageSize
	}

	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		l := infra.Logger(zerolog.New(io.Discard))
		logger = &l
	}

	return &Client{
		apiKey:        strings.TrimSpace(opts.APIKey),
		baseURL:       baseURL,
		model:         model,
		imageSize:     imageSize,
		disableSafety: opts.DisableSafetyFilters,
		httpClient:    client,
		logger:        logger,
	}, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateImage sends one generateContent call and returns the first inline
// image in the response. A response without image data yields
// domain.ErrGenerationFailed.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (*ImageAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is not configured", domain.ErrProviderFailure)
	}

	aspect := strings.TrimSpace(req.AspectRatio)
	if aspect == "" {
		aspect = string(domain.DefaultAspectRatio)
	}

	payload := c.buildRequest(req.Prompt, aspect)

	start := time.Now()
	var response geminiGenerateContentResponse
	if err := c.invokeGemini(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response); err != nil {
		return nil, err
	}

	asset, err := firstInlineImage(response)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Str("model", c.model).
			Msg("genai: response carried no image")
		return nil, err
	}

	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Str("aspect_ratio", aspect).
		Int("bytes", len(asset.Data)).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generated image")

	return asset, nil
}

func (c *Client) buildRequest(prompt, aspect string) geminiGenerateContentRequest {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:        DefaultTemperature,
			TopP:               DefaultTopP,
			MaxOutputTokens:    DefaultMaxOutputTokens,
			ResponseModalities: []string{"IMAGE"},
			ImageConfig: &geminiImageConfig{
				AspectRatio: aspect,
				ImageSize:   c.imageSize,
			},
		},
	}
	if c.disableSafety {
		for _, category := range harmCategories {
			payload.SafetySettings = append(payload.SafetySettings, geminiSafetySetting{Category: category, Threshold: "OFF"})
		}
	}
	return payload
}

func firstInlineImage(resp geminiGenerateContentResponse) (*ImageAsset, error) {
	var finish string
	for _, candidate := range resp.Candidates {
		if finish == "" {
			finish = candidate.FinishReason
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return nil, fmt.Errorf("%w: decode inline data: %v", domain.ErrGenerationFailed, err)
			}
			if len(data) == 0 {
				continue
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return &ImageAsset{Data: data, MimeType: mime}, nil
		}
	}

	var reasons []string
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		reasons = append(reasons, "blocked: "+resp.PromptFeedback.BlockReason)
	}
	if finish != "" {
		reasons = append(reasons, "finish reason: "+finish)
	}
	if len(resp.Candidates) == 0 {
		reasons = append(reasons, "no candidates")
	}
	if len(reasons) == 0 {
		return nil, domain.ErrGenerationFailed
	}
	return nil, fmt.Errorf("%w (%s)", domain.ErrGenerationFailed, strings.Join(reasons, ", "))
}

func (c *Client) invokeGemini(ctx context.Context, path string, payload any, out any) error {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: invoke gemini: %w", domain.ErrProviderFailure, err)
		}
		return fmt.Errorf("%w: invoke gemini: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, apiErr.Error.Message)
		}
		if msg := strings.TrimSpace(string(data)); msg != "" {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrProviderFailure, resp.StatusCode, msg)
		}
		return fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode gemini response: %v", domain.ErrGenerationFailed, err)
	}
	return nil
}
