package image

import (
	"fmt"
	"strings"

	"thumbgen/internal/domain"
)

// PromptInput carries the user-facing generation parameters.
type PromptInput struct {
	Title       string
	Style       domain.Style
	AspectRatio domain.AspectRatio
	ColorScheme domain.ColorScheme
	UserPrompt  string
}

// StyleDescription maps a style to the descriptive fragment sent to the model.
func StyleDescription(style domain.Style) (string, bool) {
	switch style {
	case domain.StyleBoldGraphic:
		return "eye-catching thumbnail, bold typography, vibrant colors, expressive facial reaction, dramatic lighting, high contrast, click-worthy composition, professional style", true
	case domain.StyleTechFuturistic:
		return "futuristic thumbnail, sleek modern design, digital UI elements, glowing accents, holographic effects, cyber-tech aesthetic, sharp lighting, high-tech atmosphere", true
	case domain.StyleMinimalist:
		return "minimalist thumbnail, clean layout, simple shapes, limited color palette, plenty of negative space, modern flat design, clear focal point", true
	case domain.StylePhotorealistic:
		return "photorealistic thumbnail, ultra-realistic lighting, natural skin tones, candid moment, DSLR-style photography, lifestyle realism, shallow depth of field", true
	case domain.StyleIllustrated:
		return "illustrated thumbnail, custom digital illustration, stylized characters, bold outlines, vibrant colors, creative cartoon or vector art style", true
	default:
		return "", false
	}
}

// ColorSchemeDescription maps a palette preset to its prompt fragment.
func ColorSchemeDescription(scheme domain.ColorScheme) (string, bool) {
	switch scheme {
	case domain.ColorSchemeVibrant:
		return "vibrant and energetic colors, high saturation, bold contrasts, eye-catching palette", true
	case domain.ColorSchemeSunset:
		return "warm sunset tones, orange pink and purple hues, soft gradients, cinematic glow", true
	case domain.ColorSchemeForest:
		return "natural green tones, earthy colors, calm and organic palette, fresh atmosphere", true
	case domain.ColorSchemeNeon:
		return "neon glow effects, electric blues and pinks, cyberpunk lighting, high contrast glow", true
	case domain.ColorSchemePurple:
		return "purple-dominant color palette, magenta and violet tones, modern and stylish mood", true
	case domain.ColorSchemeMonochrome:
		return "black and white color scheme, high contrast, dramatic lighting, timeless aesthetic", true
	case domain.ColorSchemeOcean:
		return "cool blue and teal tones, aquatic color palette, fresh and clean atmosphere", true
	case domain.ColorSchemePastel:
		return "soft pastel colors, low saturation, gentle tones, calm and friendly aesthetic", true
	default:
		return "", false
	}
}

// BuildThumbnailPrompt turns the generation parameters into the single
// instruction sent to the image model. The closing sentence always names the
// aspect ratio so the model composes for the requested frame.
func BuildThumbnailPrompt(in PromptInput) (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", domain.ErrInvalidTitle
	}
	style, ok := StyleDescription(in.Style)
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidStyle, in.Style)
	}
	aspect, err := domain.ParseAspectRatio(string(in.AspectRatio))
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, in.AspectRatio)
	}

	lines := []string{fmt.Sprintf("create a %s for: %s.", style, title)}

	if in.ColorScheme != domain.ColorSchemeNone {
		palette, ok := ColorSchemeDescription(in.ColorScheme)
		if !ok {
			return "", fmt.Errorf("%w: %q", domain.ErrInvalidColorScheme, in.ColorScheme)
		}
		lines = append(lines, fmt.Sprintf("Use a %s color scheme.", palette))
	}

	if details := strings.TrimSpace(in.UserPrompt); details != "" {
		lines = append(lines, "Additional details: "+terminate(details))
	}

	lines = append(lines, AspectRatioClause(aspect))

	return strings.Join(lines, " "), nil
}

// AspectRatioClause is the fixed closing instruction of every prompt.
func AspectRatioClause(aspect domain.AspectRatio) string {
	return fmt.Sprintf("The thumbnail should be %s, visually stunning, and designed to maximize click-through rate. Make it bold, professional, and impossible to ignore.", aspect)
}

func terminate(s string) string {
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	default:
		return s + "."
	}
}
