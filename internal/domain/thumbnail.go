package domain

import (
	"strings"
	"time"
)

// Style enumerates the presentation presets offered for thumbnails.
type Style string

const (
	StyleBoldGraphic    Style = "Bold & Graphic"
	StyleTechFuturistic Style = "Tech/Futuristic"
	StyleMinimalist     Style = "Minimalist"
	StylePhotorealistic Style = "Photorealistic"
	StyleIllustrated    Style = "Illustrated"
)

// Styles lists every supported style in display order.
func Styles() []Style {
	return []Style{StyleBoldGraphic, StyleTechFuturistic, StyleMinimalist, StylePhotorealistic, StyleIllustrated}
}

// ColorScheme enumerates the optional palette presets. The zero value means
// no palette was requested.
type ColorScheme string

const (
	ColorSchemeNone       ColorScheme = ""
	ColorSchemeVibrant    ColorScheme = "vibrant"
	ColorSchemeSunset     ColorScheme = "sunset"
	ColorSchemeForest     ColorScheme = "forest"
	ColorSchemeNeon       ColorScheme = "neon"
	ColorSchemePurple     ColorScheme = "purple"
	ColorSchemeMonochrome ColorScheme = "monochrome"
	ColorSchemeOcean      ColorScheme = "ocean"
	ColorSchemePastel     ColorScheme = "pastel"
)

// ColorSchemes lists every selectable palette.
func ColorSchemes() []ColorScheme {
	return []ColorScheme{
		ColorSchemeVibrant, ColorSchemeSunset, ColorSchemeForest, ColorSchemeNeon,
		ColorSchemePurple, ColorSchemeMonochrome, ColorSchemeOcean, ColorSchemePastel,
	}
}

// AspectRatio enumerates the output proportions accepted by the generator.
type AspectRatio string

const (
	AspectRatioLandscape AspectRatio = "16:9"
	AspectRatioSquare    AspectRatio = "1:1"
	AspectRatioPortrait  AspectRatio = "9:16"

	DefaultAspectRatio = AspectRatioLandscape
)

// ParseAspectRatio normalizes user input. Empty input selects the default.
func ParseAspectRatio(v string) (AspectRatio, error) {
	switch ar := AspectRatio(strings.TrimSpace(v)); ar {
	case "":
		return DefaultAspectRatio, nil
	case AspectRatioLandscape, AspectRatioSquare, AspectRatioPortrait:
		return ar, nil
	default:
		return "", ErrInvalidAspectRatio
	}
}

// Thumbnail is a user-owned generation request together with its result.
// While IsGenerating is true ImageURL stays empty.
type Thumbnail struct {
	ID            string      `json:"_id"`
	UserID        string      `json:"userId"`
	Title         string      `json:"title"`
	Style         Style       `json:"style"`
	AspectRatio   AspectRatio `json:"aspect_ratio"`
	ColorScheme   ColorScheme `json:"color_scheme,omitempty"`
	UserPrompt    string      `json:"user_prompt,omitempty"`
	TextOverlay   bool        `json:"text_overlay"`
	PromptUsed    string      `json:"prompt_used"`
	ImageURL      string      `json:"image_url,omitempty"`
	ImageKey      string      `json:"-"`
	IsGenerating  bool        `json:"isGenerating"`
	FailureReason string      `json:"error,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Failed reports whether generation ended without an image.
func (t Thumbnail) Failed() bool {
	return !t.IsGenerating && t.ImageURL == "" && t.FailureReason != ""
}
