package image

import (
	"errors"
	"strings"
	"testing"

	"thumbgen/internal/domain"
)

func TestBuildThumbnailPromptAllStyles(t *testing.T) {
	aspects := []domain.AspectRatio{domain.AspectRatioLandscape, domain.AspectRatioSquare, domain.AspectRatioPortrait}
	for _, style := range domain.Styles() {
		for _, aspect := range aspects {
			t.Run(string(style)+" "+string(aspect), func(t *testing.T) {
				got, err := BuildThumbnailPrompt(PromptInput{Title: "Weekly vlog", Style: style, AspectRatio: aspect})
				if err != nil {
					t.Fatalf("BuildThumbnailPrompt() unexpected error: %v", err)
				}
				desc, _ := StyleDescription(style)
				if !strings.Contains(got, desc) {
					t.Fatalf("prompt %q missing style description %q", got, desc)
				}
				if !strings.HasSuffix(got, AspectRatioClause(aspect)) {
					t.Fatalf("prompt %q does not end with aspect clause for %s", got, aspect)
				}
				if strings.Contains(got, "color scheme") {
					t.Fatalf("prompt %q mentions a color scheme that was not requested", got)
				}
			})
		}
	}
}

func TestBuildThumbnailPromptColorScheme(t *testing.T) {
	for _, scheme := range domain.ColorSchemes() {
		t.Run(string(scheme), func(t *testing.T) {
			got, err := BuildThumbnailPrompt(PromptInput{
				Title:       "Budget travel",
				Style:       domain.StylePhotorealistic,
				AspectRatio: domain.AspectRatioLandscape,
				ColorScheme: scheme,
			})
			if err != nil {
				t.Fatalf("BuildThumbnailPrompt() unexpected error: %v", err)
			}
			palette, _ := ColorSchemeDescription(scheme)
			if want := "Use a " + palette + " color scheme."; !strings.Contains(got, want) {
				t.Fatalf("prompt %q missing %q", got, want)
			}
		})
	}
}

func TestBuildThumbnailPromptMinimalistSquare(t *testing.T) {
	got, err := BuildThumbnailPrompt(PromptInput{Title: "Desk setup", Style: domain.StyleMinimalist, AspectRatio: domain.AspectRatioSquare})
	if err != nil {
		t.Fatalf("BuildThumbnailPrompt() unexpected error: %v", err)
	}
	want := "create a minimalist thumbnail, clean layout, simple shapes, limited color palette, plenty of negative space, modern flat design, clear focal point for: Desk setup. " +
		"The thumbnail should be 1:1, visually stunning, and designed to maximize click-through rate. Make it bold, professional, and impossible to ignore."
	if got != want {
		t.Fatalf("BuildThumbnailPrompt() = %q, want %q", got, want)
	}
}

func TestBuildThumbnailPromptUserDetails(t *testing.T) {
	got, err := BuildThumbnailPrompt(PromptInput{
		Title:       "Go generics",
		Style:       domain.StyleTechFuturistic,
		AspectRatio: "",
		UserPrompt:  "  include a gopher mascot ",
	})
	if err != nil {
		t.Fatalf("BuildThumbnailPrompt() unexpected error: %v", err)
	}
	if !strings.Contains(got, "Additional details: include a gopher mascot. The thumbnail should be 16:9") {
		t.Fatalf("prompt %q missing user details or default aspect", got)
	}
}

func TestBuildThumbnailPromptRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   PromptInput
		want error
	}{
		{
			name: "unknown style",
			in:   PromptInput{Title: "x", Style: "Unknown"},
			want: domain.ErrInvalidStyle,
		},
		{
			name: "unknown color",
			in:   PromptInput{Title: "x", Style: domain.StyleIllustrated, ColorScheme: "rainbow"},
			want: domain.ErrInvalidColorScheme,
		},
		{
			name: "unknown aspect",
			in:   PromptInput{Title: "x", Style: domain.StyleIllustrated, AspectRatio: "4:3"},
			want: domain.ErrInvalidAspectRatio,
		},
		{
			name: "blank title",
			in:   PromptInput{Title: "   ", Style: domain.StyleIllustrated},
			want: domain.ErrInvalidTitle,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := BuildThumbnailPrompt(tc.in)
			if !errors.Is(err, tc.want) {
				t.Fatalf("BuildThumbnailPrompt() error = %v, want %v", err, tc.want)
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("BuildThumbnailPrompt() error = %v, want a validation error", err)
			}
		})
	}
}

func TestBuildThumbnailPromptDeterministic(t *testing.T) {
	in := PromptInput{Title: "Same", Style: domain.StyleBoldGraphic, AspectRatio: domain.AspectRatioPortrait, ColorScheme: domain.ColorSchemeNeon, UserPrompt: "shocked face"}
	first, err := BuildThumbnailPrompt(in)
	if err != nil {
		t.Fatalf("BuildThumbnailPrompt() unexpected error: %v", err)
	}
	second, _ := BuildThumbnailPrompt(in)
	if first != second {
		t.Fatalf("BuildThumbnailPrompt() not deterministic: %q vs %q", first, second)
	}
}
