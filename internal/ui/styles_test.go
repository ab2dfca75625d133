package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/mdvault/internal/config"
)

func TestNormalizeAccentColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{name: "unset", input: ""},
		{name: "disabled", input: "off"},
		{name: "disabled any case", input: "NONE"},
		{name: "default keyword", input: " Default "},
		{name: "ansi", input: "135", want: "135", ok: true},
		{name: "ansi zero", input: "0", want: "0", ok: true},
		{name: "ansi padded", input: "\t42\n", want: "42", ok: true},
		{name: "ansi too large", input: "300"},
		{name: "hex lowercased", input: "#A78BFA", want: "#a78bfa", ok: true},
		{name: "short hex expanded", input: "#F0a", want: "#ff00aa", ok: true},
		{name: "hex wrong length", input: "#abcd"},
		{name: "hex without hash", input: "a78bfa"},
		{name: "color name", input: "purple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeAccentColor(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("normalizeAccentColor(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestAccentFromConfigColorsPreviewHeadings(t *testing.T) {
	origAccent, origColor := Accent, accentColor
	t.Cleanup(func() {
		Accent, accentColor = origAccent, origColor
	})

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\naccent = \"#0F8\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	ConfigureTheme(cfg.UI.Accent)
	if got, ok := AccentColor(); !ok || got != "#00ff88" {
		t.Fatalf("AccentColor() = %q, %v; want #00ff88", got, ok)
	}
	style := previewMarkdownStyle()
	if style.Heading.Color == nil || *style.Heading.Color != "#00ff88" {
		t.Fatalf("heading color = %v, want #00ff88", style.Heading.Color)
	}

	ConfigureTheme("off")
	if _, ok := AccentColor(); ok {
		t.Fatalf("expected accent to be disabled")
	}
	if style := previewMarkdownStyle(); style.Heading.Color != nil {
		t.Fatalf("heading color = %q, want uncolored", *style.Heading.Color)
	}
}
