package gui

import (
	"errors"
	"testing"
)

func TestThemePreferenceFromString(t *testing.T) {
	tests := []struct {
		raw  string
		want ThemePreference
	}{
		{"dark", ThemeDark},
		{" Light ", ThemeLight},
		{"auto", ThemeAuto},
		{"", ThemeAuto},
		{"solarized", ThemeAuto},
	}
	for _, tt := range tests {
		if got := ThemePreferenceFromString(tt.raw); got != tt.want {
			t.Fatalf("ThemePreferenceFromString(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestPaletteForPreference(t *testing.T) {
	orig := detectDarkMode
	t.Cleanup(func() { detectDarkMode = orig })

	detectDarkMode = func() (bool, error) {
		t.Fatalf("explicit preferences must not query the desktop")
		return false, nil
	}
	if !paletteForPreference(ThemeDark).isDark() {
		t.Fatalf("expected dark palette")
	}
	if paletteForPreference(ThemeLight).isDark() {
		t.Fatalf("expected light palette")
	}

	detectDarkMode = func() (bool, error) { return true, nil }
	if got := paletteForPreference(ThemeAuto); got != darkPalette {
		t.Fatalf("expected auto to follow a dark desktop, got %+v", got)
	}
	detectDarkMode = func() (bool, error) { return false, errors.New("no portal") }
	if got := paletteForPreference(ThemeAuto); got != lightPalette {
		t.Fatalf("expected light fallback when detection fails, got %+v", got)
	}
}
