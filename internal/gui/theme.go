package gui

import (
	"log/slog"
	"strings"

	darkmode "github.com/thiagokokada/dark-mode-go"
)

type ThemePreference int

const (
	ThemeAuto ThemePreference = iota
	ThemeLight
	ThemeDark
)

func (p ThemePreference) String() string {
	switch p {
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	default:
		return "auto"
	}
}

type colorPalette struct {
	ThemeName  string
	Canvas     string
	Lane       string
	LaneText   string
	Timeline   string
	NodeText   string
	Selected   string
	Hovered    string
	Outline    string
	Message    string
	ErrorText  string
	DetailHead string
}

var (
	lightPalette = colorPalette{
		ThemeName:  "azure light",
		Canvas:     "#ffffff",
		Lane:       "#e4e4e4",
		LaneText:   "#24292f",
		Timeline:   "#8c959f",
		NodeText:   "#ffffff",
		Selected:   "#111111",
		Hovered:    "#ffd75e",
		Outline:    "#ffffff",
		Message:    "#57606a",
		ErrorText:  "#cf222e",
		DetailHead: "#e4e4e4",
	}
	darkPalette = colorPalette{
		ThemeName:  "azure dark",
		Canvas:     "#1e1e1e",
		Lane:       "#2f2f2f",
		LaneText:   "#eaeaea",
		Timeline:   "#6b6b6b",
		NodeText:   "#111111",
		Selected:   "#ffffff",
		Hovered:    "#b58900",
		Outline:    "#1e1e1e",
		Message:    "#a0a0a0",
		ErrorText:  "#ff5c5c",
		DetailHead: "#2f2f2f",
	}
	detectDarkMode = darkmode.IsDarkMode
)

func ThemePreferenceFromString(raw string) ThemePreference {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case ThemeDark.String():
		return ThemeDark
	case ThemeLight.String():
		return ThemeLight
	default:
		return ThemeAuto
	}
}

func paletteForPreference(pref ThemePreference) colorPalette {
	switch pref {
	case ThemeDark:
		return darkPalette
	case ThemeLight:
		return lightPalette
	default:
		if detectDarkMode != nil {
			if dark, err := detectDarkMode(); err == nil {
				if dark {
					return darkPalette
				}
			} else {
				slog.Debug("detect dark-mode", slog.Any("error", err))
			}
		}
		return lightPalette
	}
}

func (p colorPalette) isDark() bool {
	return strings.Contains(strings.ToLower(p.ThemeName), "dark")
}
