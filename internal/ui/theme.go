package ui

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"tavern/internal/utils"
)

// ThemeConfig represents a theme loaded from YAML
type ThemeConfig struct {
	Name   string         `yaml:"name"`
	Author string         `yaml:"author"`
	Colors map[string]any `yaml:"colors"`
}

// Theme maps colour names to tcell colours. Names missing from a loaded
// file fall back to the built-in palette.
type Theme struct {
	Name   string
	Author string
	colors map[string]tcell.Color
}

var defaultPalette = map[string]string{
	"background":       "#1d1f21",
	"background-light": "#282a2e",
	"foreground":       "#c5c8c6",
	"foreground-dark":  "#707880",
	"primary":          "#81a2be",
	"accent":           "#b294bb",
	"border":           "#373b41",
	"border-focus":     "#81a2be",
	"input-field":      "#282a2e",
	"button-active":    "#81a2be",
	"button-text":      "#1d1f21",
	"modal-background": "#282a2e",
	"red":              "#cc6666",
	"green":            "#b5bd68",
	"yellow":           "#f0c674",
}

func DefaultTheme() *Theme {
	t := &Theme{Name: "default", colors: make(map[string]tcell.Color, len(defaultPalette))}
	for name, hex := range defaultPalette {
		c, _ := parseHexColor(hex)
		t.colors[name] = c
	}
	return t
}

// LoadTheme loads a theme from a YAML file.
func LoadTheme(themePath string) (*Theme, error) {
	if !utils.IsYAMLFile(themePath) {
		return nil, utils.ThemeError("theme must be a .yaml file").WithDetails(themePath)
	}
	data, err := os.ReadFile(themePath)
	if err != nil {
		return nil, utils.ThemeError("failed to read theme file").WithDetails(err.Error())
	}
	return ParseTheme(data)
}

func ParseTheme(data []byte) (*Theme, error) {
	var config ThemeConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, utils.ThemeError("failed to parse theme YAML").WithDetails(err.Error())
	}

	theme := DefaultTheme()
	theme.Name = config.Name
	theme.Author = config.Author
	for key, value := range config.Colors {
		color, err := parseColor(value)
		if err != nil {
			return nil, utils.ThemeError(fmt.Sprintf("failed to parse color '%s'", key)).WithDetails(err.Error())
		}
		theme.colors[key] = color
	}
	return theme, nil
}

func (t *Theme) GetColor(name string) tcell.Color {
	if color, exists := t.colors[name]; exists {
		return color
	}
	return tcell.ColorWhite
}

// Tag returns the colour as a tview colour tag, e.g. [#81a2be].
func (t *Theme) Tag(name string) string {
	return fmt.Sprintf("[#%06x]", t.GetColor(name).Hex())
}

func parseColor(value any) (tcell.Color, error) {
	switch v := value.(type) {
	case string:
		return parseColorString(v)
	case int:
		return tcell.PaletteColor(v), nil
	case map[string]any:
		return parseColorMap(v)
	default:
		return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("unsupported color format: %T", value))
	}
}

// parseColorString accepts #rgb, #rrggbb, rgb(r, g, b) and the names
// tcell knows.
func parseColorString(colorStr string) (tcell.Color, error) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	switch {
	case strings.HasPrefix(colorStr, "#"):
		return parseHexColor(colorStr)
	case strings.HasPrefix(colorStr, "rgb(") && strings.HasSuffix(colorStr, ")"):
		return parseRGBFunction(colorStr)
	}
	if c, ok := tcell.ColorNames[colorStr]; ok {
		return c, nil
	}
	return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("unknown color name: %s", colorStr))
}

func parseHexColor(hex string) (tcell.Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("invalid hex color format: %s", hex))
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("invalid hex color format: %s", hex))
	}
	return tcell.NewHexColor(int32(v)), nil
}

func parseRGBFunction(rgbStr string) (tcell.Color, error) {
	rgbStr = strings.TrimSuffix(strings.TrimPrefix(rgbStr, "rgb("), ")")
	parts := strings.Split(rgbStr, ",")
	if len(parts) != 3 {
		return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("invalid RGB format: %s", rgbStr))
	}
	var rgb [3]int32
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 255 {
			return tcell.ColorWhite, utils.ThemeError(fmt.Sprintf("invalid RGB component: %s", p))
		}
		rgb[i] = int32(n)
	}
	return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2]), nil
}

func parseColorMap(colorMap map[string]any) (tcell.Color, error) {
	var rgb [3]int32
	for i, k := range []string{"r", "g", "b"} {
		v, ok := colorMap[k].(int)
		if !ok {
			return tcell.ColorWhite, utils.ThemeError("rgb color map must have integer r, g, b values")
		}
		rgb[i] = int32(v)
	}
	return tcell.NewRGBColor(rgb[0], rgb[1], rgb[2]), nil
}

// FormColors returns the form palette: bg, fieldBg, buttonBg, buttonText, fieldText.
func (t *Theme) FormColors() (bg, fieldBg, buttonBg, buttonText, fieldText tcell.Color) {
	return t.GetColor("background"),
		t.GetColor("input-field"),
		t.GetColor("button-active"),
		t.GetColor("button-text"),
		t.GetColor("foreground")
}

func (t *Theme) BorderColors() (normal, focus tcell.Color) {
	return t.GetColor("border"), t.GetColor("border-focus")
}
