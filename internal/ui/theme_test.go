package ui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/require"

	"tavern/internal/utils"
)

func TestParseTheme(t *testing.T) {
	theme, err := ParseTheme([]byte(`
name: dusk
author: someone
colors:
  primary: "#ff0000"
  accent: "#0f0"
  border: "rgb(1, 2, 3)"
  background: {r: 10, g: 20, b: 30}
  foreground: navy
  red: 9
`))
	require.NoError(t, err)
	require.Equal(t, "dusk", theme.Name)
	require.Equal(t, tcell.NewRGBColor(255, 0, 0), theme.GetColor("primary"))
	require.Equal(t, tcell.NewRGBColor(0, 255, 0), theme.GetColor("accent"))
	require.Equal(t, tcell.NewRGBColor(1, 2, 3), theme.GetColor("border"))
	require.Equal(t, tcell.NewRGBColor(10, 20, 30), theme.GetColor("background"))
	require.Equal(t, tcell.ColorNavy, theme.GetColor("foreground"))
	require.Equal(t, tcell.PaletteColor(9), theme.GetColor("red"))
	require.Equal(t, DefaultTheme().GetColor("yellow"), theme.GetColor("yellow"))
	require.Equal(t, tcell.ColorWhite, theme.GetColor("missing"))
	require.Equal(t, "[#ff0000]", theme.Tag("primary"))
}

func TestParseThemeErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad hex", "colors: {primary: \"#12345\"}"},
		{"bad name", "colors: {primary: chartreuse-ish}"},
		{"rgb range", "colors: {primary: \"rgb(1, 2, 300)\"}"},
		{"partial map", "colors: {primary: {r: 1, g: 2}}"},
		{"list", "colors: {primary: [1, 2, 3]}"},
		{"yaml", "colors: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTheme([]byte(tt.yaml))
			require.Error(t, err)
			require.True(t, utils.IsThemeError(err))
		})
	}
}

func TestLoadTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "night.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: night\ncolors: {primary: white}\n"), 0o600))

	theme, err := LoadTheme(path)
	require.NoError(t, err)
	require.Equal(t, "night", theme.Name)
	require.Equal(t, tcell.ColorWhite, theme.GetColor("primary"))

	_, err = LoadTheme(filepath.Join(dir, "night.json"))
	require.True(t, utils.IsThemeError(err))

	_, err = LoadTheme(filepath.Join(dir, "missing.yaml"))
	require.True(t, utils.IsThemeError(err))
}
