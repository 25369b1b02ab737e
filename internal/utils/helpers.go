package utils

import (
	"path/filepath"
	"strings"
)

func IsYAMLFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}
