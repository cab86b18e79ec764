package files

import (
	"path/filepath"
	"strings"
)

// IsYamlFile checks if the path has a YAML extension.
func IsYamlFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
