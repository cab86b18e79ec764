package files

import (
	"os"
	"path/filepath"
)

// SaveFile saves a file to the specified path.
// If the destination directory doesn't exist, it will be created.
// Data is written to a temporary file next to the destination and renamed over it,
// so the destination either keeps its old contents or gets all of data.
func SaveFile(filePath string, data []byte) error {
	dirPath := filepath.Dir(filePath)
	// Create directories recursively
	if err := os.MkdirAll(dirPath, os.ModePerm); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dirPath, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	// no-op once renamed
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filePath)
}
