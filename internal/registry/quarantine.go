package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Quarantine moves a duplicate file into a subdirectory next to it,
// de-conflicting the target name with a __dupN suffix when a file with
// the same name is already quarantined. Returns the new path.
func Quarantine(path, quarantineDirName string) (string, error) {
	dir := filepath.Join(filepath.Dir(path), quarantineDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create quarantine dir: %w", err)
	}

	name := filepath.Base(path)
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); err == nil {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		for i := 2; ; i++ {
			candidate := filepath.Join(dir, fmt.Sprintf("%s__dup%d%s", stem, i, ext))
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				dest = candidate
				break
			}
		}
	}

	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("move %s to quarantine: %w", path, err)
	}
	return dest, nil
}
