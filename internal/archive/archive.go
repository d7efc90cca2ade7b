package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/snonux/glossa/internal"
)

// sidecars are the SQLite files that belong to a database in WAL mode.
var sidecars = []string{"-wal", "-shm"}

// ArchiveDatabase moves the vocabulary database into an archive directory
// next to it, with a timestamp in its name, so the next start begins with
// an empty vocabulary. It returns the archive path.
func ArchiveDatabase(dbPath string) (string, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("database does not exist: %s", dbPath)
	}

	parentDir := filepath.Dir(dbPath)
	archiveDir := filepath.Join(parentDir, "archive")

	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	base := filepath.Base(dbPath)
	ext := filepath.Ext(base)
	stem := internal.SanitizeFilename(strings.TrimSuffix(base, ext))

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))

	// Add microseconds when archiving twice within a second
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", stem, timestamp, ext))
	}

	if err := os.Rename(dbPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive database: %w", err)
	}

	for _, suffix := range sidecars {
		if _, err := os.Stat(dbPath + suffix); err == nil {
			if err := os.Rename(dbPath+suffix, archivePath+suffix); err != nil {
				return archivePath, fmt.Errorf("failed to archive %s: %w", dbPath+suffix, err)
			}
		}
	}

	return archivePath, nil
}
