package atomicfile

import (
	"bytes"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"time"
)

// FileInfo describes a file written by Write
type FileInfo struct {
	Path    string
	Hash    string
	Size    int64
	ModTime time.Time
	// Skipped is set when the file already held the data and was left alone
	Skipped bool
}

// CalculateHash calculates the CRC32 hash of a file
func CalculateHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer file.Close()

	hash := crc32.NewIEEE()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%08x", hash.Sum32()), nil
}

// hashBytes returns the CRC32 hash of data in the format of CalculateHash
func hashBytes(data []byte) string {
	return fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))
}

// Unchanged reports whether the file at path holds exactly data.
// A missing file is reported as changed.
func Unchanged(path string, data []byte) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.Size() != int64(len(data)) {
		return false, nil
	}

	current, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return bytes.Equal(current, data), nil
}

// Write replaces the file at path with data. The data goes to a temporary
// file in the same directory first and is renamed into place, so readers
// never see a partly written file. A file that already holds data is not
// touched.
func Write(path string, data []byte) (*FileInfo, error) {
	same, err := Unchanged(path, data)
	if err != nil {
		return nil, err
	}
	if same {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat file: %w", err)
		}
		return &FileInfo{
			Path:    path,
			Hash:    hashBytes(data),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Skipped: true,
		}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		CleanupTemp(tempPath)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		CleanupTemp(tempPath)
		return nil, fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		CleanupTemp(tempPath)
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tempPath, 0644); err != nil {
		CleanupTemp(tempPath)
		return nil, fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		CleanupTemp(tempPath)
		return nil, fmt.Errorf("failed to move file into place: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat written file: %w", err)
	}

	return &FileInfo{
		Path:    path,
		Hash:    hashBytes(data),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// CleanupTemp removes a temporary file if it exists
func CleanupTemp(tempPath string) error {
	if tempPath == "" {
		return nil
	}

	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp file: %w", err)
	}

	return nil
}
