package logreader

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultLogPath returns the default Player.log path for the current
// platform, or an error if the platform is unsupported.
func DefaultLogPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "Wizards Of The Coast", "MTGA", "Player.log"), nil
	case "windows":
		return filepath.Join(home, "AppData", "LocalLow", "Wizards Of The Coast", "MTGA", "Player.log"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// DefaultCardDatabaseDir returns the directory Arena keeps its raw data
// files in, where the Raw_CardDatabase file lives.
func DefaultCardDatabaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "com.wizards.mtga", "Downloads", "Raw"), nil
	case "windows":
		return filepath.Join("C:\\", "Program Files", "Wizards of the Coast", "MTGA", "MTGA_Data", "Downloads", "Raw"), nil
	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// LogExists checks that the log file exists at the given path and is a
// regular file.
func LogExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("path is a directory, not a file")
	}
	return true, nil
}
