package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

// Vault represents the application-private storage directory
type Vault struct {
	RootPath     string
	CollagesPath string
	GalleryPath  string
	LogsPath     string
	ConfigPath   string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine vault root: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return NewAt(rootPath, configPath), nil
}

// NewAt creates a vault rooted at rootPath
func NewAt(rootPath, configPath string) *Vault {
	return &Vault{
		RootPath:     rootPath,
		CollagesPath: filepath.Join(rootPath, "collages"),
		GalleryPath:  filepath.Join(rootPath, "gallery"),
		LogsPath:     filepath.Join(rootPath, "logs"),
		ConfigPath:   configPath,
	}
}

// getVaultRoot returns the vault root directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "collage"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "collage"), nil
	}

	// Fall back to ~/.local/share/collage
	return filepath.Join(homeDir, ".local", "share", "collage"), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "collage", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, "collage-config", "config.yaml"), nil
	}

	// Fall back to ~/.config/collage/config.yaml
	return filepath.Join(homeDir, ".config", "collage", "config.yaml"), nil
}

// Initialize creates the vault directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.CollagesPath,
		v.GalleryPath,
		v.LogsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the vault has been initialized
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// GetCollagePath returns the full path for a saved collage
func (v *Vault) GetCollagePath(filename string) string {
	return filepath.Join(v.CollagesPath, filename)
}

// LogFilePath returns the path of the application log
func (v *Vault) LogFilePath() string {
	return filepath.Join(v.LogsPath, "collage.log")
}
