package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/pkg/ui"
	"github.com/kamal-hamza/collage-cli/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the collage vault",
	Long: `Initialize the collage vault directory structure.

This creates the managed vault at ~/.local/share/collage/ with the following structure:
  - collages/   : Saved collages (PNG) and their manifest
  - gallery/    : Your photos (JPEG, PNG, WebP, BMP)
  - logs/       : Application logs
  - config.yaml : Global configuration (in ~/.config/collage/)`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New()
	if err != nil {
		fmt.Println(ui.FormatError("Failed to determine vault location"))
		return err
	}

	if v.Exists() {
		fmt.Println(ui.FormatWarning("Vault already initialized"))
		fmt.Println(ui.FormatMuted("Location: " + v.RootPath))
		return nil
	}

	fmt.Println(ui.FormatRocket("Initializing collage vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.FormatError("Failed to initialize vault"))
		return err
	}

	if err := createDefaultConfig(v); err != nil {
		// Config is optional
		fmt.Println(ui.FormatWarning("Failed to create default config: " + err.Error()))
	} else {
		fmt.Println(ui.FormatSuccess("Default config created"))
	}

	fmt.Println(ui.FormatSuccess("Vault initialized successfully!"))
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Location", v.RootPath))
	fmt.Println(ui.RenderKeyValue("Config", v.ConfigPath))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Directory structure:"))
	fmt.Println(ui.FormatMuted("  collages/   - Saved collages"))
	fmt.Println(ui.FormatMuted("  gallery/    - Photos to pick from"))
	fmt.Println(ui.FormatMuted("  logs/       - Application logs"))
	fmt.Println()
	fmt.Println(ui.FormatInfo("Next steps:"))
	fmt.Println(ui.FormatMuted("  1. Copy some photos into " + v.GalleryPath + " (optional)"))
	fmt.Println(ui.FormatMuted("  2. Open the studio: collage"))
	fmt.Println(ui.FormatMuted("  3. List saved collages: collage list"))

	return nil
}

func createDefaultConfig(v *vault.Vault) error {
	if _, err := os.Stat(v.ConfigPath); err == nil {
		return nil
	}

	defaultConfig := `# Collage Configuration
# This file is optional - all settings have sensible defaults

# Most photos in one collage
# max_photos: 6

# Quiet period before a pick is accepted (milliseconds)
# debounce_ms: 250

# Only accept photos wider than they are tall
# landscape_only: true

# Layout of the composite: grid, horizontal or vertical
# layout: grid

# Size of one photo cell in pixels
# cell_width: 480
# cell_height: 320

# Background behind letterboxed photos
# background: "#1e1e2e"

# Longest side of the thumbnail in pixels
# thumbnail_max_dimension: 320

# Photo directory (defaults to the vault gallery, then the built-in photos)
# gallery_dir: ""

# Reload the gallery when files change
# watch_gallery: true

# Copy the path of a saved collage to the clipboard
# copy_path: true

# Color theme: auto, dark or light
# color_theme: auto

# Default editor (uses $EDITOR environment variable if not set)
# editor: ""

# Log level: debug, info, warn or error
# log_level: info
`

	configDir := filepath.Dir(v.ConfigPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return os.WriteFile(v.ConfigPath, []byte(defaultConfig), 0644)
}
