package cmd

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/collage-cli/internal/adapters/catalog"
	"github.com/kamal-hamza/collage-cli/internal/adapters/compositor"
	"github.com/kamal-hamza/collage-cli/internal/adapters/repository"
	"github.com/kamal-hamza/collage-cli/internal/core/ports"
	"github.com/kamal-hamza/collage-cli/internal/core/services"
	"github.com/kamal-hamza/collage-cli/internal/logging"
	"github.com/kamal-hamza/collage-cli/pkg/config"
	"github.com/kamal-hamza/collage-cli/pkg/ui"
	"github.com/kamal-hamza/collage-cli/pkg/vault"
)

var (
	// Global vault instance
	appVault  *vault.Vault
	appConfig *config.Config
	logFile   *os.File

	// Gallery
	photoCatalog     ports.Catalog
	directoryCatalog *catalog.DirectoryCatalog // nil when the bundled gallery is used

	// Adapters
	collageCompositor *compositor.Compositor
	collageRepo       *repository.FileCollageRepository

	// Flags
	galleryFlag string
	bundledFlag bool
)

var errVaultMissing = errors.New("vault not initialized")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "collage",
	Short: "Collage - build photo collages in the terminal",
	Long: ui.StyleTitle.Render("Collage") + " - Terminal Collage Studio\n\n" +
		"Pick up to six landscape photos from your gallery, preview the composite\n" +
		"live and save it as a PNG. Run without a subcommand to open the studio.",
	PersistentPreRunE: initializeApp,
	PersistentPostRun: shutdownApp,
	RunE:              runStudio,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, errVaultMissing) {
			fmt.Println(ui.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(studioCmd)
	rootCmd.AddCommand(pickCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(configCmd)

	rootCmd.PersistentFlags().StringVar(&galleryFlag, "gallery", "", "gallery directory (overrides gallery_dir)")
	rootCmd.PersistentFlags().BoolVar(&bundledFlag, "bundled", false, "use the built-in gallery")
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Skip initialization for commands that work without a vault
	if cmd.Name() == "init" || cmd.Name() == "version" {
		return nil
	}

	v, err := vault.New()
	if err != nil {
		return fmt.Errorf("failed to initialize vault: %w", err)
	}
	appVault = v

	if !appVault.Exists() {
		fmt.Println(ui.FormatError("Vault not initialized"))
		fmt.Println(ui.FormatInfo("Run 'collage init' to initialize the vault"))
		return errVaultMissing
	}

	cfg, err := config.Load(appVault.ConfigPath)
	if err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(appConfig.ColorTheme)

	// The terminal belongs to the UI, so logs go to a file
	f, err := logging.OpenFile(appVault.LogFilePath())
	if err != nil {
		return err
	}
	logFile = f
	logging.Init(appConfig.LogLevel, logFile)
	log.Debug().Str("command", cmd.Name()).Str("vault", appVault.RootPath).Msg("Starting")

	if err := openCatalog(); err != nil {
		return err
	}

	var background color.Color
	if c, err := compositor.ParseHexColor(appConfig.Background); err == nil {
		background = c
	} else {
		log.Warn().Err(err).Msg("Invalid background color, using black")
	}
	layout, _ := compositor.ParseLayout(appConfig.Layout)
	collageCompositor = compositor.New(compositor.Options{
		Layout:     layout,
		CellWidth:  appConfig.CellWidth,
		CellHeight: appConfig.CellHeight,
		Background: background,
	})

	collageRepo = repository.NewFileCollageRepository(osfs.New(appVault.RootPath))

	return nil
}

// openCatalog picks the gallery: --bundled, then --gallery, then gallery_dir,
// then the vault gallery if it holds any image, else the bundled one.
func openCatalog() error {
	dir := galleryFlag
	if dir == "" {
		dir = appConfig.GalleryDir
	}
	explicit := dir != ""
	if !explicit {
		dir = appVault.GalleryPath
	}

	if bundledFlag {
		photoCatalog = catalog.NewBundledCatalog()
		return nil
	}

	dc, err := catalog.NewDirectoryCatalog(expandHome(dir))
	if err != nil {
		if explicit {
			return err
		}
		log.Debug().Err(err).Msg("Vault gallery unavailable, using bundled photos")
		photoCatalog = catalog.NewBundledCatalog()
		return nil
	}

	photos, _ := dc.List(context.Background())
	if len(photos) == 0 && !explicit {
		photoCatalog = catalog.NewBundledCatalog()
		return nil
	}

	directoryCatalog = dc
	photoCatalog = dc
	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// newSelectionOptions maps the configuration onto pipeline settings
func newSelectionOptions(cfg *config.Config) services.SelectionOptions {
	opts := services.DefaultSelectionOptions()
	if cfg == nil {
		return opts
	}
	opts.MaxPhotos = cfg.MaxPhotos
	opts.Debounce = millis(cfg.DebounceMS)
	opts.LandscapeOnly = cfg.LandscapeOnly
	return opts
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
