package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/collage-cli/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the collage configuration",
	Long: `Show the effective configuration with syntax highlighting.

Use 'collage config edit' to open the file in your editor.`,
	RunE: runConfigShow,
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the collage configuration file",
	RunE:  runConfigEdit,
}

func init() {
	configCmd.AddCommand(configEditCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	fmt.Println(ui.FormatMuted("# " + appVault.ConfigPath))
	fmt.Print(highlightYAML(string(data)))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := appVault.ConfigPath

	// Ensure it exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := appConfig.Save(path); err != nil {
			return err
		}
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))

	c := exec.Command(GetPreferredEditor(), path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
