package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List all configured candidate profiles",
	Long:  "Reads the config and prints a table of all candidate profiles and their text sizes.",
	RunE:  runProfiles,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func runProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-20s %-40s %s\n", "Profile", "Path", "Chars")
	fmt.Println(strings.Repeat("─", 70))

	unreadable := 0
	for _, p := range cfg.Profiles {
		size := "unreadable"
		if text, err := p.ReadText(); err == nil {
			size = fmt.Sprint(len([]rune(text)))
		} else {
			unreadable++
		}
		fmt.Printf("%-20s %-40s %s\n", p.Name, p.Path, size)
	}

	fmt.Printf("\nTotal: %d profiles (%d unreadable)\n", len(cfg.Profiles), unreadable)
	fmt.Printf("Roles: %s\n", strings.Join(cfg.Roles, ", "))
	fmt.Printf("Locations: %s\n", strings.Join(cfg.Locations, ", "))
	return nil
}
