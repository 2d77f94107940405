package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"yelpcamp/internal/secrets"
)

// rootCmd is the yelpcamp binary; it does nothing on its own.
var rootCmd = &cobra.Command{
	Use:           "yelpcamp",
	Short:         "Campground listings with reviews and maps",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the web app. Configuration comes from the environment,
with a .env file read first outside production.`,
	RunE: runServe,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace all campgrounds with generated sample data",
	RunE:  runSeed,
}

var (
	seedCount    int
	seedOwner    string
	seedEmail    string
	seedPassword string
)

func init() {
	seedCmd.Flags().IntVar(&seedCount, "count", 50, "Number of campgrounds to create")
	seedCmd.Flags().StringVar(&seedOwner, "owner", "tim", "Username that owns the seeded campgrounds")
	seedCmd.Flags().StringVar(&seedEmail, "email", "", "Owner email (default: <owner>@yelpcamp.local)")
	seedCmd.Flags().StringVar(&seedPassword, "password", "", "Owner password, used only when the owner is created (or set SEED_PASSWORD)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	err := rootCmd.Execute()
	secrets.Purge()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
