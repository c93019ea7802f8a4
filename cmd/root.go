package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aaka8h/face-attend/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "face-attend",
	Short: "A kiosk face-recognition attendance tool",
	Long: `Face Attend is a local kiosk attendance tool. It captures frames from a
camera, matches detected faces against the enrolled user database, and
records a once-per-day attendance event per user in a daily ledger.

Face detection and embedding are delegated to a local detector sidecar
(DETECTOR_URL); frames come from an HTTP snapshot camera (CAMERA_URL).`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML config file (env vars take precedence)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig resolves the effective configuration from the optional YAML
// file and the environment.
func loadConfig() (*config.Config, error) {
	path := configFile
	if path == "" {
		path = os.Getenv("FACE_ATTEND_CONFIG")
	}
	return config.LoadWithFile(path)
}
