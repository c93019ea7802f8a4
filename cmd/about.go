package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Show information about this system",
	Run: func(cmd *cobra.Command, args []string) {
		printAbout(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}

func printAbout(w io.Writer) {
	fmt.Fprintln(w, "Face Attend - kiosk face-recognition attendance")
	fmt.Fprintf(w, "  Version: %s\n", Version)
	fmt.Fprintln(w, "  Detection and embeddings: local detector sidecar")
	fmt.Fprintln(w, "  Features:")
	fmt.Fprintln(w, "    - automatic face verification")
	fmt.Fprintln(w, "    - once-per-day attendance marking")
	fmt.Fprintln(w, "    - daily ledger files and reports")
}
