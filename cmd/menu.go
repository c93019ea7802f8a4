package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaka8h/face-attend/internal/config"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Run the interactive kiosk menu",
	Long: `Run the interactive kiosk menu loop. Each option invokes the matching
operation; failures are reported and the menu continues.`,
	RunE: runMenu,
}

func init() {
	rootCmd.AddCommand(menuCmd)
}

func runMenu(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	for {
		printMenu(out)
		choice, err := promptLine(reader, out, "Select option (1-7): ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var opErr error
		switch choice {
		case "1":
			opErr = menuRegister(cmd, cfg, reader, out)
		case "2":
			opErr = menuVerify(cmd, cfg, out)
		case "3":
			opErr = reportFlow(cfg, "", out)
		case "4":
			opErr = usersFlow(cfg, out)
		case "5":
			id, err := promptLine(reader, out, "Enter ID to delete: ")
			if err != nil {
				opErr = err
				break
			}
			opErr = deleteFlow(cfg, id, false, reader, out)
		case "6":
			printAbout(out)
		case "7":
			fmt.Fprintln(out, "Goodbye")
			return nil
		default:
			fmt.Fprintln(out, "Invalid option")
		}

		if opErr != nil {
			fmt.Fprintf(out, "Error: %v\n", opErr)
		}
	}
}

// menuRegister runs enrollment with Ctrl+C bound to cancelling the capture
// loop, so the operator returns to the menu instead of killing the process.
func menuRegister(cmd *cobra.Command, cfg *config.Config, reader *bufio.Reader, out io.Writer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return registerFlow(ctx, cfg, reader, out)
}

// menuVerify runs the verification loop with the same interrupt handling.
func menuVerify(cmd *cobra.Command, cfg *config.Config, out io.Writer) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return verifyFlow(ctx, cfg, out)
}

func printMenu(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "FACE ATTEND")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "1. Register new person")
	fmt.Fprintln(w, "2. Auto-verify and mark attendance")
	fmt.Fprintln(w, "3. View today's attendance report")
	fmt.Fprintln(w, "4. View all registered users")
	fmt.Fprintln(w, "5. Delete user")
	fmt.Fprintln(w, "6. About")
	fmt.Fprintln(w, "7. Exit")
	fmt.Fprintln(w, strings.Repeat("=", 60))
}
