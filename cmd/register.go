package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aaka8h/face-attend/internal/config"
	"github.com/aaka8h/face-attend/internal/session"
	"github.com/aaka8h/face-attend/internal/store"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new person",
	Long: `Register a new person in the enrollment database.

Prompts for name, id and department, then captures five face embedding
samples from the camera. Capture a sample per pose; only frames with
exactly one visible face are accepted. Press Ctrl+C to cancel.`,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return registerFlow(ctx, cfg, bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
}

func registerFlow(ctx context.Context, cfg *config.Config, reader *bufio.Reader, out io.Writer) error {
	st, err := store.Open(cfg.Storage.UsersFile())
	if err != nil {
		return err
	}

	name, err := promptLine(reader, out, "Enter full name: ")
	if err != nil {
		return err
	}
	id, err := promptLine(reader, out, "Enter ID: ")
	if err != nil {
		return err
	}
	department, err := promptLine(reader, out, "Enter department: ")
	if err != nil {
		return err
	}

	if name == "" || id == "" {
		return fmt.Errorf("%w: name and id must not be empty", store.ErrInvalidInput)
	}
	if _, err := st.Get(id); err == nil {
		return fmt.Errorf("%w: %s", store.ErrDuplicateID, id)
	}
	if dups := st.FindByName(name); len(dups) > 0 {
		fmt.Fprintf(out, "Warning: %q is already enrolled under id %s\n", dups[0].Name, dups[0].ID)
	}

	src, det, err := openDevices(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	fmt.Fprintln(out, "Look straight at the camera; good lighting helps.")
	fmt.Fprintf(out, "Capturing %d samples, vary the angle slightly between them.\n", store.EnrollmentSamples)

	samples, err := session.CaptureSamples(ctx, src, det, store.EnrollmentSamples, out)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(out, "Registration cancelled")
			return nil
		}
		return err
	}

	u, err := st.Create(id, name, department, samples)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Registration successful")
	fmt.Fprintf(out, "  Name:       %s\n", u.Name)
	fmt.Fprintf(out, "  ID:         %s\n", u.ID)
	fmt.Fprintf(out, "  Department: %s\n", u.Department)
	return nil
}
