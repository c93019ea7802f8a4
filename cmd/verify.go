package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aaka8h/face-attend/internal/config"
	"github.com/aaka8h/face-attend/internal/facematch"
	"github.com/aaka8h/face-attend/internal/ledger"
	"github.com/aaka8h/face-attend/internal/policy"
	"github.com/aaka8h/face-attend/internal/session"
	"github.com/aaka8h/face-attend/internal/store"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Auto-verify faces and mark attendance",
	Long: `Run the live verification loop: faces detected in the camera feed are
matched against the enrolled users and attendance is marked automatically,
once per person per day. Press Ctrl+C to stop.`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return verifyFlow(ctx, cfg, cmd.OutOrStdout())
}

func verifyFlow(ctx context.Context, cfg *config.Config, out io.Writer) error {
	st, err := store.Open(cfg.Storage.UsersFile())
	if err != nil {
		return err
	}
	if st.Count() == 0 {
		return errors.New("no users registered yet, run 'face-attend register' first")
	}

	led, err := ledger.New(cfg.Storage.AttendanceDir, nil)
	if err != nil {
		return err
	}
	engine, err := policy.NewEngine(led, st, nil)
	if err != nil {
		return err
	}
	cooldown := policy.NewCooldownFilter(cfg.Policy.Cooldown(), nil)

	gallery := facematch.NewGallery(cfg.Match.Tolerance)
	for _, u := range st.All() {
		gallery.Add(u.ID, u.Name, u.Embeddings)
	}

	src, det, err := openDevices(cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	log, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	fmt.Fprintln(out, "Auto-verification running")
	fmt.Fprintf(out, "  Registered users: %d\n", st.Count())
	fmt.Fprintf(out, "  Today's attendance: %d\n", engine.AttendedCount())
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	v := &session.Verifier{
		Source:   src,
		Detector: det,
		Gallery:  gallery,
		Engine:   engine,
		Cooldown: cooldown,
		Renderer: &session.ConsoleRenderer{Out: out},
		Log:      log,
	}
	if err := v.Run(ctx); err != nil {
		if session.IsDeviceError(err) {
			return fmt.Errorf("camera unavailable: %w", err)
		}
		return err
	}

	fmt.Fprintf(out, "Stopped. Attendance today: %d/%d\n", engine.AttendedCount(), st.Count())
	return nil
}
