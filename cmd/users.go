package cmd

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaka8h/face-attend/internal/config"
	"github.com/aaka8h/face-attend/internal/report"
	"github.com/aaka8h/face-attend/internal/store"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List all registered users",
	RunE:  runUsers,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a registered user",
	Long: `Delete a user from the enrollment database. Past attendance events are
kept; the user just becomes unknown to the matcher.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersDeleteCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}

func runUsers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return usersFlow(cfg, cmd.OutOrStdout())
}

func usersFlow(cfg *config.Config, out io.Writer) error {
	st, err := store.Open(cfg.Storage.UsersFile())
	if err != nil {
		return err
	}

	users := st.All()
	rows := make([]report.UserRow, len(users))
	for i, u := range users {
		rows[i] = report.UserRow{
			ID:              u.ID,
			Name:            u.Name,
			Department:      u.Department,
			RegisteredAt:    u.RegisteredAt.Format("2006-01-02"),
			TotalAttendance: u.TotalAttendance,
		}
		if u.LastAttendance != nil {
			rows[i].LastAttendance = u.LastAttendance.Format(time.DateTime)
		}
	}
	report.RenderUsers(out, rows)
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return deleteFlow(cfg, args[0], mustGetBool(cmd, "yes"), bufio.NewReader(cmd.InOrStdin()), cmd.OutOrStdout())
}

func deleteFlow(cfg *config.Config, id string, skipConfirm bool, reader *bufio.Reader, out io.Writer) error {
	st, err := store.Open(cfg.Storage.UsersFile())
	if err != nil {
		return err
	}

	u, err := st.Get(id)
	if err != nil {
		return err
	}

	if !skipConfirm {
		answer, err := promptLine(reader, out,
			fmt.Sprintf("Delete %s (ID: %s)? (yes/no): ", u.Name, u.ID))
		if err != nil {
			return err
		}
		if answer != "yes" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	if err := st.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s deleted\n", u.Name)
	return nil
}
