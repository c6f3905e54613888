package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// resetPasswordCmd overwrites a user's password
var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password <email> <new-password>",
	Short: "Reset a user's password",
	Long: `Set a new password for an existing user without knowing the old one.
The password must be at least 6 characters.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openServices()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.auth.ResetPassword(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to reset password for %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Password for %s has been reset\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetPasswordCmd)
}
