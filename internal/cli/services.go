package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asad/mailreg/internal/logging"
)

// serviceCmd groups the commands that edit an account's services.
var serviceCmd = &cobra.Command{
	Use:     "service",
	Aliases: []string{"svc"},
	Short:   "Enable or disable services on an account",
}

var serviceAddCmd = &cobra.Command{
	Use:   "add EMAIL SERVICE...",
	Short: "Enable services on an account",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		if err := store.AddServices(cmd.Context(), args[0], args[1:]...); err != nil {
			return err
		}
		logger.Info("services enabled",
			logging.String("email", args[0]),
			logging.Strings("services", args[1:]),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Enabled %s on %s\n", strings.Join(args[1:], ", "), args[0])
		return nil
	},
}

var serviceRemoveCmd = &cobra.Command{
	Use:     "remove EMAIL SERVICE...",
	Aliases: []string{"rm"},
	Short:   "Disable services on an account",
	Args:    cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, logger, err := openStore()
		if err != nil {
			return err
		}
		if err := store.RemoveServices(cmd.Context(), args[0], args[1:]...); err != nil {
			return err
		}
		logger.Info("services disabled",
			logging.String("email", args[0]),
			logging.Strings("services", args[1:]),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Disabled %s on %s\n", strings.Join(args[1:], ", "), args[0])
		return nil
	},
}

func init() {
	serviceCmd.AddCommand(serviceAddCmd)
	serviceCmd.AddCommand(serviceRemoveCmd)
}
