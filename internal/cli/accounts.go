package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/asad/mailreg/internal/logging"
	"github.com/asad/mailreg/internal/registry"
)

var (
	listMissing       string
	listShowPasswords bool
)

// addCmd creates an account, replacing any account with the same email.
var addCmd = &cobra.Command{
	Use:   "add EMAIL [PASSWORD]",
	Short: "Add an account",
	Long: `Add an account to the registry. An existing account with the same email
is replaced, including its services.

When PASSWORD is omitted it is prompted for on a terminal, or read as
one line from standard input otherwise.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

// removeCmd deletes an account.
var removeCmd = &cobra.Command{
	Use:     "remove EMAIL",
	Aliases: []string{"rm"},
	Short:   "Remove an account",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

// listCmd prints the accounts as a table.
var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List accounts",
	Long: `List the accounts in the registry. With --missing, only accounts that
are not enrolled in the given service are listed.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listMissing, "missing", "", "only list accounts without this service")
	listCmd.Flags().BoolVar(&listShowPasswords, "show-passwords", false, "include passwords in the output")
}

func runAdd(cmd *cobra.Command, args []string) error {
	email := args[0]

	var password string
	if len(args) == 2 {
		password = args[1]
	} else {
		var err error
		password, err = readPassword(cmd, email)
		if err != nil {
			return err
		}
	}

	store, logger, err := openStore()
	if err != nil {
		return err
	}

	if err := store.AddAccount(cmd.Context(), email, password); err != nil {
		return err
	}

	logger.Info("account added", logging.String("email", email))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", email)
	return nil
}

// readPassword prompts without echo when stdin is a terminal and otherwise
// reads the first line of the command's input.
func readPassword(cmd *cobra.Command, email string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", email)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(password), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password from input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, logger, err := openStore()
	if err != nil {
		return err
	}

	if err := store.RemoveAccount(cmd.Context(), args[0]); err != nil {
		return err
	}

	logger.Info("account removed", logging.String("email", args[0]))
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	store, logger, err := openStore()
	if err != nil {
		return err
	}

	var list []registry.Account
	if listMissing != "" {
		list, err = store.AccountsMissingService(cmd.Context(), listMissing)
	} else {
		list, err = store.ListAccounts(cmd.Context())
	}
	if err != nil {
		return err
	}

	logger.Debug("listing accounts",
		logging.String("missing", listMissing),
		logging.Bool("show_passwords", listShowPasswords),
		logging.Int("count", len(list)),
	)
	renderAccounts(cmd.OutOrStdout(), list, listShowPasswords)
	return nil
}

func renderAccounts(out io.Writer, list []registry.Account, showPasswords bool) {
	header := []string{"Email", "Services"}
	if showPasswords {
		header = []string{"Email", "Password", "Services"}
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	for _, acc := range list {
		services := strings.Join(acc.Services(), ", ")
		if showPasswords {
			table.Append([]string{acc.Email(), acc.Password(), services})
		} else {
			table.Append([]string{acc.Email(), services})
		}
	}
	table.Render()
}
