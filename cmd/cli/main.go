package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/brook/internal/adapter/http/dto"
	"github.com/iho/brook/internal/adapter/repository/memory"
	"github.com/iho/brook/internal/client"
	"github.com/iho/brook/internal/demo"
	"github.com/iho/brook/internal/infrastructure/logger"
	"github.com/iho/brook/internal/ofx"
	"github.com/iho/brook/internal/report"
	"github.com/iho/brook/internal/usecase"
)

type options struct {
	baseURL string
	timeout time.Duration
	retries uint64
	verbose bool
}

func (o *options) logger(cmd *cobra.Command) zerolog.Logger {
	level := "warn"
	if o.verbose {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: "console", Output: cmd.ErrOrStderr()})
}

func (o *options) client(cmd *cobra.Command) *client.Client {
	return client.New(o.baseURL,
		client.WithTimeout(o.timeout),
		client.WithRetries(o.retries),
		client.WithLogger(o.logger(cmd)),
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "brook",
		Short:         "Brook personal ledger CLI",
		Long:          `A command line interface for the Brook ledger: run the local demo or talk to the Brook API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the Brook API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().Uint64Var(&opts.retries, "retries", 3, "Retries for failed requests")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log retries and requests")

	rootCmd.AddCommand(
		demoCmd(),
		accountsCmd(opts),
		transactionsCmd(opts),
		importOFXCmd(opts),
	)

	return rootCmd
}

func demoCmd() *cobra.Command {
	var process bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Build the sample checking account locally and print its summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo := memory.NewAccountRepository()
			idGen := memory.NewULIDGenerator()

			account, err := demo.Seed(ctx, usecase.NewAccountUseCase(repo, idGen, nil))
			if err != nil {
				return err
			}

			if process {
				result, err := usecase.NewTransactionUseCase(repo, idGen, nil).
					ProcessTransactions(ctx, usecase.ProcessTransactionsInput{AccountID: account.ID})
				if err != nil {
					return err
				}
				account = result.Account
			}

			return report.Render(cmd.OutOrStdout(), account)
		},
	}

	cmd.Flags().BoolVar(&process, "process", false, "Apply the pending transactions before printing")
	return cmd
}

func accountsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var limit, offset int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client(cmd).ListAccounts(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), resp.Accounts)
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum accounts to list")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Accounts to skip")

	showCmd := &cobra.Command{
		Use:   "show <account-id>",
		Short: "Print an account as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			account, err := opts.client(cmd).GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), account)
		},
	}

	var local bool
	summaryCmd := &cobra.Command{
		Use:   "summary <account-id>",
		Short: "Print an account summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client(cmd)
			if !local {
				text, err := c.Summary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}

			resp, err := c.GetAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			account, err := resp.ToDomain()
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), account)
		},
	}
	summaryCmd.Flags().BoolVar(&local, "local", false, "Render the summary locally from the account JSON")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Compare stored balances with a replay of applied transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client(cmd)
			if len(args) == 1 {
				result, err := c.Reconcile(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			}

			rep, err := c.ReconcileAll(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rep)
		},
	}

	cmd.AddCommand(listCmd, showCmd, summaryCmd, reconcileCmd)
	return cmd
}

func transactionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Transaction operations",
	}

	var asOf string
	processCmd := &cobra.Command{
		Use:   "process <account-id>",
		Short: "Apply pending transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client(cmd).ProcessTransactions(cmd.Context(), args[0], asOf)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d transaction(s); balance %s, total %s\n",
				resp.Applied, resp.Account.Balance, resp.Account.Total)
			return nil
		},
	}
	processCmd.Flags().StringVar(&asOf, "as-of", "", "Only apply transactions dated on or before this date")

	cmd.AddCommand(processCmd)
	return cmd
}

func importOFXCmd(opts *options) *cobra.Command {
	var fund string
	var process bool

	cmd := &cobra.Command{
		Use:   "import-ofx <account-id> <file>",
		Short: "Queue the transactions of an OFX/QFX statement on an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, path := args[0], args[1]

			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			log := opts.logger(cmd)
			ctx := log.WithContext(cmd.Context())
			txs, err := ofx.NewParser().Parse(ctx, f, fund)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			c := opts.client(cmd)
			for _, tx := range txs {
				if _, err := c.AddTransaction(ctx, accountID, dto.TransactionRequestFromDomain(tx)); err != nil {
					return fmt.Errorf("queue %s: %w", tx, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d transaction(s) from %s\n", len(txs), path)

			if !process {
				return nil
			}

			resp, err := c.ProcessTransactions(ctx, accountID, "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d transaction(s); balance %s\n", resp.Applied, resp.Account.Balance)
			return nil
		},
	}

	cmd.Flags().StringVar(&fund, "fund", "", "Fund to book the imported transactions against")
	cmd.Flags().BoolVar(&process, "process", false, "Apply pending transactions after importing")
	cmd.MarkFlagRequired("fund")
	return cmd
}

func printAccounts(w io.Writer, accounts []*dto.AccountResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tBALANCE\tTOTAL\tPENDING")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", a.ID, truncate(a.Name, 32), a.Balance, a.Total, len(a.Pending))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to n runes, ending in "..." when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
