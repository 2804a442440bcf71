package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var userColumns = []string{"id", "name", "email", "lang"}

// NewAccountCommand creates the account command.
func NewAccountCommand() *cobra.Command {
	var (
		short bool
		with  []string
	)

	cmd := &cobra.Command{
		Use:   "account",
		Short: "Show account information",
		Long:  "Display the current account. With --short, v2 dictionaries are reduced to their identifying keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gen, err := currentGeneration()
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			params := map[string]any{}
			if len(with) > 0 {
				params["with"] = with
			}

			account, err := client.Account().Current(ctx, gen, short, params)
			if err != nil {
				return fmt.Errorf("failed to get account: %w", err)
			}

			return outputRecord(cmd.OutOrStdout(), account)
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "reduce the response to identifying keys (v2)")
	cmd.Flags().StringSliceVar(&with, "with", nil, "related data to include")

	return cmd
}

// NewUsersCommand creates the users command.
func NewUsersCommand() *cobra.Command {
	var me bool

	cmd := &cobra.Command{
		Use:     "users [ID]",
		Aliases: []string{"user"},
		Short:   "List account users",
		Long:    "List the users of the account, or show one user by ID",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			if me {
				user, err := client.Account().Me(ctx)
				if err != nil {
					return fmt.Errorf("failed to get current user: %w", err)
				}

				return outputRecord(cmd.OutOrStdout(), user)
			}

			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}

				user, err := client.Account().User(ctx, id, nil)
				if err != nil {
					return fmt.Errorf("failed to get user: %w", err)
				}

				return outputRecord(cmd.OutOrStdout(), user)
			}

			users, err := client.Account().Users(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), users, userColumns)
		},
	}

	cmd.Flags().BoolVar(&me, "me", false, "show the user the token belongs to")

	return cmd
}
