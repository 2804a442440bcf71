package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var customerColumns = []string{"id", "name", "next_price", "next_date", "responsible_user_id"}

// NewCustomersCommand creates the customers command group.
func NewCustomersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "Manage customers",
		Long:    "List and create amoCRM customers",
	}

	cmd.AddCommand(newCustomersListCommand())
	cmd.AddCommand(newCustomersAddCommand())

	return cmd
}

func newCustomersListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gen, err := currentGeneration()
			if err != nil {
				return err
			}

			params, err := listParamsFromFlags(cmd)
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customers, err := client.Customer().List(ctx, gen, params)
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), customers, customerColumns)
		},
	}

	addListFlags(cmd)

	return cmd
}

func newCustomersAddCommand() *cobra.Command {
	var (
		fields   []string
		modified string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a customer",
		Example: `  amocrm customers add --field name=Subscriber --field next_date=now --field next_price=990`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gen, err := currentGeneration()
			if err != nil {
				return err
			}

			values, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}

			moment, err := parseModifiedFlag(modified)
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customer := client.Customer()
			if err := customer.SetValues(values); err != nil {
				return err
			}

			result, err := customer.Add(ctx, gen, moment)
			if err != nil {
				return fmt.Errorf("failed to add customer: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")
	cmd.Flags().StringVar(&modified, "modified", "", "send If-Modified-Since (epoch, RFC 3339 or now)")

	return cmd
}
