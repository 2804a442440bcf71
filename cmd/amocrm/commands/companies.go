package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var companyColumns = []string{"id", "name", "responsible_user_id", "updated_at"}

// NewCompaniesCommand creates the companies command group.
func NewCompaniesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "companies",
		Aliases: []string{"company"},
		Short:   "Manage companies",
		Long:    "List, inspect and create amoCRM companies",
	}

	cmd.AddCommand(newCompaniesListCommand())
	cmd.AddCommand(newCompaniesGetCommand())
	cmd.AddCommand(newCompaniesAddCommand())
	cmd.AddCommand(newCompaniesUpdateCommand())

	return cmd
}

func newCompaniesListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
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

			companies, err := client.Company().List(ctx, gen, params)
			if err != nil {
				return fmt.Errorf("failed to list companies: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), companies, companyColumns)
		},
	}

	addListFlags(cmd)

	return cmd
}

func newCompaniesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get company details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			company, err := client.Company().One(ctx, id, nil)
			if err != nil {
				return fmt.Errorf("failed to get company: %w", err)
			}

			return outputRecord(cmd.OutOrStdout(), company)
		},
	}
}

func newCompaniesAddCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a company",
		Example: `  amocrm companies add --field name=Acme --field tags='["vip"]'`,
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

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			company := client.Company()
			if err := company.SetValues(values); err != nil {
				return err
			}

			result, err := company.Add(ctx, gen)
			if err != nil {
				return fmt.Errorf("failed to add company: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")

	return cmd
}

func newCompaniesUpdateCommand() *cobra.Command {
	var (
		fields   []string
		modified string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gen, err := currentGeneration()
			if err != nil {
				return err
			}

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			values, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}

			values["id"] = id

			moment, err := parseModifiedFlag(modified)
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			company := client.Company()
			if err := company.SetValues(values); err != nil {
				return err
			}

			result, err := company.Update(ctx, gen, moment)
			if err != nil {
				return fmt.Errorf("failed to update company: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")
	cmd.Flags().StringVar(&modified, "modified", "now", "modification moment (epoch, RFC 3339 or now)")

	return cmd
}
