package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var leadColumns = []string{"id", "name", "price", "status_id", "pipeline_id", "responsible_user_id"}

// NewLeadsCommand creates the leads command group.
func NewLeadsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "leads",
		Aliases: []string{"lead"},
		Short:   "Manage leads",
		Long:    "List, inspect and create amoCRM leads",
	}

	cmd.AddCommand(newLeadsListCommand())
	cmd.AddCommand(newLeadsGetCommand())
	cmd.AddCommand(newLeadsAddCommand())
	cmd.AddCommand(newLeadsUpdateCommand())

	return cmd
}

func newLeadsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leads",
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

			leads, err := client.Lead().List(ctx, gen, params)
			if err != nil {
				return fmt.Errorf("failed to list leads: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), leads, leadColumns)
		},
	}

	addListFlags(cmd)

	return cmd
}

func newLeadsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Get lead details",
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

			lead, err := client.Lead().One(ctx, id, nil)
			if err != nil {
				return fmt.Errorf("failed to get lead: %w", err)
			}

			return outputRecord(cmd.OutOrStdout(), lead)
		},
	}
}

func newLeadsAddCommand() *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Create a lead",
		Example: `  amocrm leads add --field name=Deal --field price=1500`,
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

			lead := client.Lead()
			if err := lead.SetValues(values); err != nil {
				return err
			}

			result, err := lead.Add(ctx, gen)
			if err != nil {
				return fmt.Errorf("failed to add lead: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")

	return cmd
}

func newLeadsUpdateCommand() *cobra.Command {
	var (
		fields   []string
		modified string
	)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a lead",
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

			lead := client.Lead()
			if err := lead.SetValues(values); err != nil {
				return err
			}

			result, err := lead.Update(ctx, gen, moment)
			if err != nil {
				return fmt.Errorf("failed to update lead: %w", err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil, "field value as key=value (repeatable)")
	cmd.Flags().StringVar(&modified, "modified", "now", "modification moment (epoch, RFC 3339 or now)")

	return cmd
}
