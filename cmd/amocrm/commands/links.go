package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/spf13/cobra"
)

var linkColumns = []string{"from", "from_id", "to", "to_id", "to_entity_type", "to_entity_id"}

// NewLinksCommand creates the links command group.
func NewLinksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "links",
		Aliases: []string{"link"},
		Short:   "Manage links between entities",
		Long:    "List, create and remove links between leads, contacts, companies, customers and catalog elements",
	}

	cmd.AddCommand(newLinksListCommand())
	cmd.AddCommand(newLinksMassCommand())
	cmd.AddCommand(newLinksApplyCommand(amocrm.ModeLink))
	cmd.AddCommand(newLinksApplyCommand(amocrm.ModeUnlink))

	return cmd
}

func newLinksListCommand() *cobra.Command {
	var (
		entity  string
		id      int
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List links of an entity",
		Long: `List links of an entity.

With v4, --entity and --id select the entity. With v2, --filter passes the
raw filter, e.g. --filter from=leads --filter from_id=42.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			gen, err := currentGeneration()
			if err != nil {
				return err
			}

			params, err := parseFieldFlags(filters)
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			links, err := client.Link().List(ctx, gen, amocrm.LinkQuery{
				EntityType: amocrm.EntityType(entity),
				EntityID:   id,
				Params:     params,
			})
			if err != nil {
				return fmt.Errorf("failed to list links: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), links, linkColumns)
		},
	}

	cmd.Flags().StringVar(&entity, "entity", string(amocrm.EntityLeads), "entity type (v4)")
	cmd.Flags().IntVar(&id, "id", 0, "entity ID (v4)")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "raw filter as key=value (v2, repeatable)")

	return cmd
}

func newLinksMassCommand() *cobra.Command {
	var filters []string

	cmd := &cobra.Command{
		Use:   "mass ENTITY",
		Short: "List links of several entities of one type (v4)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			params, err := parseFieldFlags(filters)
			if err != nil {
				return err
			}

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			links, err := client.Link().Mass(ctx, amocrm.EntityType(args[0]), params)
			if err != nil {
				return fmt.Errorf("failed to list links: %w", err)
			}

			return outputRecords(cmd.OutOrStdout(), links, linkColumns)
		},
	}

	cmd.Flags().StringArrayVar(&filters, "filter", nil, "filter as key=value, e.g. filter[entity_id][]=42 (repeatable)")

	return cmd
}

func newLinksApplyCommand(mode amocrm.LinkMode) *cobra.Command {
	var (
		from   string
		fromID int
		to     string
		toID   int
		fields []string
	)

	use, short := "link", "Link two entities"
	if mode == amocrm.ModeUnlink {
		use, short = "unlink", "Remove the link between two entities"
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: fmt.Sprintf("  amocrm links %s --from leads --from-id 1 --to contacts --to-id 2", use),
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

			values["from"] = from
			values["from_id"] = fromID
			values["to"] = to
			values["to_id"] = toID

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			link := client.Link()
			if err := link.SetValues(values); err != nil {
				return err
			}

			var result *amocrm.Result
			if mode == amocrm.ModeUnlink {
				result, err = link.Unlink(ctx, gen)
			} else {
				result, err = link.Link(ctx, gen)
			}

			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}

			return outputResult(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "source entity type")
	cmd.Flags().IntVar(&fromID, "from-id", 0, "source entity ID")
	cmd.Flags().StringVar(&to, "to", "", "target entity type")
	cmd.Flags().IntVar(&toID, "to-id", 0, "target entity ID")
	cmd.Flags().StringArrayVarP(&fields, "field", "f", nil,
		"link metadata as key=value, e.g. quantity=2 or main_contact=true (repeatable)")

	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("from-id")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("to-id")

	return cmd
}
