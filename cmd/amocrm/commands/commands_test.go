package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/amocrm-client/cmd/amocrm/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func subcommandNames(cmd *cobra.Command) []string {
	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	return names
}

func TestNewCompaniesCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCompaniesCommand()
	assert.Equal(t, "companies", cmd.Use)
	assert.Equal(t, []string{"company"}, cmd.Aliases)
	assert.ElementsMatch(t, []string{"list", "get", "add", "update"}, subcommandNames(cmd))
}

func TestNewCustomersCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewCustomersCommand()
	assert.Equal(t, "customers", cmd.Use)
	assert.ElementsMatch(t, []string{"list", "add"}, subcommandNames(cmd))
}

func TestNewLeadsCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLeadsCommand()
	assert.Equal(t, "leads", cmd.Use)
	assert.ElementsMatch(t, []string{"list", "get", "add", "update"}, subcommandNames(cmd))
}

func TestNewLinksCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLinksCommand()
	assert.Equal(t, "links", cmd.Use)
	assert.ElementsMatch(t, []string{"list", "mass", "link", "unlink"}, subcommandNames(cmd))

	link, _, err := cmd.Find([]string{"link"})
	assert.NoError(t, err)

	for _, flag := range []string{"from", "from-id", "to", "to-id", "field"} {
		assert.NotNil(t, link.Flags().Lookup(flag), flag)
	}
}

func TestNewAccountCommands(t *testing.T) {
	t.Parallel()

	account := commands.NewAccountCommand()
	assert.Equal(t, "account", account.Use)
	assert.NotNil(t, account.Flags().Lookup("short"))

	users := commands.NewUsersCommand()
	assert.Equal(t, "users [ID]", users.Use)
	assert.NotNil(t, users.Flags().Lookup("me"))
}

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)

	for _, flag := range []string{"client-id", "client-secret", "redirect-uri", "code"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.ElementsMatch(t, []string{"show", "set", "unset"}, subcommandNames(cmd))
}
