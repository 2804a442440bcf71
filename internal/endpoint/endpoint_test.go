package endpoint_test

import (
	"net/http"
	"testing"

	"github.com/fivetwenty-io/amocrm-client/internal/endpoint"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		entity     amocrm.EntityType
		legacyList string
		legacySet  string
		current    string
		key        string
		updateKey  string
	}{
		{amocrm.EntityCompanies, "/private/api/v2/json/company/list", "/private/api/v2/json/company/set", "/api/v4/companies", "contacts", "companies"},
		{amocrm.EntityCustomers, "/private/api/v2/json/customers/list", "/private/api/v2/json/customers/set", "/api/v4/customers", "customers", "customers"},
		{amocrm.EntityLeads, "/private/api/v2/json/leads/list", "/private/api/v2/json/leads/set", "/api/v4/leads", "leads", "leads"},
		{amocrm.EntityLinks, "/private/api/v2/json/links/list", "/private/api/v2/json/links/set", "", "links", "links"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(string(tt.entity), func(t *testing.T) {
			t.Parallel()

			route, ok := endpoint.Lookup(tt.entity)
			require.True(t, ok)
			assert.Equal(t, tt.legacyList, route.LegacyList)
			assert.Equal(t, tt.legacySet, route.LegacySet)
			assert.Equal(t, tt.current, route.Current)
			assert.Equal(t, tt.key, route.LegacyKey)
			assert.Equal(t, tt.updateKey, route.UpdateKey())
			assert.Equal(t, endpoint.LegacyPageCap, route.LegacyPageCap)
		})
	}

	_, ok := endpoint.Lookup(amocrm.EntityNotes)
	assert.False(t, ok)
}

func TestRoutePaths(t *testing.T) {
	t.Parallel()

	route := endpoint.MustLookup(amocrm.EntityCompanies)

	assert.Equal(t, "/api/v4/companies/42", route.One(42))
	assert.Equal(t, http.MethodPost, route.WriteMethod(endpoint.OpAdd))
	assert.Equal(t, http.MethodPatch, route.WriteMethod(endpoint.OpUpdate))
	assert.Equal(t, "companies", route.EmbeddedKey())
	assert.Equal(t, 250, route.CurrentPageCap)

	assert.Equal(t, "/api/v4/leads/7/links", endpoint.EntityLinks(amocrm.EntityLeads, 7))
	assert.Equal(t, "/api/v4/leads/links", endpoint.MassLinks(amocrm.EntityLeads))
	assert.Equal(t, "/api/v4/leads/7/link", endpoint.LinkAction(amocrm.EntityLeads, 7, amocrm.ModeLink))
	assert.Equal(t, "/api/v4/contacts/3/unlink", endpoint.LinkAction(amocrm.EntityContacts, 3, amocrm.ModeUnlink))
	assert.Equal(t, "/api/v4/users/5", endpoint.User(5))
}

func TestMustLookupPanicsForUnknownEntity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		endpoint.MustLookup(amocrm.EntityNotes)
	})
}

func TestOperationString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "add", endpoint.OpAdd.String())
	assert.Equal(t, "unlink", endpoint.OpUnlink.String())
	assert.Equal(t, "unknown", endpoint.Operation(0).String())
}
