package amocrm_test

import (
	"testing"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorFromValues(t *testing.T) {
	t.Parallel()

	descriptor, err := amocrm.DescriptorFromValues(amocrm.Record{
		"from":         amocrm.EntityLeads,
		"from_id":      "10",
		"to":           "catalog_elements",
		"to_id":        float64(20),
		"quantity":     3,
		"metadata":     map[string]any{"catalog_id": 5},
		"main_contact": false,
	})
	require.NoError(t, err)

	assert.Equal(t, amocrm.EntityLeads, descriptor.From)
	assert.Equal(t, 10, descriptor.FromID)
	assert.Equal(t, amocrm.EntityCatalog, descriptor.To)
	assert.Equal(t, 20, descriptor.ToID)
	assert.Equal(t, amocrm.Record{"quantity": 3, "catalog_id": 5, "main_contact": false}, descriptor.Metadata)
}

func TestLinkDescriptor_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values amocrm.Record
	}{
		{name: "missing from", values: amocrm.Record{"from_id": 1, "to": "contacts", "to_id": 2}},
		{name: "zero from id", values: amocrm.Record{"from": "leads", "from_id": 0, "to": "contacts", "to_id": 2}},
		{name: "unlinkable target", values: amocrm.Record{"from": "leads", "from_id": 1, "to": "users", "to_id": 2}},
		{name: "negative to id", values: amocrm.Record{"from": "leads", "from_id": 1, "to": "contacts", "to_id": -2}},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := amocrm.DescriptorFromValues(tt.values)
			require.ErrorIs(t, err, amocrm.ErrInvalidLink)
			assert.True(t, amocrm.IsConfigurationError(err))
		})
	}
}

func TestLinkMode_MetadataKeys(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"main_contact", "quantity", "catalog_id", "price_id"}, amocrm.ModeLink.MetadataKeys())
	assert.Equal(t, []string{"updated_by", "catalog_id"}, amocrm.ModeUnlink.MetadataKeys())

	keys := amocrm.ModeLink.MetadataKeys()
	keys[0] = "changed"
	assert.Equal(t, "main_contact", amocrm.ModeLink.MetadataKeys()[0])
}

func TestEntityType_Linkable(t *testing.T) {
	t.Parallel()

	for _, entity := range []amocrm.EntityType{
		amocrm.EntityCompanies, amocrm.EntityContacts, amocrm.EntityCustomers, amocrm.EntityLeads, amocrm.EntityCatalog,
	} {
		assert.True(t, entity.Linkable(), entity)
	}

	for _, entity := range []amocrm.EntityType{amocrm.EntityNotes, amocrm.EntityUsers, amocrm.EntityAccount, ""} {
		assert.False(t, entity.Linkable(), entity)
	}
}

func TestParseGeneration(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]amocrm.Generation{
		"v2": amocrm.Legacy, "legacy": amocrm.Legacy, "V4": amocrm.Current, "": amocrm.Current,
	} {
		got, err := amocrm.ParseGeneration(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := amocrm.ParseGeneration("v3")
	require.ErrorIs(t, err, amocrm.ErrUnsupportedGeneration)

	assert.Equal(t, "v2", amocrm.Legacy.String())
	assert.Equal(t, "v4", amocrm.Current.String())
}

func TestResult(t *testing.T) {
	t.Parallel()

	var empty *amocrm.Result

	_, ok := empty.ID()
	assert.False(t, ok)
	assert.Nil(t, empty.First())

	result := &amocrm.Result{Records: []amocrm.Record{{"id": 3}}, IDs: []int{3}, Single: true}
	id, ok := result.ID()
	require.True(t, ok)
	assert.Equal(t, 3, id)
	assert.Equal(t, amocrm.Record{"id": 3}, result.First())
}

func TestCustomField(t *testing.T) {
	t.Parallel()

	field := amocrm.NewCustomField(7, "Acme").WithEnum(12, "WORK")

	assert.Equal(t, 7, field.FieldID)
	assert.Equal(t, []amocrm.CustomFieldValue{{Value: "Acme"}, {Value: "WORK", EnumID: 12}}, field.Values)
}
