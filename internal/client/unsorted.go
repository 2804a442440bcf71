package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/amocrm-client/internal/unwrap"
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

const unsortedData = "data"

// Unsorted implements amocrm.Unsorted.
type Unsorted struct {
	model
}

// NewUnsorted creates an empty unsorted request bound to c.
func NewUnsorted(c *Client) *Unsorted {
	return &Unsorted{model: newModel(c, amocrm.UnsortedFields)}
}

// AddDataLead attaches a snapshot of lead to data.leads.
func (m *Unsorted) AddDataLead(lead amocrm.Model) error {
	return m.addData(string(amocrm.EntityLeads), amocrm.EntityLeads, lead)
}

// AddDataContact attaches a snapshot of contact to data.contacts.
func (m *Unsorted) AddDataContact(contact amocrm.Model) error {
	return m.addData(string(amocrm.EntityContacts), amocrm.EntityContacts, contact)
}

func (m *Unsorted) addData(key string, want amocrm.EntityType, item amocrm.Model) error {
	if item == nil || item.Type() != want {
		return amocrm.NewConfigurationError(amocrm.EntityUnsorted, "data", unsortedData,
			fmt.Errorf("%w: expected %s", amocrm.ErrInvalidValue, want))
	}

	data := amocrm.Record{}

	if current, ok := m.Get(unsortedData); ok {
		if existing, ok := current.(map[string]any); ok {
			for k, v := range existing {
				data[k] = v
			}
		}
	}

	items, _ := data[key].([]any)
	data[key] = append(append([]any(nil), items...), item.Values())

	return m.Set(unsortedData, data)
}

// AddMail implements amocrm.Unsorted.AddMail.
func (m *Unsorted) AddMail(ctx context.Context, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.add(ctx, amocrm.UnsortedCategoryMail, batch)
}

// AddForm implements amocrm.Unsorted.AddForm.
func (m *Unsorted) AddForm(ctx context.Context, batch ...amocrm.Model) (*amocrm.Result, error) {
	return m.add(ctx, amocrm.UnsortedCategoryForms, batch)
}

func (m *Unsorted) add(ctx context.Context, category string, batch []amocrm.Model) (*amocrm.Result, error) {
	req, err := m.client.composer.Unsorted(category, m.batch(batch))
	if err != nil {
		return nil, err
	}

	resp, err := m.client.perform(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("adding unsorted %s: %w", category, err)
	}

	return unwrap.Unsorted(resp), nil
}
