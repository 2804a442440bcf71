package amocrm

import (
	"fmt"
	"strings"
)

// Field names that carry shared behaviour.
const (
	FieldTags          = "tags"
	FieldCustomFields  = "custom_fields_values"
	FieldDateCreate    = "date_create"
	FieldLastModified  = "last_modified"
	FieldUpdatedAt     = "updated_at"
	FieldNextDate      = "next_date"
	FieldLinkedLeadsID = "linked_leads_id"
	FieldNotes         = "notes"
	FieldEmbedded      = "_embedded"
)

// TagsCapability stores tags as a list of names. A single string is split
// on commas.
var TagsCapability = Capability{Field: FieldTags, Hook: tagsHook}

// DateCreateCapability stores the creation moment as epoch seconds, or as a
// deferred moment for "now".
var DateCreateCapability = Capability{Field: FieldDateCreate, Hook: epochHook}

// LastModifiedCapability stores the modification moment as epoch seconds.
var LastModifiedCapability = Capability{Field: FieldLastModified, Hook: epochHook}

// NextDateCapability stores the next purchase moment as epoch seconds.
var NextDateCapability = Capability{Field: FieldNextDate, Hook: epochHook}

// LinkedLeadsCapability wraps a single lead id into a list.
var LinkedLeadsCapability = Capability{Field: FieldLinkedLeadsID, Hook: listHook}

// NotesCapability wraps a single note into a list.
var NotesCapability = Capability{Field: FieldNotes, Hook: listHook}

func tagsHook(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return []string{}, nil
	case string:
		return splitTags(v), nil
	case []string:
		return compactTags(v), nil
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			switch tag := item.(type) {
			case string:
				tags = append(tags, tag)
			case map[string]any:
				if name, ok := tag["name"].(string); ok {
					tags = append(tags, name)
				}
			default:
				tags = append(tags, fmt.Sprint(tag))
			}
		}

		return compactTags(tags), nil
	default:
		return nil, fmt.Errorf("%w: tags must be a string or a list, got %T", ErrInvalidValue, value)
	}
}

func splitTags(s string) []string {
	return compactTags(strings.Split(s, ","))
}

func compactTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			out = append(out, tag)
		}
	}

	return out
}

// epochHook stores fixed moments as epoch seconds. A "now" moment stays
// deferred so it resolves with the composer's clock.
func epochHook(value any) (any, error) {
	m, err := ParseMoment(value)
	if err != nil {
		return nil, err
	}

	if m.now {
		return m, nil
	}

	return m.Epoch(nil), nil
}

func listHook(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return []any{}, nil
	case []any, []int, []string, []Model, []map[string]any:
		return v, nil
	default:
		return []any{v}, nil
	}
}

// Field registries. They are read-only and shared by every entity instance.
var (
	CompanyFields = NewFieldSet(EntityCompanies, []string{
		"id",
		"name",
		"responsible_user_id",
		"created_by",
		"created_user_id",
		"updated_by",
		"modified_user_id",
		"created_at",
		FieldDateCreate,
		FieldUpdatedAt,
		"closest_task_at",
		FieldLastModified,
		FieldCustomFields,
		"is_deleted",
		"linked_companies_id",
		FieldLinkedLeadsID,
		FieldTags,
		"request_id",
		"account_id",
		FieldEmbedded,
	}, TagsCapability, DateCreateCapability, LastModifiedCapability, LinkedLeadsCapability)

	CustomerFields = NewFieldSet(EntityCustomers, []string{
		"id",
		"name",
		"next_price",
		FieldNextDate,
		"responsible_user_id",
		"main_user_id",
		"periodicity",
		"created_by",
		"updated_by",
		"created_at",
		FieldUpdatedAt,
		FieldCustomFields,
		FieldTags,
		"request_id",
		FieldEmbedded,
	}, TagsCapability, NextDateCapability)

	LeadFields = NewFieldSet(EntityLeads, []string{
		"id",
		"name",
		"price",
		"status_id",
		"pipeline_id",
		"responsible_user_id",
		"created_by",
		"created_user_id",
		"updated_by",
		"modified_user_id",
		"created_at",
		FieldUpdatedAt,
		FieldDateCreate,
		FieldLastModified,
		"closed_at",
		"closest_task_at",
		"loss_reason_id",
		"is_deleted",
		FieldCustomFields,
		FieldTags,
		FieldNotes,
		"visitor_uid",
		"request_id",
		"account_id",
		"company_id",
		"contacts_id",
		FieldEmbedded,
	}, TagsCapability, DateCreateCapability, LastModifiedCapability, NotesCapability)

	NoteFields = NewFieldSet(EntityNotes, []string{
		"id",
		"element_id",
		"element_type",
		"entity_id",
		"note_type",
		"text",
		"params",
		"responsible_user_id",
		"created_by",
		"created_at",
		FieldUpdatedAt,
		FieldDateCreate,
		FieldLastModified,
		"account_id",
	}, DateCreateCapability, LastModifiedCapability)

	LinkFields = NewFieldSet(EntityLinks, []string{
		"from",
		"from_id",
		"to",
		"to_id",
		"from_catalog_id",
		"to_catalog_id",
		"quantity",
		"main_contact",
		"price_id",
		"catalog_id",
		"updated_by",
		"metadata",
	})

	UnsortedFields = NewFieldSet(EntityUnsorted, []string{
		"source",
		"source_uid",
		"source_data",
		"data",
		FieldDateCreate,
		"pipeline_id",
	}, DateCreateCapability)
)

// Note element types used by the legacy notes API.
const (
	NoteElementContact  = 1
	NoteElementLead     = 2
	NoteElementCompany  = 3
	NoteElementTask     = 4
	NoteElementCustomer = 12
)

// Note types.
const (
	NoteLeadCreated       = 1
	NoteContactCreated    = 2
	NoteLeadStatusChanged = 3
	NoteCommon            = 4
	NoteCompanyCreated    = 12
	NoteTaskResult        = 13
	NoteSystem            = 25
	NoteSMSIn             = 102
	NoteSMSOut            = 103
)

// Unsorted categories.
const (
	UnsortedCategoryMail  = "mail"
	UnsortedCategoryForms = "forms"
)
