package amocrm

import (
	"fmt"
	"strings"
)

// Record is a plain decoded JSON object as returned by the API.
type Record = map[string]any

// Params are caller-supplied request parameters.
type Params = map[string]any

// Generation selects the API family a call is composed for.
type Generation int

const (
	// Legacy is the /private/api/v2/json family.
	Legacy Generation = iota + 1
	// Current is the /api/v4 family.
	Current
)

// String implements fmt.Stringer.
func (g Generation) String() string {
	switch g {
	case Legacy:
		return "v2"
	case Current:
		return "v4"
	default:
		return fmt.Sprintf("generation(%d)", int(g))
	}
}

// ParseGeneration accepts "v2"/"legacy" and "v4"/"current".
func ParseGeneration(s string) (Generation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "v2", "2", "legacy":
		return Legacy, nil
	case "v4", "4", "current", "":
		return Current, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedGeneration, s)
	}
}

// EntityType names an entity kind the way the current API spells it in paths.
type EntityType string

// Entity types known to the client.
const (
	EntityAccount   EntityType = "account"
	EntityCompanies EntityType = "companies"
	EntityContacts  EntityType = "contacts"
	EntityCustomers EntityType = "customers"
	EntityLeads     EntityType = "leads"
	EntityLinks     EntityType = "links"
	EntityNotes     EntityType = "notes"
	EntityUnsorted  EntityType = "unsorted"
	EntityUsers     EntityType = "users"
	EntityCatalog   EntityType = "catalog_elements"
)

// Linkable reports whether the type can appear on either side of a link.
func (t EntityType) Linkable() bool {
	switch t {
	case EntityCompanies, EntityContacts, EntityCustomers, EntityLeads, EntityCatalog:
		return true
	default:
		return false
	}
}

// ListParams carries pagination and filtering for list operations.
// Limit and Page follow the current generation; Offset is used by the
// legacy generation instead of Page.
type ListParams struct {
	Limit         int
	Page          int
	Offset        int
	With          []string
	Query         string
	ModifiedSince *Moment
	Extra         Params
}

// LinkQuery selects links for listing. Legacy listing uses Params as the
// raw filter, current listing uses EntityType and EntityID.
type LinkQuery struct {
	EntityType EntityType
	EntityID   int
	Params     Params
}

// Result is the unwrapped outcome of a write operation.
type Result struct {
	// Records holds per-item results in batch order.
	Records []Record
	// IDs holds the identifiers extracted from Records, if any.
	IDs []int
	// Single is set when a legacy add concerned exactly one entity and the
	// caller should treat the result as a scalar identifier.
	Single bool
	// OK collapses legacy per-item results into a success flag.
	OK bool
}

// ID returns the scalar identifier of a single-entity result.
func (r *Result) ID() (int, bool) {
	if r == nil || len(r.IDs) == 0 {
		return 0, false
	}

	return r.IDs[0], true
}

// First returns the first record or nil.
func (r *Result) First() Record {
	if r == nil || len(r.Records) == 0 {
		return nil
	}

	return r.Records[0]
}
