// Package endpoint holds the fixed route table of the amoCRM API for both
// generations.
package endpoint

import (
	"net/http"
	"strconv"

	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Path prefixes.
const (
	LegacyPrefix  = "/private/api/v2/json"
	CurrentPrefix = "/api/v4"
)

// Page caps.
const (
	LegacyPageCap  = 500
	CurrentPageCap = 250
)

// Fixed paths outside the per-entity table.
const (
	LegacyAccount  = LegacyPrefix + "/accounts/current"
	CurrentAccount = CurrentPrefix + "/account"
	CurrentUsers   = CurrentPrefix + "/users"
	CurrentMe      = "/v3/user"
	LegacyUnsorted = "/api/unsorted/add/"
)

// Operation is the kind of call being composed.
type Operation int

// Operations.
const (
	OpList Operation = iota + 1
	OpOne
	OpAdd
	OpUpdate
	OpLink
	OpUnlink
)

// String implements fmt.Stringer.
func (o Operation) String() string {
	switch o {
	case OpList:
		return "list"
	case OpOne:
		return "one"
	case OpAdd:
		return "add"
	case OpUpdate:
		return "update"
	case OpLink:
		return "link"
	case OpUnlink:
		return "unlink"
	default:
		return "unknown"
	}
}

// Route describes where and how one entity type is exchanged.
type Route struct {
	Entity amocrm.EntityType

	// LegacyList and LegacySet are the legacy list and write paths.
	LegacyList       string
	LegacyListMethod string
	LegacySet        string
	// LegacyKey names the response collection and the add envelope.
	LegacyKey string
	// LegacyUpdateKey names the update envelope when it differs from LegacyKey.
	LegacyUpdateKey string
	// LegacyAddResult is the path of per-item add results below the
	// response root.
	LegacyAddResult []string
	LegacyPageCap   int

	// Current is the collection path; One is Current + "/{id}".
	Current        string
	CurrentPageCap int
}

// UpdateKey returns the envelope key for legacy updates.
func (r Route) UpdateKey() string {
	if r.LegacyUpdateKey != "" {
		return r.LegacyUpdateKey
	}

	return r.LegacyKey
}

// EmbeddedKey returns the _embedded key of current responses.
func (r Route) EmbeddedKey() string {
	return string(r.Entity)
}

// One returns the current single-entity path.
func (r Route) One(id int) string {
	return r.Current + "/" + strconv.Itoa(id)
}

// WriteMethod returns the HTTP method encoding op for the current generation.
func (r Route) WriteMethod(op Operation) string {
	if op == OpUpdate {
		return http.MethodPatch
	}

	return http.MethodPost
}

var routes = map[amocrm.EntityType]Route{
	amocrm.EntityCompanies: {
		Entity:           amocrm.EntityCompanies,
		LegacyList:       LegacyPrefix + "/company/list",
		LegacyListMethod: http.MethodPost,
		LegacySet:        LegacyPrefix + "/company/set",
		LegacyKey:        "contacts",
		LegacyUpdateKey:  "companies",
		LegacyAddResult:  []string{"contacts", "add"},
		LegacyPageCap:    LegacyPageCap,
		Current:          CurrentPrefix + "/companies",
		CurrentPageCap:   CurrentPageCap,
	},
	amocrm.EntityCustomers: {
		Entity:           amocrm.EntityCustomers,
		LegacyList:       LegacyPrefix + "/customers/list",
		LegacyListMethod: http.MethodGet,
		LegacySet:        LegacyPrefix + "/customers/set",
		LegacyKey:        "customers",
		LegacyAddResult:  []string{"customers", "add", "customers"},
		LegacyPageCap:    LegacyPageCap,
		Current:          CurrentPrefix + "/customers",
		CurrentPageCap:   CurrentPageCap,
	},
	amocrm.EntityLeads: {
		Entity:           amocrm.EntityLeads,
		LegacyList:       LegacyPrefix + "/leads/list",
		LegacyListMethod: http.MethodGet,
		LegacySet:        LegacyPrefix + "/leads/set",
		LegacyKey:        "leads",
		LegacyAddResult:  []string{"leads", "add"},
		LegacyPageCap:    LegacyPageCap,
		Current:          CurrentPrefix + "/leads",
		CurrentPageCap:   CurrentPageCap,
	},
	amocrm.EntityLinks: {
		Entity:           amocrm.EntityLinks,
		LegacyList:       LegacyPrefix + "/links/list",
		LegacyListMethod: http.MethodGet,
		LegacySet:        LegacyPrefix + "/links/set",
		LegacyKey:        "links",
		LegacyPageCap:    LegacyPageCap,
		CurrentPageCap:   CurrentPageCap,
	},
	amocrm.EntityUnsorted: {
		Entity:        amocrm.EntityUnsorted,
		LegacySet:     LegacyUnsorted,
		LegacyKey:     "unsorted",
		LegacyPageCap: LegacyPageCap,
	},
}

// Lookup returns the route of an entity type.
func Lookup(entity amocrm.EntityType) (Route, bool) {
	route, ok := routes[entity]

	return route, ok
}

// MustLookup returns the route of an entity type and panics when the type has
// no route. It is meant for package-level model declarations.
func MustLookup(entity amocrm.EntityType) Route {
	route, ok := routes[entity]
	if !ok {
		panic("endpoint: no route for " + string(entity))
	}

	return route
}

// EntityLinks returns the current path listing links of one entity.
func EntityLinks(entity amocrm.EntityType, id int) string {
	return CurrentPrefix + "/" + string(entity) + "/" + strconv.Itoa(id) + "/links"
}

// MassLinks returns the current path listing links of many entities.
func MassLinks(entity amocrm.EntityType) string {
	return CurrentPrefix + "/" + string(entity) + "/links"
}

// LinkAction returns the current link or unlink path for one source entity.
func LinkAction(from amocrm.EntityType, fromID int, mode amocrm.LinkMode) string {
	return CurrentPrefix + "/" + string(from) + "/" + strconv.Itoa(fromID) + "/" + string(mode)
}

// User returns the current path of one user.
func User(id int) string {
	return CurrentUsers + "/" + strconv.Itoa(id)
}
