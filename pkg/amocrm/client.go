package amocrm

import (
	"context"
)

// Client is the main interface for the amoCRM API. Each accessor returns a
// fresh, empty model.
type Client interface {
	Account() Account
	Company() Company
	Customer() Customer
	Lead() Lead
	Note() Note
	Link() Link
	Unsorted() Unsorted
}

// Mutable is a model whose fields can be set before submission.
type Mutable interface {
	Model
	Set(field string, value any) error
	SetValues(values Record) error
	Get(field string) (any, bool)
	Has(field string) bool
	Unset(field string)
}

// Account reads account-wide information.
type Account interface {
	// Current returns the account. With short set, the legacy response is
	// reduced to the identifying keys of every dictionary.
	Current(ctx context.Context, gen Generation, short bool, params Params) (Record, error)
	Users(ctx context.Context, params Params) ([]Record, error)
	User(ctx context.Context, id int, params Params) (Record, error)
	// Me returns the user the token belongs to.
	Me(ctx context.Context) (Record, error)
}

// Company defines operations on companies.
type Company interface {
	Mutable
	List(ctx context.Context, gen Generation, params *ListParams) ([]Record, error)
	One(ctx context.Context, id int, params Params) (Record, error)
	Add(ctx context.Context, gen Generation, batch ...Model) (*Result, error)
	Update(ctx context.Context, gen Generation, modified *Moment, batch ...Model) (*Result, error)
}

// Customer defines operations on customers.
type Customer interface {
	Mutable
	List(ctx context.Context, gen Generation, params *ListParams) ([]Record, error)
	One(ctx context.Context, id int, params Params) (Record, error)
	Add(ctx context.Context, gen Generation, modified *Moment, batch ...Model) (*Result, error)
	Update(ctx context.Context, gen Generation, batch ...Model) (*Result, error)
}

// Lead defines operations on leads.
type Lead interface {
	Mutable
	List(ctx context.Context, gen Generation, params *ListParams) ([]Record, error)
	One(ctx context.Context, id int, params Params) (Record, error)
	Add(ctx context.Context, gen Generation, batch ...Model) (*Result, error)
	Update(ctx context.Context, gen Generation, modified *Moment, batch ...Model) (*Result, error)
}

// Note is attached to other entities. It has no operations of its own.
type Note interface {
	Mutable
}

// Link defines operations on relations between entities.
type Link interface {
	Mutable
	List(ctx context.Context, gen Generation, query LinkQuery) ([]Record, error)
	// Mass lists links of several entities of one type at once.
	Mass(ctx context.Context, entity EntityType, params Params) ([]Record, error)
	Link(ctx context.Context, gen Generation, batch ...Model) (*Result, error)
	Unlink(ctx context.Context, gen Generation, batch ...Model) (*Result, error)
}

// Unsorted defines operations on incoming requests awaiting review.
// Only the legacy generation offers them.
type Unsorted interface {
	Mutable
	AddDataLead(lead Model) error
	AddDataContact(contact Model) error
	AddMail(ctx context.Context, batch ...Model) (*Result, error)
	AddForm(ctx context.Context, batch ...Model) (*Result, error)
}
