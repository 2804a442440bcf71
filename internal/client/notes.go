package client

import (
	"github.com/fivetwenty-io/amocrm-client/pkg/amocrm"
)

// Note is a value holder attached to leads and unsorted requests.
type Note struct {
	*amocrm.Entity
}

// NewNote creates an empty note.
func NewNote() *Note {
	return &Note{Entity: amocrm.NewEntity(amocrm.NoteFields)}
}
