package domain

import "fmt"

// Store is a shop ("tienda") with a name and a street address.
type Store struct {
	ID      int    `json:"id" yaml:"id" validate:"gte=0,lte=9"`
	Name    string `json:"name" yaml:"name" validate:"required,max=120"`
	Address string `json:"address" yaml:"address" validate:"required,max=220"`
}

// NewStore builds a Store and validates it.
func NewStore(id int, name, address string) (Store, error) {
	s := Store{ID: id, Name: name, Address: address}
	if err := s.Validate(); err != nil {
		return Store{}, err
	}
	return s, nil
}

// Validate checks the Store against the bounds of its table columns.
func (s Store) Validate() error {
	return validateStruct(s)
}

func (s Store) String() string {
	return fmt.Sprintf("Store(id=%d, name=%s, address=%s)", s.ID, s.Name, s.Address)
}
