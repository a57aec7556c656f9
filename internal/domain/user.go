package domain

import "fmt"

// User is a registered customer.
type User struct {
	ID    int    `json:"id" yaml:"id" validate:"gte=0,lte=9"`
	Name  string `json:"name" yaml:"name" validate:"required,max=120"`
	Email string `json:"email" yaml:"email" validate:"required,email,max=200"`
}

// NewUser builds a User and validates it.
func NewUser(id int, name, email string) (User, error) {
	u := User{ID: id, Name: name, Email: email}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Validate checks the User against the bounds of its table columns.
func (u User) Validate() error {
	return validateStruct(u)
}

func (u User) String() string {
	return fmt.Sprintf("User(id=%d, name=%s, email=%s)", u.ID, u.Name, u.Email)
}
