package domain

import "fmt"

// Article is an item for sale. Price is a positive whole amount.
type Article struct {
	ID          int    `json:"id" yaml:"id" validate:"gte=0,lte=9"`
	Name        string `json:"name" yaml:"name" validate:"required,max=200"`
	Description string `json:"description" yaml:"description" validate:"required,max=200"`
	Price       int    `json:"price" yaml:"price" validate:"gt=0,lt=10000000000"`
}

// NewArticle builds an Article and validates it.
func NewArticle(id int, name, description string, price int) (Article, error) {
	a := Article{ID: id, Name: name, Description: description, Price: price}
	if err := a.Validate(); err != nil {
		return Article{}, err
	}
	return a, nil
}

// Validate checks the Article against the bounds of its table columns.
func (a Article) Validate() error {
	return validateStruct(a)
}

func (a Article) String() string {
	return fmt.Sprintf("Article(id=%d, name=%s, description=%s, price=%d)",
		a.ID, a.Name, a.Description, a.Price)
}
