package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vasari/tienda/internal/domain"
)

// StoreMapping maps domain.Store to the tienda table.
var StoreMapping = Mapping[domain.Store]{
	Entity: "store",
	Table:  "tienda",
	CreateTable: `CREATE TABLE tienda (
		id        NUMERIC(1)   NOT NULL,
		nombre    VARCHAR(120) NOT NULL,
		direccion VARCHAR(220) NOT NULL,
		PRIMARY KEY (id)
	)`,
	Statements: Statements{
		Insert:     `INSERT INTO tienda (id, nombre, direccion) VALUES (?, ?, ?)`,
		SelectByID: `SELECT id, nombre, direccion FROM tienda WHERE id = ?`,
		SelectAll:  `SELECT id, nombre, direccion FROM tienda`,
		DeleteByID: `DELETE FROM tienda WHERE id = ?`,
		Update:     `UPDATE tienda SET nombre = ?, direccion = ? WHERE id = ?`,
		Count:      `SELECT COUNT(*) FROM tienda`,
	},
	ID: func(s domain.Store) int { return s.ID },
	InsertArgs: func(s domain.Store) []any {
		return []any{s.ID, s.Name, s.Address}
	},
	UpdateArgs: func(s domain.Store) []any {
		return []any{s.Name, s.Address, s.ID}
	},
	Scan: func(row Scanner) (domain.Store, error) {
		var s domain.Store
		err := row.Scan(&s.ID, &s.Name, &s.Address)
		return s, err
	},
}

// ArticleMapping maps domain.Article to the articulos table.
// The CHECK on precio makes the database reject non-positive prices.
var ArticleMapping = Mapping[domain.Article]{
	Entity: "article",
	Table:  "articulos",
	CreateTable: `CREATE TABLE articulos (
		id          NUMERIC(1)   NOT NULL,
		nombre      VARCHAR(200) NOT NULL,
		comentarios VARCHAR(200) NOT NULL,
		precio      NUMERIC(10)  CONSTRAINT articulos_precio_check CHECK (precio > 0),
		PRIMARY KEY (id)
	)`,
	Statements: Statements{
		Insert:     `INSERT INTO articulos (id, nombre, comentarios, precio) VALUES (?, ?, ?, ?)`,
		SelectByID: `SELECT id, nombre, comentarios, precio FROM articulos WHERE id = ?`,
		SelectAll:  `SELECT id, nombre, comentarios, precio FROM articulos`,
		DeleteByID: `DELETE FROM articulos WHERE id = ?`,
		Update:     `UPDATE articulos SET nombre = ?, comentarios = ?, precio = ? WHERE id = ?`,
		Count:      `SELECT COUNT(*) FROM articulos`,
	},
	ID: func(a domain.Article) int { return a.ID },
	InsertArgs: func(a domain.Article) []any {
		return []any{a.ID, a.Name, a.Description, a.Price}
	},
	UpdateArgs: func(a domain.Article) []any {
		return []any{a.Name, a.Description, a.Price, a.ID}
	},
	Scan: func(row Scanner) (domain.Article, error) {
		var a domain.Article
		var price sql.NullInt64
		if err := row.Scan(&a.ID, &a.Name, &a.Description, &price); err != nil {
			return a, err
		}
		// precio is nullable in the schema; a NULL price reads as zero.
		a.Price = int(price.Int64)
		return a, nil
	},
}

// UserMapping maps domain.User to the usuarios table.
var UserMapping = Mapping[domain.User]{
	Entity: "user",
	Table:  "usuarios",
	CreateTable: `CREATE TABLE usuarios (
		id     NUMERIC(1)   NOT NULL,
		nombre VARCHAR(120) NOT NULL,
		email  VARCHAR(200) NOT NULL,
		PRIMARY KEY (id)
	)`,
	Statements: Statements{
		Insert:     `INSERT INTO usuarios (id, nombre, email) VALUES (?, ?, ?)`,
		SelectByID: `SELECT id, nombre, email FROM usuarios WHERE id = ?`,
		SelectAll:  `SELECT id, nombre, email FROM usuarios`,
		DeleteByID: `DELETE FROM usuarios WHERE id = ?`,
		Update:     `UPDATE usuarios SET nombre = ?, email = ? WHERE id = ?`,
		Count:      `SELECT COUNT(*) FROM usuarios`,
	},
	ID: func(u domain.User) int { return u.ID },
	InsertArgs: func(u domain.User) []any {
		return []any{u.ID, u.Name, u.Email}
	},
	UpdateArgs: func(u domain.User) []any {
		return []any{u.Name, u.Email, u.ID}
	},
	Scan: func(row Scanner) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.Name, &u.Email)
		return u, err
	},
}

// Repositories groups the accessors of every entity over one connection.
type Repositories struct {
	Stores   *Repository[domain.Store]
	Articles *Repository[domain.Article]
	Users    *Repository[domain.User]
}

// NewRepositories builds the repository of every mapped entity over db.
func NewRepositories(db DBTX, dialect Dialect, log *slog.Logger) (*Repositories, error) {
	stores, err := NewRepository(db, dialect, StoreMapping, log)
	if err != nil {
		return nil, err
	}
	articles, err := NewRepository(db, dialect, ArticleMapping, log)
	if err != nil {
		return nil, err
	}
	users, err := NewRepository(db, dialect, UserMapping, log)
	if err != nil {
		return nil, err
	}
	return &Repositories{Stores: stores, Articles: articles, Users: users}, nil
}

// PrepareAll runs PrepareTable on every table, stopping at the first failure.
func (r *Repositories) PrepareAll(ctx context.Context) error {
	for _, prepare := range []func(context.Context) error{
		r.Stores.PrepareTable,
		r.Articles.PrepareTable,
		r.Users.PrepareTable,
	} {
		if err := prepare(ctx); err != nil {
			return err
		}
	}
	return nil
}
