package demo

import "github.com/vasari/tienda/internal/domain"

// StoreSeeds are inserted once per round.
var StoreSeeds = []domain.Store{
	{ID: 1, Name: "La Nena", Address: "Callejon de la Nena"},
	{ID: 2, Name: "La Virgen", Address: "Calle Rosa de Guadalupe"},
	{ID: 3, Name: "La Piscina", Address: "Avenida De los Charcos"},
	{ID: 4, Name: "El churro", Address: "Calle del Pason"},
	{ID: 5, Name: "Don Pancho", Address: "Avenida del Reboso"},
}

// ArticleSeeds are inserted once per round. The first one is the CD-DVD
// whose price the run raises to UpdatedPrice.
var ArticleSeeds = []domain.Article{
	{ID: 1, Name: "CD-DVD", Description: "900 MB", Price: 35},
	{ID: 2, Name: "Pendrive", Description: "64 GB", Price: 12},
	{ID: 3, Name: "Raton", Description: "Inalambrico", Price: 18},
	{ID: 4, Name: "Teclado", Description: "Mecanico", Price: 60},
	{ID: 5, Name: "Monitor", Description: "24 pulgadas", Price: 150},
}

// UserSeeds are inserted once per round.
var UserSeeds = []domain.User{
	{ID: 1, Name: "Ana", Email: "ana@example.com"},
	{ID: 2, Name: "Luis", Email: "luis@example.com"},
	{ID: 3, Name: "Marta", Email: "marta@example.com"},
}

// Values written by the update step of each table.
const (
	RenamedStore = "Nuevo usuario"
	UpdatedPrice = 40
	UpdatedEmail = "ana.garcia@example.com"
)

// Keys touched by the read/update and delete steps.
const (
	UpdatedID = 1
	DeletedID = 2
)
