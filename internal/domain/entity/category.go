package entity

import "time"

// Category agrupa productos. Al eliminarla los productos quedan sin categoría.
type Category struct {
	ID        string
	Name      string // único
	CreatedAt time.Time
}

// Supplier proveedor de productos. Al eliminarlo los productos quedan sin proveedor.
type Supplier struct {
	ID        string
	Name      string // único
	Contact   string
	CreatedAt time.Time
}
