package catalogsvc

// CatalogConfig holds configuration parameters for the catalog service.
type CatalogConfig struct {
	// Products is the number of entries in the grid
	Products int `env:"PRODUCTS" envDefault:"9"`
}
