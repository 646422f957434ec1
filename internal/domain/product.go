package domain

// Product is an entry of the storefront grid.
type Product struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	Image string `json:"image"` // Path of the picture rendered in the grid
}
