//go:build !linux

package netif

// NewSystemCatalog returns the catalog for this host.
func NewSystemCatalog() Catalog { return NewNetCatalog() }
