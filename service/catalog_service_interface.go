package service

import "catalogo-naves/models"

// CatalogServiceInterface defines the contract for catalog tree operations
type CatalogServiceInterface interface {
	PrepareTree(outDir string) error
	ImagePath(outDir string, row models.CatalogRow) string
	FichaPath(outDir string, row models.CatalogRow) string
	WriteAsset(dest string, data []byte) error
	Zip(root, zipPath string) error
}
