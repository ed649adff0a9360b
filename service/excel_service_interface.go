package service

import "catalogo-naves/models"

// ExcelServiceInterface defines the contract for spreadsheet operations
type ExcelServiceInterface interface {
	// ReadCatalog parses the first sheet into rows; all catalog columns are required
	ReadCatalog(path string) ([]models.CatalogRow, error)
	// LoadWorkbook opens the spreadsheet for enrichment, creating the URL columns when absent
	LoadWorkbook(path string) (*CatalogWorkbook, error)
}
