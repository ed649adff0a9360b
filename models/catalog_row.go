package models

// CatalogRow represents one article row of the master spreadsheet
type CatalogRow struct {
	Index               int    `json:"index"` // 1-based data row (header excluded)
	CodigoArticulo      string `json:"codigoArticulo"`      // "Cód. Articulo Naves"
	ReferenciaProveedor string `json:"referenciaProveedor"` // "Referencia Proveedor"
	Articulo            string `json:"articulo"`            // "Artículo"
	Proveedor           string `json:"proveedor"`           // "Proveedor"
	CodigoProveedor     string `json:"codigoProveedor"`     // "Cód. Proveedor"
	URLImagen           string `json:"urlImagen"`           // "URL Imagen Oficial"
	URLFicha            string `json:"urlFicha"`            // "URL Ficha Técnica Oficial"
}

// HasAssetURLs reports whether the row carries at least one asset URL
func (r CatalogRow) HasAssetURLs() bool {
	return r.URLImagen != "" || r.URLFicha != ""
}
