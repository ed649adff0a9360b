package models

// Enrichment row statuses written to the report
const (
	EnrichStatusFilled          = "filled"
	EnrichStatusNoMatch         = "no match"
	EnrichStatusAlreadyHadURLs  = "already had URLs"
	EnrichStatusSkippedByRule   = "skipped_by_rule"
	EnrichStatusSkippedProvider = "skipped_by_provider"
)

// EnrichmentRecord is one row of the enrichment report
type EnrichmentRecord struct {
	Row                 int    `json:"row"` // 1-based data row in the spreadsheet
	CodigoArticulo      string `json:"codArticuloNaves"`
	ReferenciaProveedor string `json:"refProveedor"`
	ProveedorRaw        string `json:"proveedorRaw"`
	BrandDetected       string `json:"brandDetected"`
	ChosenHost          string `json:"chosenHost"`
	SearchPass          string `json:"searchPass"` // "hint" (site: queries) or "web"
	ProductPage         string `json:"productPage"`
	FoundImage          string `json:"foundImage"`
	FoundPDF            string `json:"foundPdf"`
	Status              string `json:"status"`
}

// EnrichmentStats summarizes an enrichment run
type EnrichmentStats struct {
	Rows      int  `json:"rows"`   // rows visited in the offset/limit window
	Filled    int  `json:"filled"` // rows where at least one URL cell was filled
	QuotaStop bool `json:"quotaStop"`
}
