package models

// FetchStatus is the outcome of downloading one asset for one row
type FetchStatus string

const (
	FetchStatusFetched FetchStatus = "fetched"
	FetchStatusSkipped FetchStatus = "skipped"
	FetchStatusFailed  FetchStatus = "failed"
)

// FetchResult records what happened to a single asset download
type FetchResult struct {
	Status FetchStatus `json:"status"`
	Reason string      `json:"reason,omitempty"`
	Path   string      `json:"path,omitempty"`
}

// DownloadStats aggregates the per-run counters printed at the end of a download
type DownloadStats struct {
	Rows            int `json:"rows"`
	SkippedExcluded int `json:"skippedExcluded"` // rows dropped by the excluded-provider rule
	SkippedProvider int `json:"skippedProvider"` // rows dropped by --provider-contains
	ImgOK           int `json:"imgOk"`
	ImgSkip         int `json:"imgSkip"`
	PdfOK           int `json:"pdfOk"`
	PdfSkip         int `json:"pdfSkip"`
}
