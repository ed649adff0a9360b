package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"catalogo-naves/models"
	"catalogo-naves/utils"
)

// Logical column names of the master spreadsheet
const (
	ColCodigoArticulo      = "Cód. Articulo Naves"
	ColReferenciaProveedor = "Referencia Proveedor"
	ColArticulo            = "Artículo"
	ColProveedor           = "Proveedor"
	ColCodigoProveedor     = "Cód. Proveedor"
	ColURLImagen           = "URL Imagen Oficial"
	ColURLFicha            = "URL Ficha Técnica Oficial"
)

// identityColumns must exist in every workbook; urlColumns are created on the
// fly by the enrichment flow when the source spreadsheet does not have them yet.
var (
	identityColumns = []string{
		ColCodigoArticulo,
		ColReferenciaProveedor,
		ColArticulo,
		ColProveedor,
		ColCodigoProveedor,
	}
	urlColumns = []string{ColURLImagen, ColURLFicha}
)

// ExcelService reads and writes the catalog spreadsheet
// Implements ExcelServiceInterface
type ExcelService struct{}

// NewExcelService creates a new ExcelService instance
func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// Ensure ExcelService implements ExcelServiceInterface
var _ ExcelServiceInterface = (*ExcelService)(nil)

// ReadCatalog parses the first sheet of the spreadsheet at path into catalog rows.
// All seven logical columns are required; a missing column is a fatal
// configuration error reported before any download starts.
func (s *ExcelService) ReadCatalog(path string) ([]models.CatalogRow, error) {
	wb, err := s.openWorkbook(path, true)
	if err != nil {
		return nil, err
	}
	defer wb.Close()

	return wb.Rows()
}

// LoadWorkbook opens the spreadsheet for enrichment. The identity columns are
// required; the two URL columns are appended to the header when absent so the
// enriched copy can be written back.
func (s *ExcelService) LoadWorkbook(path string) (*CatalogWorkbook, error) {
	return s.openWorkbook(path, false)
}

func (s *ExcelService) openWorkbook(path string, requireURLs bool) (*CatalogWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", path, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("spreadsheet %s has no sheets", path)
	}
	// Only the first sheet is ever read
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		f.Close()
		return nil, fmt.Errorf("spreadsheet %s has no header row", path)
	}

	cols, err := matchColumns(rows[0], requireURLs)
	if err != nil {
		f.Close()
		return nil, err
	}

	wb := &CatalogWorkbook{file: f, sheet: sheet, cols: cols}

	if !requireURLs {
		// Append headers for URL columns missing from the source workbook
		next := len(rows[0])
		for _, col := range urlColumns {
			if _, ok := cols[col]; ok {
				continue
			}
			if err := wb.setCell(next, 0, col); err != nil {
				f.Close()
				return nil, err
			}
			cols[col] = next
			next++
		}
	}

	return wb, nil
}

// matchColumns maps logical column names to 0-based column indexes.
// Matching is tolerant: header cells are compared after NormText, so case,
// surrounding whitespace and accent variants all resolve to the same column.
func matchColumns(header []string, requireURLs bool) (map[string]int, error) {
	normIndex := make(map[string]int, len(header))
	for i, cell := range header {
		key := utils.NormText(cell)
		if key == "" {
			continue
		}
		if _, ok := normIndex[key]; !ok {
			normIndex[key] = i
		}
	}

	required := identityColumns
	if requireURLs {
		required = append(append([]string{}, identityColumns...), urlColumns...)
	}

	cols := make(map[string]int, len(required)+len(urlColumns))
	for _, col := range required {
		idx, ok := normIndex[utils.NormText(col)]
		if !ok {
			return nil, fmt.Errorf("missing required column in spreadsheet: %q", col)
		}
		cols[col] = idx
	}
	if !requireURLs {
		// URL columns are optional here, but map them when present
		for _, col := range urlColumns {
			if idx, ok := normIndex[utils.NormText(col)]; ok {
				cols[col] = idx
			}
		}
	}
	return cols, nil
}

// CatalogWorkbook wraps an open spreadsheet with its resolved column mapping
type CatalogWorkbook struct {
	file  *excelize.File
	sheet string
	cols  map[string]int
}

// Rows returns the data rows of the first sheet in spreadsheet order.
// Blank-ish cells ("", "nan", "None") are read as empty strings.
func (w *CatalogWorkbook) Rows() ([]models.CatalogRow, error) {
	raw, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", w.sheet, err)
	}

	var out []models.CatalogRow
	for i := 1; i < len(raw); i++ {
		out = append(out, models.CatalogRow{
			Index:               i,
			CodigoArticulo:      w.cell(raw[i], ColCodigoArticulo),
			ReferenciaProveedor: w.cell(raw[i], ColReferenciaProveedor),
			Articulo:            w.cell(raw[i], ColArticulo),
			Proveedor:           w.cell(raw[i], ColProveedor),
			CodigoProveedor:     w.cell(raw[i], ColCodigoProveedor),
			URLImagen:           w.cell(raw[i], ColURLImagen),
			URLFicha:            w.cell(raw[i], ColURLFicha),
		})
	}
	return out, nil
}

// SetImageURL writes the image URL cell for the given data row
func (w *CatalogWorkbook) SetImageURL(row models.CatalogRow, url string) error {
	return w.setCell(w.cols[ColURLImagen], row.Index, url)
}

// SetFichaURL writes the technical-sheet URL cell for the given data row
func (w *CatalogWorkbook) SetFichaURL(row models.CatalogRow, url string) error {
	return w.setCell(w.cols[ColURLFicha], row.Index, url)
}

// SaveAs writes the workbook (with any filled URL cells) to path
func (w *CatalogWorkbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save spreadsheet %s: %w", path, err)
	}
	return nil
}

// Close releases the underlying spreadsheet file
func (w *CatalogWorkbook) Close() error {
	return w.file.Close()
}

func (w *CatalogWorkbook) cell(row []string, col string) string {
	idx, ok := w.cols[col]
	if !ok || idx >= len(row) {
		return ""
	}
	if utils.IsBlankCell(row[idx]) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// setCell writes a value at 0-based column and row (row 0 is the header)
func (w *CatalogWorkbook) setCell(col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("failed to build cell coordinates: %w", err)
	}
	if err := w.file.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("failed to write cell %s: %w", cell, err)
	}
	return nil
}
