package service

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"catalogo-naves/models"
	"catalogo-naves/utils"
)

// Fixed layout of the catalog tree
const (
	DefaultOutDir  = "CATALOGO"
	DefaultZipName = "CATALOGO.zip"
	ImagesDir      = "IMAGENES"
	FichasDir      = "FICHAS"

	// Folder used when a row has neither supplier code nor supplier name
	noProviderFolder = "SIN_PROVEEDOR"
)

// CatalogService lays out fetched assets into the catalog tree and packages it
// Implements CatalogServiceInterface
type CatalogService struct{}

// NewCatalogService creates a new CatalogService instance
func NewCatalogService() *CatalogService {
	return &CatalogService{}
}

// Ensure CatalogService implements CatalogServiceInterface
var _ CatalogServiceInterface = (*CatalogService)(nil)

// PrepareTree creates the output root with its IMAGENES and FICHAS folders.
// Called before any download so output problems abort the run early.
func (s *CatalogService) PrepareTree(outDir string) error {
	for _, dir := range []string{outDir, filepath.Join(outDir, ImagesDir), filepath.Join(outDir, FichasDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return nil
}

// ImagePath returns the destination path for a row's image:
// <outDir>/IMAGENES/<Cód. Proveedor - Proveedor>/<Cód. Articulo Naves - Referencia Proveedor>.jpg
func (s *CatalogService) ImagePath(outDir string, row models.CatalogRow) string {
	return filepath.Join(outDir, ImagesDir, folderName(row), baseName(row)+".jpg")
}

// FichaPath returns the destination path for a row's technical sheet,
// same convention as ImagePath under FICHAS with a .pdf extension
func (s *CatalogService) FichaPath(outDir string, row models.CatalogRow) string {
	return filepath.Join(outDir, FichasDir, folderName(row), baseName(row)+".pdf")
}

// WriteAsset writes asset bytes to dest, creating parent directories as needed.
// Existing files are overwritten so re-runs stay idempotent.
func (s *CatalogService) WriteAsset(dest string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}

// Zip compresses the whole catalog tree into zipPath with paths relative to
// root. A stale archive is removed first; an empty tree produces no archive.
func (s *CatalogService) Zip(root, zipPath string) error {
	if err := os.Remove(zipPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale archive %s: %w", zipPath, err)
	}

	files, err := collectFiles(root)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("⚠️  Catalog tree %s is empty, skipping archive", root)
		return nil
	}

	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("failed to create archive %s: %w", zipPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, file := range files {
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", file, err)
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", rel, err)
		}
		src, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", file, err)
		}
		if _, err := io.Copy(w, src); err != nil {
			src.Close()
			return fmt.Errorf("failed to write %s into archive: %w", rel, err)
		}
		src.Close()
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive %s: %w", zipPath, err)
	}

	log.Printf("✓ Archive created: %s (%d files)", zipPath, len(files))
	return nil
}

func collectFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalog tree %s: %w", root, err)
	}
	return files, nil
}

// folderName builds the per-supplier folder "<Cód. Proveedor> - <Proveedor>"
func folderName(row models.CatalogRow) string {
	if row.CodigoProveedor == "" && row.Proveedor == "" {
		return noProviderFolder
	}
	return utils.SafeName(fmt.Sprintf("%s - %s", row.CodigoProveedor, row.Proveedor))
}

// baseName builds the file name "<Cód. Articulo Naves> - <Referencia Proveedor>"
func baseName(row models.CatalogRow) string {
	base := utils.SafeName(strings.TrimSpace(fmt.Sprintf("%s - %s", row.CodigoArticulo, row.ReferenciaProveedor)))
	if base == "" || base == "-" {
		base = fmt.Sprintf("fila_%d", row.Index)
	}
	return base
}
