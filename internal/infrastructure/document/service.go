// Package document genera los archivos de un certificado: rellena la plantilla
// DOCX con los datos confirmados y la convierte a PDF bajo demanda.
//
// Archivos en el directorio de salida:
//
//	Certificado_<id>.docx   escrito al emitir
//	Certificado_<id>.pdf    escrito en la primera descarga
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmc/certificados-api/internal/application/certificate"
	"github.com/cmc/certificados-api/internal/domain"
)

var _ certificate.DocumentService = (*Service)(nil)

// Converter convierte un DOCX existente en un PDF en pdfPath.
type Converter interface {
	Convert(ctx context.Context, docxPath, pdfPath string) error
}

// Service implementa certificate.DocumentService sobre el sistema de archivos.
type Service struct {
	templatePath string
	outputDir    string
	converter    Converter
}

// NewService construye el servicio de documentos.
func NewService(templatePath, outputDir string, converter Converter) *Service {
	return &Service{templatePath: templatePath, outputDir: outputDir, converter: converter}
}

// DocxPath ruta determinista del DOCX de un certificado.
func (s *Service) DocxPath(certificateID int64) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("Certificado_%d.docx", certificateID))
}

// PDFPath ruta determinista del PDF de un certificado.
func (s *Service) PDFPath(certificateID int64) string {
	return filepath.Join(s.outputDir, fmt.Sprintf("Certificado_%d.pdf", certificateID))
}

// Render rellena la plantilla y guarda Certificado_<id>.docx. Si ya existía se reemplaza.
func (s *Service) Render(_ context.Context, certificateID int64, fields map[string]string) (string, error) {
	tpl, err := os.ReadFile(s.templatePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: plantilla %s", domain.ErrNotFound, s.templatePath)
		}
		return "", fmt.Errorf("leer plantilla: %w", err)
	}
	out, err := FillTemplate(tpl, fields)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("crear directorio de salida: %w", err)
	}
	path := s.DocxPath(certificateID)
	if err := writeFileAtomic(path, out); err != nil {
		return "", err
	}
	// un PDF previo ya no corresponde al DOCX nuevo
	_ = os.Remove(s.PDFPath(certificateID))
	return path, nil
}

// Convert devuelve el PDF; solo invoca al conversor si aún no existe.
func (s *Service) Convert(ctx context.Context, certificateID int64) (string, error) {
	pdfPath := s.PDFPath(certificateID)
	if fileExists(pdfPath) {
		return pdfPath, nil
	}
	docxPath, err := s.Source(ctx, certificateID)
	if err != nil {
		return "", err
	}
	if err := s.converter.Convert(ctx, docxPath, pdfPath); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrConversion, err)
	}
	if !fileExists(pdfPath) {
		return "", fmt.Errorf("%w: el conversor no produjo %s", domain.ErrConversion, filepath.Base(pdfPath))
	}
	return pdfPath, nil
}

// Source devuelve el DOCX generado; ErrNotFound si no existe.
func (s *Service) Source(_ context.Context, certificateID int64) (string, error) {
	path := s.DocxPath(certificateID)
	if !fileExists(path) {
		return "", fmt.Errorf("%w: no existe el documento del certificado %d", domain.ErrNotFound, certificateID)
	}
	return path, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// writeFileAtomic escribe en un temporal del mismo directorio y renombra.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("crear temporal: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("escribir %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("cerrar %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renombrar %s: %w", filepath.Base(path), err)
	}
	return nil
}
