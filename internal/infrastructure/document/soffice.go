package document

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// SofficeConverter convierte con LibreOffice en modo headless. Conserva el
// formato del DOCX, a cambio de depender del binario instalado.
type SofficeConverter struct {
	bin string
}

// NewSofficeConverter construye el conversor; bin vacío usa "soffice" del PATH.
func NewSofficeConverter(bin string) *SofficeConverter {
	if bin == "" {
		bin = "soffice"
	}
	return &SofficeConverter{bin: bin}
}

// Convert ejecuta soffice sobre un directorio temporal y mueve el resultado a pdfPath.
func (c *SofficeConverter) Convert(ctx context.Context, docxPath, pdfPath string) error {
	outDir, err := os.MkdirTemp(filepath.Dir(pdfPath), "soffice-*")
	if err != nil {
		return fmt.Errorf("soffice: directorio temporal: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, c.bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, docxPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("soffice: %w: %s", err, strings.TrimSpace(string(out)))
	}

	produced := filepath.Join(outDir, strings.TrimSuffix(filepath.Base(docxPath), filepath.Ext(docxPath))+".pdf")
	if err := os.Rename(produced, pdfPath); err != nil {
		return fmt.Errorf("soffice: mover pdf: %w", err)
	}
	return nil
}

// NewConverter elige el conversor por nombre ("maroto" o "soffice").
func NewConverter(name, sofficeBin string) (Converter, error) {
	switch name {
	case "", "maroto":
		return NewMarotoConverter(), nil
	case "soffice":
		return NewSofficeConverter(sofficeBin), nil
	default:
		return nil, fmt.Errorf("document: conversor desconocido %q", name)
	}
}
