package document

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// ── Layout ────────────────────────────────────────────────────────────────────

const (
	fontSize     = 10
	charsPerLine = 95  // aproximado para helvetica 10 en A4 con márgenes de 15 mm
	lineHeight   = 5.0 // mm por línea de texto
	blankHeight  = 3.0
)

var colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}

// MarotoConverter convierte el DOCX a PDF con Maroto v2: un renglón por párrafo,
// sin estilos ni tablas del original.
type MarotoConverter struct{}

// NewMarotoConverter construye el conversor.
func NewMarotoConverter() *MarotoConverter { return &MarotoConverter{} }

// Convert lee los párrafos del DOCX y escribe el PDF en pdfPath.
func (c *MarotoConverter) Convert(_ context.Context, docxPath, pdfPath string) error {
	raw, err := os.ReadFile(docxPath)
	if err != nil {
		return fmt.Errorf("maroto: leer docx: %w", err)
	}
	paragraphs, err := Paragraphs(raw)
	if err != nil {
		return err
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).WithRightMargin(15).
		WithTopMargin(15).WithBottomMargin(15).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: fontSize}).
		WithTitle("Certificado de servicio", true).
		Build()

	m := maroto.New(cfg)
	m.AddRows(paragraphRows(paragraphs)...)

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("maroto: generar documento: %w", err)
	}
	return writeFileAtomic(pdfPath, doc.GetBytes())
}

// paragraphRows: el primer párrafo con texto es el título, seguido de una línea.
func paragraphRows(paragraphs []string) []core.Row {
	rows := make([]core.Row, 0, len(paragraphs)+1)
	titled := false
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			rows = append(rows, row.New(blankHeight))
			continue
		}
		if !titled {
			titled = true
			rows = append(rows,
				row.New(10).Add(col.New(12).Add(text.New(p, props.Text{
					Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 2,
				}))),
				line.NewRow(2, props.Line{Color: colorPrimary, Thickness: 0.4}),
			)
			continue
		}
		rows = append(rows, row.New(rowHeight(p)).Add(
			col.New(12).Add(text.New(p, props.Text{Size: fontSize, Top: 1})),
		))
	}
	return rows
}

// rowHeight estima el alto según cuántas líneas ocupa el texto.
func rowHeight(s string) float64 {
	lines := (utf8.RuneCountInString(s) + charsPerLine - 1) / charsPerLine
	if lines < 1 {
		lines = 1
	}
	return float64(lines)*lineHeight + 1
}
