package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/cmc/certificados-api/internal/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// buildDocx arma un paquete mínimo con un párrafo por elemento de runs;
// cada párrafo se compone de los runs indicados.
func buildDocx(t *testing.T, paragraphs ...[]string) []byte {
	t.Helper()
	var body strings.Builder
	for _, runs := range paragraphs {
		body.WriteString("<w:p>")
		for _, r := range runs {
			body.WriteString("<w:r><w:t>" + r + "</w:t></w:r>")
		}
		body.WriteString("</w:p>")
	}
	return buildDocxBody(t, body.String())
}

// buildDocxBody arma el paquete con el XML de w:body tal cual.
func buildDocxBody(t *testing.T, body string) []byte {
	t.Helper()
	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document ` + wordNS + `><w:body>` + body + `</w:body></w:document>`
	header := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:hdr ` + wordNS + `><w:p><w:r><w:t>Cert. {{certificado_id}}</w:t></w:r></w:p></w:hdr>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   document,
		"word/header1.xml":    header,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			raw, err := readZipFile(f)
			require.NoError(t, err)
			return string(raw)
		}
	}
	t.Fatalf("parte %s no encontrada", name)
	return ""
}

type countingConverter struct {
	calls int
	err   error
}

func (c *countingConverter) Convert(_ context.Context, _, pdfPath string) error {
	c.calls++
	if c.err != nil {
		return c.err
	}
	return os.WriteFile(pdfPath, []byte("%PDF-1.4 fake"), 0o644)
}

func newTestService(t *testing.T, conv Converter) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	tpl := filepath.Join(dir, "plantilla.docx")
	require.NoError(t, os.WriteFile(tpl, buildDocx(t,
		[]string{"CERTIFICADO DE FUMIGACIÓN"},
		[]string{"Cliente: {{cliente}} - Tel: {{telefono}}"},
		[]string{"Producto: {{producto_1}} / {{producto_2}}"},
		[]string{"Dividido: {{cli", "ente}}"},
	), 0o644))
	return NewService(tpl, filepath.Join(dir, "salida"), conv), dir
}

// ──────────────────────────────────────────────────────────────────────────────
// Render
// ──────────────────────────────────────────────────────────────────────────────

func TestFillTemplate_ReemplazaPorRun(t *testing.T) {
	tpl := buildDocx(t,
		[]string{"Cliente: {{cliente}} ({{cliente}})"},
		[]string{"Sin valor: {{desconocido}}"},
		[]string{"{{cli", "ente}}"},
	)

	out, err := FillTemplate(tpl, map[string]string{"cliente": "Ana", "certificado_id": "7"})
	require.NoError(t, err)

	xml := readPart(t, out, "word/document.xml")
	assert.Contains(t, xml, "Cliente: Ana (Ana)")
	assert.Contains(t, xml, "{{desconocido}}", "marcador sin valor queda intacto")
	assert.Contains(t, xml, "{{cli", "marcador partido entre runs no se une")
	assert.Contains(t, readPart(t, out, "word/header1.xml"), "Cert. 7")
	assert.Contains(t, readPart(t, out, "[Content_Types].xml"), "content-types")
}

func TestFillTemplate_NormalizaNFC(t *testing.T) {
	tpl := buildDocx(t, []string{"{{cliente}}"})
	decomposed := norm.NFD.String("José Muñoz")

	out, err := FillTemplate(tpl, map[string]string{"cliente": decomposed})
	require.NoError(t, err)

	assert.Contains(t, readPart(t, out, "word/document.xml"), "José Muñoz")
}

const textBoxBody = `<w:p><w:r><w:t>Exterior</w:t></w:r>` +
	`<w:r><w:txbxContent><w:p><w:r><w:t>Caja {{cliente}}</w:t></w:r></w:p></w:txbxContent></w:r></w:p>`

func TestFillTemplate_CuadroDeTextoSeReemplazaUnaVez(t *testing.T) {
	tpl := buildDocxBody(t, textBoxBody)

	out, err := FillTemplate(tpl, map[string]string{"cliente": "{{telefono}}", "telefono": "300"})
	require.NoError(t, err)

	xml := readPart(t, out, "word/document.xml")
	assert.Contains(t, xml, "Caja {{telefono}}", "el valor sustituido no se vuelve a procesar")
	assert.NotContains(t, xml, "Caja 300")
}

func TestParagraphs_CuadroDeTextoNoSeDuplica(t *testing.T) {
	paras, err := Paragraphs(buildDocxBody(t, textBoxBody))
	require.NoError(t, err)

	assert.Equal(t, []string{"Exterior", "Caja {{cliente}}"}, paras)
}

func TestFillTemplate_NoEsDocx(t *testing.T) {
	_, err := FillTemplate([]byte("no es un zip"), nil)
	assert.Error(t, err)
}

func TestRender_EscribeRutaDeterminista(t *testing.T) {
	svc, dir := newTestService(t, &countingConverter{})

	path, err := svc.Render(context.Background(), 12, map[string]string{"cliente": "Ana", "producto_1": "Raticida"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "salida", "Certificado_12.docx"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	paragraphs, err := Paragraphs(raw)
	require.NoError(t, err)
	assert.Equal(t, "Cliente: Ana - Tel: {{telefono}}", paragraphs[1])
	assert.Equal(t, "Producto: Raticida / {{producto_2}}", paragraphs[2])
}

func TestRender_PlantillaInexistente(t *testing.T) {
	svc := NewService(filepath.Join(t.TempDir(), "no-existe.docx"), t.TempDir(), &countingConverter{})

	_, err := svc.Render(context.Background(), 1, nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// ──────────────────────────────────────────────────────────────────────────────
// Convert
// ──────────────────────────────────────────────────────────────────────────────

func TestConvert_Idempotente(t *testing.T) {
	conv := &countingConverter{}
	svc, _ := newTestService(t, conv)
	_, err := svc.Render(context.Background(), 3, map[string]string{"cliente": "Ana"})
	require.NoError(t, err)

	first, err := svc.Convert(context.Background(), 3)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first)
	require.NoError(t, err)

	second, err := svc.Convert(context.Background(), 3)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(second)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, firstBytes, secondBytes)
	assert.Equal(t, 1, conv.calls, "el conversor corre una sola vez")
}

func TestConvert_SinDocxEsNotFound(t *testing.T) {
	conv := &countingConverter{}
	svc, _ := newTestService(t, conv)

	_, err := svc.Convert(context.Background(), 99)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Zero(t, conv.calls)
}

func TestConvert_FalloDelConversor(t *testing.T) {
	conv := &countingConverter{err: errors.New("boom")}
	svc, _ := newTestService(t, conv)
	_, err := svc.Render(context.Background(), 4, nil)
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), 4)
	assert.True(t, errors.Is(err, domain.ErrConversion))
}

func TestRender_InvalidaPDFPrevio(t *testing.T) {
	conv := &countingConverter{}
	svc, _ := newTestService(t, conv)
	ctx := context.Background()

	_, err := svc.Render(ctx, 5, nil)
	require.NoError(t, err)
	_, err = svc.Convert(ctx, 5)
	require.NoError(t, err)

	_, err = svc.Render(ctx, 5, map[string]string{"cliente": "Otro"})
	require.NoError(t, err)
	_, err = svc.Convert(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.calls)
}

// ──────────────────────────────────────────────────────────────────────────────
// Conversores reales
// ──────────────────────────────────────────────────────────────────────────────

func TestMarotoConverter_GeneraPDF(t *testing.T) {
	svc, _ := newTestService(t, NewMarotoConverter())
	_, err := svc.Render(context.Background(), 8, map[string]string{"cliente": "Ana", "telefono": "300"})
	require.NoError(t, err)

	path, err := svc.Convert(context.Background(), 8)
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(raw, []byte("%PDF")))
}

func TestNewConverter(t *testing.T) {
	c, err := NewConverter("", "")
	require.NoError(t, err)
	assert.IsType(t, &MarotoConverter{}, c)

	c, err = NewConverter("soffice", "/opt/libreoffice/soffice")
	require.NoError(t, err)
	assert.IsType(t, &SofficeConverter{}, c)

	_, err = NewConverter("word", "")
	assert.Error(t, err)
}

func TestSofficeConverter_BinarioInexistente(t *testing.T) {
	dir := t.TempDir()
	docx := filepath.Join(dir, "a.docx")
	require.NoError(t, os.WriteFile(docx, buildDocx(t, []string{"x"}), 0o644))

	err := NewSofficeConverter(filepath.Join(dir, "no-soffice")).Convert(context.Background(), docx, filepath.Join(dir, "a.pdf"))
	assert.Error(t, err)
}

func TestRowHeight(t *testing.T) {
	assert.Equal(t, lineHeight+1, rowHeight("corto"))
	assert.Equal(t, 2*lineHeight+1, rowHeight(strings.Repeat("x", charsPerLine+1)))
}
