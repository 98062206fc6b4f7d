package document

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/unicode/norm"
)

const mainPart = "word/document.xml"

// isTextPart partes del paquete donde se reemplazan marcadores: cuerpo, encabezados y pies.
func isTextPart(name string) bool {
	if name == mainPart {
		return true
	}
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// FillTemplate copia el paquete DOCX reemplazando {{campo}} por su valor en cada
// w:t de cada párrafo. Marcadores sin valor quedan intactos; un marcador partido
// entre dos runs no se reemplaza.
func FillTemplate(template []byte, fields map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("docx: abrir plantilla: %w", err)
	}
	replacer := newReplacer(fields)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	foundMain := false
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("docx: copiar %s: %w", f.Name, err)
			}
			continue
		}
		if f.Name == mainPart {
			foundMain = true
		}
		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		filled, err := replaceInPart(raw, replacer)
		if err != nil {
			return nil, fmt.Errorf("docx: %s: %w", f.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: zip.Deflate, Modified: f.Modified})
		if err != nil {
			return nil, fmt.Errorf("docx: crear %s: %w", f.Name, err)
		}
		if _, err := w.Write(filled); err != nil {
			return nil, fmt.Errorf("docx: escribir %s: %w", f.Name, err)
		}
	}
	if !foundMain {
		return nil, fmt.Errorf("docx: la plantilla no contiene %s", mainPart)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: cerrar paquete: %w", err)
	}
	return buf.Bytes(), nil
}

// newReplacer arma un único reemplazo por pasada; claves ordenadas para que el
// resultado no dependa del orden del map. Los valores se normalizan a NFC.
func newReplacer(fields map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", norm.NFC.String(fields[k]))
	}
	return strings.NewReplacer(pairs...)
}

func replaceInPart(raw []byte, replacer *strings.Replacer) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parsear XML: %w", err)
	}
	for _, p := range doc.FindElements("//w:p") {
		for _, t := range ownTexts(p) {
			text := t.Text()
			if !strings.Contains(text, "{{") {
				continue
			}
			replaced := replacer.Replace(text)
			if replaced == text {
				continue
			}
			t.SetText(replaced)
			if strings.TrimSpace(replaced) != replaced {
				t.CreateAttr("xml:space", "preserve")
			}
		}
	}
	var out bytes.Buffer
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("serializar XML: %w", err)
	}
	return out.Bytes(), nil
}

// Paragraphs devuelve el texto de cada párrafo del cuerpo del DOCX, en orden.
func Paragraphs(docx []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, fmt.Errorf("docx: abrir: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != mainPart {
			continue
		}
		raw, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(raw); err != nil {
			return nil, fmt.Errorf("docx: parsear %s: %w", mainPart, err)
		}
		var out []string
		for _, p := range doc.FindElements("//w:body//w:p") {
			var sb strings.Builder
			for _, t := range ownTexts(p) {
				sb.WriteString(t.Text())
			}
			out = append(out, sb.String())
		}
		return out, nil
	}
	return nil, fmt.Errorf("docx: falta %s", mainPart)
}

// ownTexts devuelve los w:t cuyo párrafo más cercano es p. Los párrafos
// anidados (cuadros de texto) se recorren por separado.
func ownTexts(p *etree.Element) []*etree.Element {
	var out []*etree.Element
	for _, t := range p.FindElements(".//w:t") {
		if nearestParagraph(t) == p {
			out = append(out, t)
		}
	}
	return out
}

func nearestParagraph(e *etree.Element) *etree.Element {
	for a := e.Parent(); a != nil; a = a.Parent() {
		if a.Space == "w" && a.Tag == "p" {
			return a
		}
	}
	return nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("docx: abrir %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("docx: leer %s: %w", f.Name, err)
	}
	return data, nil
}
