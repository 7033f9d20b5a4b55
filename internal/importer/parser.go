package importer

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/farxc/portal_tramites/internal/payment"
	"github.com/farxc/portal_tramites/internal/store"
	"golang.org/x/text/encoding/charmap"
)

// MinFields is the number of positional columns an import row must carry.
const MinFields = 14

// Column positions of the import layout. Column 0 (id) is ignored.
const (
	colNombreTramite = iota + 1
	colDescripcion
	colCategoria
	colModalidad
	colFormulario
	colDependencia
	colSubdependencia
	colRequierePago
	colTiempoRespuesta
	colRequisitos
	colInstrucciones
	colURLSuit
	colURLGov
)

var Header = []string{
	"id",
	"nombre_tramite",
	"descripcion",
	"categoria",
	"modalidad",
	"formulario",
	"dependencia_nombre",
	"subdependencia_nombre",
	"requiere_pago",
	"tiempo_respuesta",
	"requisitos",
	"instrucciones",
	"url_suit",
	"url_gov",
}

// Decode reads an upload. Spreadsheets saved on Windows usually come as
// Windows-1252, so bytes that are not valid UTF-8 are decoded as such.
func Decode(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read import file: %w", err)
	}

	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := io.ReadAll(charmap.Windows1252.NewDecoder().Reader(bytes.NewReader(raw)))
	if err != nil {
		return "", fmt.Errorf("failed to decode import file: %w", err)
	}
	return string(decoded), nil
}

// SplitLine splits one CSV line on commas that sit outside double quotes.
// Each field is trimmed and loses one pair of wrapping quotes; doubled
// quotes inside a wrapped field collapse to one, matching what the exports write.
func SplitLine(line string) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)

	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
			current.WriteRune(ch)
		case ch == ',' && !inQuotes:
			fields = append(fields, cleanField(current.String()))
			current.Reset()
		default:
			current.WriteRune(ch)
		}
	}
	fields = append(fields, cleanField(current.String()))
	return fields
}

func cleanField(field string) string {
	field = strings.TrimSpace(field)
	if len(field) >= 2 && strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`) {
		field = strings.ReplaceAll(field[1:len(field)-1], `""`, `"`)
	}
	return field
}

// Resolver maps the unit names found in the file to ids.
type Resolver interface {
	Dependencia(name string) (int64, error)
	Subdependencia(name string, dependenciaID int64) (int64, error)
}

// NameResolver resolves names case-insensitively against a unit snapshot.
// A name shared by more than one unit is ambiguous and never resolves.
type NameResolver map[string][]store.Dependencia

func NewNameResolver(units []store.Dependencia) NameResolver {
	r := make(NameResolver, len(units))
	for _, u := range units {
		key := normalizeName(u.Nombre)
		r[key] = append(r[key], u)
	}
	return r
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func (r NameResolver) Dependencia(name string) (int64, error) {
	units := r[normalizeName(name)]
	switch len(units) {
	case 0:
		return 0, fmt.Errorf("dependencia %q not found", name)
	case 1:
		return units[0].ID, nil
	default:
		return 0, fmt.Errorf("dependencia %q is ambiguous: %d units share that name", name, len(units))
	}
}

// Subdependencia only matches subdependencias whose parent is dependenciaID.
func (r NameResolver) Subdependencia(name string, dependenciaID int64) (int64, error) {
	units := r[normalizeName(name)]
	if len(units) == 0 {
		return 0, fmt.Errorf("subdependencia %q not found", name)
	}

	var matches []int64
	for _, u := range units {
		if u.IsSub() && u.DependenciaPadreID != nil && *u.DependenciaPadreID == dependenciaID {
			matches = append(matches, u.ID)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("subdependencia %q does not belong to the given dependencia", name)
	case 1:
		return matches[0], nil
	default:
		return 0, fmt.Errorf("subdependencia %q is ambiguous: %d units share that name", name, len(matches))
	}
}

// ParseResult holds the rows ready for insertion and what was left out.
type ParseResult struct {
	Rows      []store.Tramite
	Errors    []string
	Skipped   int
	TotalRows int
}

// Parse maps every data line of text to a tramite. The first line is the
// header. Lines with fewer than MinFields fields are skipped without an
// error entry; lines with bad values are skipped with one.
func Parse(text string, resolver Resolver) ParseResult {
	var res ParseResult

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) <= 1 {
		return res
	}

	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(strings.TrimSuffix(line, "\r")) == "" {
			continue
		}
		res.TotalRows++

		fields := SplitLine(strings.TrimSuffix(line, "\r"))
		if len(fields) < MinFields {
			res.Skipped++
			continue
		}

		row, err := mapRow(fields, resolver)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("línea %d: %v", lineNo, err))
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res
}

func mapRow(fields []string, resolver Resolver) (store.Tramite, error) {
	nombre := fields[colNombreTramite]
	if nombre == "" {
		return store.Tramite{}, fmt.Errorf("nombre_tramite is required")
	}

	pago := payment.ValidateAndNormalize(fields[colRequierePago])
	if !pago.IsValid {
		return store.Tramite{}, fmt.Errorf("requiere_pago must be %q, %q or empty, got %q", payment.Yes, payment.No, fields[colRequierePago])
	}

	depID, err := resolver.Dependencia(fields[colDependencia])
	if err != nil {
		return store.Tramite{}, err
	}

	t := store.Tramite{
		NombreTramite:   nombre,
		Descripcion:     fields[colDescripcion],
		Categoria:       fields[colCategoria],
		Modalidad:       fields[colModalidad],
		Formulario:      fields[colFormulario],
		DependenciaID:   depID,
		RequierePago:    pago.NormalizedValue,
		TiempoRespuesta: fields[colTiempoRespuesta],
		Requisitos:      fields[colRequisitos],
		Instrucciones:   fields[colInstrucciones],
		URLSuit:         fields[colURLSuit],
		URLGov:          fields[colURLGov],
		Activo:          true,
	}

	if sub := fields[colSubdependencia]; sub != "" {
		subID, err := resolver.Subdependencia(sub, depID)
		if err != nil {
			return store.Tramite{}, err
		}
		t.SubdependenciaID = &subID
	}
	return t, nil
}
