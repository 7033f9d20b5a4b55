package hierarchy

import (
	"io"
	"strconv"

	"github.com/farxc/portal_tramites/internal/csvutil"
	"github.com/farxc/portal_tramites/internal/store"
	"github.com/go-gota/gota/dataframe"
)

const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
	FormatJSON  = "json"
)

const timestampLayout = "2006-01-02 15:04:05"

var CSVHeader = []string{
	"CODIGO SUBDEPENDENCIA",
	"SIGLA",
	"Subdependencia",
	"Dependencias",
	"CODIGO DEPENDENCIA",
	"TIPO",
	"ESTADO",
	"NIVEL",
}

var ExcelHeader = []string{
	"CODIGO",
	"SIGLA",
	"NOMBRE",
	"TIPO",
	"DEPENDENCIA_PADRE",
	"CODIGO_PADRE",
	"NIVEL",
	"ESTADO",
	"TELEFONO",
	"EMAIL",
	"DIRECCION",
	"HORARIO_ATENCION",
	"FECHA_CREACION",
	"FECHA_ACTUALIZACION",
}

type csvRow struct {
	CodigoSubdependencia string `dataframe:"CODIGO SUBDEPENDENCIA"`
	Sigla                string `dataframe:"SIGLA"`
	Subdependencia       string `dataframe:"Subdependencia"`
	Dependencias         string `dataframe:"Dependencias"`
	CodigoDependencia    string `dataframe:"CODIGO DEPENDENCIA"`
	Tipo                 string `dataframe:"TIPO"`
	Estado               string `dataframe:"ESTADO"`
	Nivel                string `dataframe:"NIVEL"`
}

type excelRow struct {
	Codigo             string `dataframe:"CODIGO"`
	Sigla              string `dataframe:"SIGLA"`
	Nombre             string `dataframe:"NOMBRE"`
	Tipo               string `dataframe:"TIPO"`
	DependenciaPadre   string `dataframe:"DEPENDENCIA_PADRE"`
	CodigoPadre        string `dataframe:"CODIGO_PADRE"`
	Nivel              string `dataframe:"NIVEL"`
	Estado             string `dataframe:"ESTADO"`
	Telefono           string `dataframe:"TELEFONO"`
	Email              string `dataframe:"EMAIL"`
	Direccion          string `dataframe:"DIRECCION"`
	HorarioAtencion    string `dataframe:"HORARIO_ATENCION"`
	FechaCreacion      string `dataframe:"FECHA_CREACION"`
	FechaActualizacion string `dataframe:"FECHA_ACTUALIZACION"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func estado(activo bool) string {
	if activo {
		return "Activo"
	}
	return "Inactivo"
}

func indexByID(units []store.Dependencia) map[int64]store.Dependencia {
	byID := make(map[int64]store.Dependencia, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	return byID
}

func parentOf(byID map[int64]store.Dependencia, u store.Dependencia) (store.Dependencia, bool) {
	if u.DependenciaPadreID == nil {
		return store.Dependencia{}, false
	}
	p, ok := byID[*u.DependenciaPadreID]
	return p, ok
}

// records turns rows into a header line plus one line per row using the
// dataframe tags of T.
func records[T any](rows []T, header []string) ([][]string, error) {
	if len(rows) == 0 {
		return [][]string{header}, nil
	}
	df := dataframe.LoadStructs(rows, dataframe.NaNValues([]string{}))
	if df.Err != nil {
		return nil, df.Err
	}
	return df.Records(), nil
}

// CSVRecords builds the condensed "csv" export. Parent name and code come
// from a lookup over the same snapshot.
func CSVRecords(units []store.Dependencia) ([][]string, error) {
	byID := indexByID(units)

	rows := make([]csvRow, 0, len(units))
	for _, u := range units {
		row := csvRow{
			CodigoSubdependencia: u.Codigo,
			Sigla:                deref(u.Sigla),
			Subdependencia:       "Directo",
			Dependencias:         u.Nombre,
			CodigoDependencia:    u.Codigo,
			Tipo:                 u.Tipo,
			Estado:               estado(u.Activo),
			Nivel:                strconv.Itoa(u.Nivel),
		}
		if u.IsSub() {
			row.Subdependencia = u.Nombre
		}
		if p, ok := parentOf(byID, u); ok {
			row.Dependencias = p.Nombre
			row.CodigoDependencia = p.Codigo
		}
		rows = append(rows, row)
	}
	return records(rows, CSVHeader)
}

// ExcelRecords builds the "excel" export: CSV with audit and contact columns.
func ExcelRecords(units []store.Dependencia) ([][]string, error) {
	byID := indexByID(units)

	rows := make([]excelRow, 0, len(units))
	for _, u := range units {
		row := excelRow{
			Codigo:             u.Codigo,
			Sigla:              deref(u.Sigla),
			Nombre:             u.Nombre,
			Tipo:               u.Tipo,
			Nivel:              strconv.Itoa(u.Nivel),
			Estado:             estado(u.Activo),
			Telefono:           deref(u.Telefono),
			Email:              deref(u.Correo),
			Direccion:          deref(u.Direccion),
			HorarioAtencion:    deref(u.HorarioAtencion),
			FechaCreacion:      u.CreatedAt.Format(timestampLayout),
			FechaActualizacion: u.UpdatedAt.Format(timestampLayout),
		}
		if p, ok := parentOf(byID, u); ok {
			row.DependenciaPadre = p.Nombre
			row.CodigoPadre = p.Codigo
		}
		rows = append(rows, row)
	}
	return records(rows, ExcelHeader)
}

func WriteCSV(w io.Writer, units []store.Dependencia) error {
	recs, err := CSVRecords(units)
	if err != nil {
		return err
	}
	return csvutil.WriteAll(w, recs)
}

func WriteExcel(w io.Writer, units []store.Dependencia) error {
	recs, err := ExcelRecords(units)
	if err != nil {
		return err
	}
	return csvutil.WriteAll(w, recs)
}

// JSONTree is the JSON export: the forest, projected once.
func JSONTree(units []store.Dependencia) []*Node {
	return BuildForest(units)
}
