package importer

import (
	"io"

	"github.com/farxc/portal_tramites/internal/csvutil"
)

// templateRows is a fixed example showing operators the import layout.
var templateRows = [][]string{
	{
		"1",
		"Impuesto predial unificado",
		"Liquidación y pago del impuesto predial del año en curso",
		"Impuestos",
		"Presencial y virtual",
		"Formulario único de liquidación",
		"Secretaría de Hacienda",
		"Impuestos",
		"Sí",
		"Inmediato",
		"Cédula del propietario; número predial",
		"Consultar el predio, generar la factura y pagar en bancos autorizados",
		"https://www.suit.gov.co/",
		"https://www.gov.co/",
	},
	{
		"2",
		"Certificado de residencia",
		"Constancia de residencia en el municipio",
		"Certificados",
		"Virtual",
		"",
		"Secretaría de Gobierno",
		"",
		"No",
		"5 días hábiles",
		"Cédula; recibo de servicio público",
		"Radicar la solicitud en la ventanilla virtual",
		"",
		"",
	},
}

// WriteTemplate writes the import header followed by the example rows.
func WriteTemplate(w io.Writer) error {
	records := append([][]string{Header}, templateRows...)
	return csvutil.WriteAll(w, records)
}
