package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/gestgov/contratos-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders the contract list as a spreadsheet with a summary block
// followed by one row per contract.
func (g *Generator) Generate(contratos []model.Contrato, geradoEm time.Time) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Contratos"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	valorTotal := decimal.Zero
	for _, contrato := range contratos {
		valorTotal = valorTotal.Add(contrato.ValorGlobal)
	}

	set("A1", "Relatório de contratos")
	set("A2", "Gerado em")
	set("B2", geradoEm.Format("02/01/2006 15:04"))
	set("A3", "Total de contratos")
	set("B3", len(contratos))
	set("A4", "Valor global somado")
	set("B4", valorTotal.StringFixed(2))

	tableRow := 6
	headers := []string{
		"Número",
		"Órgão responsável",
		"Empresa contratada",
		"CNPJ",
		"Modalidade",
		"Início",
		"Fim",
		"Valor global",
		"Valor estimado",
		"Diferença %",
		"Status",
		"Criado em",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, contrato := range contratos {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), contrato.NumeroContrato)
		set(fmt.Sprintf("B%d", row), contrato.OrgaoResponsavel)
		set(fmt.Sprintf("C%d", row), contrato.EmpresaContratada)
		set(fmt.Sprintf("D%d", row), contrato.CnpjEmpresa)
		set(fmt.Sprintf("E%d", row), string(contrato.Modalidade))
		set(fmt.Sprintf("F%d", row), formatDate(contrato.DataInicio))
		set(fmt.Sprintf("G%d", row), formatDate(contrato.DataFim))
		set(fmt.Sprintf("H%d", row), contrato.ValorGlobal.StringFixed(2))
		set(fmt.Sprintf("I%d", row), formatDecimal(contrato.ValorEstimado))
		set(fmt.Sprintf("J%d", row), formatDecimal(contrato.DiferencaPercentual))
		set(fmt.Sprintf("K%d", row), string(contrato.StatusContrato))
		set(fmt.Sprintf("L%d", row), contrato.CreatedAt.Format("02/01/2006"))
	}

	_ = file.SetColWidth(sheet, "A", "A", 18)
	_ = file.SetColWidth(sheet, "B", "C", 36)
	_ = file.SetColWidth(sheet, "D", "D", 20)
	_ = file.SetColWidth(sheet, "E", "E", 20)
	_ = file.SetColWidth(sheet, "F", "G", 12)
	_ = file.SetColWidth(sheet, "H", "J", 16)
	_ = file.SetColWidth(sheet, "K", "K", 12)
	_ = file.SetColWidth(sheet, "L", "L", 12)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}

func formatDecimal(value *decimal.Decimal) string {
	if value == nil {
		return ""
	}
	return value.StringFixed(2)
}
