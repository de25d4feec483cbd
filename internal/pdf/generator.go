package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/gestgov/contratos-service/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate renders a printable summary of one contract with its price
// research entries.
func (g *Generator) Generate(contrato model.Contrato, geradoEm time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Core fonts are cp1252; the translator covers Portuguese accents.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr("Relatório de Contrato"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Contrato nº %s — gerado em %s", contrato.NumeroContrato, geradoEm.Format("02/01/2006"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Dados do contrato"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)

	lines := []string{
		fmt.Sprintf("Órgão responsável: %s", contrato.OrgaoResponsavel),
		fmt.Sprintf("Empresa contratada: %s", contrato.EmpresaContratada),
		fmt.Sprintf("CNPJ: %s", contrato.CnpjEmpresa),
		fmt.Sprintf("Objeto: %s", contrato.ObjetoContrato),
		fmt.Sprintf("Modalidade: %s", contrato.Modalidade),
		fmt.Sprintf("Vigência: %s a %s", formatDate(contrato.DataInicio), formatDate(contrato.DataFim)),
		fmt.Sprintf("Prazo máximo: %d meses", contrato.PrazoMaximoMeses),
		fmt.Sprintf("Valor global: R$ %s", contrato.ValorGlobal.StringFixed(2)),
		fmt.Sprintf("Status: %s", contrato.StatusContrato),
	}
	if contrato.ProcessoLicitatorio != nil {
		lines = append(lines, fmt.Sprintf("Processo licitatório: %s", *contrato.ProcessoLicitatorio))
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Pesquisa de preços"), "", 1, "L", false, 0, "")

	if len(contrato.Pesquisas) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, 6, tr("Nenhuma pesquisa registrada."), "", 1, "L", false, 0, "")
	} else {
		headers := []string{"Fonte", "Data da coleta", "Preço coletado"}
		widths := []float64{100, 40, 40}
		drawTableRow(pdf, tr, headers, widths, true)
		for _, pesquisa := range contrato.Pesquisas {
			row := []string{
				pesquisa.Fonte,
				formatDate(pesquisa.DataColeta),
				pesquisa.PrecoColetado.StringFixed(2),
			}
			drawTableRow(pdf, tr, row, widths, false)
		}

		pdf.Ln(2)
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Valor estimado (média): R$ %s", formatDecimal(contrato.ValorEstimado))), "", 1, "R", false, 0, "")
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Diferença percentual: %s", formatPercent(contrato.DiferencaPercentual))), "", 1, "R", false, 0, "")
	}

	if contrato.StatusContrato == model.StatusVencido {
		pdf.Ln(2)
		pdf.SetTextColor(200, 0, 0)
		pdf.MultiCell(0, 6, tr("Atenção: contrato vencido."), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	for i, col := range cols {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02/01/2006")
}

func formatDecimal(value *decimal.Decimal) string {
	if value == nil {
		return "—"
	}
	return value.StringFixed(2)
}

func formatPercent(value *decimal.Decimal) string {
	if value == nil {
		return "não calculada"
	}
	return strings.TrimSpace(value.StringFixed(2) + "%")
}
