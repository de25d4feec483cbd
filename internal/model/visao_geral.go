package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VisaoGeralItem is the dashboard projection of a contract.
// EmAlerta follows DiasRestantes <= alert window, which also covers already
// expired contracts (negative remaining days); StatusContrato is carried so
// consumers can tell VENCIDO apart.
type VisaoGeralItem struct {
	ID                  uuid.UUID        `json:"id"`
	NumeroContrato      string           `json:"numeroContrato"`
	OrgaoResponsavel    string           `json:"orgaoResponsavel"`
	EmpresaContratada   string           `json:"empresaContratada"`
	Modalidade          Modalidade       `json:"modalidade"`
	DataInicio          time.Time        `json:"dataInicio"`
	DataFim             time.Time        `json:"dataFim"`
	DiasRestantes       int              `json:"diasRestantes"`
	StatusContrato      StatusContrato   `json:"statusContrato"`
	ValorGlobal         decimal.Decimal  `json:"valorGlobal"`
	ValorEstimado       *decimal.Decimal `json:"valorEstimado"`
	DiferencaPercentual *decimal.Decimal `json:"diferencaPercentual"`
	EmAlerta            bool             `json:"emAlerta"`
}
