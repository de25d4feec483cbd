package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StatusContrato string

const (
	StatusAtivo     StatusContrato = "ATIVO"
	StatusEmAlerta  StatusContrato = "EM_ALERTA"
	StatusVencido   StatusContrato = "VENCIDO"
	StatusEncerrado StatusContrato = "ENCERRADO"
)

func ParseStatusContrato(raw string) (StatusContrato, bool) {
	switch StatusContrato(raw) {
	case StatusAtivo, StatusEmAlerta, StatusVencido, StatusEncerrado:
		return StatusContrato(raw), true
	default:
		return "", false
	}
}

type Modalidade string

const (
	ModalidadePregao          Modalidade = "PREGAO"
	ModalidadeConcorrencia    Modalidade = "CONCORRENCIA"
	ModalidadeTomadaDePrecos  Modalidade = "TOMADA_DE_PRECOS"
	ModalidadeConvite         Modalidade = "CONVITE"
	ModalidadeDispensa        Modalidade = "DISPENSA"
	ModalidadeInexigibilidade Modalidade = "INEXIGIBILIDADE"
)

func ParseModalidade(raw string) (Modalidade, bool) {
	switch Modalidade(raw) {
	case ModalidadePregao, ModalidadeConcorrencia, ModalidadeTomadaDePrecos,
		ModalidadeConvite, ModalidadeDispensa, ModalidadeInexigibilidade:
		return Modalidade(raw), true
	default:
		return "", false
	}
}

// Contrato is the root entity: a procurement contract and its price research.
// StatusContrato is derived from DataFim except for ENCERRADO, which is set
// only by the explicit close operation and is never overwritten afterwards.
type Contrato struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	NumeroContrato      string           `gorm:"uniqueIndex;not null" json:"numeroContrato"`
	ProcessoLicitatorio *string          `json:"processoLicitatorio,omitempty"`
	OrgaoResponsavel    string           `gorm:"index;not null" json:"orgaoResponsavel"`
	EmpresaContratada   string           `gorm:"index;not null" json:"empresaContratada"`
	CnpjEmpresa         string           `gorm:"not null" json:"cnpjEmpresa"`
	ObjetoContrato      string           `gorm:"not null" json:"objetoContrato"`
	DataInicio          time.Time        `gorm:"not null" json:"dataInicio"`
	DataFim             time.Time        `gorm:"not null" json:"dataFim"`
	ValorGlobal         decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"valorGlobal"`
	Modalidade          Modalidade       `gorm:"type:varchar(32);not null" json:"modalidade"`
	PrazoMaximoMeses    int              `gorm:"not null;default:60" json:"prazoMaximoMeses"`
	ValorEstimado       *decimal.Decimal `gorm:"type:decimal(18,2)" json:"valorEstimado"`
	DiferencaPercentual *decimal.Decimal `gorm:"type:decimal(9,2)" json:"diferencaPercentual"`
	StatusContrato      StatusContrato   `gorm:"type:varchar(16);not null;index" json:"statusContrato"`
	CreatedAt           time.Time        `json:"createdAt"`

	Pesquisas []PesquisaPreco `gorm:"foreignKey:ContratoID;constraint:OnDelete:CASCADE" json:"pesquisasPrecos,omitempty"`
}

func (Contrato) TableName() string { return "contratos" }

func (c *Contrato) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
