package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PesquisaPreco is a market price data point collected for a contract.
// Entries are append-only: there is no update or delete operation.
type PesquisaPreco struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ContratoID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"contratoId"`
	Fonte         string          `gorm:"not null" json:"fonte"`
	URL           *string         `json:"url,omitempty"`
	PrecoColetado decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"precoColetado"`
	DataColeta    time.Time       `gorm:"not null" json:"dataColeta"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func (PesquisaPreco) TableName() string { return "pesquisas_precos" }

func (p *PesquisaPreco) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
