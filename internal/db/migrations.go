package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'status_contrato') THEN
			CREATE TYPE status_contrato AS ENUM ('ATIVO', 'EM_ALERTA', 'VENCIDO', 'ENCERRADO');
		END IF;
	END
	$$;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'modalidade_contrato') THEN
			CREATE TYPE modalidade_contrato AS ENUM (
				'PREGAO',
				'CONCORRENCIA',
				'TOMADA_DE_PRECOS',
				'CONVITE',
				'DISPENSA',
				'INEXIGIBILIDADE'
			);
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contratos (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		numero_contrato VARCHAR(64) NOT NULL,
		processo_licitatorio VARCHAR(64),
		orgao_responsavel TEXT NOT NULL,
		empresa_contratada TEXT NOT NULL,
		cnpj_empresa VARCHAR(18) NOT NULL,
		objeto_contrato TEXT NOT NULL,
		data_inicio DATE NOT NULL,
		data_fim DATE NOT NULL,
		valor_global NUMERIC(18,2) NOT NULL CHECK (valor_global >= 0),
		modalidade modalidade_contrato NOT NULL,
		prazo_maximo_meses INT NOT NULL DEFAULT 60,
		valor_estimado NUMERIC(18,2),
		diferenca_percentual NUMERIC(9,2),
		status_contrato status_contrato NOT NULL DEFAULT 'ATIVO',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS pesquisas_precos (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		contrato_id UUID NOT NULL REFERENCES contratos(id) ON DELETE CASCADE,
		fonte TEXT NOT NULL,
		url TEXT,
		preco_coletado NUMERIC(18,2) NOT NULL CHECK (preco_coletado >= 0),
		data_coleta DATE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contratos_numero ON contratos (numero_contrato);`,
	`CREATE INDEX IF NOT EXISTS idx_contratos_status ON contratos (status_contrato);`,
	`CREATE INDEX IF NOT EXISTS idx_contratos_created_at ON contratos (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_pesquisas_contrato_id ON pesquisas_precos (contrato_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
