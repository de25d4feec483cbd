package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gestgov/contratos-service/internal/model"
	"github.com/gestgov/contratos-service/internal/pricing"
)

// ContratoFilter narrows List results. Nil/empty fields impose no constraint.
// Status and Modalidade match exactly, Orgao/Empresa are case-insensitive
// substring matches, and Search matches numero_contrato OR objeto_contrato.
type ContratoFilter struct {
	Status            *model.StatusContrato
	Modalidade        *model.Modalidade
	OrgaoResponsavel  string
	EmpresaContratada string
	Search            string
	Page              int
	PageSize          int
}

// ContratoRepository is the data access contract. Services depend on this
// interface, not on the GORM implementation, so tests can use in-memory stubs.
type ContratoRepository interface {
	Create(ctx context.Context, contrato *model.Contrato) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error)
	List(ctx context.Context, filter ContratoFilter) ([]model.Contrato, int64, error)
	ListByValorGlobal(ctx context.Context) ([]model.Contrato, error)
	FindAllOpen(ctx context.Context) ([]model.Contrato, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.StatusContrato) error

	// RegistrarPesquisas appends a batch of price research entries and
	// recomputes valor_estimado / diferenca_percentual over the full
	// historical set, in one transaction that locks the contract row so
	// concurrent submissions cannot compute a stale mean.
	RegistrarPesquisas(ctx context.Context, contratoID uuid.UUID, entries []model.PesquisaPreco) error
	FindPesquisasByContrato(ctx context.Context, contratoID uuid.UUID) ([]model.PesquisaPreco, error)
}

type contratoRepo struct {
	db *gorm.DB
}

func NewContratoRepository(db *gorm.DB) ContratoRepository {
	return &contratoRepo{db: db}
}

func (r *contratoRepo) Create(ctx context.Context, contrato *model.Contrato) error {
	return r.db.WithContext(ctx).Create(contrato).Error
}

func (r *contratoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Contrato, error) {
	var contrato model.Contrato
	err := r.db.WithContext(ctx).
		Preload("Pesquisas", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&contrato, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contrato, nil
}

func (r *contratoRepo) List(ctx context.Context, filter ContratoFilter) ([]model.Contrato, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Contrato{})

	if filter.Status != nil {
		q = q.Where("status_contrato = ?", *filter.Status)
	}
	if filter.Modalidade != nil {
		q = q.Where("modalidade = ?", *filter.Modalidade)
	}
	if filter.OrgaoResponsavel != "" {
		q = q.Where("LOWER(orgao_responsavel) LIKE ?", substring(filter.OrgaoResponsavel))
	}
	if filter.EmpresaContratada != "" {
		q = q.Where("LOWER(empresa_contratada) LIKE ?", substring(filter.EmpresaContratada))
	}
	if filter.Search != "" {
		pattern := substring(filter.Search)
		q = q.Where("(LOWER(numero_contrato) LIKE ? OR LOWER(objeto_contrato) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	var contratos []model.Contrato
	err := q.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&contratos).Error
	return contratos, total, err
}

func (r *contratoRepo) ListByValorGlobal(ctx context.Context) ([]model.Contrato, error) {
	var contratos []model.Contrato
	err := r.db.WithContext(ctx).Order("valor_global ASC").Find(&contratos).Error
	return contratos, err
}

func (r *contratoRepo) FindAllOpen(ctx context.Context) ([]model.Contrato, error) {
	var contratos []model.Contrato
	err := r.db.WithContext(ctx).
		Where("status_contrato <> ?", model.StatusEncerrado).
		Find(&contratos).Error
	return contratos, err
}

func (r *contratoRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&model.Contrato{}).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contratoRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.StatusContrato) error {
	return r.Update(ctx, id, map[string]interface{}{"status_contrato": status})
}

func (r *contratoRepo) RegistrarPesquisas(ctx context.Context, contratoID uuid.UUID, entries []model.PesquisaPreco) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		// Row lock prevents a lost update when two submissions race on the
		// read-average-write sequence. SQLite (tests) has no FOR UPDATE;
		// its transactions are serialized anyway.
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var contrato model.Contrato
		if err := q.First(&contrato, "id = ?", contratoID).Error; err != nil {
			return err
		}

		for i := range entries {
			entries[i].ContratoID = contratoID
		}
		if err := tx.Create(&entries).Error; err != nil {
			return err
		}

		var todas []model.PesquisaPreco
		if err := tx.Where("contrato_id = ?", contratoID).
			Order("created_at ASC").
			Find(&todas).Error; err != nil {
			return err
		}

		valorEstimado := pricing.ValorEstimado(todas)
		diferenca := pricing.DiferencaPercentual(contrato.ValorGlobal, valorEstimado)

		return tx.Model(&model.Contrato{}).
			Where("id = ?", contratoID).
			Updates(map[string]interface{}{
				"valor_estimado":       valorEstimado,
				"diferenca_percentual": diferenca,
			}).Error
	})
}

func (r *contratoRepo) FindPesquisasByContrato(ctx context.Context, contratoID uuid.UUID) ([]model.PesquisaPreco, error) {
	var pesquisas []model.PesquisaPreco
	err := r.db.WithContext(ctx).
		Where("contrato_id = ?", contratoID).
		Order("created_at ASC").
		Find(&pesquisas).Error
	return pesquisas, err
}

func substring(value string) string {
	return "%" + strings.ToLower(strings.TrimSpace(value)) + "%"
}
