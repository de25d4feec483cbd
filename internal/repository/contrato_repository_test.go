package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/gestgov/contratos-service/internal/model"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Contrato{}, &model.PesquisaPreco{}))
	return db
}

var base = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func seedContrato(t *testing.T, repo ContratoRepository, numero, orgao, empresa, objeto string, status model.StatusContrato, modalidade model.Modalidade, valor int64, createdAt time.Time) *model.Contrato {
	t.Helper()
	contrato := &model.Contrato{
		NumeroContrato:    numero,
		OrgaoResponsavel:  orgao,
		EmpresaContratada: empresa,
		CnpjEmpresa:       "00.000.000/0001-00",
		ObjetoContrato:    objeto,
		DataInicio:        base,
		DataFim:           base.AddDate(1, 0, 0),
		ValorGlobal:       decimal.NewFromInt(valor),
		Modalidade:        modalidade,
		PrazoMaximoMeses:  60,
		StatusContrato:    status,
		CreatedAt:         createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), contrato))
	return contrato
}

func TestListFilterComposition(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	seedContrato(t, repo, "CT-001", "Secretaria de Obras", "Construtora Alfa", "Pavimentação de vias", model.StatusAtivo, model.ModalidadePregao, 1000, base)
	seedContrato(t, repo, "CT-002", "Secretaria de Obras", "Construtora Beta", "Reforma de praça", model.StatusAtivo, model.ModalidadeConvite, 2000, base.Add(time.Minute))
	seedContrato(t, repo, "CT-003", "Secretaria de Saúde", "Distribuidora Gama", "Compra de medicamentos", model.StatusVencido, model.ModalidadePregao, 3000, base.Add(2*time.Minute))

	// Status and modalidade narrow with AND.
	status := model.StatusAtivo
	modalidade := model.ModalidadePregao
	items, total, err := repo.List(ctx, ContratoFilter{Status: &status, Modalidade: &modalidade, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "CT-001", items[0].NumeroContrato)

	// Agency match is a case-insensitive substring.
	items, total, err = repo.List(ctx, ContratoFilter{OrgaoResponsavel: "secretaria de obras", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	items, _, err = repo.List(ctx, ContratoFilter{EmpresaContratada: "GAMA", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "CT-003", items[0].NumeroContrato)

	// Search is numero OR objeto, independent of the other filters.
	items, total, err = repo.List(ctx, ContratoFilter{Search: "ct-002", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "CT-002", items[0].NumeroContrato)

	items, total, err = repo.List(ctx, ContratoFilter{Search: "medicamentos", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "CT-003", items[0].NumeroContrato)

	status = model.StatusAtivo
	items, total, err = repo.List(ctx, ContratoFilter{Status: &status, Search: "reforma", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "CT-002", items[0].NumeroContrato)

	// Absent fields impose no constraint.
	_, total, err = repo.List(ctx, ContratoFilter{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestListPagination(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		seedContrato(t, repo,
			fmt.Sprintf("CT-%03d", i),
			"Secretaria de Obras", "Construtora Alfa", "Objeto",
			model.StatusAtivo, model.ModalidadePregao, int64(i*100),
			base.Add(time.Duration(i)*time.Minute))
	}

	items, total, err := repo.List(ctx, ContratoFilter{Page: 2, PageSize: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 12, total, "total reflects the filtered count, not the page")
	require.Len(t, items, 5)

	// Ordering is creation-descending, so page 2 holds CT-007..CT-003.
	assert.Equal(t, "CT-007", items[0].NumeroContrato)
	assert.Equal(t, "CT-003", items[4].NumeroContrato)

	items, _, err = repo.List(ctx, ContratoFilter{Page: 3, PageSize: 5})
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFindByIDPreloadsPesquisas(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	contrato := seedContrato(t, repo, "CT-100", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadeDispensa, 1000, base)

	err := repo.RegistrarPesquisas(ctx, contrato.ID, []model.PesquisaPreco{
		{Fonte: "Fornecedor A", PrecoColetado: decimal.NewFromInt(900), DataColeta: base},
		{Fonte: "Fornecedor B", PrecoColetado: decimal.NewFromInt(1100), DataColeta: base},
	})
	require.NoError(t, err)

	carregado, err := repo.FindByID(ctx, contrato.ID)
	require.NoError(t, err)
	assert.Len(t, carregado.Pesquisas, 2)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRegistrarPesquisasRecomputaSobreUniao(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	contrato := seedContrato(t, repo, "CT-101", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 1000, base)

	require.NoError(t, repo.RegistrarPesquisas(ctx, contrato.ID, []model.PesquisaPreco{
		{Fonte: "A", PrecoColetado: decimal.NewFromInt(100), DataColeta: base},
	}))
	require.NoError(t, repo.RegistrarPesquisas(ctx, contrato.ID, []model.PesquisaPreco{
		{Fonte: "B", PrecoColetado: decimal.NewFromInt(200), DataColeta: base},
	}))

	carregado, err := repo.FindByID(ctx, contrato.ID)
	require.NoError(t, err)
	require.NotNil(t, carregado.ValorEstimado)
	assert.True(t, carregado.ValorEstimado.Equal(decimal.NewFromInt(150)),
		"mean over the union of batches, got %s", carregado.ValorEstimado)
	require.NotNil(t, carregado.DiferencaPercentual)

	pesquisas, err := repo.FindPesquisasByContrato(ctx, contrato.ID)
	require.NoError(t, err)
	assert.Len(t, pesquisas, 2)

	err = repo.RegistrarPesquisas(ctx, uuid.New(), []model.PesquisaPreco{
		{Fonte: "X", PrecoColetado: decimal.NewFromInt(10), DataColeta: base},
	})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdatePartial(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	contrato := seedContrato(t, repo, "CT-102", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 1000, base)

	err := repo.Update(ctx, contrato.ID, map[string]interface{}{
		"orgao_responsavel": "Secretaria de Educação",
	})
	require.NoError(t, err)

	carregado, err := repo.FindByID(ctx, contrato.ID)
	require.NoError(t, err)
	assert.Equal(t, "Secretaria de Educação", carregado.OrgaoResponsavel)
	assert.Equal(t, "Empresa", carregado.EmpresaContratada, "unlisted fields stay untouched")
	assert.Equal(t, "CT-102", carregado.NumeroContrato)

	err = repo.Update(ctx, uuid.New(), map[string]interface{}{"orgao_responsavel": "X"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindAllOpenExcludesEncerrados(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	seedContrato(t, repo, "CT-110", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 1000, base)
	seedContrato(t, repo, "CT-111", "Órgão", "Empresa", "Objeto", model.StatusVencido, model.ModalidadePregao, 1000, base)
	seedContrato(t, repo, "CT-112", "Órgão", "Empresa", "Objeto", model.StatusEncerrado, model.ModalidadePregao, 1000, base)

	open, err := repo.FindAllOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	for _, contrato := range open {
		assert.NotEqual(t, model.StatusEncerrado, contrato.StatusContrato)
	}
}

func TestListByValorGlobal(t *testing.T) {
	repo := NewContratoRepository(setupDB(t))
	ctx := context.Background()

	seedContrato(t, repo, "CT-120", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 50000, base)
	seedContrato(t, repo, "CT-121", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 100, base.Add(time.Minute))
	seedContrato(t, repo, "CT-122", "Órgão", "Empresa", "Objeto", model.StatusAtivo, model.ModalidadePregao, 7000, base.Add(2*time.Minute))

	contratos, err := repo.ListByValorGlobal(ctx)
	require.NoError(t, err)
	require.Len(t, contratos, 3)
	assert.Equal(t, "CT-121", contratos[0].NumeroContrato)
	assert.Equal(t, "CT-122", contratos[1].NumeroContrato)
	assert.Equal(t, "CT-120", contratos[2].NumeroContrato)
}
