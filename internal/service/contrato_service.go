package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/gestgov/contratos-service/internal/config"
	"github.com/gestgov/contratos-service/internal/model"
	"github.com/gestgov/contratos-service/internal/repository"
)

type ExcelGenerator interface {
	Generate(contratos []model.Contrato, geradoEm time.Time) ([]byte, error)
}

type PDFGenerator interface {
	Generate(contrato model.Contrato, geradoEm time.Time) ([]byte, error)
}

type ContratoService struct {
	repo       repository.ContratoRepository
	excel      ExcelGenerator
	pdf        PDFGenerator
	alertaDias int
	now        func() time.Time
}

func NewContratoService(repo repository.ContratoRepository, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config) *ContratoService {
	return &ContratoService{
		repo:       repo,
		excel:      excel,
		pdf:        pdf,
		alertaDias: cfg.Contratos.AlertaDias,
		now:        time.Now,
	}
}

type CriarContratoInput struct {
	NumeroContrato      string
	ProcessoLicitatorio *string
	OrgaoResponsavel    string
	EmpresaContratada   string
	CnpjEmpresa         string
	ObjetoContrato      string
	DataInicio          time.Time
	DataFim             time.Time
	ValorGlobal         decimal.Decimal
	Modalidade          model.Modalidade
	PrazoMaximoMeses    *int
	ValorEstimado       *decimal.Decimal
	DiferencaPercentual *decimal.Decimal
}

type AtualizarContratoInput struct {
	NumeroContrato      *string
	ProcessoLicitatorio *string
	OrgaoResponsavel    *string
	EmpresaContratada   *string
	CnpjEmpresa         *string
	ObjetoContrato      *string
	DataInicio          *time.Time
	DataFim             *time.Time
	ValorGlobal         *decimal.Decimal
	Modalidade          *model.Modalidade
	PrazoMaximoMeses    *int
	ValorEstimado       *decimal.Decimal
	DiferencaPercentual *decimal.Decimal
}

type PesquisaPrecoInput struct {
	Fonte         string
	URL           *string
	PrecoColetado *decimal.Decimal
	DataColeta    time.Time
}

type ListarInput struct {
	Page              int
	PageSize          int
	Status            *model.StatusContrato
	Modalidade        *model.Modalidade
	OrgaoResponsavel  string
	EmpresaContratada string
	Search            string
}

type ListarResultado struct {
	Data     []model.Contrato `json:"data"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type ArquivoResultado struct {
	FileName string
	Content  []byte
}

func (s *ContratoService) Criar(ctx context.Context, input CriarContratoInput) (*model.Contrato, error) {
	if err := validarCriacao(input); err != nil {
		return nil, err
	}

	prazoMeses := 60
	if input.PrazoMaximoMeses != nil {
		prazoMeses = *input.PrazoMaximoMeses
	}

	contrato := &model.Contrato{
		NumeroContrato:      strings.TrimSpace(input.NumeroContrato),
		ProcessoLicitatorio: input.ProcessoLicitatorio,
		OrgaoResponsavel:    input.OrgaoResponsavel,
		EmpresaContratada:   input.EmpresaContratada,
		CnpjEmpresa:         input.CnpjEmpresa,
		ObjetoContrato:      input.ObjetoContrato,
		DataInicio:          input.DataInicio,
		DataFim:             input.DataFim,
		ValorGlobal:         input.ValorGlobal,
		Modalidade:          input.Modalidade,
		PrazoMaximoMeses:    prazoMeses,
		ValorEstimado:       input.ValorEstimado,
		DiferencaPercentual: input.DiferencaPercentual,
		StatusContrato:      StatusPorData(input.DataFim, s.now(), s.alertaDias),
	}

	if err := s.repo.Create(ctx, contrato); err != nil {
		return nil, err
	}
	return contrato, nil
}

func validarCriacao(input CriarContratoInput) error {
	required := []struct {
		field string
		value string
	}{
		{"numeroContrato", input.NumeroContrato},
		{"orgaoResponsavel", input.OrgaoResponsavel},
		{"empresaContratada", input.EmpresaContratada},
		{"cnpjEmpresa", input.CnpjEmpresa},
		{"objetoContrato", input.ObjetoContrato},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidInput, r.field)
		}
	}
	if input.DataInicio.IsZero() {
		return fmt.Errorf("%w: dataInicio is required", ErrInvalidInput)
	}
	if input.DataFim.IsZero() {
		return fmt.Errorf("%w: dataFim is required", ErrInvalidInput)
	}
	if input.ValorGlobal.IsNegative() {
		return fmt.Errorf("%w: valorGlobal must not be negative", ErrInvalidInput)
	}
	if _, ok := model.ParseModalidade(string(input.Modalidade)); !ok {
		return fmt.Errorf("%w: invalid modalidade", ErrInvalidInput)
	}
	if input.PrazoMaximoMeses != nil && *input.PrazoMaximoMeses <= 0 {
		return fmt.Errorf("%w: prazoMaximoMeses must be positive", ErrInvalidInput)
	}
	return nil
}

func (s *ContratoService) Listar(ctx context.Context, input ListarInput) (*ListarResultado, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = 10
	}

	contratos, total, err := s.repo.List(ctx, repository.ContratoFilter{
		Status:            input.Status,
		Modalidade:        input.Modalidade,
		OrgaoResponsavel:  input.OrgaoResponsavel,
		EmpresaContratada: input.EmpresaContratada,
		Search:            input.Search,
		Page:              page,
		PageSize:          pageSize,
	})
	if err != nil {
		return nil, err
	}

	return &ListarResultado{
		Data:     contratos,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *ContratoService) BuscarPorID(ctx context.Context, id uuid.UUID) (*model.Contrato, error) {
	contrato, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contrato, nil
}

func (s *ContratoService) Atualizar(ctx context.Context, id uuid.UUID, input AtualizarContratoInput) (*model.Contrato, error) {
	existente, err := s.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ValorGlobal != nil && input.ValorGlobal.IsNegative() {
		return nil, fmt.Errorf("%w: valorGlobal must not be negative", ErrInvalidInput)
	}
	if input.Modalidade != nil {
		if _, ok := model.ParseModalidade(string(*input.Modalidade)); !ok {
			return nil, fmt.Errorf("%w: invalid modalidade", ErrInvalidInput)
		}
	}

	fields := map[string]interface{}{}
	setString := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	setString("numero_contrato", input.NumeroContrato)
	setString("processo_licitatorio", input.ProcessoLicitatorio)
	setString("orgao_responsavel", input.OrgaoResponsavel)
	setString("empresa_contratada", input.EmpresaContratada)
	setString("cnpj_empresa", input.CnpjEmpresa)
	setString("objeto_contrato", input.ObjetoContrato)
	if input.DataInicio != nil {
		fields["data_inicio"] = *input.DataInicio
	}
	if input.DataFim != nil {
		fields["data_fim"] = *input.DataFim
	}
	if input.ValorGlobal != nil {
		fields["valor_global"] = *input.ValorGlobal
	}
	if input.Modalidade != nil {
		fields["modalidade"] = *input.Modalidade
	}
	if input.PrazoMaximoMeses != nil {
		fields["prazo_maximo_meses"] = *input.PrazoMaximoMeses
	}
	if input.ValorEstimado != nil {
		fields["valor_estimado"] = *input.ValorEstimado
	}
	if input.DiferencaPercentual != nil {
		fields["diferenca_percentual"] = *input.DiferencaPercentual
	}

	// ENCERRADO is absorbing: the end date may change, the status may not.
	if existente.StatusContrato == model.StatusEncerrado {
		fields["status_contrato"] = model.StatusEncerrado
	} else {
		dataFim := existente.DataFim
		if input.DataFim != nil {
			dataFim = *input.DataFim
		}
		fields["status_contrato"] = StatusPorData(dataFim, s.now(), s.alertaDias)
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.BuscarPorID(ctx, id)
}

// Encerrar closes a contract from any status. Closing an already closed
// contract is a no-op that still returns it.
func (s *ContratoService) Encerrar(ctx context.Context, id uuid.UUID) (*model.Contrato, error) {
	existente, err := s.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existente.StatusContrato == model.StatusEncerrado {
		return existente, nil
	}
	if err := s.repo.UpdateStatus(ctx, id, model.StatusEncerrado); err != nil {
		return nil, err
	}
	return s.BuscarPorID(ctx, id)
}

func (s *ContratoService) RegistrarPesquisaPrecos(ctx context.Context, contratoID uuid.UUID, entries []PesquisaPrecoInput) (*model.Contrato, error) {
	if _, err := s.BuscarPorID(ctx, contratoID); err != nil {
		return nil, err
	}

	pesquisas := make([]model.PesquisaPreco, 0, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Fonte) == "" {
			continue
		}
		if entry.PrecoColetado == nil || entry.PrecoColetado.IsNegative() {
			continue
		}
		dataColeta := entry.DataColeta
		if dataColeta.IsZero() {
			dataColeta = s.now()
		}
		pesquisas = append(pesquisas, model.PesquisaPreco{
			Fonte:         strings.TrimSpace(entry.Fonte),
			URL:           entry.URL,
			PrecoColetado: *entry.PrecoColetado,
			DataColeta:    dataColeta,
		})
	}
	if len(pesquisas) == 0 {
		return nil, fmt.Errorf("%w: no valid price research entries", ErrInvalidInput)
	}

	if err := s.repo.RegistrarPesquisas(ctx, contratoID, pesquisas); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.BuscarPorID(ctx, contratoID)
}

// VisaoGeral lists every contract ordered by global value ascending with
// derived dashboard fields. The alert flag follows the original behavior:
// diasRestantes <= window, negatives included, so expired contracts flag too.
func (s *ContratoService) VisaoGeral(ctx context.Context) ([]model.VisaoGeralItem, error) {
	contratos, err := s.repo.ListByValorGlobal(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]model.VisaoGeralItem, 0, len(contratos))
	for _, contrato := range contratos {
		dias := DiasRestantes(contrato.DataFim, now)
		items = append(items, model.VisaoGeralItem{
			ID:                  contrato.ID,
			NumeroContrato:      contrato.NumeroContrato,
			OrgaoResponsavel:    contrato.OrgaoResponsavel,
			EmpresaContratada:   contrato.EmpresaContratada,
			Modalidade:          contrato.Modalidade,
			DataInicio:          contrato.DataInicio,
			DataFim:             contrato.DataFim,
			DiasRestantes:       dias,
			StatusContrato:      contrato.StatusContrato,
			ValorGlobal:         contrato.ValorGlobal,
			ValorEstimado:       contrato.ValorEstimado,
			DiferencaPercentual: contrato.DiferencaPercentual,
			EmAlerta:            dias <= s.alertaDias,
		})
	}
	return items, nil
}

// AtualizarStatusPorData reapplies the status policy to every non-closed
// contract and persists only changed rows. Updates run concurrently; each
// contract is an independent row, no transaction spans them. Returns the
// number of contracts actually changed.
func (s *ContratoService) AtualizarStatusPorData(ctx context.Context) (int, error) {
	contratos, err := s.repo.FindAllOpen(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	atualizados := 0
	for _, contrato := range contratos {
		status := StatusPorData(contrato.DataFim, now, s.alertaDias)
		if status == contrato.StatusContrato {
			continue
		}
		atualizados++
		id := contrato.ID
		g.Go(func() error {
			return s.repo.UpdateStatus(ctx, id, status)
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	return atualizados, nil
}

// ExportarContratos renders the filtered contract list (unpaginated) as a
// spreadsheet for the admin UI download button.
func (s *ContratoService) ExportarContratos(ctx context.Context, input ListarInput) (*ArquivoResultado, error) {
	contratos, _, err := s.repo.List(ctx, repository.ContratoFilter{
		Status:            input.Status,
		Modalidade:        input.Modalidade,
		OrgaoResponsavel:  input.OrgaoResponsavel,
		EmpresaContratada: input.EmpresaContratada,
		Search:            input.Search,
		Page:              1,
		PageSize:          -1,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	content, err := s.excel.Generate(contratos, now)
	if err != nil {
		return nil, err
	}
	return &ArquivoResultado{
		FileName: fmt.Sprintf("contratos-%s.xlsx", now.Format("20060102-150405")),
		Content:  content,
	}, nil
}

func (s *ContratoService) GerarRelatorioContrato(ctx context.Context, id uuid.UUID) (*ArquivoResultado, error) {
	contrato, err := s.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.Generate(*contrato, s.now())
	if err != nil {
		return nil, err
	}

	name := sanitizeFileName(contrato.NumeroContrato)
	if name == "" {
		name = contrato.ID.String()
	}
	return &ArquivoResultado{
		FileName: fmt.Sprintf("contrato-%s.pdf", name),
		Content:  content,
	}, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
