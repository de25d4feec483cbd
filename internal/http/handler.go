package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gestgov/contratos-service/internal/model"
	"github.com/gestgov/contratos-service/internal/service"
)

type Handler struct {
	contratos *service.ContratoService
	log       zerolog.Logger
}

func NewHandler(contratos *service.ContratoService, log zerolog.Logger) *Handler {
	return &Handler{contratos: contratos, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	api := router.Group("/api")

	contratos := api.Group("/contratos")
	contratos.GET("", h.listar)
	contratos.GET("/visao-geral", h.visaoGeral)
	contratos.GET("/export", h.exportar)
	contratos.GET("/:id", h.buscarPorID)
	contratos.GET("/:id/relatorio", h.relatorio)

	protected := api.Group("/contratos")
	protected.Use(authMiddleware)
	protected.POST("", h.criar)
	protected.PUT("/:id", h.atualizar)
	protected.DELETE("/:id", h.encerrar)
	protected.POST("/:id/pesquisa-precos", h.registrarPesquisa)
}

type criarContratoRequest struct {
	NumeroContrato      string           `json:"numeroContrato" binding:"required"`
	ProcessoLicitatorio *string          `json:"processoLicitatorio"`
	OrgaoResponsavel    string           `json:"orgaoResponsavel" binding:"required"`
	EmpresaContratada   string           `json:"empresaContratada" binding:"required"`
	CnpjEmpresa         string           `json:"cnpjEmpresa" binding:"required"`
	ObjetoContrato      string           `json:"objetoContrato" binding:"required"`
	DataInicio          string           `json:"dataInicio" binding:"required"`
	DataFim             string           `json:"dataFim" binding:"required"`
	ValorGlobal         *decimal.Decimal `json:"valorGlobal" binding:"required"`
	Modalidade          string           `json:"modalidade" binding:"required"`
	PrazoMaximoMeses    *int             `json:"prazoMaximoMeses"`
	ValorEstimado       *decimal.Decimal `json:"valorEstimado"`
	DiferencaPercentual *decimal.Decimal `json:"diferencaPercentual"`
}

func (h *Handler) criar(c *gin.Context) {
	var req criarContratoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dataInicio, err := parseDate(req.DataInicio)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataInicio"})
		return
	}
	dataFim, err := parseDate(req.DataFim)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataFim"})
		return
	}
	modalidade, ok := model.ParseModalidade(strings.TrimSpace(req.Modalidade))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modalidade"})
		return
	}

	contrato, err := h.contratos.Criar(c.Request.Context(), service.CriarContratoInput{
		NumeroContrato:      req.NumeroContrato,
		ProcessoLicitatorio: req.ProcessoLicitatorio,
		OrgaoResponsavel:    req.OrgaoResponsavel,
		EmpresaContratada:   req.EmpresaContratada,
		CnpjEmpresa:         req.CnpjEmpresa,
		ObjetoContrato:      req.ObjetoContrato,
		DataInicio:          dataInicio,
		DataFim:             dataFim,
		ValorGlobal:         *req.ValorGlobal,
		Modalidade:          modalidade,
		PrazoMaximoMeses:    req.PrazoMaximoMeses,
		ValorEstimado:       req.ValorEstimado,
		DiferencaPercentual: req.DiferencaPercentual,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contrato)
}

func (h *Handler) listar(c *gin.Context) {
	input := service.ListarInput{
		OrgaoResponsavel:  c.Query("orgaoResponsavel"),
		EmpresaContratada: c.Query("empresaContratada"),
		Search:            c.Query("search"),
	}

	if raw := c.Query("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			input.Page = page
		}
	}
	if raw := c.Query("pageSize"); raw != "" {
		if pageSize, err := strconv.Atoi(raw); err == nil {
			input.PageSize = pageSize
		}
	}
	if raw := c.Query("statusContrato"); raw != "" {
		status, ok := model.ParseStatusContrato(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statusContrato"})
			return
		}
		input.Status = &status
	}
	if raw := c.Query("modalidade"); raw != "" {
		modalidade, ok := model.ParseModalidade(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modalidade"})
			return
		}
		input.Modalidade = &modalidade
	}

	result, err := h.contratos.Listar(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) visaoGeral(c *gin.Context) {
	overview, err := h.contratos.VisaoGeral(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) buscarPorID(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	contrato, err := h.contratos.BuscarPorID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrato)
}

type atualizarContratoRequest struct {
	NumeroContrato      *string          `json:"numeroContrato"`
	ProcessoLicitatorio *string          `json:"processoLicitatorio"`
	OrgaoResponsavel    *string          `json:"orgaoResponsavel"`
	EmpresaContratada   *string          `json:"empresaContratada"`
	CnpjEmpresa         *string          `json:"cnpjEmpresa"`
	ObjetoContrato      *string          `json:"objetoContrato"`
	DataInicio          *string          `json:"dataInicio"`
	DataFim             *string          `json:"dataFim"`
	ValorGlobal         *decimal.Decimal `json:"valorGlobal"`
	Modalidade          *string          `json:"modalidade"`
	PrazoMaximoMeses    *int             `json:"prazoMaximoMeses"`
	ValorEstimado       *decimal.Decimal `json:"valorEstimado"`
	DiferencaPercentual *decimal.Decimal `json:"diferencaPercentual"`
}

func (h *Handler) atualizar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	var req atualizarContratoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.AtualizarContratoInput{
		NumeroContrato:      req.NumeroContrato,
		ProcessoLicitatorio: req.ProcessoLicitatorio,
		OrgaoResponsavel:    req.OrgaoResponsavel,
		EmpresaContratada:   req.EmpresaContratada,
		CnpjEmpresa:         req.CnpjEmpresa,
		ObjetoContrato:      req.ObjetoContrato,
		ValorGlobal:         req.ValorGlobal,
		PrazoMaximoMeses:    req.PrazoMaximoMeses,
		ValorEstimado:       req.ValorEstimado,
		DiferencaPercentual: req.DiferencaPercentual,
	}
	if req.DataInicio != nil {
		parsed, err := parseDate(*req.DataInicio)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataInicio"})
			return
		}
		input.DataInicio = &parsed
	}
	if req.DataFim != nil {
		parsed, err := parseDate(*req.DataFim)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataFim"})
			return
		}
		input.DataFim = &parsed
	}
	if req.Modalidade != nil {
		modalidade, ok := model.ParseModalidade(strings.TrimSpace(*req.Modalidade))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modalidade"})
			return
		}
		input.Modalidade = &modalidade
	}

	contrato, err := h.contratos.Atualizar(c.Request.Context(), id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrato)
}

func (h *Handler) encerrar(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}
	contrato, err := h.contratos.Encerrar(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrato)
}

type pesquisaPrecoRequest struct {
	Fonte         string           `json:"fonte"`
	URL           *string          `json:"url"`
	PrecoColetado *decimal.Decimal `json:"precoColetado"`
	DataColeta    string           `json:"dataColeta"`
}

type registrarPesquisaRequest struct {
	Fontes []pesquisaPrecoRequest `json:"fontes"`
}

func (h *Handler) registrarPesquisa(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	// Both `{"fontes": [...]}` and a bare array body are accepted.
	var req registrarPesquisaRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || len(req.Fontes) == 0 {
		var bare []pesquisaPrecoRequest
		if err := c.ShouldBindBodyWith(&bare, binding.JSON); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		req.Fontes = bare
	}

	entries := make([]service.PesquisaPrecoInput, 0, len(req.Fontes))
	for _, fonte := range req.Fontes {
		entry := service.PesquisaPrecoInput{
			Fonte:         fonte.Fonte,
			URL:           fonte.URL,
			PrecoColetado: fonte.PrecoColetado,
		}
		if fonte.DataColeta != "" {
			parsed, err := parseDate(fonte.DataColeta)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dataColeta"})
				return
			}
			entry.DataColeta = parsed
		}
		entries = append(entries, entry)
	}

	contrato, err := h.contratos.RegistrarPesquisaPrecos(c.Request.Context(), id, entries)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrato)
}

func (h *Handler) exportar(c *gin.Context) {
	input := service.ListarInput{
		OrgaoResponsavel:  c.Query("orgaoResponsavel"),
		EmpresaContratada: c.Query("empresaContratada"),
		Search:            c.Query("search"),
	}
	if raw := c.Query("statusContrato"); raw != "" {
		status, ok := model.ParseStatusContrato(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid statusContrato"})
			return
		}
		input.Status = &status
	}
	if raw := c.Query("modalidade"); raw != "" {
		modalidade, ok := model.ParseModalidade(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid modalidade"})
			return
		}
		input.Modalidade = &modalidade
	}

	result, err := h.contratos.ExportarContratos(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	const contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) relatorio(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		return
	}

	result, err := h.contratos.GerarRelatorioContrato(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, err
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
