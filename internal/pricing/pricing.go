// Package pricing holds the price-research aggregation used both by the
// service layer and inside the repository's registration transaction.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/gestgov/contratos-service/internal/model"
)

var cem = decimal.NewFromInt(100)

// ValorEstimado is the mean of all collected prices. An empty set yields
// zero rather than dividing by zero; operationally at least one entry is
// always present when this runs.
func ValorEstimado(pesquisas []model.PesquisaPreco) decimal.Decimal {
	if len(pesquisas) == 0 {
		return decimal.Zero
	}
	soma := decimal.Zero
	for _, p := range pesquisas {
		soma = soma.Add(p.PrecoColetado)
	}
	return soma.Div(decimal.NewFromInt(int64(len(pesquisas))))
}

// DiferencaPercentual is ((valorGlobal - valorEstimado) / valorEstimado) * 100,
// or nil when the estimate is zero and the deviation is not computable.
func DiferencaPercentual(valorGlobal, valorEstimado decimal.Decimal) *decimal.Decimal {
	if valorEstimado.IsZero() {
		return nil
	}
	diff := valorGlobal.Sub(valorEstimado).Div(valorEstimado).Mul(cem)
	return &diff
}
