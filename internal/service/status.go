package service

import (
	"math"
	"time"

	"github.com/gestgov/contratos-service/internal/model"
)

// DiasRestantes is ceil((dataFim - now) / 24h) at instant granularity.
// Callers inject now so the derivation stays deterministic under test.
func DiasRestantes(dataFim, now time.Time) int {
	diff := dataFim.Sub(now)
	return int(math.Ceil(diff.Hours() / 24))
}

// StatusPorData derives the lifecycle status from the end date. It never
// returns ENCERRADO: closing is an explicit one-way operation outside this
// policy, and callers must not apply the policy to a closed contract.
func StatusPorData(dataFim, now time.Time, alertaDias int) model.StatusContrato {
	dias := DiasRestantes(dataFim, now)
	if dias < 0 {
		return model.StatusVencido
	}
	if dias <= alertaDias {
		return model.StatusEmAlerta
	}
	return model.StatusAtivo
}
