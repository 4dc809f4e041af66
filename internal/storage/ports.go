package storage

import (
	"context"
	"errors"

	"odonto/internal/core"
)

// ErrNotFound is returned by every lookup that misses.
var ErrNotFound = errors.New("not found")

// Store is the persistence port the HTTP layer and the services depend on.
// SQLiteStore is the production implementation; MemoryStore backs tests and
// the "memory" data backend.
type Store interface {
	ListPazienti(ctx context.Context) ([]core.Paziente, error)
	GetPaziente(ctx context.Context, id int64) (core.Paziente, error)
	CreatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error)
	UpdatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error)
	DeletePaziente(ctx context.Context, id int64) error

	ListPagamenti(ctx context.Context) ([]core.Pagamento, error)
	ListPagamentiByPaziente(ctx context.Context, pazienteID int64) ([]core.Pagamento, error)
	GetPagamento(ctx context.Context, id int64) (core.Pagamento, error)
	// CreatePagamento persists the plan and its installments atomically.
	CreatePagamento(ctx context.Context, p core.Pagamento, rate []core.RataBozza) (core.Pagamento, error)
	UpdatePagamento(ctx context.Context, id int64, nomeLavoro string) (core.Pagamento, error)
	DeletePagamento(ctx context.Context, id int64) error

	ListRate(ctx context.Context) ([]core.Rata, error)
	ListRateByPagamento(ctx context.Context, pagamentoID int64) ([]core.Rata, error)
	GetRata(ctx context.Context, id int64) (core.Rata, error)
	UpdateRata(ctx context.Context, r core.Rata) (core.Rata, error)
	// PagaRata marks an installment paid with the given payment date.
	PagaRata(ctx context.Context, id int64, pagata core.Date) (core.Rata, error)
	ListRateScadute(ctx context.Context, oggi core.Date) ([]core.Rata, error)
	ListRateScaduteByPaziente(ctx context.Context, pazienteID int64, oggi core.Date) ([]core.Rata, error)

	Close() error
}
