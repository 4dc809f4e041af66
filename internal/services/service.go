package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"odonto/internal/core"
	applog "odonto/internal/log"
	"odonto/internal/storage"
)

var (
	ErrPazienteNotFound  = errors.New("paziente not found")
	ErrPagamentoNotFound = errors.New("pagamento not found")
	ErrRataNotFound      = errors.New("rata not found")
)

// Publisher emits paid-installment events. The AMQP client implements it;
// tests pass a recording fake and a nil Publisher disables publishing.
type Publisher interface {
	PublishRataPagata(ctx context.Context, rataID, pagamentoID int64) error
}

// Service orchestrates patient, plan and installment operations across
// storage and the event publisher.
type Service struct {
	store     storage.Store
	publisher Publisher
	now       func() core.Date
}

func New(store storage.Store, publisher Publisher) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		now:       core.Today,
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() core.Date) *Service {
	s.now = now
	return s
}

func (s *Service) ListPazienti(ctx context.Context) ([]core.Paziente, error) {
	return s.store.ListPazienti(ctx)
}

func (s *Service) GetPaziente(ctx context.Context, id int64) (core.Paziente, error) {
	p, err := s.store.GetPaziente(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Paziente{}, ErrPazienteNotFound
	}
	return p, err
}

func (s *Service) CreatePaziente(ctx context.Context, nome, cognome string) (core.Paziente, error) {
	p := core.Paziente{
		Nome:          core.NormalizeNome(nome),
		Cognome:       core.NormalizeNome(cognome),
		DataCreazione: s.now(),
	}
	if err := p.Validate(); err != nil {
		return core.Paziente{}, err
	}
	return s.store.CreatePaziente(ctx, p)
}

func (s *Service) UpdatePaziente(ctx context.Context, id int64, nome, cognome string) (core.Paziente, error) {
	p := core.Paziente{
		ID:      id,
		Nome:    core.NormalizeNome(nome),
		Cognome: core.NormalizeNome(cognome),
	}
	if err := p.Validate(); err != nil {
		return core.Paziente{}, err
	}
	updated, err := s.store.UpdatePaziente(ctx, p)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Paziente{}, ErrPazienteNotFound
	}
	return updated, err
}

func (s *Service) DeletePaziente(ctx context.Context, id int64) error {
	err := s.store.DeletePaziente(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPazienteNotFound
	}
	return err
}

// CreatePagamentoInput is the plan-creation request. When Rate is empty the
// plan is generated: modalita unico yields one installment due next month,
// modalita rate runs the generator over NumeroRate.
type CreatePagamentoInput struct {
	PazienteID int64
	NomeLavoro string
	Modalita   core.ModalitaPagamento
	Totale     core.Money
	Rate       []core.RataBozza
	NumeroRate int
}

func (s *Service) CreatePagamento(ctx context.Context, in CreatePagamentoInput) (core.Pagamento, []core.Rata, error) {
	if _, err := s.GetPaziente(ctx, in.PazienteID); err != nil {
		return core.Pagamento{}, nil, err
	}

	oggi := s.now()
	p := core.Pagamento{
		PazienteID:    in.PazienteID,
		NomeLavoro:    in.NomeLavoro,
		Modalita:      in.Modalita,
		Totale:        in.Totale,
		DataCreazione: oggi,
	}
	if err := p.Validate(); err != nil {
		return core.Pagamento{}, nil, err
	}

	rate := in.Rate
	if len(rate) == 0 {
		switch in.Modalita {
		case core.Unico:
			rate = []core.RataBozza{{Ammontare: in.Totale, DataScadenza: oggi.AddMonths(1)}}
		case core.Rate:
			rate = core.GeneraPiano(in.Totale, in.NumeroRate, oggi)
			if len(rate) == 0 {
				return core.Pagamento{}, nil, core.ErrRateCount
			}
		}
	}
	for _, r := range rate {
		if err := r.Ammontare.Validate(); err != nil {
			return core.Pagamento{}, nil, err
		}
		if err := r.DataScadenza.Validate(); err != nil {
			return core.Pagamento{}, nil, err
		}
	}
	if err := core.VerificaPiano(in.Modalita, in.Totale, rate); err != nil {
		return core.Pagamento{}, nil, err
	}

	created, err := s.store.CreatePagamento(ctx, p, rate)
	if err != nil {
		return core.Pagamento{}, nil, fmt.Errorf("create pagamento: %w", err)
	}
	createdRate, err := s.store.ListRateByPagamento(ctx, created.ID)
	if err != nil {
		return core.Pagamento{}, nil, fmt.Errorf("list rate for new pagamento: %w", err)
	}
	return created, s.withStato(createdRate), nil
}

func (s *Service) ListPagamenti(ctx context.Context) ([]core.Pagamento, error) {
	return s.store.ListPagamenti(ctx)
}

func (s *Service) ListPagamentiByPaziente(ctx context.Context, pazienteID int64) ([]core.Pagamento, error) {
	if _, err := s.GetPaziente(ctx, pazienteID); err != nil {
		return nil, err
	}
	return s.store.ListPagamentiByPaziente(ctx, pazienteID)
}

func (s *Service) GetPagamento(ctx context.Context, id int64) (core.Pagamento, error) {
	p, err := s.store.GetPagamento(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Pagamento{}, ErrPagamentoNotFound
	}
	return p, err
}

func (s *Service) UpdatePagamento(ctx context.Context, id int64, nomeLavoro string) (core.Pagamento, error) {
	if len(nomeLavoro) > 120 {
		return core.Pagamento{}, errors.New("nome lavoro too long (max 120 characters)")
	}
	p, err := s.store.UpdatePagamento(ctx, id, nomeLavoro)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Pagamento{}, ErrPagamentoNotFound
	}
	return p, err
}

func (s *Service) DeletePagamento(ctx context.Context, id int64) error {
	err := s.store.DeletePagamento(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrPagamentoNotFound
	}
	return err
}

func (s *Service) ListRate(ctx context.Context) ([]core.Rata, error) {
	rate, err := s.store.ListRate(ctx)
	if err != nil {
		return nil, err
	}
	return s.withStato(rate), nil
}

func (s *Service) ListRateByPagamento(ctx context.Context, pagamentoID int64) ([]core.Rata, error) {
	if _, err := s.GetPagamento(ctx, pagamentoID); err != nil {
		return nil, err
	}
	rate, err := s.store.ListRateByPagamento(ctx, pagamentoID)
	if err != nil {
		return nil, err
	}
	return s.withStato(rate), nil
}

// UpdateRataInput carries the optional edits of PUT /rate; nil means keep.
type UpdateRataInput struct {
	Ammontare    *core.Money
	DataScadenza *core.Date
	Stato        *core.StatoRata
}

func (s *Service) UpdateRata(ctx context.Context, id int64, in UpdateRataInput) (core.Rata, error) {
	r, err := s.store.GetRata(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Rata{}, ErrRataNotFound
	}
	if err != nil {
		return core.Rata{}, err
	}

	if in.Ammontare != nil {
		r.Ammontare = *in.Ammontare
	}
	if in.DataScadenza != nil {
		r.DataScadenza = *in.DataScadenza
	}
	if in.Stato != nil {
		r.Stato = *in.Stato
		if *in.Stato == core.StatoPagata && r.DataPagamento.IsEmpty() {
			r.DataPagamento = s.now()
		}
		if *in.Stato != core.StatoPagata {
			r.DataPagamento = core.Date{}
		}
	}
	if err := r.Validate(); err != nil {
		return core.Rata{}, err
	}

	updated, err := s.store.UpdateRata(ctx, r)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Rata{}, ErrRataNotFound
	}
	if err != nil {
		return core.Rata{}, err
	}
	return updated.WithStato(s.now()), nil
}

// PagaRata marks the installment paid with today's date set server-side,
// then publishes the event best-effort.
func (s *Service) PagaRata(ctx context.Context, id int64) (core.Rata, error) {
	oggi := s.now()
	r, err := s.store.PagaRata(ctx, id, oggi)
	if errors.Is(err, storage.ErrNotFound) {
		return core.Rata{}, ErrRataNotFound
	}
	if err != nil {
		return core.Rata{}, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRataPagata(ctx, r.ID, r.PagamentoID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish rata pagata message",
				applog.FieldRataID, r.ID,
				applog.FieldPagamentoID, r.PagamentoID,
				applog.FieldError, err)
			// payment is recorded locally; the register catches up later
		}
	}

	return r.WithStato(oggi), nil
}

func (s *Service) ListRateScaduteByPaziente(ctx context.Context, pazienteID int64) ([]core.Rata, error) {
	if _, err := s.GetPaziente(ctx, pazienteID); err != nil {
		return nil, err
	}
	oggi := s.now()
	rate, err := s.store.ListRateScaduteByPaziente(ctx, pazienteID, oggi)
	if err != nil {
		return nil, err
	}
	return s.withStato(rate), nil
}

// Riepilogo aggregates every installment into the dashboard summary.
func (s *Service) Riepilogo(ctx context.Context) (core.Riepilogo, error) {
	rate, err := s.store.ListRate(ctx)
	if err != nil {
		return core.Riepilogo{}, err
	}
	return core.BuildRiepilogo(rate, s.now()), nil
}

func (s *Service) withStato(rate []core.Rata) []core.Rata {
	oggi := s.now()
	out := make([]core.Rata, len(rate))
	for i, r := range rate {
		out[i] = r.WithStato(oggi)
	}
	return out
}

func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close service: %v", errs)
	}
	return nil
}
