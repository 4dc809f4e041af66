package storage

import (
	"context"
	"sort"
	"sync"

	"odonto/internal/core"
)

// MemoryStore is an in-memory Store used by tests and the "memory" data
// backend. It mirrors SQLite semantics, cascade deletes included.
type MemoryStore struct {
	mu        sync.RWMutex
	pazienti  map[int64]core.Paziente
	pagamenti map[int64]core.Pagamento
	rate      map[int64]core.Rata
	nextID    int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pazienti:  make(map[int64]core.Paziente),
		pagamenti: make(map[int64]core.Pagamento),
		rate:      make(map[int64]core.Rata),
		nextID:    1,
	}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *MemoryStore) ListPazienti(ctx context.Context) ([]core.Paziente, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Paziente, 0, len(m.pazienti))
	for _, p := range m.pazienti {
		out = append(out, p)
	}
	// newest first, id breaks ties
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataCreazione.SameDay(out[j].DataCreazione) {
			return out[i].ID > out[j].ID
		}
		return out[j].DataCreazione.BeforeDay(out[i].DataCreazione)
	})
	return out, nil
}

func (m *MemoryStore) GetPaziente(ctx context.Context, id int64) (core.Paziente, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pazienti[id]
	if !ok {
		return core.Paziente{}, ErrNotFound
	}
	return p, nil
}

func (m *MemoryStore) CreatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.id()
	m.pazienti[p.ID] = p
	return p, nil
}

func (m *MemoryStore) UpdatePaziente(ctx context.Context, p core.Paziente) (core.Paziente, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.pazienti[p.ID]
	if !ok {
		return core.Paziente{}, ErrNotFound
	}
	cur.Nome = p.Nome
	cur.Cognome = p.Cognome
	m.pazienti[p.ID] = cur
	return cur, nil
}

func (m *MemoryStore) DeletePaziente(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pazienti[id]; !ok {
		return ErrNotFound
	}
	delete(m.pazienti, id)
	for pgID, pg := range m.pagamenti {
		if pg.PazienteID == id {
			delete(m.pagamenti, pgID)
			for rID, r := range m.rate {
				if r.PagamentoID == pgID {
					delete(m.rate, rID)
				}
			}
		}
	}
	return nil
}

func (m *MemoryStore) decorate(p core.Pagamento) core.Pagamento {
	if pz, ok := m.pazienti[p.PazienteID]; ok {
		p.PazienteNome = pz.NomeCompleto()
	}
	return p
}

func (m *MemoryStore) ListPagamenti(ctx context.Context) ([]core.Pagamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Pagamento, 0, len(m.pagamenti))
	for _, p := range m.pagamenti {
		out = append(out, m.decorate(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataCreazione.SameDay(out[j].DataCreazione) {
			return out[i].ID > out[j].ID
		}
		return out[j].DataCreazione.BeforeDay(out[i].DataCreazione)
	})
	return out, nil
}

func (m *MemoryStore) ListPagamentiByPaziente(ctx context.Context, pazienteID int64) ([]core.Pagamento, error) {
	all, err := m.ListPagamenti(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Pagamento
	for _, p := range all {
		if p.PazienteID == pazienteID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetPagamento(ctx context.Context, id int64) (core.Pagamento, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pagamenti[id]
	if !ok {
		return core.Pagamento{}, ErrNotFound
	}
	return m.decorate(p), nil
}

func (m *MemoryStore) CreatePagamento(ctx context.Context, p core.Pagamento, rate []core.RataBozza) (core.Pagamento, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = m.id()
	m.pagamenti[p.ID] = p
	for i, r := range rate {
		rata := core.Rata{
			ID:           m.id(),
			PagamentoID:  p.ID,
			NumeroRata:   i + 1,
			TotaleRate:   len(rate),
			Ammontare:    r.Ammontare,
			DataScadenza: r.DataScadenza,
			Stato:        core.StatoFutura,
		}
		m.rate[rata.ID] = rata
	}
	return m.decorate(p), nil
}

func (m *MemoryStore) UpdatePagamento(ctx context.Context, id int64, nomeLavoro string) (core.Pagamento, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.pagamenti[id]
	if !ok {
		return core.Pagamento{}, ErrNotFound
	}
	p.NomeLavoro = nomeLavoro
	m.pagamenti[id] = p
	return m.decorate(p), nil
}

func (m *MemoryStore) DeletePagamento(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pagamenti[id]; !ok {
		return ErrNotFound
	}
	delete(m.pagamenti, id)
	for rID, r := range m.rate {
		if r.PagamentoID == id {
			delete(m.rate, rID)
		}
	}
	return nil
}

func (m *MemoryStore) decorateRata(r core.Rata) core.Rata {
	if pg, ok := m.pagamenti[r.PagamentoID]; ok {
		r.NomeLavoro = pg.NomeLavoro
		if pz, ok := m.pazienti[pg.PazienteID]; ok {
			r.PazienteNome = pz.NomeCompleto()
		}
	}
	return r
}

func (m *MemoryStore) ListRate(ctx context.Context) ([]core.Rata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Rata, 0, len(m.rate))
	for _, r := range m.rate {
		out = append(out, m.decorateRata(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DataScadenza.SameDay(out[j].DataScadenza) {
			return out[i].ID < out[j].ID
		}
		return out[i].DataScadenza.BeforeDay(out[j].DataScadenza)
	})
	return out, nil
}

func (m *MemoryStore) ListRateByPagamento(ctx context.Context, pagamentoID int64) ([]core.Rata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []core.Rata
	for _, r := range m.rate {
		if r.PagamentoID == pagamentoID {
			out = append(out, m.decorateRata(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NumeroRata < out[j].NumeroRata })
	return out, nil
}

func (m *MemoryStore) GetRata(ctx context.Context, id int64) (core.Rata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rate[id]
	if !ok {
		return core.Rata{}, ErrNotFound
	}
	return m.decorateRata(r), nil
}

func (m *MemoryStore) UpdateRata(ctx context.Context, r core.Rata) (core.Rata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.rate[r.ID]
	if !ok {
		return core.Rata{}, ErrNotFound
	}
	cur.Ammontare = r.Ammontare
	cur.DataScadenza = r.DataScadenza
	cur.DataPagamento = r.DataPagamento
	cur.Stato = r.Stato
	m.rate[r.ID] = cur
	return m.decorateRata(cur), nil
}

func (m *MemoryStore) PagaRata(ctx context.Context, id int64, pagata core.Date) (core.Rata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rate[id]
	if !ok {
		return core.Rata{}, ErrNotFound
	}
	r.Stato = core.StatoPagata
	r.DataPagamento = pagata
	m.rate[id] = r
	return m.decorateRata(r), nil
}

func (m *MemoryStore) ListRateScadute(ctx context.Context, oggi core.Date) ([]core.Rata, error) {
	all, err := m.ListRate(ctx)
	if err != nil {
		return nil, err
	}
	var out []core.Rata
	for _, r := range all {
		if r.Scaduta(oggi) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) ListRateScaduteByPaziente(ctx context.Context, pazienteID int64, oggi core.Date) ([]core.Rata, error) {
	m.mu.RLock()
	pagamentiPaziente := make(map[int64]bool)
	for id, pg := range m.pagamenti {
		if pg.PazienteID == pazienteID {
			pagamentiPaziente[id] = true
		}
	}
	m.mu.RUnlock()

	scadute, err := m.ListRateScadute(ctx, oggi)
	if err != nil {
		return nil, err
	}
	var out []core.Rata
	for _, r := range scadute {
		if pagamentiPaziente[r.PagamentoID] {
			out = append(out, r)
		}
	}
	return out, nil
}
