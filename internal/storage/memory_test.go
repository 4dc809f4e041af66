package storage

import (
	"context"
	"errors"
	"testing"

	"odonto/internal/core"
)

func seedPaziente(t *testing.T, s *MemoryStore, nome, cognome string) core.Paziente {
	t.Helper()
	p, err := s.CreatePaziente(context.Background(), core.Paziente{
		Nome:          nome,
		Cognome:       cognome,
		DataCreazione: core.Today(),
	})
	if err != nil {
		t.Fatalf("CreatePaziente: %v", err)
	}
	return p
}

func seedPagamento(t *testing.T, s *MemoryStore, pazienteID int64, rate []core.RataBozza) core.Pagamento {
	t.Helper()
	var totale core.Money
	for _, r := range rate {
		totale = totale.Add(r.Ammontare)
	}
	modalita := core.Rate
	if len(rate) == 1 {
		modalita = core.Unico
	}
	pg, err := s.CreatePagamento(context.Background(), core.Pagamento{
		PazienteID:    pazienteID,
		NomeLavoro:    "Impianto",
		Totale:        totale,
		Modalita:      modalita,
		DataCreazione: core.Today(),
	}, rate)
	if err != nil {
		t.Fatalf("CreatePagamento: %v", err)
	}
	return pg
}

func TestMemoryStorePazientiCRUD(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := seedPaziente(t, s, "Mario", "Rossi")
	if p.ID == 0 {
		t.Fatal("expected assigned id")
	}

	got, err := s.GetPaziente(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPaziente: %v", err)
	}
	if got.Nome != "Mario" || got.Cognome != "Rossi" {
		t.Errorf("got %q %q", got.Nome, got.Cognome)
	}

	got.Cognome = "Bianchi"
	if _, err := s.UpdatePaziente(ctx, got); err != nil {
		t.Fatalf("UpdatePaziente: %v", err)
	}
	got, _ = s.GetPaziente(ctx, p.ID)
	if got.Cognome != "Bianchi" {
		t.Errorf("cognome = %q, want Bianchi", got.Cognome)
	}

	if err := s.DeletePaziente(ctx, p.ID); err != nil {
		t.Fatalf("DeletePaziente: %v", err)
	}
	if _, err := s.GetPaziente(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreCreatePagamentoGeneratesRate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := seedPaziente(t, s, "Anna", "Verdi")
	bozze := core.GeneraPiano(core.Money{Cents: 10000}, 3, core.Today())
	pg := seedPagamento(t, s, p.ID, bozze)

	rate, err := s.ListRateByPagamento(ctx, pg.ID)
	if err != nil {
		t.Fatalf("ListRateByPagamento: %v", err)
	}
	if len(rate) != 3 {
		t.Fatalf("len(rate) = %d, want 3", len(rate))
	}
	for i, r := range rate {
		if r.NumeroRata != i+1 {
			t.Errorf("rata %d: NumeroRata = %d", i, r.NumeroRata)
		}
		if r.TotaleRate != 3 {
			t.Errorf("rata %d: TotaleRate = %d", i, r.TotaleRate)
		}
		if r.Stato != core.StatoFutura {
			t.Errorf("rata %d: Stato = %q", i, r.Stato)
		}
		if r.PazienteNome != "Anna Verdi" {
			t.Errorf("rata %d: PazienteNome = %q", i, r.PazienteNome)
		}
		if r.NomeLavoro != "Impianto" {
			t.Errorf("rata %d: NomeLavoro = %q", i, r.NomeLavoro)
		}
	}
}

func TestMemoryStoreDeletePazienteCascades(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := seedPaziente(t, s, "Luca", "Neri")
	bozze := core.GeneraPiano(core.Money{Cents: 5000}, 2, core.Today())
	pg := seedPagamento(t, s, p.ID, bozze)

	if err := s.DeletePaziente(ctx, p.ID); err != nil {
		t.Fatalf("DeletePaziente: %v", err)
	}
	if _, err := s.GetPagamento(ctx, pg.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("pagamento survived cascade: err = %v", err)
	}
	rate, _ := s.ListRate(ctx)
	if len(rate) != 0 {
		t.Errorf("rate survived cascade: %d left", len(rate))
	}
}

func TestMemoryStorePagaRata(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := seedPaziente(t, s, "Elisa", "Galli")
	pg := seedPagamento(t, s, p.ID, core.GeneraPiano(core.Money{Cents: 20000}, 2, core.Today()))
	rate, _ := s.ListRateByPagamento(ctx, pg.ID)

	oggi := core.Today()
	got, err := s.PagaRata(ctx, rate[0].ID, oggi)
	if err != nil {
		t.Fatalf("PagaRata: %v", err)
	}
	if got.Stato != core.StatoPagata {
		t.Errorf("Stato = %q, want pagata", got.Stato)
	}
	if !got.DataPagamento.SameDay(oggi) {
		t.Errorf("DataPagamento = %v, want today", got.DataPagamento)
	}

	if _, err := s.PagaRata(ctx, 9999, oggi); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing rata err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreRateScadute(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	oggi := core.NewDate(2026, 6, 15)
	p := seedPaziente(t, s, "Paolo", "Riva")
	pg := seedPagamento(t, s, p.ID, []core.RataBozza{
		{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 5, 15)},
		{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 6, 15)},
		{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 7, 15)},
	})

	scadute, err := s.ListRateScadute(ctx, oggi)
	if err != nil {
		t.Fatalf("ListRateScadute: %v", err)
	}
	if len(scadute) != 1 {
		t.Fatalf("len(scadute) = %d, want 1 (due-today is not overdue)", len(scadute))
	}
	if !scadute[0].DataScadenza.SameDay(core.NewDate(2026, 5, 15)) {
		t.Errorf("wrong rata flagged: %v", scadute[0].DataScadenza)
	}

	// paying the overdue one clears the report
	if _, err := s.PagaRata(ctx, scadute[0].ID, oggi); err != nil {
		t.Fatalf("PagaRata: %v", err)
	}
	scadute, _ = s.ListRateScaduteByPaziente(ctx, p.ID, oggi)
	if len(scadute) != 0 {
		t.Errorf("len(scadute) = %d after payment, want 0", len(scadute))
	}
	_ = pg
}

func TestMemoryStoreRateOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p := seedPaziente(t, s, "Sara", "Conti")
	seedPagamento(t, s, p.ID, []core.RataBozza{
		{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 9, 1)},
		{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 7, 1)},
	})

	rate, err := s.ListRate(ctx)
	if err != nil {
		t.Fatalf("ListRate: %v", err)
	}
	if len(rate) != 2 {
		t.Fatalf("len(rate) = %d", len(rate))
	}
	if !rate[0].DataScadenza.BeforeDay(rate[1].DataScadenza) {
		t.Errorf("rate not ordered by data_scadenza: %v, %v", rate[0].DataScadenza, rate[1].DataScadenza)
	}
}
