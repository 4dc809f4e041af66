package memory

import (
	"context"
	"testing"

	"odonto/internal/core"
)

func TestAppendAndEntries(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := core.Rata{
		ID:            1,
		PagamentoID:   1,
		NumeroRata:    2,
		TotaleRate:    3,
		Ammontare:     core.Money{Cents: 3334},
		DataScadenza:  core.NewDate(2026, 3, 1),
		DataPagamento: core.NewDate(2026, 2, 27),
		Stato:         core.StatoPagata,
		PazienteNome:  "Mario Rossi",
		NomeLavoro:    "Impianto",
	}

	ref, err := s.Append(ctx, r)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	got := s.Entries()
	if len(got) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(got))
	}
	if got[0].PazienteNome != "Mario Rossi" {
		t.Errorf("PazienteNome = %q", got[0].PazienteNome)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()

	_, err := s.Append(context.Background(), core.Rata{})
	if err == nil {
		t.Fatal("expected validation error for zero rata")
	}
	if len(s.Entries()) != 0 {
		t.Errorf("invalid rata stored anyway")
	}
}
