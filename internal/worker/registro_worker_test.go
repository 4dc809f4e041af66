package worker

import (
	"context"
	"strings"
	"testing"

	"odonto/internal/amqp"
	"odonto/internal/core"
	registromem "odonto/internal/registro/memory"
	"odonto/internal/services"
	"odonto/internal/storage"
)

func setupWorker(t *testing.T, oggi core.Date) (*RegistroWorker, *services.Service, *registromem.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := services.New(store, nil).WithClock(func() core.Date { return oggi })
	reg := registromem.New()
	w := NewRegistroWorker(store, svc, reg, nil, "", MailConfig{})
	return w, svc, reg
}

func TestHandleRataPagataAppendsToRegister(t *testing.T) {
	oggi := core.NewDate(2026, 4, 20)
	w, svc, reg := setupWorker(t, oggi)
	ctx := context.Background()

	p, err := svc.CreatePaziente(ctx, "Mario", "Rossi")
	if err != nil {
		t.Fatalf("CreatePaziente: %v", err)
	}
	_, rate, err := svc.CreatePagamento(ctx, services.CreatePagamentoInput{
		PazienteID: p.ID, NomeLavoro: "Impianto",
		Modalita: core.Rate, Totale: core.Money{Cents: 10000}, NumeroRate: 2,
	})
	if err != nil {
		t.Fatalf("CreatePagamento: %v", err)
	}
	paid, err := svc.PagaRata(ctx, rate[0].ID)
	if err != nil {
		t.Fatalf("PagaRata: %v", err)
	}

	msg := amqp.NewRataPagataMessage(paid.ID, paid.PagamentoID)
	if err := w.HandleRataPagata(ctx, msg); err != nil {
		t.Fatalf("HandleRataPagata: %v", err)
	}

	entries := reg.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PazienteNome != "Mario Rossi" {
		t.Errorf("PazienteNome = %q", entries[0].PazienteNome)
	}
	if !entries[0].DataPagamento.SameDay(oggi) {
		t.Errorf("DataPagamento = %v, want %v", entries[0].DataPagamento, oggi)
	}
}

func TestHandleRataPagataUnknownRata(t *testing.T) {
	w, _, _ := setupWorker(t, core.Today())

	msg := amqp.NewRataPagataMessage(999, 1)
	if err := w.HandleRataPagata(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown rata, message must be requeued")
	}
}

func TestRunScadenzeScanSendsReminder(t *testing.T) {
	oggi := core.NewDate(2026, 6, 15)
	w, svc, _ := setupWorker(t, oggi)
	ctx := context.Background()

	p, _ := svc.CreatePaziente(ctx, "Anna", "Verdi")
	_, _, err := svc.CreatePagamento(ctx, services.CreatePagamentoInput{
		PazienteID: p.ID, Modalita: core.Rate, Totale: core.Money{Cents: 2000},
		Rate: []core.RataBozza{
			{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 5, 1)},
			{Ammontare: core.Money{Cents: 1000}, DataScadenza: core.NewDate(2026, 8, 1)},
		},
	})
	if err != nil {
		t.Fatalf("CreatePagamento: %v", err)
	}

	var sentSubject, sentBody string
	w.mail = MailConfig{Host: "localhost", Recipient: "studio@example.com"}
	w.sendMail = func(_ context.Context, subject, body string) error {
		sentSubject, sentBody = subject, body
		return nil
	}

	if err := w.RunScadenzeScan(ctx); err != nil {
		t.Fatalf("RunScadenzeScan: %v", err)
	}
	if !strings.Contains(sentSubject, "1 rate scadute") {
		t.Errorf("subject = %q", sentSubject)
	}
	if !strings.Contains(sentBody, "Anna Verdi") {
		t.Errorf("body missing patient:\n%s", sentBody)
	}
}

func TestRunScadenzeScanNoOverdueNoMail(t *testing.T) {
	w, _, _ := setupWorker(t, core.Today())

	sent := false
	w.mail = MailConfig{Host: "localhost", Recipient: "studio@example.com"}
	w.sendMail = func(_ context.Context, _, _ string) error {
		sent = true
		return nil
	}

	if err := w.RunScadenzeScan(context.Background()); err != nil {
		t.Fatalf("RunScadenzeScan: %v", err)
	}
	if sent {
		t.Error("mail sent for empty report")
	}
}
