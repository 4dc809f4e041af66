package core

import "testing"

func TestGeneraPiano_ResidualCorrection(t *testing.T) {
	oggi := NewDate(2026, 3, 10)

	// 100.00 / 3 → raw 33.33, residual 0.01 lands on the last installment
	rate := GeneraPiano(Money{Cents: 10000}, 3, oggi)
	if len(rate) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(rate))
	}
	want := []int64{3333, 3333, 3334}
	for i, r := range rate {
		if r.Ammontare.Cents != want[i] {
			t.Errorf("installment %d: got %d cents, want %d", i+1, r.Ammontare.Cents, want[i])
		}
	}
}

func TestGeneraPiano_SumsToTotal(t *testing.T) {
	oggi := NewDate(2026, 1, 15)
	cases := []struct {
		cents int64
		n     int
	}{
		{10000, 3},
		{10000, 1},
		{9999, 7},
		{1, 2}, // pathological: 0.01 split in two
		{240000, 12},
		{333, 6},
	}
	for _, tc := range cases {
		rate := GeneraPiano(Money{Cents: tc.cents}, tc.n, oggi)
		if len(rate) != tc.n {
			t.Fatalf("%d/%d: expected %d installments, got %d", tc.cents, tc.n, tc.n, len(rate))
		}
		var somma int64
		for _, r := range rate {
			somma += r.Ammontare.Cents
		}
		if somma != tc.cents {
			t.Errorf("%d/%d: installments sum to %d, want %d", tc.cents, tc.n, somma, tc.cents)
		}
	}
}

func TestGeneraPiano_DueDates(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	rate := GeneraPiano(Money{Cents: 30000}, 3, oggi)
	want := []Date{NewDate(2026, 4, 10), NewDate(2026, 5, 10), NewDate(2026, 6, 10)}
	for i, r := range rate {
		if !r.DataScadenza.SameDay(want[i]) {
			t.Errorf("installment %d due %v, want %v", i+1, r.DataScadenza, want[i])
		}
	}
}

func TestGeneraPiano_SingleInstallment(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	rate := GeneraPiano(Money{Cents: 15000}, 1, oggi)
	if len(rate) != 1 {
		t.Fatalf("expected 1 installment, got %d", len(rate))
	}
	if rate[0].Ammontare.Cents != 15000 {
		t.Errorf("got %d cents, want 15000", rate[0].Ammontare.Cents)
	}
	if !rate[0].DataScadenza.SameDay(NewDate(2026, 4, 10)) {
		t.Errorf("due %v, want one month out", rate[0].DataScadenza)
	}
}

func TestGeneraPiano_DegenerateInputs(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	if rate := GeneraPiano(Money{Cents: 10000}, 0, oggi); rate != nil {
		t.Errorf("count 0: expected empty plan, got %d installments", len(rate))
	}
	if rate := GeneraPiano(Money{Cents: 10000}, -3, oggi); rate != nil {
		t.Errorf("negative count: expected empty plan, got %d installments", len(rate))
	}
	if rate := GeneraPiano(Money{Cents: 0}, 3, oggi); rate != nil {
		t.Errorf("zero total: expected empty plan, got %d installments", len(rate))
	}
	if rate := GeneraPiano(Money{Cents: -500}, 3, oggi); rate != nil {
		t.Errorf("negative total: expected empty plan, got %d installments", len(rate))
	}
}

func TestGeneraPiano_MonthEndOverflow(t *testing.T) {
	// Jan 31 + 1 month normalizes past February; time.AddDate semantics apply.
	oggi := NewDate(2026, 1, 31)
	rate := GeneraPiano(Money{Cents: 20000}, 2, oggi)
	if rate[0].DataScadenza.Month() != 3 {
		t.Errorf("first due month = %d, want 3 (Jan 31 + 1 month normalizes into March)", rate[0].DataScadenza.Month())
	}
	if !rate[1].DataScadenza.SameDay(NewDate(2026, 3, 31)) {
		t.Errorf("second due %v, want 2026-03-31", rate[1].DataScadenza)
	}
}

func TestVerificaPiano(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	due := func(m int) Date { return oggi.AddMonths(m) }

	tests := []struct {
		name     string
		modalita ModalitaPagamento
		totale   int64
		rate     []RataBozza
		wantErr  error
	}{
		{
			name:     "valid single",
			modalita: Unico,
			totale:   15000,
			rate:     []RataBozza{{Money{15000}, due(1)}},
		},
		{
			name:     "single amount mismatch",
			modalita: Unico,
			totale:   15000,
			rate:     []RataBozza{{Money{14000}, due(1)}},
			wantErr:  ErrRateSum,
		},
		{
			name:     "single with two installments",
			modalita: Unico,
			totale:   15000,
			rate:     []RataBozza{{Money{7500}, due(1)}, {Money{7500}, due(2)}},
			wantErr:  ErrRateCount,
		},
		{
			name:     "valid plan with residual on last",
			modalita: Rate,
			totale:   10000,
			rate:     []RataBozza{{Money{3333}, due(1)}, {Money{3333}, due(2)}, {Money{3334}, due(3)}},
		},
		{
			name:     "plan within one cent tolerance",
			modalita: Rate,
			totale:   10000,
			rate:     []RataBozza{{Money{5000}, due(1)}, {Money{4999}, due(2)}},
		},
		{
			name:     "plan sum off by two cents",
			modalita: Rate,
			totale:   10000,
			rate:     []RataBozza{{Money{5000}, due(1)}, {Money{4998}, due(2)}},
			wantErr:  ErrRateSum,
		},
		{
			name:     "plan with one installment",
			modalita: Rate,
			totale:   10000,
			rate:     []RataBozza{{Money{10000}, due(1)}},
			wantErr:  ErrRateCount,
		},
		{
			name:     "invalid mode",
			modalita: ModalitaPagamento("mensile"),
			totale:   10000,
			rate:     []RataBozza{{Money{10000}, due(1)}},
			wantErr:  ErrInvalidModalita,
		},
		{
			name:     "zero installment amount",
			modalita: Rate,
			totale:   10000,
			rate:     []RataBozza{{Money{0}, due(1)}, {Money{10000}, due(2)}},
			wantErr:  ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerificaPiano(tt.modalita, Money{Cents: tt.totale}, tt.rate)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("expected ok, got %v", err)
			}
			if tt.wantErr != nil && err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
