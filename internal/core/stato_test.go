package core

import "testing"

func TestDeriveStato(t *testing.T) {
	oggi := NewDate(2026, 3, 10)

	tests := []struct {
		name      string
		stored    StatoRata
		scadenza  Date
		pagamento Date
		want      StatoRata
	}{
		{
			name:     "due tomorrow is futura",
			scadenza: NewDate(2026, 3, 11),
			want:     StatoFutura,
		},
		{
			name:     "due today",
			scadenza: NewDate(2026, 3, 10),
			want:     StatoScadenzaOggi,
		},
		{
			name:     "due yesterday is scaduta",
			scadenza: NewDate(2026, 3, 9),
			want:     StatoScaduta,
		},
		{
			name:      "paid date wins over past due date",
			scadenza:  NewDate(2025, 1, 1),
			pagamento: NewDate(2025, 1, 5),
			want:      StatoPagata,
		},
		{
			name:     "stored pagata without paid date still wins",
			stored:   StatoPagata,
			scadenza: NewDate(2025, 1, 1),
			want:     StatoPagata,
		},
		{
			name:     "stored non-paid status is recomputed",
			stored:   StatoFutura,
			scadenza: NewDate(2025, 1, 1),
			want:     StatoScaduta,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStato(tt.stored, tt.scadenza, tt.pagamento, oggi)
			if got != tt.want {
				t.Errorf("DeriveStato() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDeriveStato_PureForFixedToday(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	scadenza := NewDate(2026, 3, 9)
	first := DeriveStato("", scadenza, Date{}, oggi)
	for i := 0; i < 10; i++ {
		if got := DeriveStato("", scadenza, Date{}, oggi); got != first {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestRataScaduta(t *testing.T) {
	oggi := NewDate(2026, 3, 10)
	r := Rata{DataScadenza: NewDate(2026, 3, 1)}
	if !r.Scaduta(oggi) {
		t.Fatal("unpaid past-due rata should be scaduta")
	}
	r.DataPagamento = NewDate(2026, 3, 5)
	if r.Scaduta(oggi) {
		t.Fatal("paid rata must not be scaduta regardless of due date")
	}
}
