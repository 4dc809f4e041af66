package core

// StatoCount represents a count and amount aggregated per status.
type StatoCount struct {
	Stato  StatoRata
	Count  int
	Amount Money
}

// Riepilogo is the compact practice-wide summary shown on the dashboard.
type Riepilogo struct {
	Oggi            Date
	TotaleIncassato Money // sum of paid installments
	TotaleResiduo   Money // sum of everything still open
	PerStato        []StatoCount
}

// BuildRiepilogo aggregates installments by derived status for a given today.
// Status order is fixed: pagata, scadenza_oggi, scaduta, futura.
func BuildRiepilogo(rate []Rata, oggi Date) Riepilogo {
	ordine := []StatoRata{StatoPagata, StatoScadenzaOggi, StatoScaduta, StatoFutura}
	counts := make(map[StatoRata]*StatoCount, len(ordine))
	for _, s := range ordine {
		counts[s] = &StatoCount{Stato: s}
	}

	r := Riepilogo{Oggi: oggi}
	for _, rata := range rate {
		stato := DeriveStato(rata.Stato, rata.DataScadenza, rata.DataPagamento, oggi)
		c := counts[stato]
		c.Count++
		c.Amount = c.Amount.Add(rata.Ammontare)
		if stato == StatoPagata {
			r.TotaleIncassato = r.TotaleIncassato.Add(rata.Ammontare)
		} else {
			r.TotaleResiduo = r.TotaleResiduo.Add(rata.Ammontare)
		}
	}
	for _, s := range ordine {
		r.PerStato = append(r.PerStato, *counts[s])
	}
	return r
}
