package core

// DeriveStato maps an installment to its display status for a given "today".
//
// The function is pure: for a fixed today it always yields the same result,
// and every presentation site (dashboard aggregation, plan detail, patient
// view) must go through it so the mapping cannot drift.
//
// A stored "pagata" wins unconditionally. This is the manual override escape
// hatch: the edit form may force an installment paid without a payment date.
func DeriveStato(stored StatoRata, scadenza, pagamento, oggi Date) StatoRata {
	if stored == StatoPagata || !pagamento.IsEmpty() {
		return StatoPagata
	}
	switch {
	case scadenza.SameDay(oggi):
		return StatoScadenzaOggi
	case scadenza.BeforeDay(oggi):
		return StatoScaduta
	default:
		return StatoFutura
	}
}

// WithStato returns a copy of the rata with Stato set to its derived value.
func (r Rata) WithStato(oggi Date) Rata {
	r.Stato = DeriveStato(r.Stato, r.DataScadenza, r.DataPagamento, oggi)
	return r
}

// Scaduta reports whether the rata is unpaid and past due at the given date.
func (r Rata) Scaduta(oggi Date) bool {
	return DeriveStato(r.Stato, r.DataScadenza, r.DataPagamento, oggi) == StatoScaduta
}
