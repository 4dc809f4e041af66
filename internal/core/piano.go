package core

// RataBozza is a draft installment: the preview/submission value, distinct
// from the persisted Rata.
type RataBozza struct {
	Ammontare    Money
	DataScadenza Date
}

// Tolerance, in cents, accepted between a plan total and the sum of its
// submitted installments.
const sumToleranceCents = 1

// GeneraPiano splits a total into n installments due at monthly intervals.
//
// Each raw amount is total/n rounded to the cent (half away from zero).
// Whatever rounding residual remains is added entirely to the LAST
// installment, so the amounts always sum exactly to the total. The residual
// is deliberately not redistributed across installments.
//
// Installment i (0-based) is due oggi advanced by i+1 calendar months.
// n <= 0 or a non-positive total yield an empty plan, never a panic.
func GeneraPiano(totale Money, n int, oggi Date) []RataBozza {
	if n <= 0 || totale.Cents <= 0 {
		return nil
	}

	// round(total/n) half away from zero, in integer cents
	raw := (2*totale.Cents + int64(n)) / (2 * int64(n))

	rate := make([]RataBozza, n)
	for i := range rate {
		rate[i] = RataBozza{
			Ammontare:    Money{Cents: raw},
			DataScadenza: oggi.AddMonths(i + 1),
		}
	}

	if diff := totale.Cents - raw*int64(n); diff != 0 {
		rate[n-1].Ammontare.Cents += diff
	}
	return rate
}

// VerificaPiano checks the plan invariant for a submitted installment list:
// "unico" owns exactly one rata equal to the total, "rate" owns at least two
// summing to the total within one cent.
func VerificaPiano(modalita ModalitaPagamento, totale Money, rate []RataBozza) error {
	if !modalita.Valid() {
		return ErrInvalidModalita
	}
	if err := totale.Validate(); err != nil {
		return err
	}
	if modalita == Unico {
		if len(rate) != 1 {
			return ErrRateCount
		}
		if rate[0].Ammontare.Cents != totale.Cents {
			return ErrRateSum
		}
		return rate[0].DataScadenza.Validate()
	}
	if len(rate) < 2 {
		return ErrRateCount
	}
	var somma int64
	for _, r := range rate {
		if err := r.Ammontare.Validate(); err != nil {
			return err
		}
		if err := r.DataScadenza.Validate(); err != nil {
			return err
		}
		somma += r.Ammontare.Cents
	}
	diff := totale.Cents - somma
	if diff < -sumToleranceCents || diff > sumToleranceCents {
		return ErrRateSum
	}
	return nil
}
