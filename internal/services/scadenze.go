package services

import (
	"context"
	"fmt"
	"strings"

	"odonto/internal/core"
)

// ScadenzeReport is the outcome of an overdue scan: every unpaid
// installment whose due date fell before today.
type ScadenzeReport struct {
	Oggi   core.Date
	Rate   []core.Rata
	Totale core.Money
}

func (r ScadenzeReport) Empty() bool { return len(r.Rate) == 0 }

// ScanScadute collects overdue installments across all plans.
func (s *Service) ScanScadute(ctx context.Context) (ScadenzeReport, error) {
	oggi := s.now()
	rate, err := s.store.ListRateScadute(ctx, oggi)
	if err != nil {
		return ScadenzeReport{}, fmt.Errorf("list rate scadute: %w", err)
	}

	report := ScadenzeReport{Oggi: oggi, Rate: s.withStato(rate)}
	for _, r := range report.Rate {
		report.Totale = report.Totale.Add(r.Ammontare)
	}
	return report, nil
}

// EmailBody renders the reminder sent to the practice inbox.
func (r ScadenzeReport) EmailBody() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rate scadute al %s: %d, totale %s\n\n", r.Oggi, len(r.Rate), r.Totale.Euro())
	for _, rata := range r.Rate {
		fmt.Fprintf(&b, "- %s", rata.PazienteNome)
		if rata.NomeLavoro != "" {
			fmt.Fprintf(&b, " (%s)", rata.NomeLavoro)
		}
		fmt.Fprintf(&b, ": rata %d/%d, %s, scadenza %s\n",
			rata.NumeroRata, rata.TotaleRate, rata.Ammontare.Euro(), rata.DataScadenza)
	}
	return b.String()
}
