package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"odonto/internal/core"
	applog "odonto/internal/log"
	"odonto/internal/services"
)

// Wire DTOs. Amounts are emitted as raw JSON numbers with exactly two
// fraction digits; dates are YYYY-MM-DD strings.
type (
	pazienteDTO struct {
		ID            int64  `json:"id"`
		Nome          string `json:"nome"`
		Cognome       string `json:"cognome"`
		DataCreazione string `json:"dataCreazione"`
	}

	pagamentoDTO struct {
		ID            int64           `json:"id"`
		PazienteID    int64           `json:"pazienteId"`
		PazienteNome  string          `json:"pazienteNome,omitempty"`
		NomeLavoro    string          `json:"nomeLavoro,omitempty"`
		Modalita      string          `json:"modalita"`
		Totale        json.RawMessage `json:"totale"`
		DataCreazione string          `json:"dataCreazione"`
	}

	pagamentoConRateDTO struct {
		pagamentoDTO
		Rate []rataDTO `json:"rate"`
	}

	rataDTO struct {
		ID            int64           `json:"id"`
		PagamentoID   int64           `json:"pagamentoId"`
		NumeroRata    int             `json:"numeroRata"`
		TotaleRate    int             `json:"totaleRate"`
		Ammontare     json.RawMessage `json:"ammontare"`
		DataScadenza  string          `json:"dataScadenza"`
		DataPagamento string          `json:"dataPagamento,omitempty"`
		Stato         string          `json:"stato"`
		PazienteNome  string          `json:"pazienteNome,omitempty"`
		NomeLavoro    string          `json:"nomeLavoro,omitempty"`
	}

	statoCountDTO struct {
		Stato     string          `json:"stato"`
		Count     int             `json:"count"`
		Ammontare json.RawMessage `json:"ammontare"`
	}

	riepilogoDTO struct {
		Oggi            string          `json:"oggi"`
		TotaleIncassato json.RawMessage `json:"totaleIncassato"`
		TotaleResiduo   json.RawMessage `json:"totaleResiduo"`
		PerStato        []statoCountDTO `json:"perStato"`
	}

	errorDTO struct {
		Error string `json:"error"`
	}
)

func moneyJSON(m core.Money) json.RawMessage {
	return json.RawMessage(m.Decimal())
}

func toPazienteDTO(p core.Paziente) pazienteDTO {
	return pazienteDTO{
		ID:            p.ID,
		Nome:          p.Nome,
		Cognome:       p.Cognome,
		DataCreazione: p.DataCreazione.String(),
	}
}

func toPazienteDTOs(in []core.Paziente) []pazienteDTO {
	out := make([]pazienteDTO, len(in))
	for i, p := range in {
		out[i] = toPazienteDTO(p)
	}
	return out
}

func toPagamentoDTO(p core.Pagamento) pagamentoDTO {
	return pagamentoDTO{
		ID:            p.ID,
		PazienteID:    p.PazienteID,
		PazienteNome:  p.PazienteNome,
		NomeLavoro:    p.NomeLavoro,
		Modalita:      string(p.Modalita),
		Totale:        moneyJSON(p.Totale),
		DataCreazione: p.DataCreazione.String(),
	}
}

func toPagamentoDTOs(in []core.Pagamento) []pagamentoDTO {
	out := make([]pagamentoDTO, len(in))
	for i, p := range in {
		out[i] = toPagamentoDTO(p)
	}
	return out
}

func toRataDTO(r core.Rata) rataDTO {
	dto := rataDTO{
		ID:           r.ID,
		PagamentoID:  r.PagamentoID,
		NumeroRata:   r.NumeroRata,
		TotaleRate:   r.TotaleRate,
		Ammontare:    moneyJSON(r.Ammontare),
		DataScadenza: r.DataScadenza.String(),
		Stato:        string(r.Stato),
		PazienteNome: r.PazienteNome,
		NomeLavoro:   r.NomeLavoro,
	}
	if !r.DataPagamento.IsEmpty() {
		dto.DataPagamento = r.DataPagamento.String()
	}
	return dto
}

func toRataDTOs(in []core.Rata) []rataDTO {
	out := make([]rataDTO, len(in))
	for i, r := range in {
		out[i] = toRataDTO(r)
	}
	return out
}

func toRiepilogoDTO(r core.Riepilogo) riepilogoDTO {
	dto := riepilogoDTO{
		Oggi:            r.Oggi.String(),
		TotaleIncassato: moneyJSON(r.TotaleIncassato),
		TotaleResiduo:   moneyJSON(r.TotaleResiduo),
	}
	for _, s := range r.PerStato {
		dto.PerStato = append(dto.PerStato, statoCountDTO{
			Stato:     string(s.Stato),
			Count:     s.Count,
			Ammontare: moneyJSON(s.Amount),
		})
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorDTO{Error: msg})
}

// writeServiceError maps service and domain errors onto the contract:
// unknown ids are 404, domain validation is 422, the rest is 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrPazienteNotFound),
		errors.Is(err, services.ErrPagamentoNotFound),
		errors.Is(err, services.ErrRataNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyNome),
		errors.Is(err, core.ErrEmptyCognome),
		errors.Is(err, core.ErrInvalidModalita),
		errors.Is(err, core.ErrInvalidStato),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrRateCount),
		errors.Is(err, core.ErrRateSum):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
