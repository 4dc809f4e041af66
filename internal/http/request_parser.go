package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"odonto/internal/core"
	"odonto/internal/services"
)

const maxBodyBytes = 1 << 20 // 1 MiB

type (
	pazienteRequest struct {
		Nome    string `json:"nome"`
		Cognome string `json:"cognome"`
	}

	rataBozzaRequest struct {
		Ammontare    json.Number `json:"ammontare"`
		DataScadenza string      `json:"dataScadenza"`
	}

	createPagamentoRequest struct {
		PazienteID int64              `json:"pazienteId"`
		NomeLavoro string             `json:"nomeLavoro"`
		Modalita   string             `json:"modalita"`
		Totale     json.Number        `json:"totale"`
		NumeroRate int                `json:"numeroRate"`
		Rate       []rataBozzaRequest `json:"rate"`
	}

	updatePagamentoRequest struct {
		NomeLavoro string `json:"nomeLavoro"`
	}

	updateRataRequest struct {
		Ammontare    *json.Number `json:"ammontare"`
		DataScadenza *string      `json:"dataScadenza"`
		Stato        *string      `json:"stato"`
	}
)

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseMoney(n json.Number) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(n.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func (req createPagamentoRequest) toInput() (services.CreatePagamentoInput, error) {
	totale, err := parseMoney(req.Totale)
	if err != nil {
		return services.CreatePagamentoInput{}, err
	}

	in := services.CreatePagamentoInput{
		PazienteID: req.PazienteID,
		NomeLavoro: strings.TrimSpace(req.NomeLavoro),
		Modalita:   core.ModalitaPagamento(req.Modalita),
		Totale:     totale,
		NumeroRate: req.NumeroRate,
	}
	for _, b := range req.Rate {
		ammontare, err := parseMoney(b.Ammontare)
		if err != nil {
			return services.CreatePagamentoInput{}, err
		}
		scadenza, err := core.ParseDate(b.DataScadenza)
		if err != nil {
			return services.CreatePagamentoInput{}, err
		}
		in.Rate = append(in.Rate, core.RataBozza{Ammontare: ammontare, DataScadenza: scadenza})
	}
	return in, nil
}

func (req updateRataRequest) toInput() (services.UpdateRataInput, error) {
	var in services.UpdateRataInput
	if req.Ammontare != nil {
		m, err := parseMoney(*req.Ammontare)
		if err != nil {
			return services.UpdateRataInput{}, err
		}
		in.Ammontare = &m
	}
	if req.DataScadenza != nil {
		d, err := core.ParseDate(*req.DataScadenza)
		if err != nil {
			return services.UpdateRataInput{}, err
		}
		in.DataScadenza = &d
	}
	if req.Stato != nil {
		stato := core.StatoRata(*req.Stato)
		if !stato.Valid() {
			return services.UpdateRataInput{}, core.ErrInvalidStato
		}
		in.Stato = &stato
	}
	return in, nil
}
