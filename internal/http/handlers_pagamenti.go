package http

import (
	"fmt"
	"net/http"
	"strings"
)

func (s *Server) handleListPagamenti(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, groupPagamenti, "pagamenti", func() (any, error) {
		pagamenti, err := s.svc.ListPagamenti(r.Context())
		if err != nil {
			return nil, err
		}
		return toPagamentoDTOs(pagamenti), nil
	})
}

func (s *Server) handleGetPagamento(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedJSON(w, r, groupPagamenti, fmt.Sprintf("pagamenti/%d", id), func() (any, error) {
		p, err := s.svc.GetPagamento(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toPagamentoDTO(p), nil
	})
}

func (s *Server) handleCreatePagamento(w http.ResponseWriter, r *http.Request) {
	var req createPagamentoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	p, rate, err := s.svc.CreatePagamento(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupPagamenti, groupRate)
	writeJSON(w, http.StatusCreated, pagamentoConRateDTO{
		pagamentoDTO: toPagamentoDTO(p),
		Rate:         toRataDTOs(rate),
	})
}

func (s *Server) handleUpdatePagamento(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updatePagamentoRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.svc.UpdatePagamento(r.Context(), id, strings.TrimSpace(req.NomeLavoro))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupPagamenti, groupRate)
	writeJSON(w, http.StatusOK, toPagamentoDTO(p))
}

func (s *Server) handleDeletePagamento(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.DeletePagamento(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupPagamenti, groupRate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListRateByPagamento(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedJSON(w, r, groupRate, fmt.Sprintf("pagamenti/%d/rate", id), func() (any, error) {
		rate, err := s.svc.ListRateByPagamento(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toRataDTOs(rate), nil
	})
}
