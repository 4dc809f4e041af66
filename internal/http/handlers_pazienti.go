package http

import (
	"fmt"
	"net/http"
)

func (s *Server) handleListPazienti(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, groupPazienti, "pazienti", func() (any, error) {
		pazienti, err := s.svc.ListPazienti(r.Context())
		if err != nil {
			return nil, err
		}
		return toPazienteDTOs(pazienti), nil
	})
}

func (s *Server) handleGetPaziente(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedJSON(w, r, groupPazienti, fmt.Sprintf("pazienti/%d", id), func() (any, error) {
		p, err := s.svc.GetPaziente(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toPazienteDTO(p), nil
	})
}

func (s *Server) handleCreatePaziente(w http.ResponseWriter, r *http.Request) {
	var req pazienteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.svc.CreatePaziente(r.Context(), req.Nome, req.Cognome)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupPazienti)
	writeJSON(w, http.StatusCreated, toPazienteDTO(p))
}

func (s *Server) handleUpdatePaziente(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req pazienteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := s.svc.UpdatePaziente(r.Context(), id, req.Nome, req.Cognome)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// the name is embedded in plan and installment views
	s.invalidate(groupPazienti, groupPagamenti, groupRate)
	writeJSON(w, http.StatusOK, toPazienteDTO(p))
}

func (s *Server) handleDeletePaziente(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.svc.DeletePaziente(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupPazienti, groupPagamenti, groupRate)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPagamentiByPaziente(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedJSON(w, r, groupPagamenti, fmt.Sprintf("pazienti/%d/pagamenti", id), func() (any, error) {
		pagamenti, err := s.svc.ListPagamentiByPaziente(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toPagamentoDTOs(pagamenti), nil
	})
}

func (s *Server) handleListRateScadute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.cachedJSON(w, r, groupRate, fmt.Sprintf("pazienti/%d/rate_scadute", id), func() (any, error) {
		rate, err := s.svc.ListRateScaduteByPaziente(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return toRataDTOs(rate), nil
	})
}
