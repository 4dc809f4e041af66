package http

import (
	"net/http"
)

func (s *Server) handleListRate(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, groupRate, "rate", func() (any, error) {
		rate, err := s.svc.ListRate(r.Context())
		if err != nil {
			return nil, err
		}
		return toRataDTOs(rate), nil
	})
}

func (s *Server) handleUpdateRata(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req updateRataRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := req.toInput()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	rata, err := s.svc.UpdateRata(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupRate)
	writeJSON(w, http.StatusOK, toRataDTO(rata))
}

func (s *Server) handlePagaRata(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rata, err := s.svc.PagaRata(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidate(groupRate)
	writeJSON(w, http.StatusOK, toRataDTO(rata))
}

func (s *Server) handleRiepilogo(w http.ResponseWriter, r *http.Request) {
	s.cachedJSON(w, r, groupRate, "riepilogo", func() (any, error) {
		riepilogo, err := s.svc.Riepilogo(r.Context())
		if err != nil {
			return nil, err
		}
		return toRiepilogoDTO(riepilogo), nil
	})
}
