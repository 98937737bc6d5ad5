package public

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/langowen/cotizaya/internal/api_service/service"
)

const maxBodyBytes = 1 << 16

func (s *Server) GetBoard(w http.ResponseWriter, r *http.Request) {
	board, err := s.service.FetchBoard(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, board)
}

func (s *Server) GetRate(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")

	rate, err := s.service.FetchRate(r.Context(), currency)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, rate)
}

func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")
	date := r.URL.Query().Get("date")
	option := r.URL.Query().Get("option")

	point, err := s.service.History(r.Context(), currency, date, option)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, point)
}

func (s *Server) RequestRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RequestRefresh(r.Context(), r.URL.Query().Get("requester")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusAccepted, map[string]string{"status": "refresh requested"})
}

func (s *Server) GetNews(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondWithError(w, http.StatusBadRequest, "bad request", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := s.service.News(r.Context(), limit)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, items)
}

func (s *Server) Convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	conv, err := s.service.Convert(r.Context(), q.Get("amount"), q.Get("currency"), q.Get("direction"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, conv)
}

func (s *Server) GetBalances(w http.ResponseWriter, r *http.Request) {
	balance, err := s.service.Balances(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, balance)
}

func (s *Server) PutBalances(w http.ResponseWriter, r *http.Request) {
	var input service.BalanceInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&input); err != nil {
		RespondWithError(w, http.StatusBadRequest, "bad request", err.Error())
		return
	}

	balance, err := s.service.SaveBalances(r.Context(), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, balance)
}

func (s *Server) DeleteBalances(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ResetBalances(r.Context()); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) GetBalanceTotal(w http.ResponseWriter, r *http.Request) {
	total, err := s.service.BalanceTotal(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, total)
}

func (s *Server) GetBrief(w http.ResponseWriter, r *http.Request) {
	brief, err := s.service.Brief(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, brief)
}

type themeBody struct {
	Theme string `json:"theme"`
}

func (s *Server) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := s.service.Theme(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, themeBody{Theme: theme})
}

func (s *Server) PutTheme(w http.ResponseWriter, r *http.Request) {
	var body themeBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		RespondWithError(w, http.StatusBadRequest, "bad request", err.Error())
		return
	}

	if err := s.service.SetTheme(r.Context(), body.Theme); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	s.GetTheme(w, r)
}
