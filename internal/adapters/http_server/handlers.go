package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"isuumo/internal/adapters/observability"
	"isuumo/internal/app"
	"isuumo/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

var validate = validator.New()

// maxBodyBytes caps POST bodies; a nazotte polygon is a few hundred vertices at most.
const maxBodyBytes = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/chair", func(r chi.Router) {
		r.Get("/search", h.searchChairs)
		r.Get("/search/condition", h.chairCondition)
		r.Get("/low_priced", h.lowPricedChairs)
		r.Get("/{id}", h.getChair)
		r.Post("/buy/{id}", h.buyChair)
	})
	s.mux.Route("/api/estate", func(r chi.Router) {
		r.Get("/search", h.searchEstates)
		r.Get("/search/condition", h.estateCondition)
		r.Get("/low_priced", h.lowPricedEstates)
		r.Get("/{id}", h.getEstate)
		r.Post("/req_doc/{id}", h.requestDocument)
		r.Post("/nazotte", h.nazotte)
	})
	s.mux.Get("/api/recommended_estate/{id}", h.recommendedEstates)
}

// ---- rendering ----

func writeProblem(w http.ResponseWriter, status int, title, detail, code string) {
	noteCode(w, code)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Code: code}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps a service error onto a problem response. Only reads advertise Retry-After:
// a failed reservation may or may not have committed, so clients must not retry it blindly.
func writeError(w http.ResponseWriter, r *http.Request, err error, read bool) {
	var de *domain.Error
	if !errors.As(err, &de) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		writeProblem(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "", "")
		return
	}
	status := de.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("store failure")
		if read && de.Retryable() {
			w.Header().Set("Retry-After", "1")
		}
	}
	writeProblem(w, status, http.StatusText(status), de.Message, string(de.Kind))
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON renders a 200 with a weak ETag and honours If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), "", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number", "")
		return 0, false
	}
	return id, true
}

// ---- chairs ----

func (h *Handlers) searchChairs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Q.SearchChairs(r.Context(), app.ChairSearchRequest{
		PriceRangeID:  q.Get("priceRangeId"),
		HeightRangeID: q.Get("heightRangeId"),
		WidthRangeID:  q.Get("widthRangeId"),
		DepthRangeID:  q.Get("depthRangeId"),
		Kind:          q.Get("kind"),
		Color:         q.Get("color"),
		Features:      q.Get("features"),
		Page:          q.Get("page"),
		PerPage:       q.Get("perPage"),
	})
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, chairSearchResponse{Count: page.Count, Chairs: toChairDTOs(page.Items)})
}

func (h *Handlers) chairCondition(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Q.Catalog().Chair)
}

func (h *Handlers) lowPricedChairs(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Q.LowPricedChairs(r.Context())
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, chairListResponse{Chairs: toChairDTOs(cs)})
}

func (h *Handlers) getChair(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.Q.GetChair(r.Context(), id)
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, toChairDTO(c))
}

func (h *Handlers) buyChair(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.C.Reserve(r.Context(), id)
	observability.ObserveReservation(err)
	if err != nil {
		writeError(w, r, err, false)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ---- estates ----

func (h *Handlers) searchEstates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Q.SearchEstates(r.Context(), app.EstateSearchRequest{
		DoorHeightRangeID: q.Get("doorHeightRangeId"),
		DoorWidthRangeID:  q.Get("doorWidthRangeId"),
		RentRangeID:       q.Get("rentRangeId"),
		Features:          q.Get("features"),
		Page:              q.Get("page"),
		PerPage:           q.Get("perPage"),
	})
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, estateSearchResponse{Count: page.Count, Estates: toEstateDTOs(page.Items)})
}

func (h *Handlers) estateCondition(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Q.Catalog().Estate)
}

func (h *Handlers) lowPricedEstates(w http.ResponseWriter, r *http.Request) {
	es, err := h.Q.LowPricedEstates(r.Context())
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, estateListResponse{Estates: toEstateDTOs(es)})
}

func (h *Handlers) getEstate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, err := h.Q.GetEstate(r.Context(), id)
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, toEstateDTO(e))
}

func (h *Handlers) requestDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.C.RequestDocument(r.Context(), id); err != nil {
		writeError(w, r, err, false)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// nazotte is a read despite being a POST; the polygon simply does not fit in a query string.
func (h *Handlers) nazotte(w http.ResponseWriter, r *http.Request) {
	var req nazotteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error(), "")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid coordinates", err.Error(), "")
		return
	}
	page, err := h.Q.SearchEstatesInPolygon(r.Context(), req.polygon())
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, estateSearchResponse{Count: page.Count, Estates: toEstateDTOs(page.Items)})
}

func (h *Handlers) recommendedEstates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	es, err := h.Q.RecommendEstates(r.Context(), id)
	if err != nil {
		writeError(w, r, err, true)
		return
	}
	writeJSON(w, r, estateListResponse{Estates: toEstateDTOs(es)})
}
