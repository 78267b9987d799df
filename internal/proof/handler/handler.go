package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vcproof/internal/proof/models"
	"vcproof/pkg/platform/httputil"
	"vcproof/pkg/requestcontext"
)

// Service defines the proof operations the handler exposes.
type Service interface {
	ProvePredicates(ctx context.Context, req *models.PredicateRequest) (*models.Attestation, error)
	ProveSubjectMatch(ctx context.Context, req *models.MatchRequest) (*models.Attestation, error)
	ProveBatch(ctx context.Context, reqs []*models.PredicateRequest) []models.BatchItem
}

// Handler serves the proof endpoints.
type Handler struct {
	logger *slog.Logger
	proofs Service
}

func New(proofs Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		proofs: proofs,
	}
}

// Register registers the proof routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/proofs/predicates", h.HandlePredicates)
	r.Post("/v1/proofs/subject-match", h.HandleSubjectMatch)
	r.Post("/v1/proofs/batch", h.HandleBatch)
}

// HandlePredicates verifies a credential and evaluates its predicate list.
func (h *Handler) HandlePredicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PredicateProofRequest](w, r, h.logger)
	if !ok {
		return
	}

	att, err := h.proofs.ProvePredicates(ctx, req.ToModel())
	if err != nil {
		h.logger.WarnContext(ctx, "predicate proof rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toPredicateResponse(att))
}

// HandleSubjectMatch checks that two credentials belong to the same holder.
func (h *Handler) HandleSubjectMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[MatchProofRequest](w, r, h.logger)
	if !ok {
		return
	}

	att, err := h.proofs.ProveSubjectMatch(ctx, req.ToModel())
	if err != nil {
		h.logger.WarnContext(ctx, "subject match proof rejected",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toMatchResponse(att))
}

// HandleBatch runs independent predicate requests. The response is 200 as
// long as the batch itself is valid; each item carries its own status.
func (h *Handler) HandleBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BatchProofRequest](w, r, h.logger)
	if !ok {
		return
	}

	items := h.proofs.ProveBatch(ctx, req.ToModels())
	res := &BatchProofResponse{Items: make([]*BatchItemResponse, 0, len(items))}
	for _, item := range items {
		out := &BatchItemResponse{Index: item.Index}
		if item.Err != nil {
			status, body := httputil.ErrorBody(item.Err)
			out.Status = status
			out.Error = &body
			res.Failed++
		} else {
			out.Status = http.StatusOK
			out.Result = toPredicateResponse(item.Attestation)
			res.Succeeded++
		}
		res.Items = append(res.Items, out)
	}

	h.logger.InfoContext(ctx, "batch proof served",
		"request_id", requestID,
		"succeeded", res.Succeeded,
		"failed", res.Failed,
	)
	httputil.WriteJSON(w, http.StatusOK, res)
}
