package handler

import (
	"vcproof/internal/proof/models"
	"vcproof/pkg/platform/httputil"
)

// PredicateProofResponse is returned when every predicate holds.
type PredicateProofResponse struct {
	RunID         string   `json:"run_id"`
	ResultList    []string `json:"result_list"`
	Journal       string   `json:"journal"`
	JournalDigest string   `json:"journal_digest"`
}

// MatchProofResponse is returned when both credentials share the holder.
type MatchProofResponse struct {
	RunID         string `json:"run_id"`
	Subject       string `json:"subject"`
	Journal       string `json:"journal"`
	JournalDigest string `json:"journal_digest"`
}

// BatchProofResponse lists every item in request order.
type BatchProofResponse struct {
	Items     []*BatchItemResponse `json:"items"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
}

// BatchItemResponse carries either a result or the error the item would
// have produced as a single request, with its HTTP status.
type BatchItemResponse struct {
	Index  int                     `json:"index"`
	Status int                     `json:"status"`
	Result *PredicateProofResponse `json:"result,omitempty"`
	Error  *httputil.ErrorResponse `json:"error,omitempty"`
}

func toPredicateResponse(att *models.Attestation) *PredicateProofResponse {
	results := att.Results()
	if results == nil {
		results = []string{}
	}
	return &PredicateProofResponse{
		RunID:         att.RunID,
		ResultList:    results,
		Journal:       att.Journal.Hex(),
		JournalDigest: att.Journal.Digest.Hex(),
	}
}

func toMatchResponse(att *models.Attestation) *MatchProofResponse {
	return &MatchProofResponse{
		RunID:         att.RunID,
		Subject:       att.Subject(),
		Journal:       att.Journal.Hex(),
		JournalDigest: att.Journal.Digest.Hex(),
	}
}
