package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/mwestergaard/slrpipe/internal/evidence"
	"github.com/mwestergaard/slrpipe/internal/rank"
	"github.com/mwestergaard/slrpipe/internal/screening"
	"github.com/mwestergaard/slrpipe/internal/summary"
	"golang.org/x/sync/errgroup"
)

type screeningRequest struct {
	ReviewQuestion string   `json:"review_question"`
	DocIDs         []string `json:"doc_ids"`
	Criteria       []string `json:"criteria,omitempty"`
	Framework      string   `json:"framework,omitempty"`
	TopN           int      `json:"top_n,omitempty"`
}

type screeningResponse struct {
	RankedDocIDs      []string                    `json:"ranked_doc_ids"`
	Results           map[string]screening.Result `json:"results"`
	Errors            map[string]string           `json:"errors,omitempty"`
	MissingEmbeddings []string                    `json:"missing_embeddings,omitempty"`
}

// handleScreening ranks the candidate documents against the review question
// and screens the top ones. A document whose screening fails is reported in
// the errors map and does not abort its siblings; documents whose embeddings
// never became visible are likewise reported without failing the request.
func (s *Server) handleScreening(w http.ResponseWriter, r *http.Request) {
	var req screeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReviewQuestion) == "" {
		jsonError(w, "review_question is required", http.StatusBadRequest)
		return
	}
	if len(req.DocIDs) == 0 {
		jsonError(w, "doc_ids is required", http.StatusBadRequest)
		return
	}
	criteria, err := screening.Resolve(req.Criteria, req.Framework)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	topN := req.TopN
	if topN <= 0 {
		topN = s.cfg.TopN
	}

	ctx := r.Context()
	missing := rank.WaitForEmbeddings(ctx, s.vs, req.DocIDs, s.cfg.EmbedWaitTimeout, s.cfg.EmbedPollInterval, s.log)

	ranked, err := rank.TopN(ctx, s.vs, req.ReviewQuestion, req.DocIDs, topN, s.cfg.RankPoolSize)
	if err != nil {
		jsonError(w, "ranking failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	results := make(map[string]screening.Result, len(ranked))
	failures := make(map[string]string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentTransform)
	for _, docID := range ranked {
		g.Go(func() error {
			result, err := s.screenDocument(gctx, docID, req.ReviewQuestion, criteria)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.log.Error("document screening failed", "doc_id", docID, "error", err)
				failures[docID] = err.Error()
				return nil
			}
			results[docID] = result
			return nil
		})
	}
	g.Wait()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(screeningResponse{
		RankedDocIDs:      ranked,
		Results:           results,
		Errors:            failures,
		MissingEmbeddings: missing,
	})
}

// screenDocument screens one document using its stored summary artifact.
// When no artifact exists (or it is the empty placeholder) the document's
// fragments are pulled from the similarity store and used directly.
func (s *Server) screenDocument(ctx context.Context, docID, reviewQuestion string, criteria []screening.Criterion) (screening.Result, error) {
	summaryText := ""
	artifact, err := s.art.GetSummary(ctx, docID)
	if err != nil {
		s.log.Warn("summary artifact fetch failed", "doc_id", docID, "error", err)
	} else if artifact != "" && artifact != summary.Placeholder {
		summaryText = summary.TextContent(artifact)
	}

	if summaryText == "" {
		fragments, err := s.vs.SimilaritySearch(ctx, "full text", s.cfg.RankPoolSize, map[string]string{rank.SourceFilterField: docID})
		if err != nil {
			return screening.Result{}, err
		}
		var parts []string
		for _, f := range fragments {
			parts = append(parts, f.Fragment.Content)
		}
		summaryText = strings.Join(parts, "\n\n")
	}

	result, err := screening.Screen(ctx, s.tf, reviewQuestion, summaryText, criteria)
	if err != nil {
		return screening.Result{}, err
	}
	if err := s.art.PutScreening(ctx, docID, result); err != nil {
		s.log.Warn("screening persistence failed", "doc_id", docID, "error", err)
	}
	return result, nil
}

type evidenceRequest struct {
	DocIDs    []string `json:"doc_ids"`
	Criteria  []string `json:"criteria,omitempty"`
	Framework string   `json:"framework,omitempty"`
	Format    string   `json:"format,omitempty"` // json (default), markdown, html
}

// handleEvidence builds an evidence table for the given documents.
func (s *Server) handleEvidence(w http.ResponseWriter, r *http.Request) {
	var req evidenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.DocIDs) == 0 {
		jsonError(w, "doc_ids is required", http.StatusBadRequest)
		return
	}
	criteria, err := screening.Resolve(req.Criteria, req.Framework)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := s.evidence.Build(r.Context(), req.DocIDs, criteria)
	if err != nil {
		jsonError(w, "evidence table failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	switch req.Format {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(evidence.Markdown(table)))
	case "html":
		html, err := evidence.HTML(table)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	default:
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(table)
	}
}

// handleGetSummary returns the stored summary artifact for a document.
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	artifact, err := s.art.GetSummary(r.Context(), docID)
	if err != nil {
		jsonError(w, "summary fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if artifact == "" {
		jsonError(w, "summary not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"doc_id":  docID,
		"summary": artifact,
	})
}

// handleGetScreening returns the stored screening result for a document.
func (s *Server) handleGetScreening(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	result, err := s.art.GetScreening(r.Context(), docID)
	if err != nil {
		jsonError(w, "screening fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	if result == nil {
		jsonError(w, "screening not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"doc_id": docID,
		"result": result,
	})
}
