package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/hsspgest/internal/pipeline"
	"github.com/dgallion1/hsspgest/internal/report"
	"github.com/dgallion1/hsspgest/internal/store"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists summaries of all stored documents.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.orchestrator.Store().List(r.Context())
	if err != nil {
		s.storeError(w, "list documents", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// loadEntry fetches the document named by the docID URL parameter and
// writes the error response itself when that fails.
func (s *Server) loadEntry(w http.ResponseWriter, r *http.Request) (*store.Entry, bool) {
	docID := chi.URLParam(r, "docID")
	e, err := s.orchestrator.Store().Get(r.Context(), docID)
	if err != nil {
		s.storeError(w, "get document", err)
		return nil, false
	}
	return e, true
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":  e.Summary(),
		"document": e.Doc,
	})
}

func (s *Server) handleGetHomolog(w http.ResponseWriter, r *http.Request) {
	nr, err := strconv.Atoi(chi.URLParam(r, "nr"))
	if err != nil || nr < 1 {
		jsonError(w, "nr must be a positive integer", http.StatusBadRequest)
		return
	}
	e, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	h, found := e.Doc.Homologs.Get(nr)
	if !found {
		jsonError(w, "homolog not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) handleGetAlignment(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	rec, found := e.Doc.Alignments.Get(chi.URLParam(r, "pdbNo"))
	if !found {
		jsonError(w, "residue not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	if e.Doc.Profile == nil {
		jsonError(w, "document has no profile", http.StatusNotFound)
		return
	}
	rec, found := e.Doc.Profile.Rows.Get(chi.URLParam(r, "pdbNo"))
	if !found {
		jsonError(w, "residue not found", http.StatusNotFound)
		return
	}
	values := make(map[string]float64, len(rec.Columns))
	for i, c := range rec.Columns {
		if i < len(rec.Values) {
			values[c] = rec.Values[i]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"seq_no":     rec.SeqNo,
		"pdb_no":     rec.PDBNo,
		"chain":      rec.Chain,
		"auth_chain": rec.AuthChain,
		"values":     values,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	e, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	opts := report.Options{Title: e.Title}
	if v := r.URL.Query().Get("max_homologs"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, "max_homologs must be a non-negative integer", http.StatusBadRequest)
			return
		}
		opts.MaxHomologs = n
	}

	if r.URL.Query().Get("format") == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write(report.Markdown(e.Doc, opts))
		return
	}
	page, err := report.HTML(e.Doc, opts)
	if err != nil {
		s.log.Error("render report", "doc_id", e.DocID, "error", err)
		jsonError(w, "failed to render report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleSearchHomologs(w http.ResponseWriter, r *http.Request) {
	q := store.HomologQuery{
		AccNum: r.URL.Query().Get("accnum"),
		ID:     r.URL.Query().Get("id"),
	}
	if err := q.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	hits, err := s.orchestrator.Store().SearchHomologs(r.Context(), q)
	if err != nil {
		s.storeError(w, "search homologs", err)
		return
	}
	if hits == nil {
		hits = []store.HomologHit{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// handleDeleteDocument removes a document and its indexes.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := chi.URLParam(r, "docID")
	if err := s.orchestrator.Store().Delete(r.Context(), docID); err != nil {
		s.storeError(w, "delete document", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": docID})
}

func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	s.log.Error(op, "error", err)
	code := http.StatusInternalServerError
	if pipeline.IsRetryable(err) {
		code = http.StatusServiceUnavailable
	}
	jsonError(w, op+": "+err.Error(), code)
}
