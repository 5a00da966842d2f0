package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/okian/flappyghost/internal/adapters/docstore"
	"github.com/okian/flappyghost/internal/domain/dedupe"
	"github.com/okian/flappyghost/pkg/logger"
)

// handleInsert serves POST /v1/collections/:collection/documents. A
// client-supplied id that was already written is acknowledged again
// without a second copy.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	const op = "api.insert"
	name := ps.ByName("collection")

	var doc docstore.Document
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if doc == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	ctx := r.Context()
	id := docstore.FormatID(doc[docstore.IDField])
	var key string
	if id != "" {
		key = dedupe.Key(name, id)
		if s.deps.SeenAndRecord(ctx, key) {
			writeJSON(w, http.StatusOK, InsertResponse{ID: id, Duplicate: true})
			return
		}
	}

	stored, err := s.deps.Insert(ctx, name, doc)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, InsertResponse{ID: stored})
	case errors.Is(err, docstore.ErrDuplicateID):
		// the id outlived the dedupe window
		writeJSON(w, http.StatusOK, InsertResponse{ID: id, Duplicate: true})
	default:
		if key != "" {
			s.deps.Unrecord(ctx, key)
		}
		s.log.Warn(ctx, "insert failed", logger.String("collection", name), logger.Error(err))
		writeStoreError(w, op, err)
	}
}

// handleQuery serves POST /v1/collections/:collection/query.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	const op = "api.query"

	var q docstore.Query
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&q); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	q.Collection = ps.ByName("collection")

	docs, err := s.deps.Query(r.Context(), q)
	if err != nil {
		writeStoreError(w, op, err)
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}
