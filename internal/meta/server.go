package meta

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/dreamware/surfstore/internal/mserrors"
)

// Wire error kinds, transmitted as native JSON rather than the stringified
// payloads spec.md §9 flags as an artifact of the original transport.
const (
	errKindMissingBlocks = "missing-blocks"
	errKindWrongVersion  = "wrong-version"
)

// ReadResponse is the JSON body of GET /files/<name>.
type ReadResponse struct {
	Version  int      `json:"version"`
	HashList []string `json:"hashlist"`
	Deleted  bool     `json:"deleted"`
}

// ModifyRequest is the JSON body of POST /files/<name>/modify.
type ModifyRequest struct {
	Version  int      `json:"version"`
	HashList []string `json:"hashlist"`
}

// DeleteRequest is the JSON body of POST /files/<name>/delete.
type DeleteRequest struct {
	Version int `json:"version"`
}

// errorResponse is the JSON body returned alongside HTTP 409 for a rejected
// mutation.
type errorResponse struct {
	Kind    string   `json:"kind"`
	Missing []string `json:"missing,omitempty"`
	Current int      `json:"current,omitempty"`
}

// Server wraps a Store with the HTTP surface described in spec.md §6.
type Server struct {
	store *Store
}

// NewServer wraps store in an HTTP handler.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// Handler returns the http.Handler to mount.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/files/", s.handleFile)
	return mux
}

// handleFile routes every /files/ request by method and path suffix: a
// bare GET is a read, a POST ending in "/modify" or "/delete" is the
// matching mutation, and anything else (wrong method, unrecognized
// suffix) is a 404 rather than a 405 — the three-operation surface has no
// notion of a recognized-but-disallowed method on a given path.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/files/")

	switch {
	case r.Method == http.MethodGet:
		s.handleRead(w, path)
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/modify"):
		s.handleModify(w, r, strings.TrimSuffix(path, "/modify"))
	case r.Method == http.MethodPost && strings.HasSuffix(path, "/delete"):
		s.handleDelete(w, r, strings.TrimSuffix(path, "/delete"))
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

func (s *Server) handleRead(w http.ResponseWriter, filename string) {
	result := s.store.ReadFile(filename)
	resp := ReadResponse{
		Version:  result.Version,
		HashList: result.HashList,
		Deleted:  result.Deleted,
	}
	if resp.HashList == nil && !resp.Deleted {
		resp.HashList = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModify(w http.ResponseWriter, r *http.Request, filename string) {
	var req ModifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := s.store.ModifyFile(r.Context(), filename, req.Version, req.HashList)
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeMutationError(w, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, filename string) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := s.store.DeleteFile(filename, req.Version)
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeMutationError(w, err)
}

// writeMutationError maps a ModifyFile/DeleteFile error to its wire form.
// Both tagged outcomes share HTTP 409 Conflict; callers distinguish them
// by the "kind" field rather than the status code, since both represent
// "the caller's requested state transition was rejected," not a generic
// client error. Anything else reaching here is a bug, not a protocol
// outcome, so it logs and returns 500 instead of trying to classify it.
func writeMutationError(w http.ResponseWriter, err error) {
	var missing *mserrors.MissingBlocksError
	var wrongVersion *mserrors.WrongVersionError
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusConflict, errorResponse{Kind: errKindMissingBlocks, Missing: missing.Missing})
	case errors.As(err, &wrongVersion):
		writeJSON(w, http.StatusConflict, errorResponse{Kind: errKindWrongVersion, Current: wrongVersion.Current})
	default:
		log.Printf("metastore: unexpected mutation error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("metastore: encode response: %v", err)
	}
}
