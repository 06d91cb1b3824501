package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/arborlabs/keytree/internal/errors"
	"github.com/arborlabs/keytree/pkg/match"
	"github.com/arborlabs/keytree/pkg/store"
)

// LastModifiedHeader forces the stored modification time on put.
const LastModifiedHeader = "X-Last-Modified"

// Objects serves the object CRUD and listing endpoints over a Store.
type Objects struct {
	Store store.Store
}

// NewObjects creates the object handler set.
func NewObjects(st store.Store) *Objects {
	return &Objects{Store: st}
}

// objectJSON is the metadata representation returned by the API.
type objectJSON struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// listJSON is the response body for list requests.
type listJSON struct {
	Objects []objectJSON `json:"objects"`
	Dirs    []string     `json:"dirs,omitempty"`
	Cursor  string       `json:"cursor,omitempty"`
}

func toObjectJSON(info *store.ObjectInfo) objectJSON {
	return objectJSON{
		Key:          info.Key,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}
}

// key extracts the object key from the wildcard route segment.
func key(r *http.Request) string {
	return chi.URLParam(r, "*")
}

// Get streams object content with metadata headers.
func (h *Objects) Get(w http.ResponseWriter, r *http.Request) {
	getter, ok := h.Store.(store.ObjectGetter)
	if !ok {
		apperrors.WriteError(w, r, http.StatusNotImplemented, apperrors.CodeInternal,
			"backend does not support object reads")
		return
	}

	info, body, err := getter.GetObject(r.Context(), key(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	defer func() { _ = body.Close() }()

	writeObjectHeaders(w, info)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

// Head returns object metadata headers without a body.
func (h *Objects) Head(w http.ResponseWriter, r *http.Request) {
	info, err := h.Store.Stat(r.Context(), key(r))
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	writeObjectHeaders(w, info)
	w.WriteHeader(http.StatusOK)
}

// Put writes object content from the request body. A missing parent
// directory is created. The X-Last-Modified header forces the stored
// modification time.
func (h *Objects) Put(w http.ResponseWriter, r *http.Request) {
	putter, ok := h.Store.(store.ObjectPutter)
	if !ok {
		apperrors.WriteError(w, r, http.StatusNotImplemented, apperrors.CodeInternal,
			"backend does not support object writes")
		return
	}

	var opts store.PutOptions
	if raw := r.Header.Get(LastModifiedHeader); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			apperrors.WriteError(w, r, http.StatusBadRequest, "INVALID_TIMESTAMP",
				fmt.Sprintf("invalid %s header: %v", LastModifiedHeader, err))
			return
		}
		opts.LastModified = t
	}

	info, err := putter.PutObject(r.Context(), key(r), r.Body, opts)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toObjectJSON(info))
}

// Delete removes one object, or a whole subtree with ?recursive=true.
func (h *Objects) Delete(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("recursive") == "true" {
		deleter, ok := h.Store.(store.TreeDeleter)
		if !ok {
			apperrors.WriteError(w, r, http.StatusNotImplemented, apperrors.CodeInternal,
				"backend does not support subtree deletes")
			return
		}
		if err := deleter.DeleteTree(r.Context(), key(r)); err != nil {
			respondWithError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	deleter, ok := h.Store.(store.ObjectDeleter)
	if !ok {
		apperrors.WriteError(w, r, http.StatusNotImplemented, apperrors.CodeInternal,
			"backend does not support object deletes")
		return
	}
	if err := deleter.DeleteObject(r.Context(), key(r)); err != nil {
		respondWithError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List serves shallow and deep listings.
//
// Query parameters: key, cursor, deep (true/false), max_keys, and
// repeatable include/exclude glob patterns. Deep listings return one
// traversal page per request; the caller passes the returned cursor
// back until it is empty. Filtering happens per page, so a filtered
// page may be empty while the cursor is not.
func (h *Objects) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := store.ListOptions{
		Key:    q.Get("key"),
		Cursor: q.Get("cursor"),
		Deep:   q.Get("deep") == "true",
	}
	if raw := q.Get("max_keys"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apperrors.WriteError(w, r, http.StatusBadRequest, "INVALID_MAX_KEYS",
				"max_keys must be a non-negative integer")
			return
		}
		opts.MaxKeys = n
	}

	matcher, err := match.New(match.Config{
		Includes:      q["include"],
		Excludes:      q["exclude"],
		IncludeHidden: q.Get("hidden") != "false",
	})
	if err != nil {
		apperrors.WriteError(w, r, http.StatusBadRequest, "INVALID_PATTERN", err.Error())
		return
	}

	result, err := h.Store.List(r.Context(), opts)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	resp := listJSON{
		Objects: make([]objectJSON, 0, len(result.Objects)),
		Dirs:    result.Dirs,
		Cursor:  result.Cursor,
	}
	for i := range result.Objects {
		if !matcher.Match(result.Objects[i].Key) {
			continue
		}
		resp.Objects = append(resp.Objects, toObjectJSON(&result.Objects[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func writeObjectHeaders(w http.ResponseWriter, info *store.ObjectInfo) {
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	w.Header().Set("ETag", `"`+info.ETag+`"`)
	w.Header().Set("Last-Modified", info.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Type", "application/octet-stream")
}
