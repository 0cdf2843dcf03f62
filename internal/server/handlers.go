package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sadopc/bqlab/internal/api"
	"github.com/sadopc/bqlab/internal/catalog"
)

// Query parameters of the read endpoint.
const (
	paramOrderColumn    = "_oc_"
	paramOrderDirection = "_od_"
	paramPage           = "_page_"
	paramPageSize       = "_psize_"
	paramSearch         = "_q_"
)

var listColumns = []string{"name", "project_id", "dataset_name", "table_name", "description", "is_featured", "offset", "changed_on"}

var labelColumns = map[string]string{
	"name":         "Name",
	"project_id":   "Project",
	"dataset_name": "Dataset",
	"table_name":   "Table",
	"description":  "Description",
	"is_featured":  "Is Featured",
	"offset":       "Offset",
	"changed_on":   "Changed On",
}

// tableInput is the body accepted by create and update.
type tableInput struct {
	ProjectID           string `json:"project_id"`
	DatasetName         string `json:"dataset_name"`
	TableName           string `json:"table_name"`
	Description         string `json:"description"`
	IsFeatured          bool   `json:"is_featured"`
	FilterSelectEnabled bool   `json:"filter_select_enabled"`
	Offset              int    `json:"offset"`
	CacheTimeout        int    `json:"cache_timeout"`
	Params              string `json:"params"`
}

func (in tableInput) table(id int64) catalog.Table {
	return catalog.Table{
		ID:                  id,
		ProjectID:           in.ProjectID,
		DatasetName:         in.DatasetName,
		TableName:           in.TableName,
		Description:         in.Description,
		IsFeatured:          in.IsFeatured,
		FilterSelectEnabled: in.FilterSelectEnabled,
		Offset:              in.Offset,
		CacheTimeout:        in.CacheTimeout,
		Params:              in.Params,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	opts := catalog.ListOptions{
		Order:  q.Get(paramOrderColumn),
		Search: q.Get(paramSearch),
		Allow:  s.allow(r),
	}
	switch q.Get(paramOrderDirection) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		s.writeError(w, http.StatusBadRequest, "_od_ must be asc or desc")
		return
	}

	var err error
	if opts.Page, err = intParam(q.Get(paramPage), 0); err != nil || opts.Page < 0 {
		s.writeError(w, http.StatusBadRequest, "_page_ must be a non-negative integer")
		return
	}
	if opts.PageSize, err = intParam(q.Get(paramPageSize), catalog.DefaultPageSize); err != nil || opts.PageSize <= 0 {
		s.writeError(w, http.StatusBadRequest, "_psize_ must be a positive integer")
		return
	}

	tables, total, err := s.catalog.List(r.Context(), opts)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	resp := api.ReadResponse{
		Result:        make([]api.Database, 0, len(tables)),
		Count:         total,
		Pks:           make([]api.ID, 0, len(tables)),
		Page:          opts.Page,
		PageSize:      opts.PageSize,
		OrderColumns:  catalog.OrderColumns,
		ListColumns:   listColumns,
		LabelColumns:  labelColumns,
		ModelViewName: api.ModelView,
	}
	for _, t := range tables {
		db := toDatabase(t)
		resp.Result = append(resp.Result, db)
		resp.Pks = append(resp.Pks, db.ID)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	db := toDatabase(t)
	writeJSON(w, http.StatusOK, api.ItemResponse{Pk: db.ID, Result: &db})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in tableInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t := in.table(0)
	if !s.permitted(r, t) {
		s.writeError(w, http.StatusForbidden, "access denied to "+t.FullName())
		return
	}

	created, err := s.catalog.Create(r.Context(), t)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	db := toDatabase(created)
	writeJSON(w, http.StatusCreated, api.ItemResponse{Message: "OK", Pk: db.ID, Result: &db})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	existing, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var in tableInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t := in.table(existing.ID)
	if !s.permitted(r, t) {
		s.writeError(w, http.StatusForbidden, "access denied to "+t.FullName())
		return
	}

	updated, err := s.catalog.Update(r.Context(), t)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	db := toDatabase(updated)
	writeJSON(w, http.StatusOK, api.ItemResponse{Message: "OK", Pk: db.ID, Result: &db})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if err := s.catalog.Delete(r.Context(), t.ID); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ItemResponse{Message: "OK"})
}

// lookup resolves {pk}. Tables the user may not see are reported as missing.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (catalog.Table, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "pk"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "pk must be an integer")
		return catalog.Table{}, false
	}
	t, err := s.catalog.Get(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, err)
		return catalog.Table{}, false
	}
	if !s.permitted(r, t) {
		s.writeError(w, http.StatusNotFound, "Not found")
		return catalog.Table{}, false
	}
	return t, true
}

func (s *Server) permitted(r *http.Request, t catalog.Table) bool {
	allow := s.allow(r)
	return allow == nil || allow(t)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, catalog.ErrTableExists), errors.Is(err, catalog.ErrInvalid):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, catalog.ErrBadOrderColumn):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("catalog error", "error", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func toDatabase(t catalog.Table) api.Database {
	db := api.Database{
		ID:          api.ID(catalog.FormatID(t.ID)),
		Name:        t.FullName(),
		ProjectID:   t.ProjectID,
		DatasetName: t.DatasetName,
		TableName:   t.TableName,
		Description: t.Description,
		IsFeatured:  t.IsFeatured,
		Offset:      t.Offset,
	}
	if !t.ChangedOn.IsZero() {
		db.ChangedOn = t.ChangedOn.UTC().Format(time.RFC3339)
	}
	return db
}
