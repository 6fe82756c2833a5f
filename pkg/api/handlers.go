package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/getmockd/commercemock/pkg/httputil"
	"github.com/getmockd/commercemock/pkg/repository"
)

const keyPrefix = "key="

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, HealthResponse{
		Status:    "healthy",
		Uptime:    int(time.Since(s.started).Seconds()),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := MetricsResponse{
		Operations: s.metrics.Snapshot(),
		Projects:   []ProjectStats{},
	}
	for _, tenant := range s.registry.Tenants() {
		project := ProjectStats{Key: tenant, Kinds: []KindStats{}}
		for _, kind := range s.registry.Kinds() {
			n := s.registry.Count(tenant, kind)
			if n == 0 {
				continue
			}
			path, _ := s.registry.Path(kind)
			project.Kinds = append(project.Kinds, KindStats{TypeID: kind, Path: path, Count: n})
		}
		resp.Projects = append(resp.Projects, project)
	}
	httputil.WriteOK(w, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	removed := s.registry.Reset(project)
	if project == "" {
		s.metrics.Reset()
	}
	s.log.Info("state reset", "project", project, "removed", removed)
	httputil.WriteOK(w, ResetResponse{Project: project, Removed: removed})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFound(w, fmt.Sprintf("No endpoint matches %s %s.", r.Method, r.URL.Path))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := svc.Create(r.Context(), r.PathValue("projectKey"), body)
	s.respond(w, res, err)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.registry.ByPath("orders")
	importer, canImport := svc.(repository.Importer)
	if !ok || !canImport {
		s.handleNotFound(w, r)
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	res, err := importer.Import(r.Context(), r.PathValue("projectKey"), body)
	s.respond(w, res, err)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	params, err := parseQueryParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := svc.Query(r.Context(), r.PathValue("projectKey"), params)
	s.respond(w, res, err)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	tenant := r.PathValue("projectKey")
	var (
		res any
		err error
	)
	if key, byKey := keyParam(r); byKey {
		res, err = svc.GetByKey(r.Context(), tenant, key)
	} else {
		res, err = svc.Get(r.Context(), tenant, r.PathValue("id"))
	}
	s.respond(w, res, err)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	req, err := repository.DecodeJSON[repository.UpdateRequest](body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tenant := r.PathValue("projectKey")
	var res any
	if key, byKey := keyParam(r); byKey {
		res, err = svc.UpdateByKey(r.Context(), tenant, key, req)
	} else {
		res, err = svc.Update(r.Context(), tenant, r.PathValue("id"), req)
	}
	s.respond(w, res, err)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	svc, ok := s.service(w, r)
	if !ok {
		return
	}
	version, err := optionalInt(r, "version")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	tenant := r.PathValue("projectKey")
	var res any
	if key, byKey := keyParam(r); byKey {
		res, err = svc.DeleteByKey(r.Context(), tenant, key, version)
	} else {
		res, err = svc.Delete(r.Context(), tenant, r.PathValue("id"), version)
	}
	s.respond(w, res, err)
}

// service resolves the {path} segment, writing a 404 when no kind is
// registered under it.
func (s *Server) service(w http.ResponseWriter, r *http.Request) (repository.Service, bool) {
	svc, ok := s.registry.ByPath(r.PathValue("path"))
	if !ok {
		s.handleNotFound(w, r)
		return nil, false
	}
	return svc, true
}

func (s *Server) respond(w http.ResponseWriter, res any, err error) {
	if err != nil {
		var sc repository.StatusCodeError
		if !errors.As(err, &sc) {
			s.log.Error("unexpected repository error", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteOK(w, res)
}

func keyParam(r *http.Request) (string, bool) {
	return strings.CutPrefix(r.PathValue("id"), keyPrefix)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err == nil {
		return body, true
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, repository.CodeInvalidInput,
			fmt.Sprintf("Request body exceeds %d bytes.", maxBytesErr.Limit))
		return nil, false
	}
	httputil.WriteBadRequest(w, "Request body could not be read.")
	return nil, false
}

func parseQueryParams(r *http.Request) (repository.QueryParams, error) {
	values := r.URL.Query()
	params := repository.QueryParams{
		Where: values["where"],
		Sort:  values["sort"],
	}
	var err error
	if params.Offset, err = optionalInt(r, "offset"); err != nil {
		return params, err
	}
	if params.Limit, err = optionalInt(r, "limit"); err != nil {
		return params, err
	}
	return params, nil
}

func optionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &repository.InvalidInputError{
			Field:   name,
			Message: fmt.Sprintf("%q is not an integer", raw),
		}
	}
	return &v, nil
}
