package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/getmockd/commercemock/internal/storage"
)

// Service is the type-erased view of a repository used by transports.
// Drafts arrive as raw JSON; results are returned as values ready to encode.
type Service interface {
	TypeID() TypeID
	Actions() []string
	Create(ctx context.Context, tenant string, body json.RawMessage) (any, error)
	Get(ctx context.Context, tenant, id string) (any, error)
	GetByKey(ctx context.Context, tenant, key string) (any, error)
	Query(ctx context.Context, tenant string, params QueryParams) (any, error)
	Update(ctx context.Context, tenant, id string, req UpdateRequest) (any, error)
	UpdateByKey(ctx context.Context, tenant, key string, req UpdateRequest) (any, error)
	Delete(ctx context.Context, tenant, id string, version *int) (any, error)
	DeleteByKey(ctx context.Context, tenant, key string, version *int) (any, error)
}

// Importer is implemented by services that accept fully specified resources
// in addition to drafts, such as order import.
type Importer interface {
	Import(ctx context.Context, tenant string, body json.RawMessage) (any, error)
}

// DraftValidator is implemented by kinds that check raw draft JSON, for
// example against a JSON schema, before it is decoded.
type DraftValidator interface {
	ValidateDraft(raw []byte) error
}

// AsService wraps a repository so it can be registered.
func AsService[T Resource, D any](r *Repository[T, D]) Service {
	s := &jsonService[T, D]{repo: r}
	if v, ok := r.kind.(DraftValidator); ok {
		s.validate = v.ValidateDraft
	}
	return s
}

type jsonService[T Resource, D any] struct {
	repo     *Repository[T, D]
	validate func([]byte) error
}

func (s *jsonService[T, D]) TypeID() TypeID    { return s.repo.TypeID() }
func (s *jsonService[T, D]) Actions() []string { return s.repo.Actions() }

func (s *jsonService[T, D]) Create(ctx context.Context, tenant string, body json.RawMessage) (any, error) {
	if s.validate != nil {
		if err := s.validate(body); err != nil {
			return nil, s.repo.fail("create", asEngineError(err))
		}
	}
	draft, err := DecodeJSON[D](body)
	if err != nil {
		return nil, s.repo.fail("create", err)
	}
	return s.repo.Create(ctx, tenant, draft)
}

func (s *jsonService[T, D]) Get(ctx context.Context, tenant, id string) (any, error) {
	return s.repo.Get(ctx, tenant, id)
}

func (s *jsonService[T, D]) GetByKey(ctx context.Context, tenant, key string) (any, error) {
	return s.repo.GetByKey(ctx, tenant, key)
}

func (s *jsonService[T, D]) Query(ctx context.Context, tenant string, params QueryParams) (any, error) {
	return s.repo.Query(ctx, tenant, params)
}

func (s *jsonService[T, D]) Update(ctx context.Context, tenant, id string, req UpdateRequest) (any, error) {
	return s.repo.Update(ctx, tenant, id, req)
}

func (s *jsonService[T, D]) UpdateByKey(ctx context.Context, tenant, key string, req UpdateRequest) (any, error) {
	return s.repo.UpdateByKey(ctx, tenant, key, req)
}

func (s *jsonService[T, D]) Delete(ctx context.Context, tenant, id string, version *int) (any, error) {
	return s.repo.Delete(ctx, tenant, id, version)
}

func (s *jsonService[T, D]) DeleteByKey(ctx context.Context, tenant, key string, version *int) (any, error) {
	return s.repo.DeleteByKey(ctx, tenant, key, version)
}

// DecodeJSON decodes a request body into V, reporting failures as
// InvalidJsonInput errors.
func DecodeJSON[V any](body []byte) (V, error) {
	var v V
	if len(bytes.TrimSpace(body)) == 0 {
		return v, &InvalidInputError{ErrCode: CodeInvalidJSONInput, Message: "Request body is empty."}
	}
	if err := json.Unmarshal(body, &v); err != nil {
		return v, &InvalidInputError{
			ErrCode: CodeInvalidJSONInput,
			Message: fmt.Sprintf("Request body does not contain valid JSON: %v", err),
		}
	}
	return v, nil
}

// Registration binds a service to the URL path segment it is served under.
type Registration struct {
	Path    string
	Service Service
}

// Registry maps kinds and URL paths to services. It is built once at startup
// and read concurrently afterwards.
type Registry struct {
	store  storage.Store
	byType map[TypeID]Service
	byPath map[string]Service
	paths  map[TypeID]string
}

// NewRegistry builds a registry. Kinds and paths must be unique.
func NewRegistry(store storage.Store, regs ...Registration) (*Registry, error) {
	r := &Registry{
		store:  store,
		byType: make(map[TypeID]Service, len(regs)),
		byPath: make(map[string]Service, len(regs)),
		paths:  make(map[TypeID]string, len(regs)),
	}
	for _, reg := range regs {
		if reg.Service == nil || reg.Path == "" {
			return nil, fmt.Errorf("registration %q: service and path are required", reg.Path)
		}
		t := reg.Service.TypeID()
		if !t.Valid() {
			return nil, fmt.Errorf("registration %q: unknown kind %q", reg.Path, t)
		}
		if _, dup := r.byType[t]; dup {
			return nil, fmt.Errorf("kind %q registered twice", t)
		}
		if _, dup := r.byPath[reg.Path]; dup {
			return nil, fmt.Errorf("path %q registered twice", reg.Path)
		}
		r.byType[t] = reg.Service
		r.byPath[reg.Path] = reg.Service
		r.paths[t] = reg.Path
	}
	return r, nil
}

// Service returns the service registered for a kind.
func (r *Registry) Service(t TypeID) (Service, bool) {
	s, ok := r.byType[t]
	return s, ok
}

// ByPath returns the service served under a URL path segment.
func (r *Registry) ByPath(path string) (Service, bool) {
	s, ok := r.byPath[path]
	return s, ok
}

// Path returns the URL path segment of a kind.
func (r *Registry) Path(t TypeID) (string, bool) {
	p, ok := r.paths[t]
	return p, ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []TypeID {
	kinds := make([]TypeID, 0, len(r.byType))
	for t := range r.byType {
		kinds = append(kinds, t)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Tenants returns the tenants holding data, sorted.
func (r *Registry) Tenants() []string {
	return r.store.Tenants()
}

// Count returns the number of resources of a kind within a tenant.
func (r *Registry) Count(tenant string, t TypeID) int {
	return r.store.Count(tenant, string(t))
}

// Reset removes all resources of a tenant, or of every tenant when tenant is
// empty, and returns how many were removed.
func (r *Registry) Reset(tenant string) int {
	return r.store.Clear(tenant)
}
