package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/getmockd/commercemock/internal/storage"
	"github.com/getmockd/commercemock/pkg/query"
)

// Kind describes one resource kind to the engine. T is the stored resource
// type (a pointer embedding Base), D the draft accepted by create.
type Kind[T Resource, D any] interface {
	// TypeID returns the kind identifier, also used as the storage bucket.
	TypeID() TypeID
	// Create builds a new resource from a draft. base carries the envelope the
	// engine assigned; the returned resource must embed it unchanged.
	Create(ctx CreateContext, draft D, base Base) (T, error)
	// Actions returns the update action table of the kind.
	Actions() ActionTable[T]
}

// KeyField is implemented by kinds whose unique secondary identifier is not
// called "key" (discount codes index their code).
type KeyField interface {
	KeyField() string
}

// CreateContext is passed to Kind.Create.
type CreateContext struct {
	Context  context.Context
	Tenant   string
	Now      time.Time
	Resolver Resolver
}

// Resolver gives create logic read access to other resources of the same
// tenant, e.g. the cart an order is created from.
type Resolver interface {
	// Resolve returns the resource a reference points at. The result is the
	// stored document and must not be modified.
	Resolve(tenant string, ref Reference) (Resource, error)
}

// NewStoreResolver returns a Resolver reading directly from store.
func NewStoreResolver(store storage.Store) Resolver {
	return storeResolver{store: store}
}

type storeResolver struct {
	store storage.Store
}

func (s storeResolver) Resolve(tenant string, ref Reference) (Resource, error) {
	var (
		doc storage.Document
		err error
	)
	switch {
	case ref.ID != "":
		doc, err = s.store.Get(tenant, string(ref.TypeID), ref.ID)
	case ref.Key != "":
		doc, err = s.store.GetByKey(tenant, string(ref.TypeID), ref.Key)
	default:
		return nil, &InvalidInputError{Field: "id", Message: fmt.Sprintf("reference to %s needs an id or a key", ref.TypeID)}
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &InvalidInputError{
				ErrCode: CodeInvalidInput,
				Message: fmt.Sprintf("A %s with identifier '%s' was not found.", ref.TypeID, ref.ID+ref.Key),
			}
		}
		return nil, err
	}
	res, ok := doc.(Resource)
	if !ok {
		return nil, fmt.Errorf("document %s/%s is not a resource", ref.TypeID, ref.ID)
	}
	return res, nil
}

// Option configures a Repository.
type Option func(*options)

type options struct {
	observer     Observer
	now          func() time.Time
	defaultLimit int
	maxLimit     int
}

// WithObserver sets the observer notified after each operation.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(opts *options) {
		if now != nil {
			opts.now = now
		}
	}
}

// WithLimits overrides the default and maximum page sizes of queries.
// Non-positive values keep the defaults.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(opts *options) {
		if defaultLimit > 0 {
			opts.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			opts.maxLimit = maxLimit
		}
	}
}

// Repository implements create, read, query, update and delete for one kind
// on top of a shared document store.
type Repository[T Resource, D any] struct {
	store       storage.Store
	kind        Kind[T, D]
	typeID      TypeID
	keyField    string
	actions     ActionTable[T]
	projections []Projection[T]
	resolver    Resolver
	opts        options
}

// New creates a repository for kind backed by store.
func New[T Resource, D any](store storage.Store, kind Kind[T, D], opts ...Option) *Repository[T, D] {
	o := options{
		observer:     NoopObserver{},
		now:          time.Now,
		defaultLimit: DefaultLimit,
		maxLimit:     MaxLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Repository[T, D]{
		store:    store,
		kind:     kind,
		typeID:   kind.TypeID(),
		keyField: "key",
		actions:  kind.Actions(),
		resolver: NewStoreResolver(store),
		opts:     o,
	}
	if kf, ok := kind.(KeyField); ok {
		r.keyField = kf.KeyField()
	}
	if p, ok := kind.(Projector[T]); ok {
		r.projections = p.Projections()
	}
	return r
}

// TypeID returns the kind identifier.
func (r *Repository[T, D]) TypeID() TypeID {
	return r.typeID
}

// Actions returns the names of the supported update actions, sorted.
func (r *Repository[T, D]) Actions() []string {
	return r.actions.Names()
}

// Kind returns the kind definition the repository was built with.
func (r *Repository[T, D]) Kind() Kind[T, D] {
	return r.kind
}

func (r *Repository[T, D]) bucket() string {
	return string(r.typeID)
}

// Create validates the draft, builds a resource with a fresh envelope and
// stores it.
func (r *Repository[T, D]) Create(ctx context.Context, tenant string, draft D) (T, error) {
	if v, ok := any(&draft).(Validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, r.fail("create", asEngineError(err))
		}
	}
	return r.CreateFunc(ctx, tenant, func(cctx CreateContext, base Base) (T, error) {
		return r.kind.Create(cctx, draft, base)
	})
}

// CreateFunc stores the resource returned by build under a fresh envelope.
// It is the path behind Create and lets kinds offer alternative constructors,
// such as importing an order, with the same envelope and key rules.
func (r *Repository[T, D]) CreateFunc(ctx context.Context, tenant string, build func(CreateContext, Base) (T, error)) (T, error) {
	start := time.Now()
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("create", err)
	}

	base := NewBase(r.opts.now())
	res, err := build(CreateContext{
		Context:  ctx,
		Tenant:   tenant,
		Now:      base.CreatedAt,
		Resolver: r.resolver,
	}, base)
	if err != nil {
		return zero, r.fail("create", asEngineError(err))
	}
	*res.Envelope() = base

	stored, err := clone(res)
	if err != nil {
		return zero, r.fail("create", err)
	}
	if err := r.store.Insert(tenant, r.bucket(), stored); err != nil {
		return zero, r.fail("create", r.storeError(err, stored))
	}

	out, err := r.output(stored)
	if err != nil {
		return zero, r.fail("create", err)
	}
	r.opts.observer.OnCreate(r.typeID, base.ID, time.Since(start))
	return out, nil
}

// Get returns the resource with the given id.
func (r *Repository[T, D]) Get(ctx context.Context, tenant, id string) (T, error) {
	start := time.Now()
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("get", err)
	}
	current, err := r.load(tenant, id)
	if err != nil {
		return zero, r.fail("get", err)
	}
	out, err := r.output(current)
	if err != nil {
		return zero, r.fail("get", err)
	}
	r.opts.observer.OnRead(r.typeID, id, time.Since(start))
	return out, nil
}

// GetByKey returns the resource with the given key.
func (r *Repository[T, D]) GetByKey(ctx context.Context, tenant, key string) (T, error) {
	start := time.Now()
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("get", err)
	}
	current, err := r.loadByKey(tenant, key)
	if err != nil {
		return zero, r.fail("get", err)
	}
	out, err := r.output(current)
	if err != nil {
		return zero, r.fail("get", err)
	}
	r.opts.observer.OnRead(r.typeID, current.DocumentID(), time.Since(start))
	return out, nil
}

// Query returns one page of the resources matching params, in insertion
// order unless a sort is given.
func (r *Repository[T, D]) Query(ctx context.Context, tenant string, params QueryParams) (*PagedQueryResponse[T], error) {
	start := time.Now()
	if err := r.checkRequest(ctx, tenant); err != nil {
		return nil, r.fail("query", err)
	}

	predicate, err := query.CompilePredicate(params.Where...)
	if err != nil {
		return nil, r.fail("query", queryError(err))
	}
	sortSpecs, err := query.ParseSort(params.Sort...)
	if err != nil {
		return nil, r.fail("query", queryError(err))
	}

	docs := r.store.List(tenant, r.bucket())
	matched := make([]T, 0, len(docs))

	if predicate.Empty() && len(sortSpecs) == 0 {
		for _, d := range docs {
			if res, ok := d.(T); ok {
				matched = append(matched, res)
			}
		}
	} else {
		type entry struct {
			res T
			doc map[string]any
		}
		entries := make([]entry, 0, len(docs))
		for _, d := range docs {
			res, ok := d.(T)
			if !ok {
				continue
			}
			m, err := r.queryDocument(res)
			if err != nil {
				return nil, r.fail("query", err)
			}
			if predicate.Match(m) {
				entries = append(entries, entry{res: res, doc: m})
			}
		}
		if len(sortSpecs) > 0 {
			sort.SliceStable(entries, func(i, j int) bool {
				return query.Compare(sortSpecs, entries[i].doc, entries[j].doc) < 0
			})
		}
		for _, e := range entries {
			matched = append(matched, e.res)
		}
	}

	offset, limit := resolvePage(params, r.opts.defaultLimit, r.opts.maxLimit)
	page := paginate(matched, offset, limit)

	results := make([]T, 0, len(page))
	for _, res := range page {
		out, err := r.output(res)
		if err != nil {
			return nil, r.fail("query", err)
		}
		results = append(results, out)
	}

	r.opts.observer.OnQuery(r.typeID, len(results), time.Since(start))
	return &PagedQueryResponse[T]{
		Limit:   limit,
		Offset:  offset,
		Count:   len(results),
		Total:   len(matched),
		Results: results,
	}, nil
}

// Update applies the actions of req to the resource with the given id as one
// unit. The stored resource changes only if every action succeeds and the
// result differs from the current state; then its version is incremented.
func (r *Repository[T, D]) Update(ctx context.Context, tenant, id string, req UpdateRequest) (T, error) {
	start := time.Now()
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("update", err)
	}
	if err := req.Validate(); err != nil {
		return zero, r.fail("update", err)
	}

	unlock := r.store.Lock(tenant, r.bucket(), id)
	defer unlock()

	current, err := r.load(tenant, id)
	if err != nil {
		return zero, r.fail("update", err)
	}
	out, changed, err := r.apply(tenant, current, req)
	if err != nil {
		return zero, r.fail("update", err)
	}
	r.opts.observer.OnUpdate(r.typeID, id, out.Envelope().Version, changed, time.Since(start))
	return out, nil
}

// UpdateByKey is Update addressed by key.
func (r *Repository[T, D]) UpdateByKey(ctx context.Context, tenant, key string, req UpdateRequest) (T, error) {
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("update", err)
	}
	current, err := r.loadByKey(tenant, key)
	if err != nil {
		return zero, r.fail("update", err)
	}
	return r.Update(ctx, tenant, current.DocumentID(), req)
}

// apply runs the update pipeline on current. Must be called with the
// resource lock held.
func (r *Repository[T, D]) apply(tenant string, current T, req UpdateRequest) (T, bool, error) {
	var zero T
	orig := current.Envelope()
	if orig.Version != req.Version {
		return zero, false, &ConcurrentModificationError{
			TypeID:          r.typeID,
			ID:              orig.ID,
			ExpectedVersion: req.Version,
			CurrentVersion:  orig.Version,
		}
	}

	snapshot, err := clone(current)
	if err != nil {
		return zero, false, err
	}
	staging, err := clone(current)
	if err != nil {
		return zero, false, err
	}

	actx := ActionContext{Tenant: tenant, TypeID: r.typeID, Now: r.opts.now()}
	for _, action := range req.Actions {
		handler, ok := r.actions[action.Name]
		if !ok {
			return zero, false, &UnsupportedActionError{TypeID: r.typeID, Action: string(action.Name)}
		}
		if err := handler(actx, staging, action.Payload); err != nil {
			return zero, false, asEngineError(err)
		}
	}

	if sameState(snapshot, staging) {
		return project(r.projections, snapshot), false, nil
	}

	env := staging.Envelope()
	env.ID = orig.ID
	env.CreatedAt = orig.CreatedAt
	env.Version = orig.Version + 1
	env.LastModifiedAt = normalizeTime(actx.Now)
	if env.LastModifiedAt.Before(orig.LastModifiedAt) {
		env.LastModifiedAt = orig.LastModifiedAt
	}

	if err := r.store.Put(tenant, r.bucket(), staging); err != nil {
		return zero, false, r.storeError(err, staging)
	}

	out, err := r.output(staging)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

// Delete removes the resource with the given id and returns its last state.
// When version is non-nil it must match the stored version.
func (r *Repository[T, D]) Delete(ctx context.Context, tenant, id string, version *int) (T, error) {
	start := time.Now()
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("delete", err)
	}

	unlock := r.store.Lock(tenant, r.bucket(), id)
	defer unlock()

	current, err := r.load(tenant, id)
	if err != nil {
		return zero, r.fail("delete", err)
	}
	if version != nil && *version != current.Envelope().Version {
		return zero, r.fail("delete", &ConcurrentModificationError{
			TypeID:          r.typeID,
			ID:              id,
			ExpectedVersion: *version,
			CurrentVersion:  current.Envelope().Version,
		})
	}
	out, err := r.output(current)
	if err != nil {
		return zero, r.fail("delete", err)
	}
	if err := r.store.Delete(tenant, r.bucket(), id); err != nil {
		return zero, r.fail("delete", r.storeError(err, current))
	}

	r.opts.observer.OnDelete(r.typeID, id, time.Since(start))
	return out, nil
}

// DeleteByKey is Delete addressed by key.
func (r *Repository[T, D]) DeleteByKey(ctx context.Context, tenant, key string, version *int) (T, error) {
	var zero T
	if err := r.checkRequest(ctx, tenant); err != nil {
		return zero, r.fail("delete", err)
	}
	current, err := r.loadByKey(tenant, key)
	if err != nil {
		return zero, r.fail("delete", err)
	}
	return r.Delete(ctx, tenant, current.DocumentID(), version)
}

func (r *Repository[T, D]) checkRequest(ctx context.Context, tenant string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tenant == "" {
		return &InvalidInputError{Field: "projectKey", Message: "project key must not be empty"}
	}
	return nil
}

func (r *Repository[T, D]) load(tenant, id string) (T, error) {
	var zero T
	doc, err := r.store.Get(tenant, r.bucket(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return zero, &NotFoundError{TypeID: r.typeID, ID: id}
		}
		return zero, err
	}
	return r.cast(doc)
}

func (r *Repository[T, D]) loadByKey(tenant, key string) (T, error) {
	var zero T
	doc, err := r.store.GetByKey(tenant, r.bucket(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return zero, &NotFoundError{TypeID: r.typeID, Key: key}
		}
		return zero, err
	}
	return r.cast(doc)
}

func (r *Repository[T, D]) cast(doc storage.Document) (T, error) {
	res, ok := doc.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("stored %s document has unexpected type %T", r.typeID, doc)
	}
	return res, nil
}

// output returns a projected copy of a stored resource.
func (r *Repository[T, D]) output(stored T) (T, error) {
	out, err := clone(stored)
	if err != nil {
		return out, err
	}
	return project(r.projections, out), nil
}

// queryDocument is the form predicates and sorts see: the projected
// resource, so hidden values cannot be probed through where clauses.
func (r *Repository[T, D]) queryDocument(stored T) (map[string]any, error) {
	if len(r.projections) == 0 {
		return toDocument(stored)
	}
	view, err := r.output(stored)
	if err != nil {
		return nil, err
	}
	return toDocument(view)
}

func (r *Repository[T, D]) storeError(err error, doc storage.Document) error {
	switch {
	case errors.Is(err, storage.ErrDuplicateKey):
		return &DuplicateFieldError{TypeID: r.typeID, Field: r.keyField, Value: doc.DocumentKey()}
	case errors.Is(err, storage.ErrNotFound):
		return &NotFoundError{TypeID: r.typeID, ID: doc.DocumentID()}
	}
	return err
}

func (r *Repository[T, D]) fail(op string, err error) error {
	r.opts.observer.OnError(r.typeID, op, err)
	return err
}

func queryError(err error) error {
	var qe *query.Error
	if errors.As(err, &qe) {
		return &InvalidInputError{Field: qe.Param, Message: qe.Error()}
	}
	return &InvalidInputError{Message: err.Error()}
}
