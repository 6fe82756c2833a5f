package repository

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/commercemock/internal/id"
	"github.com/getmockd/commercemock/internal/storage"
)

// testZone is a small keyed kind exercising every engine feature.
type testZone struct {
	Base
	Key         string   `json:"key,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Countries   []string `json:"countries"`
	Secret      string   `json:"secret,omitempty"`
}

func (z *testZone) DocumentKey() string { return z.Key }

type testZoneDraft struct {
	Key       string   `json:"key"`
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
	Secret    string   `json:"secret"`
}

func (d *testZoneDraft) Validate() error {
	if d.Name == "" {
		return &InvalidInputError{Field: "name", Message: "name is required"}
	}
	return nil
}

type testZoneKind struct{}

func (testZoneKind) TypeID() TypeID { return TypeZone }

func (testZoneKind) Create(_ CreateContext, d testZoneDraft, base Base) (*testZone, error) {
	return &testZone{Base: base, Key: d.Key, Name: d.Name, Countries: d.Countries, Secret: d.Secret}, nil
}

func (testZoneKind) Actions() ActionTable[*testZone] {
	return ActionTable[*testZone]{
		"setKey": Handle(func(_ ActionContext, z *testZone, p struct {
			Key string `json:"key"`
		}) error {
			z.Key = p.Key
			return nil
		}),
		"changeName": Handle(func(_ ActionContext, z *testZone, p struct {
			Name string `json:"name"`
		}) error {
			if p.Name == "" {
				return errors.New("name must not be empty")
			}
			z.Name = p.Name
			return nil
		}),
		"setDescription": Handle(func(_ ActionContext, z *testZone, p struct {
			Description string `json:"description"`
		}) error {
			z.Description = p.Description
			return nil
		}),
		"addCountry": Handle(func(_ ActionContext, z *testZone, p struct {
			Country string `json:"country"`
		}) error {
			z.Countries = append(z.Countries, p.Country)
			return nil
		}),
		"setSecret": Handle(func(_ ActionContext, z *testZone, p struct {
			Secret string `json:"secret"`
		}) error {
			z.Secret = p.Secret
			return nil
		}),
	}
}

func (testZoneKind) Projections() []Projection[*testZone] {
	return []Projection[*testZone]{
		func(z *testZone) *testZone {
			if z.Secret != "" {
				z.Secret = "****"
			}
			return z
		},
	}
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestRepo(t *testing.T, opts ...Option) (*Repository[*testZone, testZoneDraft], storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	return New[*testZone, testZoneDraft](store, testZoneKind{}, opts...), store
}

func act(name string, fields map[string]any) Action {
	a, err := NewAction(ActionName(name), fields)
	if err != nil {
		panic(err)
	}
	return a
}

const tenant = "project-a"

func TestRepository_CreateAssignsEnvelope(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 123456789, time.UTC)}
	repo, _ := newTestRepo(t, WithClock(clock.Now))
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)

	assert.True(t, id.IsUUID(zone.ID), zone.ID)
	assert.Equal(t, 1, zone.Version)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 123000000, time.UTC), zone.CreatedAt)
	assert.Equal(t, zone.CreatedAt, zone.LastModifiedAt)

	got, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, zone, got)
}

func TestRepository_CreateValidatesDraft(t *testing.T) {
	repo, store := newTestRepo(t)

	_, err := repo.Create(context.Background(), tenant, testZoneDraft{Key: "EU"})
	var ii *InvalidInputError
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "name", ii.Field)
	assert.Equal(t, 0, store.Count(tenant, string(TypeZone)))
}

func TestRepository_DuplicateKey(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Other"})
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "key", dup.Field)
	assert.Equal(t, "EU", dup.Value)

	// Keys are scoped per tenant.
	_, err = repo.Create(ctx, "project-b", testZoneDraft{Key: "EU", Name: "Europe"})
	assert.NoError(t, err)
}

func TestRepository_GetByKeyAndTenantIsolation(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)

	got, err := repo.GetByKey(ctx, tenant, "EU")
	require.NoError(t, err)
	assert.Equal(t, zone.ID, got.ID)

	_, err = repo.Get(ctx, "project-b", zone.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, zone.ID, nf.ID)

	_, err = repo.GetByKey(ctx, tenant, "US")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "US", nf.Key)
}

func TestRepository_UpdateBumpsVersion(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	repo, _ := newTestRepo(t, WithClock(clock.Now))
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)

	clock.Set(clock.Now().Add(time.Minute))
	updated, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{
		Version: 1,
		Actions: []Action{
			act("changeName", map[string]any{"name": "Europa"}),
			act("setDescription", map[string]any{"description": "EU countries"}),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Version, "one bump per request, not per action")
	assert.Equal(t, "Europa", updated.Name)
	assert.Equal(t, "EU countries", updated.Description)
	assert.Equal(t, zone.ID, updated.ID)
	assert.Equal(t, zone.CreatedAt, updated.CreatedAt)
	assert.Equal(t, clock.Now(), updated.LastModifiedAt)

	got, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestRepository_LastModifiedNeverMovesBackwards(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	repo, _ := newTestRepo(t, WithClock(clock.Now))
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe"})
	require.NoError(t, err)

	clock.Set(clock.Now().Add(-time.Hour))
	updated, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{
		Version: 1,
		Actions: []Action{act("changeName", map[string]any{"name": "Europa"})},
	})
	require.NoError(t, err)
	assert.Equal(t, zone.LastModifiedAt, updated.LastModifiedAt)
}

func TestRepository_NoopUpdateKeepsVersion(t *testing.T) {
	clock := &fixedClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	metrics := NewMetricsObserver()
	repo, _ := newTestRepo(t, WithClock(clock.Now), WithObserver(metrics))
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe", Countries: []string{}})
	require.NoError(t, err)

	tests := []struct {
		name    string
		actions []Action
	}{
		{name: "no actions", actions: nil},
		{name: "same value", actions: []Action{act("changeName", map[string]any{"name": "Europe"})}},
		{name: "change and revert", actions: []Action{
			act("changeName", map[string]any{"name": "Europa"}),
			act("changeName", map[string]any{"name": "Europe"}),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock.Set(clock.Now().Add(time.Minute))
			got, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{Version: 1, Actions: tt.actions})
			require.NoError(t, err)
			assert.Equal(t, 1, got.Version)
			assert.Equal(t, zone.LastModifiedAt, got.LastModifiedAt)
		})
	}

	snap := metrics.Snapshot()
	assert.Equal(t, int64(3), snap.NoopCount)
	assert.Equal(t, int64(0), snap.UpdateCount)
}

func TestRepository_NoopAfterRealUpdate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe"})
	require.NoError(t, err)

	setKey := []Action{act("setKey", map[string]any{"key": "EU"})}
	first, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{Version: 1, Actions: setKey})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Version)

	second, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{Version: 2, Actions: setKey})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Version)
}

func TestRepository_VersionMismatch(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, tenant, zone.ID, UpdateRequest{
		Version: 3,
		Actions: []Action{act("changeName", map[string]any{"name": "Europa"})},
	})
	var cm *ConcurrentModificationError
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, 3, cm.ExpectedVersion)
	assert.Equal(t, 1, cm.CurrentVersion)

	got, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe", got.Name)
	assert.Equal(t, 1, got.Version)
}

func TestRepository_InvalidVersion(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Update(context.Background(), tenant, "missing", UpdateRequest{Version: 0})
	var ii *InvalidInputError
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "version", ii.Field)
}

func TestRepository_UpdateIsAtomic(t *testing.T) {
	tests := []struct {
		name    string
		actions []Action
		check   func(t *testing.T, err error)
	}{
		{
			name: "unsupported action",
			actions: []Action{
				act("changeName", map[string]any{"name": "Europa"}),
				act("explode", nil),
			},
			check: func(t *testing.T, err error) {
				var ua *UnsupportedActionError
				require.ErrorAs(t, err, &ua)
				assert.Equal(t, "explode", ua.Action)
			},
		},
		{
			name: "failing handler",
			actions: []Action{
				act("setDescription", map[string]any{"description": "changed"}),
				act("changeName", map[string]any{"name": ""}),
			},
			check: func(t *testing.T, err error) {
				var ii *InvalidInputError
				require.ErrorAs(t, err, &ii)
			},
		},
		{
			name: "misspelled payload field",
			actions: []Action{
				act("setDescription", map[string]any{"description": "changed"}),
				act("changeName", map[string]any{"nmae": "Europa"}),
			},
			check: func(t *testing.T, err error) {
				var ii *InvalidInputError
				require.ErrorAs(t, err, &ii)
				assert.Equal(t, CodeInvalidInput, ii.Code())
				assert.Equal(t, "nmae", ii.Field)
			},
		},
		{
			name: "malformed payload",
			actions: []Action{
				act("addCountry", map[string]any{"country": "NL"}),
				{Name: "changeName", Payload: json.RawMessage(`{"action":"changeName","name":42}`)},
			},
			check: func(t *testing.T, err error) {
				var ii *InvalidInputError
				require.ErrorAs(t, err, &ii)
				assert.Equal(t, CodeInvalidJSONInput, ii.Code())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, _ := newTestRepo(t)
			ctx := context.Background()

			zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe", Countries: []string{"DE"}})
			require.NoError(t, err)

			_, err = repo.Update(ctx, tenant, zone.ID, UpdateRequest{Version: 1, Actions: tt.actions})
			tt.check(t, err)

			got, err := repo.Get(ctx, tenant, zone.ID)
			require.NoError(t, err)
			assert.Equal(t, zone, got)
		})
	}
}

func TestRepository_UpdateDuplicateKeyRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)
	us, err := repo.Create(ctx, tenant, testZoneDraft{Key: "US", Name: "United States"})
	require.NoError(t, err)

	_, err = repo.Update(ctx, tenant, us.ID, UpdateRequest{
		Version: 1,
		Actions: []Action{act("setKey", map[string]any{"key": "EU"})},
	})
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)

	got, err := repo.GetByKey(ctx, tenant, "US")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestRepository_UpdateByKey(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	require.NoError(t, err)

	updated, err := repo.UpdateByKey(ctx, tenant, "EU", UpdateRequest{
		Version: 1,
		Actions: []Action{act("setKey", map[string]any{"key": "EMEA"})},
	})
	require.NoError(t, err)
	assert.Equal(t, "EMEA", updated.Key)

	_, err = repo.GetByKey(ctx, tenant, "EU")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)

	got, err := repo.GetByKey(ctx, tenant, "EMEA")
	require.NoError(t, err)
	assert.Equal(t, updated.ID, got.ID)
}

func TestRepository_ConcurrentUpdatesOneWinner(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe"})
	require.NoError(t, err)

	const writers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{
				Version: 1,
				Actions: []Action{act("addCountry", map[string]any{"country": "C" + strings.Repeat("x", i)})},
			})
			mu.Lock()
			defer mu.Unlock()
			var cm *ConcurrentModificationError
			switch {
			case err == nil:
				successes++
			case errors.As(err, &cm):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, conflicts)

	got, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Len(t, got.Countries, 1)
}

func TestRepository_ProjectionDoesNotLeakIntoStore(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe", Secret: "s3cr3t"})
	require.NoError(t, err)
	assert.Equal(t, "****", zone.Secret)

	for version := 1; version <= 2; version++ {
		updated, err := repo.Update(ctx, tenant, zone.ID, UpdateRequest{
			Version: version,
			Actions: []Action{act("setDescription", map[string]any{"description": strings.Repeat("d", version)})},
		})
		require.NoError(t, err)
		assert.Equal(t, "****", updated.Secret)

		doc, err := store.Get(tenant, string(TypeZone), zone.ID)
		require.NoError(t, err)
		assert.Equal(t, "s3cr3t", doc.(*testZone).Secret, "stored secret must stay intact after update %d", version)
	}

	page, err := repo.Query(ctx, tenant, QueryParams{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "****", page.Results[0].Secret)
}

func TestRepository_CreateDoesNotAliasDraft(t *testing.T) {
	repo, store := newTestRepo(t)
	ctx := context.Background()

	draft := testZoneDraft{Name: "Europe", Countries: []string{"DE"}, Secret: "s3cr3t"}
	zone, err := repo.Create(ctx, tenant, draft)
	require.NoError(t, err)
	zone.Countries[0] = "XX"
	assert.Equal(t, []string{"DE"}, draft.Countries)

	again, err := repo.Create(ctx, tenant, draft)
	require.NoError(t, err)
	for _, id := range []string{zone.ID, again.ID} {
		doc, err := store.Get(tenant, string(TypeZone), id)
		require.NoError(t, err)
		assert.Equal(t, []string{"DE"}, doc.(*testZone).Countries)
		assert.Equal(t, "s3cr3t", doc.(*testZone).Secret)
	}
}

func TestRepository_QueryMatchesProjectedValues(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe", Secret: "hunter2"})
	require.NoError(t, err)

	tests := []struct {
		where string
		total int
	}{
		{where: `secret = "hunter2"`, total: 0},
		{where: `secret = "wrong"`, total: 0},
		{where: `secret = "****"`, total: 1},
		{where: `name = "Europe"`, total: 1},
	}
	for _, tt := range tests {
		t.Run(tt.where, func(t *testing.T) {
			page, err := repo.Query(ctx, tenant, QueryParams{Where: []string{tt.where}})
			require.NoError(t, err)
			assert.Equal(t, tt.total, page.Total)
		})
	}
}

func TestRepository_ReturnedValuesAreCopies(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe", Countries: []string{"DE"}})
	require.NoError(t, err)

	got, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	got.Name = "mutated"
	got.Countries[0] = "XX"

	again, err := repo.Get(ctx, tenant, zone.ID)
	require.NoError(t, err)
	assert.Equal(t, "Europe", again.Name)
	assert.Equal(t, []string{"DE"}, again.Countries)
}

func TestRepository_Query(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	names := []string{"Charlie", "Alpha", "Echo", "Bravo", "Delta"}
	for i, name := range names {
		_, err := repo.Create(ctx, tenant, testZoneDraft{Key: strings.ToLower(name), Name: name, Countries: []string{string(rune('A' + i))}})
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		params    QueryParams
		wantNames []string
		wantTotal int
		wantLimit int
	}{
		{
			name:      "defaults keep insertion order",
			params:    QueryParams{},
			wantNames: names,
			wantTotal: 5,
			wantLimit: DefaultLimit,
		},
		{
			name:      "where",
			params:    QueryParams{Where: []string{`key = "echo" or key = "alpha"`}},
			wantNames: []string{"Alpha", "Echo"},
			wantTotal: 2,
			wantLimit: DefaultLimit,
		},
		{
			name:      "sort desc",
			params:    QueryParams{Sort: []string{"name desc"}},
			wantNames: []string{"Echo", "Delta", "Charlie", "Bravo", "Alpha"},
			wantTotal: 5,
			wantLimit: DefaultLimit,
		},
		{
			name:      "paginated",
			params:    QueryParams{Sort: []string{"name asc"}, Offset: IntParam(1), Limit: IntParam(2)},
			wantNames: []string{"Bravo", "Charlie"},
			wantTotal: 5,
			wantLimit: 2,
		},
		{
			name:      "offset past the end",
			params:    QueryParams{Offset: IntParam(10)},
			wantNames: []string{},
			wantTotal: 5,
			wantLimit: DefaultLimit,
		},
		{
			name:      "limit clamped",
			params:    QueryParams{Limit: IntParam(10000)},
			wantNames: names,
			wantTotal: 5,
			wantLimit: MaxLimit,
		},
		{
			name:      "no match",
			params:    QueryParams{Where: []string{`name = "Zulu"`}},
			wantNames: []string{},
			wantTotal: 0,
			wantLimit: DefaultLimit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := repo.Query(ctx, tenant, tt.params)
			require.NoError(t, err)

			got := make([]string, 0, len(page.Results))
			for _, z := range page.Results {
				got = append(got, z.Name)
			}
			assert.Equal(t, tt.wantNames, got)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, len(tt.wantNames), page.Count)
			assert.Equal(t, tt.wantLimit, page.Limit)
		})
	}
}

func TestRepository_QueryInvalidPredicate(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Query(context.Background(), tenant, QueryParams{Where: []string{`name = = "x"`}})
	var ii *InvalidInputError
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "where", ii.Field)

	_, err = repo.Query(context.Background(), tenant, QueryParams{Sort: []string{"name upwards"}})
	require.ErrorAs(t, err, &ii)
	assert.Equal(t, "sort", ii.Field)
}

func TestRepository_Delete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	zone, err := repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe", Secret: "s3cr3t"})
	require.NoError(t, err)

	_, err = repo.Delete(ctx, tenant, zone.ID, IntParam(2))
	var cm *ConcurrentModificationError
	require.ErrorAs(t, err, &cm)

	deleted, err := repo.Delete(ctx, tenant, zone.ID, IntParam(1))
	require.NoError(t, err)
	assert.Equal(t, zone.ID, deleted.ID)
	assert.Equal(t, "****", deleted.Secret)

	var nf *NotFoundError
	_, err = repo.Get(ctx, tenant, zone.ID)
	assert.ErrorAs(t, err, &nf)
	_, err = repo.GetByKey(ctx, tenant, "EU")
	assert.ErrorAs(t, err, &nf)
	_, err = repo.Delete(ctx, tenant, zone.ID, nil)
	assert.ErrorAs(t, err, &nf)

	// The key is free again.
	_, err = repo.Create(ctx, tenant, testZoneDraft{Key: "EU", Name: "Europe"})
	assert.NoError(t, err)
}

func TestRepository_EmptyTenant(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Create(context.Background(), "", testZoneDraft{Name: "Europe"})
	var ii *InvalidInputError
	assert.ErrorAs(t, err, &ii)
}

func TestRepository_CancelledContext(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, tenant, testZoneDraft{Name: "Europe"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewAction(t *testing.T) {
	a, err := NewAction("setKey", map[string]any{"key": "EU"})
	require.NoError(t, err)
	assert.Equal(t, ActionName("setKey"), a.Name)
	assert.JSONEq(t, `{"action": "setKey", "key": "EU"}`, string(a.Payload))

	_, err = NewAction("setKey", map[string]any{"key": make(chan int)})
	assert.Error(t, err)
}
