package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/commercemock/internal/storage"
	"github.com/getmockd/commercemock/pkg/repository"
	"github.com/getmockd/commercemock/pkg/resources"
)

const discounts = `
- project: demo
  type: cart-discount
  draft:
    key: ten-percent
    name: {en: "10% off"}
    value: {type: relative, permyriad: 1000}
    cartPredicate: "1 = 1"
    target: {type: lineItems, predicate: "true"}
    sortOrder: "0.1"
- project: demo
  type: discount-codes
  draft:
    code: SAVE10
    cartDiscounts: [{typeId: cart-discount, key: ten-percent}]
`

const zone = `{"project": "demo", "type": "zone", "draft": {"key": "eu", "name": "Europe"}}`

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newLoader(t *testing.T) (*Loader, *repository.Registry) {
	t.Helper()
	reg, err := resources.NewRegistry(storage.NewMemoryStore(), resources.Options{StrictDrafts: true})
	require.NoError(t, err)
	return NewLoader(reg, nil), reg
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "list", input: discounts, want: 2},
		{name: "single mapping", input: zone, want: 1},
		{name: "empty", input: "", wantErr: true},
		{name: "empty list", input: "[]", wantErr: true},
		{name: "scalar", input: "hello", wantErr: true},
		{name: "missing project", input: `{"type": "zone", "draft": {}}`, wantErr: true},
		{name: "missing type", input: `{"project": "demo", "draft": {}}`, wantErr: true},
		{name: "missing draft", input: `{"project": "demo", "type": "zone"}`, wantErr: true},
		{name: "invalid yaml", input: "- project: [demo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixtures, err := Parse([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, fixtures, tt.want)
		})
	}
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.yaml", zone)
	b := writeFixture(t, dir, "nested/deep/b.yaml", zone)
	writeFixture(t, dir, "nested/notes.txt", "ignored")

	files, err := Expand([]string{filepath.Join(dir, "**", "*.yaml"), a})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	files, err = Expand([]string{filepath.Join(dir, "*.json")})
	require.NoError(t, err)
	assert.Empty(t, files, "a glob may match nothing")

	_, err = Expand([]string{filepath.Join(dir, "missing.yaml")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "01-discounts.yaml", discounts)
	writeFixture(t, dir, "02-zone.json", zone)
	writeFixture(t, dir, "03-orders.yaml", `
project: other
type: order
import: true
draft:
  orderNumber: "1001"
  totalPrice: {currencyCode: EUR, centAmount: 1000}
`)

	loader, reg := newLoader(t)
	n, err := loader.Load(context.Background(), []string{filepath.Join(dir, "*.{yaml,json}")})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	assert.Equal(t, 1, reg.Count("demo", repository.TypeCartDiscount))
	assert.Equal(t, 1, reg.Count("demo", repository.TypeDiscountCode))
	assert.Equal(t, 1, reg.Count("demo", repository.TypeZone))
	assert.Equal(t, 1, reg.Count("other", repository.TypeOrder))

	codes, _ := reg.Service(repository.TypeDiscountCode)
	out, err := codes.GetByKey(context.Background(), "demo", "SAVE10")
	require.NoError(t, err)
	code := out.(*resources.DiscountCode)
	require.Len(t, code.CartDiscounts, 1)
	assert.NotEmpty(t, code.CartDiscounts[0].ID)
}

func TestLoader_NoPatterns(t *testing.T) {
	loader, _ := newLoader(t)
	n, err := loader.Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoader_CheckRejectsUnknownTypes(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "bad.yaml", `
- {project: demo, type: product, draft: {}}
- {project: demo, type: zone, import: true, draft: {name: x}}
`)

	loader, reg := newLoader(t)
	_, err := loader.Load(context.Background(), []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown resource type "product"`)
	assert.Contains(t, err.Error(), "does not support import")
	assert.Empty(t, reg.Tenants(), "nothing is applied when the check fails")
}

func TestLoader_StopsAtFirstFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "zones.yaml", `
- {project: demo, type: zone, draft: {key: eu, name: Europe}}
- {project: demo, type: zone, draft: {key: eu, name: Duplicate}}
- {project: demo, type: zone, draft: {key: us, name: America}}
`)

	loader, reg := newLoader(t)
	n, err := loader.Load(context.Background(), []string{path})
	assert.Equal(t, 1, n)
	var dup *repository.DuplicateFieldError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, reg.Count("demo", repository.TypeZone))
}

func TestReadFiles_ReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "good.yaml", zone)
	writeFixture(t, dir, "bad.yaml", "- project: [")

	_, err := ReadFiles(context.Background(), []string{filepath.Join(dir, "*.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}
