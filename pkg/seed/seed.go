// Package seed loads fixture files into the repositories at startup.
//
// A fixture file is YAML (or JSON) holding one fixture or a list of them:
//
//	# fixtures/discounts.yaml
//	- project: demo
//	  type: cart-discount
//	  draft:
//	    key: ten-percent
//	    name: {en: "10% off"}
//	    value: {type: relative, permyriad: 1000}
//	    cartPredicate: "1 = 1"
//	    target: {type: lineItems, predicate: "true"}
//	    sortOrder: "0.1"
//	- project: demo
//	  type: discount-code
//	  draft:
//	    code: SAVE10
//	    cartDiscounts: [{typeId: cart-discount, key: ten-percent}]
//
// type accepts a type id or its URL path. Setting import: true on an order
// fixture imports it instead of creating it from a cart. Fixtures are applied
// in file order, and files in sorted path order, so later fixtures may
// reference earlier ones.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/commercemock/pkg/logging"
	"github.com/getmockd/commercemock/pkg/repository"
)

// ErrNoFixtures is returned when a fixture file is empty.
var ErrNoFixtures = errors.New("file contains no fixtures")

// Fixture is one resource to create.
type Fixture struct {
	Project string `yaml:"project" json:"project"`
	Type    string `yaml:"type" json:"type"`
	Import  bool   `yaml:"import,omitempty" json:"import,omitempty"`
	Draft   any    `yaml:"draft" json:"draft"`
}

// File holds the fixtures parsed from one path.
type File struct {
	Path     string
	Fixtures []Fixture
}

// Loader applies fixtures to a registry.
type Loader struct {
	registry *repository.Registry
	log      *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(registry *repository.Registry, log *slog.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{registry: registry, log: log}
}

// Expand resolves paths and doublestar globs to a sorted, de-duplicated file
// list. A literal path must exist; a glob may match nothing.
func Expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			if _, err := os.Stat(pattern); err != nil {
				return nil, fmt.Errorf("seed file %s: %w", pattern, err)
			}
			if !seen[pattern] {
				seen[pattern] = true
				files = append(files, pattern)
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding glob pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ParseFile reads the fixtures of one file.
func ParseFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	fixtures, err := Parse(data)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return File{Path: path, Fixtures: fixtures}, nil
}

// Parse decodes a single fixture or a list of fixtures. JSON input is
// accepted as YAML.
func Parse(data []byte) ([]Fixture, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, ErrNoFixtures
	}

	var fixtures []Fixture
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&fixtures); err != nil {
			return nil, fmt.Errorf("invalid fixture list: %w", err)
		}
	case yaml.MappingNode:
		var f Fixture
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("invalid fixture: %w", err)
		}
		fixtures = []Fixture{f}
	default:
		return nil, fmt.Errorf("line %d: expected a fixture or a list of fixtures", root.Line)
	}
	if len(fixtures) == 0 {
		return nil, ErrNoFixtures
	}

	for i, f := range fixtures {
		if err := f.validate(); err != nil {
			return nil, fmt.Errorf("fixture %d: %w", i, err)
		}
	}
	return fixtures, nil
}

func (f Fixture) validate() error {
	switch {
	case f.Project == "":
		return errors.New("project is required")
	case f.Type == "":
		return errors.New("type is required")
	case f.Draft == nil:
		return errors.New("draft is required")
	}
	return nil
}

// ReadFiles expands patterns and parses the matching files concurrently.
// Files are returned in sorted path order.
func ReadFiles(ctx context.Context, patterns []string) ([]File, error) {
	paths, err := Expand(patterns)
	if err != nil {
		return nil, err
	}

	files := make([]File, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := ParseFile(path)
			if err != nil {
				return err
			}
			files[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

// Check reports fixtures whose type is not registered.
func (l *Loader) Check(files []File) error {
	var errs []error
	for _, file := range files {
		for i, f := range file.Fixtures {
			svc, err := l.service(f.Type)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: fixture %d: %w", file.Path, i, err))
				continue
			}
			if _, ok := svc.(repository.Importer); f.Import && !ok {
				errs = append(errs, fmt.Errorf("%s: fixture %d: type %q does not support import", file.Path, i, f.Type))
			}
		}
	}
	return errors.Join(errs...)
}

// Apply creates the fixtures in order and returns how many were created.
// It stops at the first failure.
func (l *Loader) Apply(ctx context.Context, files []File) (int, error) {
	created := 0
	for _, file := range files {
		for i, f := range file.Fixtures {
			if err := l.apply(ctx, f); err != nil {
				return created, fmt.Errorf("%s: fixture %d (%s): %w", file.Path, i, f.Type, err)
			}
			created++
		}
		l.log.Debug("seed file applied", "path", file.Path, "fixtures", len(file.Fixtures))
	}
	return created, nil
}

// Load reads the files matching patterns and applies them.
func (l *Loader) Load(ctx context.Context, patterns []string) (int, error) {
	if len(patterns) == 0 {
		return 0, nil
	}
	files, err := ReadFiles(ctx, patterns)
	if err != nil {
		return 0, err
	}
	if err := l.Check(files); err != nil {
		return 0, err
	}
	n, err := l.Apply(ctx, files)
	if err != nil {
		return n, err
	}
	l.log.Info("seed fixtures loaded", "files", len(files), "resources", n)
	return n, nil
}

func (l *Loader) apply(ctx context.Context, f Fixture) error {
	svc, err := l.service(f.Type)
	if err != nil {
		return err
	}
	body, err := json.Marshal(f.Draft)
	if err != nil {
		return fmt.Errorf("draft cannot be encoded as JSON: %w", err)
	}

	if f.Import {
		importer, ok := svc.(repository.Importer)
		if !ok {
			return fmt.Errorf("type %q does not support import", f.Type)
		}
		_, err = importer.Import(ctx, f.Project, body)
		return err
	}
	_, err = svc.Create(ctx, f.Project, body)
	return err
}

func (l *Loader) service(name string) (repository.Service, error) {
	if svc, ok := l.registry.Service(repository.TypeID(name)); ok {
		return svc, nil
	}
	if svc, ok := l.registry.ByPath(name); ok {
		return svc, nil
	}
	return nil, fmt.Errorf("unknown resource type %q", name)
}
