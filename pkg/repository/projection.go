package repository

// Projection transforms a resource on its way out of the engine, for example
// to mask a secret. It receives a private copy and must not fail.
type Projection[T any] func(T) T

// Projector is implemented by kinds that register projections. The chain
// runs in order after every create, get, query and update.
type Projector[T any] interface {
	Projections() []Projection[T]
}

func project[T any](chain []Projection[T], v T) T {
	for _, p := range chain {
		v = p(v)
	}
	return v
}
