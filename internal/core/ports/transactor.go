package ports

import "context"

// Transactor runs fn inside a single atomic unit of work. Repository calls
// made with the context passed to fn join the same transaction; if fn
// returns an error nothing is persisted.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
