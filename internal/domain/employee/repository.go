package employee

import "context"

// EmployeeRepository stores the normalized collection, one document per
// employee, plus the tombstone set of deliberately deleted identifiers.
type EmployeeRepository interface {
	List(ctx context.Context) ([]Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)

	// UpsertMany writes every employee; existing documents are replaced.
	UpsertMany(ctx context.Context, employees []Employee) error
	Delete(ctx context.Context, id string) error

	ListTombstones(ctx context.Context) (Tombstones, error)
	AddTombstone(ctx context.Context, id string) error
	RemoveTombstones(ctx context.Context, ids []string) error
}

// Tombstones is the set of suppressed identifiers.
type Tombstones map[string]struct{}

func (t Tombstones) Has(id string) bool {
	_, ok := t[id]
	return ok
}
