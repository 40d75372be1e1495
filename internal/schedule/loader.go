package schedule

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mnogodumalon/schichtplan/internal/livingapps"
)

// RecordStore is the slice of the record store client the scheduling core
// depends on. *livingapps.Client satisfies it; tests substitute fakes.
type RecordStore interface {
	List(ctx context.Context, appID string) ([]livingapps.Record, error)
	Get(ctx context.Context, appID, recordID string) (*livingapps.Record, error)
	Create(ctx context.Context, appID string, fields map[string]string) (string, error)
	Update(ctx context.Context, appID, recordID string, fields map[string]string) error
	Delete(ctx context.Context, appID, recordID string) error
}

// Snapshot is the loader's observable state: the four collections, their
// lookup indexes, and the outcome of the most recent completed load.
// Collections and indexes are treated as read-only by all consumers.
type Snapshot struct {
	Companies   []livingapps.Record
	ShiftTypes  []livingapps.Record
	Employees   []livingapps.Record
	Assignments []livingapps.Record
	Indexes     Indexes
	Loading     bool
	Err         error
	Loaded      bool
}

// Loader fetches the four collections as a unit. A refresh either replaces
// all four collections and rebuilds all three indexes, or - on any fetch
// failure - leaves every previously held collection untouched and records
// the error. Overlapping refreshes are allowed; the last one to complete
// determines the observed state.
type Loader struct {
	store RecordStore
	cols  Collections

	mu        sync.Mutex
	snap      Snapshot
	issued    uint64
	completed uint64
	inFlight  int
}

func NewLoader(store RecordStore, cols Collections) *Loader {
	return &Loader{store: store, cols: cols}
}

// Snapshot returns the current state. The contained slices and maps must
// not be mutated by the caller.
func (l *Loader) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Refresh re-fetches all four collections concurrently and commits the
// result atomically. A failed fetch does not cancel its siblings; all four
// run to completion before the outcome is recorded. Refresh returns the
// snapshot as observed after this call completed, which may belong to a
// newer call that finished first.
func (l *Loader) Refresh(ctx context.Context) (Snapshot, error) {
	l.mu.Lock()
	l.issued++
	generation := l.issued
	l.inFlight++
	l.snap.Loading = true
	l.mu.Unlock()

	var companies, shiftTypes, employees, assignments []livingapps.Record

	var g errgroup.Group
	g.Go(func() error {
		var err error
		if companies, err = l.fetch(ctx, l.cols.Companies, CompanySchema); err != nil {
			return fmt.Errorf("load companies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if shiftTypes, err = l.fetch(ctx, l.cols.ShiftTypes, ShiftTypeSchema); err != nil {
			return fmt.Errorf("load shift types: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if employees, err = l.fetch(ctx, l.cols.Employees, EmployeeSchema); err != nil {
			return fmt.Errorf("load employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if assignments, err = l.fetch(ctx, l.cols.Assignments, AssignmentSchema); err != nil {
			return fmt.Errorf("load assignments: %w", err)
		}
		return nil
	})
	err := g.Wait()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.inFlight--
	stale := generation <= l.completed
	if !stale {
		l.completed = generation
		l.snap.Loading = l.inFlight > 0
		if err != nil {
			l.snap.Err = err
		} else {
			l.snap.Companies = companies
			l.snap.ShiftTypes = shiftTypes
			l.snap.Employees = employees
			l.snap.Assignments = assignments
			l.snap.Indexes = Indexes{
				Employees:  BuildIndex(employees),
				Companies:  BuildIndex(companies),
				ShiftTypes: BuildIndex(shiftTypes),
			}
			l.snap.Err = nil
			l.snap.Loaded = true
		}
	}
	if l.inFlight == 0 {
		l.snap.Loading = false
	}

	return l.snap, err
}

func (l *Loader) fetch(ctx context.Context, appID string, schema Schema) ([]livingapps.Record, error) {
	records, err := l.store.List(ctx, appID)
	if err != nil {
		return nil, err
	}
	normalized := make([]livingapps.Record, 0, len(records))
	for _, record := range records {
		normalized = append(normalized, schema.Normalize(record))
	}
	return normalized, nil
}
