package peripheral

import (
	"context"
	"errors"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"omibyte.io/regview/memio"
)

// Less orders pinned peripherals first, then by group name and name.
func Less(a, b *Peripheral) bool {
	if a.pinned != b.pinned {
		return a.pinned
	}
	if a.groupName != b.groupName {
		return a.groupName < b.groupName
	}
	return a.name < b.name
}

// Sort orders peripherals for display.
func Sort(peripherals []*Peripheral) {
	slices.SortStableFunc(peripherals, Less)
}

// RefreshAll updates every expanded peripheral. The peripherals are updated
// in parallel, at most concurrency at a time when concurrency is positive. A
// failing peripheral does not stop the others. The returned error joins the
// errors of every peripheral that failed.
func RefreshAll(ctx context.Context, r memio.Reader, peripherals []*Peripheral, concurrency int) error {
	var g errgroup.Group
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	errs := make([]error, len(peripherals))
	for i, p := range peripherals {
		i, p := i, p
		g.Go(func() error {
			_, errs[i] = p.UpdateData(ctx, r)
			return nil
		})
	}
	g.Wait()

	return errors.Join(errs...)
}
