// Package domain defines the boundary between the analytics engines and
// whatever system owns the operational data.
package domain

import (
	"context"

	"github.com/smallbiznis/vendhub/internal/record"
)

// Dataset is one coherent pull of raw operational rows plus the display-name
// lookups the reports need. Rows are loosely typed on purpose; the record
// package normalizes them.
type Dataset struct {
	Sales     []record.Raw
	Snapshots []record.Raw
	Runs      []record.Raw
	Stops     []record.Raw
	Prospects []record.Raw

	MachineNames record.NameLookup
	ProductNames record.NameLookup
}

// Provider fetches the current dataset from the upstream system of record.
type Provider interface {
	Fetch(ctx context.Context) (Dataset, error)
}
