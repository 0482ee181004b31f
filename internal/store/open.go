package store

import (
	"context"
	"fmt"
)

// Store drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

// Open builds the store named by driver. The returned close function releases
// the database pool, if any, and is never nil.
func Open(ctx context.Context, driver, dataDir, databaseURL string) (Store, func(), error) {
	switch driver {
	case DriverMemory:
		return NewMemory(), func() {}, nil
	case DriverFile:
		f, err := NewFile(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	case DriverPostgres:
		pool, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgres(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", driver)
}
