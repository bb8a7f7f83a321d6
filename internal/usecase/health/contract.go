package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks page cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
