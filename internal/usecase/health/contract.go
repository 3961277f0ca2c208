package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	PingContext(ctx context.Context) error
}
