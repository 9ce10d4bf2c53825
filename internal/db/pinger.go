package db

import "context"

// Pinger permite al health check consultar el estado del almacenamiento.
type Pinger interface {
	Ping(ctx context.Context) error
}
