// Package delivery defines the contract shared by every long-running entry point.
package delivery

import "context"

// Delivery is a component that serves until its context is cancelled or it is stopped.
type Delivery interface {
	Serve(ctx context.Context) error
}
