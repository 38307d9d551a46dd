package middleware

import "github.com/aretw0/waypoint/pkg/ports"

// Middleware allows wrapping a MissionStore to add behavior.
type Middleware func(ports.MissionStore) ports.MissionStore

// Chain applies middlewares to store; the first one is the outermost.
func Chain(store ports.MissionStore, mws ...Middleware) ports.MissionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
