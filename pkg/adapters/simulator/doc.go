// Package simulator provides an in-process robot and live map implementing both
// ports.Sensor and ports.Executor.
//
// Every action is validated against the map: moves follow the adjacency of the map and
// never pass a closed door, a box can only be picked up where it lies, and only the
// carried box can be put down. With a dynamic world the uncarried boxes are reshuffled
// at random after each move, which makes plans computed beforehand go stale.
package simulator
