// Package process bridges waypoint to a real robot through local commands: one allow-listed
// command per operator, plus an optional sense command that reports the world as JSON.
package process
