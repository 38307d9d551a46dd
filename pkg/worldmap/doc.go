// Package worldmap holds the static topology the robot plans over: rooms and their
// points, doors with their initial status, and the initial placement of boxes.
// Maps are loaded from YAML; Default returns the built-in three-room map.
package worldmap
