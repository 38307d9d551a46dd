/*
Package waypoint is an HTN (hierarchical task network) planner and sense-plan-act runtime for a mobile robot that navigates a multi-room map and moves boxes around.

A task such as "bring box1 to p9" is decomposed, method by method, into primitive actions the robot can execute: move inside a room, cross a door, open or close a door, pick up or put down a box. Search is depth-first and left to right with backtracking, so the first valid decomposition wins.

# Concept

The map (rooms, points, doors, boxes) is static configuration. The world state (where the robot and the boxes are, which doors are open) is read once from the environment before planning. The engine plans; your application ("Host") senses and executes through the ports.Sensor and ports.Executor interfaces. The bundled simulator implements both.

# Key Features

  - Explicit domain: operators and methods are registered on an htn.Domain, no globals.
  - Loop-free route search: doors already tried on a branch are never retried.
  - Closed doors: opened, crossed and closed again, so door status is restored.
  - Mission records: every run yields a domain.Mission with plan, outcome and world changes.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/waypoint"
		"github.com/aretw0/waypoint/pkg/adapters/simulator"
		"github.com/aretw0/waypoint/pkg/navigation"
	)

	func main() {
		eng, err := waypoint.New()
		if err != nil {
			log.Fatal(err)
		}

		// Plan only
		plan, err := eng.Plan(context.Background(), nil, navigation.Transport("box1", "p9"))
		if err != nil {
			log.Fatal(err)
		}
		log.Println(plan.Strings())

		// Sense, plan and act against the simulator
		sim := simulator.New(eng.Map())
		r, err := eng.Runner(sim, sim)
		if err != nil {
			log.Fatal(err)
		}
		mission, err := r.Run(context.Background(), navigation.NavigateTo("p8"))
		if err != nil {
			log.Fatal(err)
		}
		log.Println(mission.Outcome)
	}
*/
package waypoint
