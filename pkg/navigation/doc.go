/*
Package navigation defines the robot domain: operators that move the robot, cross and
toggle doors, and pick up or put down boxes, plus the methods that decompose
navigate_to, move_in_room, cross_door, open_door, fetch and transport.

Route search across rooms relies on search-local bookkeeping in the world state: every
door chosen by navigate_through_door is marked attempted, so a branch never crosses the
same door twice and a dead end backtracks into the next door; navigate_retry keeps the
search going while the robot's room has untried doors. The bookkeeping is reset whenever
a navigate_to search starts for a different goal, and by the planner between top-level
tasks.

	m := worldmap.Default()
	planner := htn.NewPlanner(navigation.MustDomain(m))
	plan, err := planner.Plan(ctx, m.InitialState(), []domain.Task{navigation.Transport("box1", "p9")})
*/
package navigation
