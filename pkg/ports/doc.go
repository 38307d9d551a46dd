/*
Package ports defines the driven ports (interfaces) around the planner.

These interfaces decouple planning from the robot and from persistence, so the same
sense-plan-act loop runs against the simulator, a real robot bridge, or a test double.

# Key Interfaces

  - Sensor: reads the live world and builds a WorldState with empty search bookkeeping.
  - Executor: performs primitive tasks on the robot, one step at a time.
  - Planner: turns a WorldState and a task list into a Plan.
  - MissionStore: persists mission records (memory, Redis).
  - DistributedLocker: serialises missions of one robot across instances.
*/
package ports
