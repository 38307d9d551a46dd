/*
Package domain contains the core models shared by the planner, the navigation domain and
the adapters.

It is kept pure and free of I/O: the world snapshot the planner reasons about, the task
literals it rewrites, the plans and mission records it produces, and the sentinel errors
and lifecycle hooks that cross package boundaries.

# Key Entities

  - WorldState: a snapshot of robot/box positions, door statuses and the carried box, plus
    the search-local bookkeeping used while looking for a door route.
  - Task: a name plus ordered arguments. Used for both compound and primitive tasks.
  - Plan: the flat ordered sequence of primitive tasks produced by the planner.
  - Mission: the record of one sense-plan-act invocation.
*/
package domain
