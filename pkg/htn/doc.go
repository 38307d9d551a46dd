/*
Package htn implements a hierarchical task network planner.

A Domain owns two tables: operators (primitive tasks, state transformers) and methods
(ordered decomposition rules for compound tasks). A Planner rewrites a task list into a
flat Plan of operator calls by recursive depth-first decomposition, backtracking over
alternative methods when a branch fails.

	d := htn.NewDomain("blocks")
	_ = d.DeclareOperator("moveto", moveTo)
	_ = d.DeclareMethods("navigate_to",
		htn.Method{Name: "already_there", Fn: alreadyThere},
		htn.Method{Name: "walk", Fn: walk},
	)

	plan, err := htn.NewPlanner(d).Plan(ctx, state, []domain.Task{domain.NewTask("navigate_to", "p9")})
	if errors.Is(err, domain.ErrNoPlan) {
		// expected outcome: nothing applies
	}

The planner imposes no depth bound of its own; recursive domains must break their own
loops. Callers may still bound the search with WithMaxDepth or a context deadline.
*/
package htn
