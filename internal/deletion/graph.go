package deletion

import (
	"fmt"
	"sort"
	"strings"
)

// RootTable anchors the dependency graph. Every edge must reach it through
// its parent chain.
const RootTable = "users"

// Edge declares that rows in Table reference Parent through FKColumn. The
// whole cascade is described by edges alone; execution order and the DELETE
// statements are derived, never hand-maintained.
type Edge struct {
	Table    string
	FKColumn string
	Parent   string
}

// DefaultEdges lists every table holding rows owned (directly or through a
// parent) by a user. audit_logs is deliberately absent: the trail outlives
// the account it describes.
func DefaultEdges() []Edge {
	return []Edge{
		{Table: "profiles", FKColumn: "user_id", Parent: RootTable},
		{Table: "role_assignments", FKColumn: "user_id", Parent: RootTable},
		{Table: "carts", FKColumn: "user_id", Parent: RootTable},
		{Table: "cart_items", FKColumn: "cart_id", Parent: "carts"},
		{Table: "orders", FKColumn: "user_id", Parent: RootTable},
		{Table: "order_items", FKColumn: "order_id", Parent: "orders"},
		{Table: "projects", FKColumn: "user_id", Parent: RootTable},
		{Table: "project_updates", FKColumn: "project_id", Parent: "projects"},
		{Table: "project_milestones", FKColumn: "project_id", Parent: "projects"},
		{Table: "project_forms", FKColumn: "project_id", Parent: "projects"},
		{Table: "conversations", FKColumn: "user_id", Parent: RootTable},
		{Table: "chat_messages", FKColumn: "conversation_id", Parent: "conversations"},
		{Table: "chat_ratings", FKColumn: "conversation_id", Parent: "conversations"},
		{Table: "subscriptions", FKColumn: "user_id", Parent: RootTable},
		{Table: "tax_info", FKColumn: "user_id", Parent: RootTable},
		{Table: "privacy_settings", FKColumn: "user_id", Parent: RootTable},
		{Table: "user_modules", FKColumn: "user_id", Parent: RootTable},
		{Table: "questionnaires", FKColumn: "user_id", Parent: RootTable},
		{Table: "user_activity_logs", FKColumn: "user_id", Parent: RootTable},
	}
}

// Step is one derived DELETE against a dependent table. SQL takes a single
// parameter, the root user id.
type Step struct {
	Table  string
	SQL    string
	Depth  int
	Policy StepPolicy
}

// BuildPlan turns edges into an ordered list of steps: children always before
// parents (deepest first), ties broken by table name so the order is stable
// across runs. The root table is not part of the plan; the executor handles
// it under its own policy.
func BuildPlan(edges []Edge) ([]Step, error) {
	byTable := make(map[string]Edge, len(edges))
	for _, edge := range edges {
		if edge.Table == RootTable {
			return nil, fmt.Errorf("deletion: edge for root table %q is not allowed", RootTable)
		}
		if edge.Table == "" || edge.FKColumn == "" || edge.Parent == "" {
			return nil, fmt.Errorf("deletion: incomplete edge %+v", edge)
		}
		if _, dup := byTable[edge.Table]; dup {
			return nil, fmt.Errorf("deletion: duplicate edge for table %q", edge.Table)
		}
		byTable[edge.Table] = edge
	}

	steps := make([]Step, 0, len(edges))
	for _, edge := range edges {
		chain, err := chainToRoot(edge, byTable)
		if err != nil {
			return nil, err
		}
		steps = append(steps, Step{
			Table:  edge.Table,
			SQL:    deleteSQL(chain),
			Depth:  len(chain),
			Policy: PolicyBestEffort,
		})
	}

	sort.Slice(steps, func(i, j int) bool {
		if steps[i].Depth != steps[j].Depth {
			return steps[i].Depth > steps[j].Depth
		}
		return steps[i].Table < steps[j].Table
	})
	return steps, nil
}

// chainToRoot walks edge -> parent -> ... -> root and returns the edges on
// the way, outermost first.
func chainToRoot(edge Edge, byTable map[string]Edge) ([]Edge, error) {
	chain := []Edge{edge}
	seen := map[string]bool{edge.Table: true}

	current := edge
	for current.Parent != RootTable {
		parent, ok := byTable[current.Parent]
		if !ok {
			return nil, fmt.Errorf("deletion: table %q references unknown parent %q", current.Table, current.Parent)
		}
		if seen[parent.Table] {
			return nil, fmt.Errorf("deletion: cycle through table %q", parent.Table)
		}
		seen[parent.Table] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// deleteSQL renders the nested-subquery DELETE for a chain. A direct child
// of the root compares its FK to the parameter; deeper tables select their
// parent ids level by level until the innermost subquery hits the root FK.
func deleteSQL(chain []Edge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "DELETE FROM %s WHERE %s", chain[0].Table, chain[0].FKColumn)

	for _, edge := range chain[1:] {
		fmt.Fprintf(&b, " IN (SELECT id FROM %s WHERE %s", edge.Table, edge.FKColumn)
	}
	b.WriteString(" = ?")
	b.WriteString(strings.Repeat(")", len(chain)-1))
	return b.String()
}
