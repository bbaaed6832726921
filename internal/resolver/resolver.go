package resolver

import (
	"fmt"
	"sort"
	"strings"

	goversion "github.com/hashicorp/go-version"

	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/registry"
)

/**
 * Raised by InstallOrder when the induced subgraph has a cycle
 * @description No partial order exists, so this is an error rather than a report entry
 */
type CircularDependencyError struct {
	Remaining []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency among components: %s", strings.Join(e.Remaining, ", "))
}

/**
 * Graph algorithms over the component registry
 * @description Stateless; every call reads the registry's current contents
 */
type Resolver struct {
	reg *registry.Registry
}

func New(reg *registry.Registry) *Resolver {
	return &Resolver{reg: reg}
}

/**
 * Resolve the deduplicated transitive dependency closure of a component
 * @param {string} id - Root component id (excluded from the result)
 * @returns {[]string} Dependency ids in BFS discovery order
 * @returns {error} registry.ErrComponentNotFound when the root is unregistered
 */
func (r *Resolver) Resolve(id string) ([]string, error) {
	root, ok := r.reg.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
	}
	seen := map[string]bool{id: true}
	var order []string
	queue := append([]string(nil), root.Dependencies...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		order = append(order, next)
		if def, ok := r.reg.Get(next); ok {
			queue = append(queue, def.Dependencies...)
		}
	}
	return order, nil
}

/**
 * Validate an arbitrary id set against the registry
 * @param {[]string} ids - Component ids to validate
 * @returns {models.ValidationReport} {valid, errors, warnings}
 * @description
 * - MISSING_DEPENDENCY for any id, direct or transitive, absent from the registry
 * - CIRCULAR_DEPENDENCY detected via DFS with an on-stack marker
 * - VERSION_CONFLICT warning when two reachable components share a name but
 *   differ in version
 */
func (r *Resolver) Validate(ids []string) models.ValidationReport {
	report := models.ValidationReport{Valid: true}

	reachable := r.collectReachable(ids, &report)
	r.detectCycles(ids, &report)
	r.detectVersionConflicts(reachable, &report)

	report.Valid = len(report.Errors) == 0
	return report
}

// collectReachable walks the closure of ids, reporting every unregistered id
// it encounters and returning the registered reachable definitions.
func (r *Resolver) collectReachable(ids []string, report *models.ValidationReport) []models.ComponentDefinition {
	seen := make(map[string]bool)
	missing := make(map[string]bool)
	var defs []models.ComponentDefinition
	queue := append([]string(nil), ids...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		def, ok := r.reg.Get(id)
		if !ok {
			if !missing[id] {
				missing[id] = true
				report.Errors = append(report.Errors, models.ValidationIssue{
					Code:        models.CodeMissingDependency,
					ComponentID: id,
					Message:     fmt.Sprintf("component '%s' is not registered", id),
				})
			}
			continue
		}
		defs = append(defs, def)
		queue = append(queue, def.Dependencies...)
	}
	return defs
}

// detectCycles runs DFS from each id with an on-stack marker. Unregistered
// nodes terminate a path; they were already reported as missing.
func (r *Resolver) detectCycles(ids []string, report *models.ValidationReport) {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make(map[string]int)
	reported := make(map[string]bool)

	var visit func(id string, path []string)
	visit = func(id string, path []string) {
		switch state[id] {
		case done:
			return
		case onStack:
			if !reported[id] {
				reported[id] = true
				report.Errors = append(report.Errors, models.ValidationIssue{
					Code:        models.CodeCircularDependency,
					ComponentID: id,
					Message:     fmt.Sprintf("circular dependency: %s -> %s", strings.Join(path, " -> "), id),
				})
			}
			return
		}
		def, ok := r.reg.Get(id)
		if !ok {
			state[id] = done
			return
		}
		state[id] = onStack
		// Each frame recurses over its own copy so sibling branches never
		// share the slice backing the reported path.
		next := append(append([]string(nil), path...), id)
		for _, dep := range def.Dependencies {
			visit(dep, next)
		}
		state[id] = done
	}

	for _, id := range ids {
		visit(id, nil)
	}
}

// detectVersionConflicts warns when reachable components share a name with
// differing versions. go-version decides inequality; unparseable versions
// fall back to string comparison.
func (r *Resolver) detectVersionConflicts(defs []models.ComponentDefinition, report *models.ValidationReport) {
	byName := make(map[string][]models.ComponentDefinition)
	for _, def := range defs {
		byName[def.Name] = append(byName[def.Name], def)
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		group := byName[name]
		for i := 1; i < len(group); i++ {
			if versionsDiffer(group[0].Version, group[i].Version) {
				report.Warnings = append(report.Warnings, models.ValidationIssue{
					Code:        models.CodeVersionConflict,
					ComponentID: group[i].ID,
					Message: fmt.Sprintf("components '%s' and '%s' share name '%s' with versions %s and %s",
						group[0].ID, group[i].ID, name, group[0].Version, group[i].Version),
				})
			}
		}
	}
}

func versionsDiffer(a, b string) bool {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA != nil || errB != nil {
		return a != b
	}
	return !va.Equal(vb)
}

/**
 * Topological install order over the induced subgraph (Kahn's algorithm)
 * @param {[]string} ids - Components to order; edges outside the set are ignored
 * @returns {[]string} A permutation of ids with every dependency before its dependents
 * @returns {error} *CircularDependencyError when no order exists,
 *   registry.ErrComponentNotFound when an id is unregistered
 */
func (r *Resolver) InstallOrder(ids []string) ([]string, error) {
	inSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		inSet[id] = true
	}
	indegree := make(map[string]int, len(ids))
	dependents := make(map[string][]string)
	for _, id := range ids {
		def, ok := r.reg.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
		}
		if _, seen := indegree[id]; seen {
			continue
		}
		indegree[id] = 0
		for _, dep := range def.Dependencies {
			if inSet[dep] && dep != id {
				dependents[dep] = append(dependents[dep], id)
				indegree[id]++
			}
		}
	}

	var ready []string
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
			indegree[id] = -1 // consumed
		}
	}

	order := make([]string, 0, len(indegree))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, dep := range dependents[id] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
				indegree[dep] = -1
			}
		}
	}

	if len(order) < len(indegree) {
		var remaining []string
		for id, deg := range indegree {
			if deg >= 0 {
				remaining = append(remaining, id)
			}
		}
		sort.Strings(remaining)
		return nil, &CircularDependencyError{Remaining: remaining}
	}
	return order, nil
}

/**
 * Build the recursive dependency tree of a component
 * @returns {*models.DependencyNode} Tree mirroring direct edges; shared
 *   dependencies repeat across branches (no deduplication)
 * @description Unregistered children appear as id-only leaves; a dependency
 *   edge back onto the current path is an error since the tree would not terminate
 */
func (r *Resolver) DependencyTree(id string) (*models.DependencyNode, error) {
	if !r.reg.Exists(id) {
		return nil, fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
	}
	return r.buildTree(id, map[string]bool{})
}

func (r *Resolver) buildTree(id string, onPath map[string]bool) (*models.DependencyNode, error) {
	if onPath[id] {
		return nil, fmt.Errorf("circular dependency at '%s'", id)
	}
	def, ok := r.reg.Get(id)
	if !ok {
		return &models.DependencyNode{ID: id}, nil
	}
	node := &models.DependencyNode{
		ID:      def.ID,
		Name:    def.Name,
		Version: def.Version,
	}
	onPath[id] = true
	defer delete(onPath, id)
	for _, dep := range def.Dependencies {
		child, err := r.buildTree(dep, onPath)
		if err != nil {
			return nil, err
		}
		node.Dependencies = append(node.Dependencies, child)
	}
	return node, nil
}

/**
 * Find everything that transitively depends on a component
 * @param {string} id - Component id (excluded from the result)
 * @returns {[]string} Reverse-reachability set in BFS discovery order
 */
func (r *Resolver) FindAffectedComponents(id string) ([]string, error) {
	if !r.reg.Exists(id) {
		return nil, fmt.Errorf("%w: '%s'", registry.ErrComponentNotFound, id)
	}
	seen := map[string]bool{id: true}
	var affected []string
	queue := []string{id}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		for _, dep := range r.reg.FindDependents(next) {
			if seen[dep.ID] {
				continue
			}
			seen[dep.ID] = true
			affected = append(affected, dep.ID)
			queue = append(queue, dep.ID)
		}
	}
	return affected, nil
}

/**
 * Check that a proposed update order respects in-list dependencies
 * @param {[]string} orderedIds - Proposed order
 * @returns {models.ValidationReport} DEPENDENCY_ORDER_VIOLATION /
 *   COMPONENT_NOT_FOUND errors; on failure a SUGGESTED_ORDER warning computed
 *   via InstallOrder when one exists
 */
func (r *Resolver) ValidateUpdateOrder(orderedIds []string) models.ValidationReport {
	report := models.ValidationReport{Valid: true}
	position := make(map[string]int, len(orderedIds))
	for i, id := range orderedIds {
		position[id] = i
	}
	var known []string
	for i, id := range orderedIds {
		def, ok := r.reg.Get(id)
		if !ok {
			report.Errors = append(report.Errors, models.ValidationIssue{
				Code:        models.CodeComponentNotFound,
				ComponentID: id,
				Message:     fmt.Sprintf("component '%s' is not registered", id),
			})
			continue
		}
		known = append(known, id)
		for _, dep := range def.Dependencies {
			pos, inList := position[dep]
			if inList && pos > i {
				report.Errors = append(report.Errors, models.ValidationIssue{
					Code:        models.CodeDependencyOrderViolation,
					ComponentID: id,
					Message:     fmt.Sprintf("'%s' must come after its dependency '%s'", id, dep),
				})
			}
		}
	}
	if len(report.Errors) > 0 {
		report.Valid = false
		if suggested, err := r.InstallOrder(known); err == nil {
			report.Warnings = append(report.Warnings, models.ValidationIssue{
				Code:    models.CodeSuggestedOrder,
				Message: fmt.Sprintf("suggested order: %s", strings.Join(suggested, ", ")),
			})
		}
	}
	return report
}
