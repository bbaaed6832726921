package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cicd-orchestrator/internal/models"
	"cicd-orchestrator/internal/registry"
)

func definition(id string, deps ...string) models.ComponentDefinition {
	return models.ComponentDefinition{
		ID:           id,
		Name:         id + "-svc",
		Version:      "1.0.0",
		Type:         models.TypeService,
		Dependencies: deps,
		Resources:    models.ResourceSpec{CPU: "100m", Memory: "128Mi"},
		HealthCheck:  models.HealthCheckSpec{Type: "http", PeriodSeconds: 10},
		Scaling:      models.ScalingSpec{MinReplicas: 1, MaxReplicas: 1},
	}
}

// web -> api -> db, web -> cache
func buildGraph(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, reg.Register(definition("db")))
	require.NoError(t, reg.Register(definition("cache")))
	require.NoError(t, reg.Register(definition("api", "db")))
	require.NoError(t, reg.Register(definition("web", "api", "cache")))
	return reg
}

func TestResolveTransitiveClosure(t *testing.T) {
	r := New(buildGraph(t))
	deps, err := r.Resolve("web")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"api", "cache", "db"}, deps)
	assert.NotContains(t, deps, "web", "root is excluded")
}

func TestResolveDeduplicatesSharedDependencies(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("shared")))
	require.NoError(t, reg.Register(definition("a", "shared")))
	require.NoError(t, reg.Register(definition("b", "shared")))
	require.NoError(t, reg.Register(definition("top", "a", "b")))

	deps, err := New(reg).Resolve("top")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "shared"}, deps)
}

func TestResolveUnknownRoot(t *testing.T) {
	r := New(registry.New())
	_, err := r.Resolve("ghost")
	require.ErrorIs(t, err, registry.ErrComponentNotFound)
}

func TestValidateCleanGraph(t *testing.T) {
	r := New(buildGraph(t))
	report := r.Validate([]string{"web", "api", "db", "cache"})
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
}

func TestValidateMissingDependency(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("web", "ghost")))

	report := New(reg).Validate([]string{"web"})
	assert.False(t, report.Valid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, models.CodeMissingDependency, report.Errors[0].Code)
	assert.Equal(t, "ghost", report.Errors[0].ComponentID)
}

func TestValidateMissingIsNotReportedAsCycle(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("web", "ghost")))

	report := New(reg).Validate([]string{"web"})
	for _, issue := range report.Errors {
		assert.NotEqual(t, models.CodeCircularDependency, issue.Code)
	}
}

func TestValidateTwoNodeCycle(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("a", "b")))
	require.NoError(t, reg.Register(definition("b", "a")))

	report := New(reg).Validate([]string{"a"})
	assert.False(t, report.Valid)
	found := false
	for _, issue := range report.Errors {
		if issue.Code == models.CodeCircularDependency {
			found = true
		}
	}
	assert.True(t, found, "two-node cycle must be reported")
}

func TestValidateThreeNodeCycle(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("a", "b")))
	require.NoError(t, reg.Register(definition("b", "c")))
	require.NoError(t, reg.Register(definition("c", "a")))

	report := New(reg).Validate([]string{"a", "b", "c"})
	assert.False(t, report.Valid)
}

func TestValidateCycleMessageNamesThePath(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("d")))
	require.NoError(t, reg.Register(definition("a", "b", "c")))
	require.NoError(t, reg.Register(definition("b", "d")))
	require.NoError(t, reg.Register(definition("c", "a")))

	// The acyclic branch through b is walked first; its path must not leak
	// into the cycle reported on the branch through c.
	report := New(reg).Validate([]string{"a"})
	require.Len(t, report.Errors, 1)
	assert.Equal(t, models.CodeCircularDependency, report.Errors[0].Code)
	assert.Equal(t, "circular dependency: a -> c -> a", report.Errors[0].Message)
}

func TestValidateVersionConflictWarning(t *testing.T) {
	reg := registry.New()
	one := definition("auth-v1")
	one.Name = "auth"
	two := definition("auth-v2")
	two.Name = "auth"
	two.Version = "2.0.0"
	require.NoError(t, reg.Register(one))
	require.NoError(t, reg.Register(two))

	report := New(reg).Validate([]string{"auth-v1", "auth-v2"})
	assert.True(t, report.Valid, "version conflicts warn, they do not invalidate")
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, models.CodeVersionConflict, report.Warnings[0].Code)
}

func TestValidateEquivalentVersionsNoConflict(t *testing.T) {
	reg := registry.New()
	one := definition("auth-v1")
	one.Name = "auth"
	one.Version = "1.0"
	two := definition("auth-v2")
	two.Name = "auth"
	two.Version = "1.0.0"
	require.NoError(t, reg.Register(one))
	require.NoError(t, reg.Register(two))

	report := New(reg).Validate([]string{"auth-v1", "auth-v2"})
	assert.Empty(t, report.Warnings, "1.0 and 1.0.0 are the same version")
}

func TestInstallOrderRespectsDependencies(t *testing.T) {
	r := New(buildGraph(t))
	order, err := r.InstallOrder([]string{"web", "api", "db", "cache"})
	require.NoError(t, err)
	require.Len(t, order, 4)

	position := map[string]int{}
	for i, id := range order {
		position[id] = i
	}
	assert.Less(t, position["db"], position["api"])
	assert.Less(t, position["api"], position["web"])
	assert.Less(t, position["cache"], position["web"])
}

func TestInstallOrderIgnoresEdgesOutsideSet(t *testing.T) {
	r := New(buildGraph(t))
	order, err := r.InstallOrder([]string{"web", "api"})
	require.NoError(t, err)
	assert.Equal(t, []string{"api", "web"}, order)
}

func TestInstallOrderCycle(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("a", "b")))
	require.NoError(t, reg.Register(definition("b", "a")))

	_, err := New(reg).InstallOrder([]string{"a", "b"})
	var cycErr *CircularDependencyError
	require.ErrorAs(t, err, &cycErr)
	assert.ElementsMatch(t, []string{"a", "b"}, cycErr.Remaining)
}

func TestInstallOrderUnknownComponent(t *testing.T) {
	r := New(buildGraph(t))
	_, err := r.InstallOrder([]string{"web", "ghost"})
	require.ErrorIs(t, err, registry.ErrComponentNotFound)
}

func TestDependencyTree(t *testing.T) {
	r := New(buildGraph(t))
	tree, err := r.DependencyTree("web")
	require.NoError(t, err)
	assert.Equal(t, "web", tree.ID)
	require.Len(t, tree.Dependencies, 2)

	api := tree.Dependencies[0]
	assert.Equal(t, "api", api.ID)
	require.Len(t, api.Dependencies, 1)
	assert.Equal(t, "db", api.Dependencies[0].ID)
}

func TestDependencyTreeRepeatsSharedBranches(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("shared")))
	require.NoError(t, reg.Register(definition("a", "shared")))
	require.NoError(t, reg.Register(definition("b", "shared")))
	require.NoError(t, reg.Register(definition("top", "a", "b")))

	tree, err := New(reg).DependencyTree("top")
	require.NoError(t, err)
	assert.Equal(t, "shared", tree.Dependencies[0].Dependencies[0].ID)
	assert.Equal(t, "shared", tree.Dependencies[1].Dependencies[0].ID)
}

func TestDependencyTreeUnregisteredChildIsLeaf(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("web", "ghost")))

	tree, err := New(reg).DependencyTree("web")
	require.NoError(t, err)
	require.Len(t, tree.Dependencies, 1)
	leaf := tree.Dependencies[0]
	assert.Equal(t, "ghost", leaf.ID)
	assert.Empty(t, leaf.Name)
	assert.Empty(t, leaf.Dependencies)
}

func TestDependencyTreeCycleFails(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.Register(definition("a", "b")))
	require.NoError(t, reg.Register(definition("b", "a")))

	_, err := New(reg).DependencyTree("a")
	require.Error(t, err)
}

func TestFindAffectedComponents(t *testing.T) {
	r := New(buildGraph(t))
	affected, err := r.FindAffectedComponents("db")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"api", "web"}, affected)

	none, err := r.FindAffectedComponents("web")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestValidateUpdateOrderAccepts(t *testing.T) {
	r := New(buildGraph(t))
	report := r.ValidateUpdateOrder([]string{"db", "cache", "api", "web"})
	assert.True(t, report.Valid)
}

func TestValidateUpdateOrderViolation(t *testing.T) {
	r := New(buildGraph(t))
	report := r.ValidateUpdateOrder([]string{"web", "api", "db"})
	assert.False(t, report.Valid)

	var codes []string
	for _, issue := range report.Errors {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, models.CodeDependencyOrderViolation)

	require.NotEmpty(t, report.Warnings)
	assert.Equal(t, models.CodeSuggestedOrder, report.Warnings[0].Code)
}

func TestValidateUpdateOrderUnknownComponent(t *testing.T) {
	r := New(buildGraph(t))
	report := r.ValidateUpdateOrder([]string{"ghost", "db"})
	assert.False(t, report.Valid)
	assert.Equal(t, models.CodeComponentNotFound, report.Errors[0].Code)
}
