package permissions

import (
	"fmt"
	"strings"
)

var (
	// ErrUnknownPermission indicates a permission lookup failed because it has not been registered.
	ErrUnknownPermission = fmt.Errorf("permission: unknown permission")
	// ErrCircularDependency signals that a dependency or implication chain loops back on itself.
	ErrCircularDependency = fmt.Errorf("permission: circular dependency detected")
)

// edge selects which links of the permission graph a walk follows. Tier chains such as
// board.full_all -> board.modify_all -> board.view_all appear on both.
type edge int

const (
	edgeDependsOn edge = iota
	edgeImplies
)

func (e edge) targets(perm *Permission) []string {
	if e == edgeImplies {
		return perm.Implies
	}
	return perm.DependsOn
}

// walkGraph visits each permission reachable from roots exactly once, targets before the
// permission that points at them. Roots are visited as well.
func walkGraph(perms map[string]*Permission, roots []string, e edge, visit func(id string)) error {
	done := make(map[string]bool, len(perms))
	onPath := make(map[string]bool)

	var walk func(id string) error
	walk = func(id string) error {
		perm, ok := perms[id]
		if !ok {
			return fmt.Errorf("%w %q", ErrUnknownPermission, id)
		}
		if onPath[id] {
			return fmt.Errorf("%w at %s", ErrCircularDependency, id)
		}
		if done[id] {
			return nil
		}

		onPath[id] = true
		for _, next := range e.targets(perm) {
			if err := walk(next); err != nil {
				return err
			}
		}
		onPath[id] = false
		done[id] = true

		visit(id)
		return nil
	}

	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if err := walk(root); err != nil {
			return err
		}
	}
	return nil
}

// ResolveDependencies returns every permission the given one depends on, transitively,
// deepest first. board.full_all resolves to board.view_all then board.modify_all.
func ResolveDependencies(permissionID string) ([]string, error) {
	perms := GetAll()

	root, ok := perms[permissionID]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPermission, permissionID)
	}

	var resolved []string
	err := walkGraph(perms, root.DependsOn, edgeDependsOn, func(id string) {
		resolved = append(resolved, id)
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// expandImplied returns the granted ids plus everything they imply.
func expandImplied(ids []string) (Set, error) {
	perms := GetAll()
	set := make(Set)
	err := walkGraph(perms, ids, edgeImplies, func(id string) {
		set[id] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ValidateDependencies checks the registered catalogue: references resolve, neither chain
// loops, and every permission implies what it depends on. The last rule keeps a granted
// tier such as integration.full_all from failing Check for lack of its lower tiers.
func ValidateDependencies() error {
	perms := GetAll()

	ids := make([]string, 0, len(perms))
	for id := range perms {
		ids = append(ids, id)
	}

	for _, e := range []edge{edgeDependsOn, edgeImplies} {
		if err := walkGraph(perms, ids, e, func(string) {}); err != nil {
			return err
		}
	}

	for _, id := range ids {
		deps, err := ResolveDependencies(id)
		if err != nil {
			return err
		}
		implied, err := expandImplied([]string{id})
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if !implied.Has(dep) {
				return fmt.Errorf("permission: %s depends on %s but does not imply it", id, dep)
			}
		}
	}
	return nil
}
