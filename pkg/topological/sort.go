package topological

import (
	"fmt"
	"maps"
	"slices"

	"golang.org/x/exp/constraints"
)

var ErrCycleDetected = fmt.Errorf("cycle detected")

// CycleError reports the keys that could not be ordered: the members of
// every cycle plus everything downstream of one.
type CycleError[K constraints.Ordered] struct {
	Remaining []K
}

func (e *CycleError[K]) Error() string {
	return fmt.Sprintf("%v among %v", ErrCycleDetected, e.Remaining)
}

func (e *CycleError[K]) Unwrap() error {
	return ErrCycleDetected
}

func has[M ~map[K]V, K comparable, V any](m M, key K) bool {
	_, ok := m[key]
	return ok
}

func sortedKeys[M ~map[K]V, K constraints.Ordered, V any](m M) []K {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}

// Sort orders values so that every value comes after the values depFunc
// returns for it. Dependencies that are not in values are ignored.
func Sort[T constraints.Ordered](values []T, depFunc func(T) []T) ([]T, error) {
	return SortFunc(values, func(val T) T { return val }, depFunc)
}

// SortFunc is Sort for values that are not ordered themselves. Ties are
// broken by key so the result is deterministic.
//
// If the dependencies contain a cycle, SortFunc returns the values it could
// order together with a *CycleError[K].
func SortFunc[T any, K constraints.Ordered](values []T, keyFunc func(T) K, depFunc func(T) []T) ([]T, error) {
	valuesByKey := make(map[K]T)
	dependencies := make(map[K]map[K]struct{})
	dependents := make(map[K]map[K]struct{})

	for _, val := range values {
		valuesByKey[keyFunc(val)] = val
	}

	for key, val := range valuesByKey {
		for _, dep := range depFunc(val) {
			depKey := keyFunc(dep)
			if !has(valuesByKey, depKey) {
				continue
			}

			if dependencies[key] == nil {
				dependencies[key] = make(map[K]struct{})
			}
			dependencies[key][depKey] = struct{}{}

			if dependents[depKey] == nil {
				dependents[depKey] = make(map[K]struct{})
			}
			dependents[depKey][key] = struct{}{}
		}
	}

	var ready []K
	for _, key := range sortedKeys(valuesByKey) {
		if len(dependencies[key]) == 0 {
			ready = append(ready, key)
		}
	}

	list := make([]T, 0, len(valuesByKey))

	for len(ready) > 0 {
		var key K
		key, ready = ready[0], ready[1:]
		list = append(list, valuesByKey[key])

		for _, dep := range sortedKeys(dependents[key]) {
			delete(dependencies[dep], key)
			if len(dependencies[dep]) == 0 {
				delete(dependencies, dep)
				ready = append(ready, dep)
			}
		}
	}

	if len(list) < len(valuesByKey) {
		remaining := make([]K, 0, len(valuesByKey)-len(list))
		for key := range dependencies {
			remaining = append(remaining, key)
		}
		slices.Sort(remaining)

		return list, &CycleError[K]{Remaining: remaining}
	}

	return list, nil
}
