// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package utils

// Policy is one named attempt at resolving a value. Resolvers run an ordered
// list of policies and take the first that yields.
type Policy[T any] struct {
	Name    string
	Resolve func() (T, bool)
}

// ResolveFirst runs the policies in order and returns the first resolved
// value along with the name of the policy that produced it.
func ResolveFirst[T any](policies []Policy[T]) (value T, source string, ok bool) {
	for _, policy := range policies {
		if v, found := policy.Resolve(); found {
			return v, policy.Name, true
		}
	}
	var zero T
	return zero, "", false
}
