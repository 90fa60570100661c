package fluentapi

import (
	"fmt"
	"strings"
)

// Step is one hop of a route: an endpoint name and an optional record id.
type Step struct {
	Name string
	ID   string
}

// HasID reports whether the step enters a specific record.
func (s Step) HasID() bool {
	return s.ID != ""
}

// String renders the step in route syntax.
func (s Step) String() string {
	if s.HasID() {
		return s.Name + ":" + s.ID
	}

	return s.Name
}

// ParseRoute parses "users:1.orders:2.items" into steps.
func ParseRoute(route string) ([]Step, error) {
	if strings.TrimSpace(route) == "" {
		return nil, fmt.Errorf("%w: empty route", ErrInvalidRoute)
	}

	parts := strings.Split(route, ".")
	steps := make([]Step, 0, len(parts))

	for _, part := range parts {
		name, id, _ := strings.Cut(part, ":")
		name = strings.TrimSpace(name)

		if name == "" {
			return nil, fmt.Errorf("%w: empty endpoint name in %q", ErrInvalidRoute, route)
		}

		steps = append(steps, Step{Name: name, ID: strings.TrimSpace(id)})
	}

	return steps, nil
}

// Resolve walks the tree along route and returns the last endpoint. The id of
// the last step is not applied; callers pass it to Read, Update and so on.
func (c *Client) Resolve(route string) (Endpoint, error) {
	steps, err := ParseRoute(route)
	if err != nil {
		return nil, err
	}

	endpoint, ok := c.Lookup(steps[0].Name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEndpoint, steps[0].Name)
	}

	for i := 1; i < len(steps); i++ {
		var id any
		if steps[i-1].HasID() {
			id = steps[i-1].ID
		}

		endpoint, err = endpoint.Child(steps[i].Name, id)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", route, err)
		}
	}

	return endpoint, nil
}

// ResolveRecord is Resolve that also returns the id of the final step, or nil.
func (c *Client) ResolveRecord(route string) (Endpoint, any, error) {
	endpoint, err := c.Resolve(route)
	if err != nil {
		return nil, nil, err
	}

	steps, _ := ParseRoute(route)

	last := steps[len(steps)-1]
	if !last.HasID() {
		return endpoint, nil, nil
	}

	return endpoint, last.ID, nil
}
