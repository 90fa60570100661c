package fluentapi_test

import (
	"testing"

	"github.com/fivetwenty-io/fluentapi/pkg/fluentapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		route    string
		expected []fluentapi.Step
		wantErr  bool
	}{
		{
			route:    "users",
			expected: []fluentapi.Step{{Name: "users"}},
		},
		{
			route:    "users:1.orders:2.items",
			expected: []fluentapi.Step{{Name: "users", ID: "1"}, {Name: "orders", ID: "2"}, {Name: "items"}},
		},
		{
			route:    " users : ada ",
			expected: []fluentapi.Step{{Name: "users", ID: "ada"}},
		},
		{route: "", wantErr: true},
		{route: "users..orders", wantErr: true},
		{route: ":1", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.route, func(t *testing.T) {
			t.Parallel()

			steps, err := fluentapi.ParseRoute(test.route)
			if test.wantErr {
				require.ErrorIs(t, err, fluentapi.ErrInvalidRoute)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, test.expected, steps)
		})
	}
}

func TestStep(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "users:1", fluentapi.Step{Name: "users", ID: "1"}.String())
	assert.Equal(t, "users", fluentapi.Step{Name: "users"}.String())
	assert.False(t, fluentapi.Step{Name: "users"}.HasID())
}

func TestClient_Resolve(t *testing.T) {
	t.Parallel()

	client, err := fluentapi.New(&recordingTransport{}, "api", shopDeclarations())
	require.NoError(t, err)

	endpoint, err := client.Resolve("users:1.orders:2.items")
	require.NoError(t, err)
	assert.Equal(t, "api/users/1/orders/2/items", endpoint.URL())

	endpoint, id, err := client.ResolveRecord("users:1.orders:2")
	require.NoError(t, err)
	assert.Equal(t, "api/users/1/orders", endpoint.URL())
	assert.Equal(t, "2", id)

	endpoint, id, err = client.ResolveRecord("users.profile")
	require.NoError(t, err)
	assert.Equal(t, "api/users/user-profile", endpoint.URL())
	assert.Nil(t, id)

	_, err = client.Resolve("invoices")
	require.ErrorIs(t, err, fluentapi.ErrUnknownEndpoint)

	_, err = client.Resolve("users:1.invoices")
	require.ErrorIs(t, err, fluentapi.ErrUnknownEndpoint)
}
