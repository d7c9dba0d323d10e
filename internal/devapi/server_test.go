package devapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/stockroom/internal/api"
	"github.com/abelbrown/stockroom/internal/resource"
)

const testToken = "dev-token"

func setup(t *testing.T) (*Server, *api.Client) {
	t.Helper()
	s := New(testToken)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	c := api.New(api.Options{BaseURL: srv.URL + BasePath, Timeout: 2 * time.Second}, api.StaticToken(testToken))
	return s, c
}

func TestListAllResources(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	inv, err := resource.Fetch(ctx, c, resource.Inventory)
	require.NoError(t, err)
	assert.Len(t, inv, s.Len(resource.NameInventory))
	assert.Equal(t, 1, inv[0].ID)
	assert.False(t, inv[0].UnitPrice.IsZero())

	users, err := resource.Fetch(ctx, c, resource.Users)
	require.NoError(t, err)
	assert.Len(t, users, 6)

	tasks, err := resource.Fetch(ctx, c, resource.Tasks)
	require.NoError(t, err)
	assert.Len(t, tasks, 12)

	orders, err := resource.Fetch(ctx, c, resource.Orders)
	require.NoError(t, err)
	assert.Len(t, orders, 8)
	assert.Equal(t, 1000, orders[0].ID)
}

func TestRejectsBadToken(t *testing.T) {
	s := New(testToken)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()
	c := api.New(api.Options{BaseURL: srv.URL + BasePath}, api.StaticToken("wrong"))

	_, err := resource.Fetch(context.Background(), c, resource.Users)
	var ae *api.AuthError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusUnauthorized, ae.Status)
}

func TestBatchDeleteInventoryNeedsCSRF(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()
	before := s.Len(resource.NameInventory)

	err := c.BatchDelete(ctx, resource.Inventory.Endpoint, []string{"1"}, "")
	var ae *api.ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Equal(t, before, s.Len(resource.NameInventory))

	tok, err := c.CSRFToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.CSRF(), tok)

	require.NoError(t, c.BatchDelete(ctx, resource.Inventory.Endpoint, []string{"1", "2"}, tok))
	assert.Equal(t, before-2, s.Len(resource.NameInventory))
}

func TestBatchDeleteWithoutCSRF(t *testing.T) {
	s, c := setup(t)
	require.NoError(t, c.BatchDelete(context.Background(), resource.Users.Endpoint, []string{"5"}, ""))
	assert.Equal(t, 5, s.Len(resource.NameUsers))
}

func TestUpdateAndCreate(t *testing.T) {
	s, c := setup(t)
	ctx := context.Background()

	_, err := c.Update(ctx, resource.Tasks.Endpoint, "3", map[string]any{"status": "completed"})
	require.NoError(t, err)
	tasks, err := resource.Fetch(ctx, c, resource.Tasks)
	require.NoError(t, err)
	assert.Equal(t, "completed", tasks[2].Status)

	_, err = c.Update(ctx, resource.Tasks.Endpoint, "999", map[string]any{"status": "x"})
	var ae *api.ActionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusNotFound, ae.Status)

	_, err = c.Create(ctx, resource.Users.Endpoint, resource.User{Name: "Gus", Email: "gus@stockroom.test"})
	require.NoError(t, err)
	assert.Equal(t, 7, s.Len(resource.NameUsers))
	users, err := resource.Fetch(ctx, c, resource.Users)
	require.NoError(t, err)
	assert.Equal(t, 7, users[6].ID)
}

func TestFailNext(t *testing.T) {
	s, c := setup(t)
	s.FailNext(resource.NameOrders, http.StatusInternalServerError)

	_, err := resource.Fetch(context.Background(), c, resource.Orders)
	var ne *api.NetworkError
	require.True(t, errors.As(err, &ne), "err = %v", err)
	assert.Equal(t, http.StatusInternalServerError, ne.Status)

	_, err = resource.Fetch(context.Background(), c, resource.Orders)
	assert.NoError(t, err, "failure is injected once")
}

func TestRunShutsDown(t *testing.T) {
	s := New(testToken)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
