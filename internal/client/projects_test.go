package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/querio-io/qapi/pkg/qapi"
)

//nolint:funlen // table-style subtests
func TestProjectsClient_Create(t *testing.T) {
	t.Parallel()

	t.Run("creates a project", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/projects", r.URL.Path)

			var req qapi.ProjectCreateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Sales Analytics", req.Name)

			project := &qapi.Project{Name: req.Name, Description: req.Description}
			project.GUID = "proj-123"

			writeJSON(t, w, http.StatusCreated, project)
		}))

		project, err := c.Projects().Create(context.Background(), &qapi.ProjectCreateRequest{
			Name:        "Sales Analytics",
			Description: "Revenue dashboards",
		})

		require.NoError(t, err)
		assert.Equal(t, "proj-123", project.GUID)
		assert.Equal(t, "Sales Analytics", project.Name)
	})

	t.Run("nil request", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		}))

		_, err := c.Projects().Create(context.Background(), nil)
		require.ErrorIs(t, err, qapi.ErrRequestRequired)
	})

	t.Run("validation error surfaces the API error", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusBadRequest, map[string]interface{}{
				"detail": []map[string]interface{}{
					{"loc": []string{"body", "name"}, "msg": "field required", "type": "value_error.missing"},
				},
			})
		}))

		_, err := c.Projects().Create(context.Background(), &qapi.ProjectCreateRequest{})

		require.Error(t, err)
		assert.True(t, qapi.IsValidation(err))
		assert.Contains(t, err.Error(), "body.name: field required")
	})
}

func TestProjectsClient_Get(t *testing.T) {
	t.Parallel()

	t.Run("fetches a project", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/projects/proj-123", r.URL.Path)

			project := &qapi.Project{Name: "Sales Analytics"}
			project.GUID = "proj-123"

			writeJSON(t, w, http.StatusOK, project)
		}))

		project, err := c.Projects().Get(context.Background(), "proj-123")
		require.NoError(t, err)
		assert.Equal(t, "Sales Analytics", project.Name)
	})

	t.Run("empty guid", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("unexpected request")
		}))

		_, err := c.Projects().Get(context.Background(), "")
		require.ErrorIs(t, err, qapi.ErrGUIDRequired)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"message": "Project not found"})
		}))

		_, err := c.Projects().Get(context.Background(), "proj-missing")
		require.Error(t, err)
		assert.True(t, qapi.IsNotFound(err))
	})
}

func TestProjectsClient_List(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/projects", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))

		project := qapi.Project{Name: "Sales Analytics"}
		project.GUID = "proj-123"

		writeJSON(t, w, http.StatusOK, &qapi.ListResponse[qapi.Project]{
			Pagination: qapi.Pagination{TotalResults: 11, TotalPages: 2},
			Resources:  []qapi.Project{project},
		})
	}))

	params := qapi.NewQueryParams().WithPage(2).WithPerPage(10)

	list, err := c.Projects().List(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, 11, list.Pagination.TotalResults)
	require.Len(t, list.Resources, 1)
	assert.Equal(t, "proj-123", list.Resources[0].GUID)
}

func TestProjectsClient_Update(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/projects/proj-123", r.URL.Path)

		var req qapi.ProjectUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.Name)

		project := &qapi.Project{Name: *req.Name}
		project.GUID = "proj-123"

		writeJSON(t, w, http.StatusOK, project)
	}))

	name := "Renamed"

	project, err := c.Projects().Update(context.Background(), "proj-123", &qapi.ProjectUpdateRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", project.Name)
}

func TestProjectsClient_Delete(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v1/projects/proj-123", r.URL.Path)

		job := &qapi.Job{Operation: "project.delete", State: "PROCESSING"}
		job.GUID = "job-1"

		writeJSON(t, w, http.StatusAccepted, job)
	}))

	job, err := c.Projects().Delete(context.Background(), "proj-123")
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.GUID)
	assert.Equal(t, "PROCESSING", job.State)
}

//nolint:funlen // exercises the full cache round trip
func TestProjectsClient_Caching(t *testing.T) {
	t.Parallel()

	t.Run("repeated get is served from cache", func(t *testing.T) {
		t.Parallel()

		var hits int64

		c := newCachingTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&hits, 1)

			project := &qapi.Project{Name: "Sales Analytics"}
			project.GUID = "proj-123"

			writeJSON(t, w, http.StatusOK, project)
		}))

		ctx := context.Background()

		first, err := c.Projects().Get(ctx, "proj-123")
		require.NoError(t, err)

		second, err := c.Projects().Get(ctx, "proj-123")
		require.NoError(t, err)

		assert.Equal(t, first.GUID, second.GUID)
		assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
	})

	t.Run("update invalidates the cached entry", func(t *testing.T) {
		t.Parallel()

		var gets int64

		c := newCachingTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := "Before"

			if r.Method == http.MethodPatch {
				name = "After"
			} else {
				atomic.AddInt64(&gets, 1)

				if atomic.LoadInt64(&gets) > 1 {
					name = "After"
				}
			}

			project := &qapi.Project{Name: name}
			project.GUID = "proj-123"

			writeJSON(t, w, http.StatusOK, project)
		}))

		ctx := context.Background()

		before, err := c.Projects().Get(ctx, "proj-123")
		require.NoError(t, err)
		assert.Equal(t, "Before", before.Name)

		name := "After"
		_, err = c.Projects().Update(ctx, "proj-123", &qapi.ProjectUpdateRequest{Name: &name})
		require.NoError(t, err)

		after, err := c.Projects().Get(ctx, "proj-123")
		require.NoError(t, err)
		assert.Equal(t, "After", after.Name)
		assert.Equal(t, int64(2), atomic.LoadInt64(&gets))
	})
}
