package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Marga-Ghale/ora-project-tracker/internal/repository"
	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

func TestListProjectsQuery_Filter(t *testing.T) {
	page, limit := 2, 25
	q := ListProjectsQuery{Status: "on_hold", Search: "pt", Page: &page, Limit: &limit, SortBy: "name", Order: "asc"}

	assert.Equal(t, repository.ProjectFilter{
		Status: "on_hold", Search: "pt", Page: 2, Limit: 25, SortBy: "name", Order: "asc",
	}, q.Filter())

	assert.Equal(t, repository.ProjectFilter{}, ListProjectsQuery{}.Filter(), "absent page and limit stay zero for Normalize")
}

func TestUpdateProjectRequest_DistinguishesAbsentFromNull(t *testing.T) {
	var req UpdateProjectRequest
	require.NoError(t, json.Unmarshal([]byte(`{"name":"X","endDate":null}`), &req))

	in := req.Input()
	assert.True(t, in.Name.Set)
	assert.Equal(t, "X", *in.Name.Value)
	assert.False(t, in.ClientName.Set)
	assert.False(t, in.StartDate.Set)
	assert.True(t, in.EndDate.Set)
	assert.Nil(t, in.EndDate.Value)
}

func TestToProjectResponse(t *testing.T) {
	start := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	created := time.Date(2026, 2, 1, 8, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	p := &repository.Project{
		ID:         "5f0c6f7e-2b0a-4c1e-9d2f-1a2b3c4d5e6f",
		Name:       "Data Analytics Dashboard",
		ClientName: "PT Telkom Indonesia",
		Status:     types.StatusOnHold,
		StartDate:  &start,
		CreatedAt:  created,
		UpdatedAt:  created,
	}

	resp := ToProjectResponse(p)
	require.NotNil(t, resp.StartDate)
	assert.Equal(t, "2026-01-20", *resp.StartDate)
	assert.Nil(t, resp.EndDate)
	assert.Equal(t, "on_hold", resp.Status)
	assert.Equal(t, time.UTC, resp.CreatedAt.Location())

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "5f0c6f7e-2b0a-4c1e-9d2f-1a2b3c4d5e6f",
		"name": "Data Analytics Dashboard",
		"clientName": "PT Telkom Indonesia",
		"status": "on_hold",
		"startDate": "2026-01-20",
		"endDate": null,
		"createdAt": "2026-02-01T01:30:00Z",
		"updatedAt": "2026-02-01T01:30:00Z",
		"deletedAt": null
	}`, string(data))

	assert.NotNil(t, ToProjectResponses(nil))
}
