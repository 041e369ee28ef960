package main

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

func TestLeadFilterFromQuery(t *testing.T) {
	req := httptest.NewRequest("GET", "/leads?model=marketing&source=google&min_score=7&contact_found=true&limit=25", nil)

	filter := leadFilterFromQuery(req)
	assert.Equal(t, model.BusinessModelMarketing, filter.BusinessModel)
	assert.Equal(t, "google", filter.Source)
	assert.Equal(t, 7, filter.MinScore)
	require.NotNil(t, filter.ContactFound)
	assert.True(t, *filter.ContactFound)
	assert.Equal(t, 25, filter.Limit)
}

func TestLeadFilterFromQuery_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/leads", nil)

	filter := leadFilterFromQuery(req)
	assert.Equal(t, store.LeadFilter{}, filter)
	assert.Nil(t, filter.ContactFound)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, 202, map[string]string{"status": "accepted"})

	assert.Equal(t, 202, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status": "accepted"}`, rec.Body.String())
}
