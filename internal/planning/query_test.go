package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/internal/models"
)

func TestQueryStatusAllEncodesLikeUnset(t *testing.T) {
	all := NewQueryState(0)
	require.NoError(t, all.SetStatus(StatusAll))
	require.NoError(t, all.SetFilter(FilterClass, 5))

	unset := NewQueryState(0)
	require.NoError(t, unset.SetFilter(FilterClass, 5))

	assert.Equal(t, unset.Params("2024-05-13", "2024-05-17"), all.Params("2024-05-13", "2024-05-17"))
	values := all.Params("", "").Values()
	assert.Equal(t, "class_id=5&limit=50&page=1", values.Encode())
	assert.Equal(t, StatusAll, all.Filters().Status)
}

func TestQueryFilterWritesResetPage(t *testing.T) {
	q := NewQueryState(20)
	q.SetPage(4)
	require.NoError(t, q.SetStatus("active"))
	assert.Equal(t, 1, q.Filters().Page)

	q.SetPage(3)
	require.NoError(t, q.SetFilter(FilterTeacher, 8))
	assert.Equal(t, 1, q.Filters().Page)

	q.SetPage(3)
	q.SetLimit(100)
	assert.Equal(t, 1, q.Filters().Page)
	assert.Equal(t, 100, q.Filters().Limit)

	q.SetPage(2)
	require.NoError(t, q.SetFilter(FilterTeacher, 0))
	assert.NotContains(t, q.Filters().IDs, FilterTeacher)
	assert.Equal(t, 1, q.Filters().Page)
}

func TestQueryRejectsUnknownInputs(t *testing.T) {
	q := NewQueryState(0)
	assert.Error(t, q.SetStatus("sleeping"))
	assert.ErrorIs(t, q.SetFilter(FilterField("room"), 1), ErrUnknownField)
}

func TestDerivePageMeta(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		limit    int
		server   models.Pagination
		expected PageMeta
	}{
		{
			name:     "derived from total",
			page:     2,
			limit:    10,
			server:   models.Pagination{Total: 25},
			expected: PageMeta{Page: 2, Limit: 10, Total: 25, TotalPages: 3, HasNext: true, HasPrevious: true},
		},
		{
			name:     "empty result keeps one page",
			page:     1,
			limit:    10,
			server:   models.Pagination{Total: 0},
			expected: PageMeta{Page: 1, Limit: 10, Total: 0, TotalPages: 1},
		},
		{
			name:     "server values win",
			page:     1,
			limit:    10,
			server:   *models.NewPagination(3, 10, 30),
			expected: PageMeta{Page: 3, Limit: 10, Total: 30, TotalPages: 3, HasPrevious: true},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DerivePageMeta(tc.page, tc.limit, tc.server))
		})
	}
}
