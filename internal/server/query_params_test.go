package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	moversdomain "github.com/smallbiznis/vendhub/internal/movers/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T, query string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/reports/movers?"+query, nil)
	return c
}

func TestParseMoversQueryDefaults(t *testing.T) {
	q, err := parseMoversQuery(testContext(t, ""))
	require.NoError(t, err)

	assert.Equal(t, moversdomain.GroupByMachine, q.GroupBy)
	assert.Equal(t, 0, q.WindowDays)
	assert.Equal(t, 0, q.TopN)
}

func TestParseMoversQueryFull(t *testing.T) {
	q, err := parseMoversQuery(testContext(t, "group_by=machine_product&window_days=7&top_n=3"))
	require.NoError(t, err)

	assert.Equal(t, moversdomain.GroupByMachineProduct, q.GroupBy)
	assert.Equal(t, 7, q.WindowDays)
	assert.Equal(t, 3, q.TopN)
}

func TestParseMoversQueryRejectsInvalidValues(t *testing.T) {
	cases := map[string]struct {
		query string
		code  string
	}{
		"unknown group_by":     {"group_by=driver", "invalid_group_by"},
		"zero window":          {"window_days=0", "invalid_window_days"},
		"negative window":      {"window_days=-3", "invalid_window_days"},
		"non-numeric window":   {"window_days=soon", "invalid_window_days"},
		"zero top_n":           {"top_n=0", "invalid_top_n"},
		"non-numeric top_n":    {"top_n=all", "invalid_top_n"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseMoversQuery(testContext(t, tc.query))
			require.Error(t, err)

			vErr := asValidationErrors(err)
			require.NotNil(t, vErr)
			require.Len(t, vErr.Errors, 1)
			assert.Equal(t, tc.code, vErr.Errors[0].Code)
		})
	}
}

func TestParseOptionalInt(t *testing.T) {
	got, err := parseOptionalInt("  12 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12, *got)

	got, err = parseOptionalInt("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseOptionalInt("twelve")
	assert.Error(t, err)
}

func TestParseOptionalBool(t *testing.T) {
	got, err := parseOptionalBool("true")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)

	got, err = parseOptionalBool("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseOptionalBool("yep")
	assert.Error(t, err)
}

func TestParseOptionalTime(t *testing.T) {
	got, err := parseOptionalTime("2026-08-15T10:30:00Z", false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 8, 15, 10, 30, 0, 0, time.UTC), *got)

	got, err = parseOptionalTime("2026-08-15", false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseOptionalTime("2026-08-15", true)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 23, got.Hour())
	assert.Equal(t, 59, got.Minute())

	got, err = parseOptionalTime("", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseOptionalTime("yesterday", false)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
