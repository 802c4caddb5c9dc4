package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-planner/pkg/config"
)

const sessionsBody = `{"data":[{"id":1,"period":"2024-1","date":"2024-05-15","start_time":"08:00","end_time":"09:00","class_id":42,"teacher_id":3,"classroom_id":4,"status":"active"}],"pagination":{"page":1,"limit":50,"total":1}}`

func fakeAPI(t *testing.T) (*config.Config, *[]string) {
	t.Helper()
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/sessions":
			_, _ = io.WriteString(w, sessionsBody)
		case r.Method == http.MethodGet && r.URL.Path == "/classes":
			_, _ = io.WriteString(w, `{"data":[{"id":42,"specialization_id":7}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/sessions":
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, `{"error":{"code":"CONFLICT","message":"session overlaps with an existing booking (teacher)","status":409}}`)
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return &config.Config{Planner: config.PlannerClientConfig{APIURL: srv.URL, Timeout: time.Second}}, &calls
}

func TestShowPrintsWindow(t *testing.T) {
	cfg, calls := fakeAPI(t)
	var out bytes.Buffer

	err := run(context.Background(), cfg, []string{"-quiet", "-anchor", "2024-05-15", "-class", "42", "show"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "week of 2024-05-13")
	assert.Contains(t, out.String(), "08:00-09:00")
	assert.NotContains(t, out.String(), "!")
	require.NotEmpty(t, *calls)
	assert.Contains(t, (*calls)[0], "class_id=42")
	assert.Contains(t, (*calls)[0], "date_from=2024-05-13")
	assert.Contains(t, (*calls)[0], "date_to=2024-05-17")
}

func TestCreateOverlapMarksConflict(t *testing.T) {
	cfg, _ := fakeAPI(t)
	var out bytes.Buffer

	err := run(context.Background(), cfg, []string{"-quiet", "create",
		"-school-year", "1", "-period", "2024-1", "-class", "42",
		"-teacher", "3", "-classroom", "4", "-session-type", "5", "-course", "6",
		"-date", "2024-05-15", "-start-time", "08:00", "-end-time", "09:00",
	}, &out)
	require.Error(t, err)

	text := out.String()
	assert.Contains(t, text, "rejected (conflict)")
	assert.Contains(t, text, "! overlap at 2024-05-15 08:00-09:00")
	var flagged int
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "!") && strings.Contains(line, "08:00-09:00") && !strings.Contains(line, "overlap at") {
			flagged++
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestCreateValidationStaysLocal(t *testing.T) {
	cfg, calls := fakeAPI(t)
	var out bytes.Buffer

	err := run(context.Background(), cfg, []string{"-quiet", "create", "-date", "2024-05-15", "-start-time", "09:00", "-end-time", "08:00"}, &out)
	require.Error(t, err)

	for _, call := range *calls {
		assert.False(t, strings.HasPrefix(call, http.MethodPost), call)
	}
	assert.Contains(t, out.String(), "teacher")
}

func TestTimesAndDelete(t *testing.T) {
	cfg, calls := fakeAPI(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, []string{"-quiet", "times", "-start", "23:30"}, &out))
	assert.Equal(t, "23:45 00:00\n", out.String())

	out.Reset()
	require.NoError(t, run(context.Background(), cfg, []string{"-quiet", "delete", "-id", "9"}, &out))
	assert.Contains(t, out.String(), "deleted session 9")
	assert.Contains(t, *calls, "DELETE /sessions/9?")

	assert.Error(t, run(context.Background(), cfg, []string{"-quiet", "delete"}, &out))
	assert.Error(t, run(context.Background(), cfg, []string{"-quiet", "bogus"}, &out))
}
