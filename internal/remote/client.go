// Package remote talks to the planner API over HTTP and satisfies planning.Remote.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-planner/internal/dto"
	"github.com/noah-isme/sma-planner/internal/models"
	"github.com/noah-isme/sma-planner/internal/planning"
	appErrors "github.com/noah-isme/sma-planner/pkg/errors"
	"github.com/noah-isme/sma-planner/pkg/middleware/requestid"
)

const defaultTimeout = 10 * time.Second

// envelope mirrors the server response contract.
type envelope struct {
	Data       json.RawMessage    `json:"data"`
	Error      *appErrors.Error   `json:"error"`
	Pagination *models.Pagination `json:"pagination"`
}

// Client is an HTTP implementation of planning.Remote.
type Client struct {
	base   string
	http   *http.Client
	logger *zap.Logger
}

var _ planning.Remote = (*Client)(nil)

// NewClient builds a client rooted at baseURL (including the API prefix).
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// ListSessions fetches one page of sessions.
func (c *Client) ListSessions(ctx context.Context, params planning.QueryParams) (*dto.SessionList, error) {
	var sessions []models.Session
	pagination, err := c.do(ctx, http.MethodGet, "/sessions", params.Values(), nil, &sessions)
	if err != nil {
		return nil, err
	}
	list := &dto.SessionList{Data: sessions}
	if pagination != nil {
		list.Meta = *pagination
	}
	return list, nil
}

// CreateSession posts a new session.
func (c *Client) CreateSession(ctx context.Context, payload dto.SessionPayload) (*models.Session, error) {
	var session models.Session
	if _, err := c.do(ctx, http.MethodPost, "/sessions", nil, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateSession replaces an existing session.
func (c *Client) UpdateSession(ctx context.Context, id int64, payload dto.SessionPayload) (*models.Session, error) {
	var session models.Session
	if _, err := c.do(ctx, http.MethodPut, "/sessions/"+strconv.FormatInt(id, 10), nil, payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession soft-deletes a session.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/sessions/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

func (c *Client) ListSchoolYears(ctx context.Context) ([]models.SchoolYear, error) {
	var items []models.SchoolYear
	_, err := c.do(ctx, http.MethodGet, "/school-years", nil, nil, &items)
	return items, err
}

func (c *Client) ListPeriods(ctx context.Context, schoolYearID int64) ([]models.Period, error) {
	var items []models.Period
	_, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/school-years/%d/periods", schoolYearID), nil, nil, &items)
	return items, err
}

func (c *Client) ListClasses(ctx context.Context, schoolYearID int64, period string) ([]models.Class, error) {
	query := url.Values{}
	if schoolYearID > 0 {
		query.Set("school_year_id", strconv.FormatInt(schoolYearID, 10))
	}
	if period != "" {
		query.Set("period_id", period)
	}
	var items []models.Class
	_, err := c.do(ctx, http.MethodGet, "/classes", query, nil, &items)
	return items, err
}

func (c *Client) ListTeachers(ctx context.Context) ([]models.Teacher, error) {
	var items []models.Teacher
	_, err := c.do(ctx, http.MethodGet, "/teachers", nil, nil, &items)
	return items, err
}

func (c *Client) ListClassRooms(ctx context.Context) ([]models.ClassRoom, error) {
	var items []models.ClassRoom
	_, err := c.do(ctx, http.MethodGet, "/classrooms", nil, nil, &items)
	return items, err
}

func (c *Client) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	var items []models.Specialization
	_, err := c.do(ctx, http.MethodGet, "/specializations", nil, nil, &items)
	return items, err
}

func (c *Client) ListSessionTypes(ctx context.Context, status string) ([]models.SessionType, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	var items []models.SessionType
	_, err := c.do(ctx, http.MethodGet, "/session-types", query, nil, &items)
	return items, err
}

func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var items []models.Course
	_, err := c.do(ctx, http.MethodGet, "/courses", nil, nil, &items)
	return items, err
}

// do performs one request and decodes the envelope into out. Error envelopes
// become *appErrors.Error carrying the server's code, status and message.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) (*models.Pagination, error) {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request")
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "planner api unreachable")
	}
	defer resp.Body.Close()

	c.logger.Debug("planner api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", resp.Header.Get(requestid.Header)),
	)

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "read response")
	}

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode response")
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if env.Error != nil && env.Error.Message != "" {
			env.Error.Status = resp.StatusCode
			return nil, env.Error
		}
		return nil, appErrors.New("HTTP_"+strconv.Itoa(resp.StatusCode), resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode response data")
		}
	}
	return env.Pagination, nil
}
