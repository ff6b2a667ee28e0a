package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codelab/pkg/interfaces"
	"codelab/pkg/types"
)

// Client talks to the external lesson platform over one configurable base
// URL. Every request carries the bearer token; a client is never built
// without one, so "missing token" is decided exactly once, up front.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a backend client. An empty token is the fatal
// login-required condition; no request is ever attempted without one.
func NewClient(baseURL, token string, timeout time.Duration) (*Client, error) {
	if token == "" {
		return nil, interfaces.ErrLoginRequired
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// APIError is a non-2xx response with the server-supplied message, surfaced
// verbatim to the relevant panel.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// errorBody is the platform's uniform error shape.
type errorBody struct {
	Error string `json:"error"`
}

// do issues one JSON request and returns the raw response body for 2xx
// responses. Non-2xx responses become *APIError.
func (c *Client) do(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Message = eb.Error
		}
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	data, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// FetchWorkspace returns the lesson plus the learner's prior submission
// files or the template. Fetched once per lesson view.
func (c *Client) FetchWorkspace(ctx context.Context, lessonID string) (*types.WorkspaceState, error) {
	if !types.IsValidLessonID(lessonID) {
		return nil, types.ErrInvalidLessonID
	}
	var state types.WorkspaceState
	if err := c.getJSON(ctx, "/api/lessons/"+lessonID+"/workspace", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

type filesBody struct {
	Files []types.WorkspaceFile `json:"files"`
}

// SaveProgress persists the full file set without grading.
func (c *Client) SaveProgress(ctx context.Context, lessonID string, fileSet []types.WorkspaceFile) error {
	return c.postJSON(ctx, "/api/lessons/"+lessonID+"/save", filesBody{Files: fileSet}, nil)
}

// Submit grades the solution. The response is a tagged union; the
// discriminator is validated in one place so a backend contract change
// fails loudly instead of being misread.
func (c *Client) Submit(ctx context.Context, req *types.SubmitRequest) (*types.SubmitOutcome, error) {
	data, err := c.do(ctx, http.MethodPost, "/api/lessons/"+req.LessonID+"/submit", req)
	if err != nil {
		return nil, err
	}
	return types.ParseSubmitOutcome(data)
}

// RunTests executes the lesson's test suite against the given files.
// Transport failures are returned as errors; the workspace maps them to a
// synthetic result for display.
func (c *Client) RunTests(ctx context.Context, lessonID string, fileSet []types.WorkspaceFile) (*types.TestRunResult, error) {
	var result types.TestRunResult
	if err := c.postJSON(ctx, "/api/lessons/"+lessonID+"/tests", filesBody{Files: fileSet}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type hintResponse struct {
	Hint string `json:"hint"`
}

// RequestHint asks for an AI hint on a code selection.
func (c *Client) RequestHint(ctx context.Context, req *types.HintRequest) (string, error) {
	var resp hintResponse
	if err := c.postJSON(ctx, "/api/hints", req, &resp); err != nil {
		return "", err
	}
	return resp.Hint, nil
}

type feedbackResponse struct {
	Feedback string `json:"feedback"`
}

// RequestFeedback asks for conceptual feedback on the whole solution.
func (c *Client) RequestFeedback(ctx context.Context, lessonID string, fileSet []types.WorkspaceFile) (string, error) {
	var resp feedbackResponse
	if err := c.postJSON(ctx, "/api/lessons/"+lessonID+"/feedback", filesBody{Files: fileSet}, &resp); err != nil {
		return "", err
	}
	return resp.Feedback, nil
}

type createdResponse struct {
	ID string `json:"id"`
}

// CreateCourse creates a course and returns its id.
func (c *Client) CreateCourse(ctx context.Context, title, description string) (string, error) {
	var resp createdResponse
	body := map[string]string{"title": title, "description": description}
	if err := c.postJSON(ctx, "/api/courses", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateChapter creates a chapter within a course.
func (c *Client) CreateChapter(ctx context.Context, courseID, title string) (string, error) {
	var resp createdResponse
	body := map[string]string{"title": title}
	if err := c.postJSON(ctx, "/api/courses/"+courseID+"/chapters", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateLesson creates a lesson within a chapter.
func (c *Client) CreateLesson(ctx context.Context, chapterID, title, description string) (string, error) {
	var resp createdResponse
	body := map[string]string{"title": title, "description": description}
	if err := c.postJSON(ctx, "/api/chapters/"+chapterID+"/lessons", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// SetLessonPublished toggles lesson visibility.
func (c *Client) SetLessonPublished(ctx context.Context, lessonID string, published bool) error {
	body := map[string]bool{"published": published}
	return c.postJSON(ctx, "/api/lessons/"+lessonID+"/publish", body, nil)
}

var _ interfaces.BackendClient = (*Client)(nil)
var _ interfaces.AuthoringClient = (*Client)(nil)
