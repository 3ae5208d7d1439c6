package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"readalong/internal/models"
)

const defaultTimeout = 30 * time.Second

// Client wraps the remote student endpoints. It holds no state
// beyond the base URL; every call is independent.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL (e.g.
// "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// FetchStudents retrieves the student collection, optionally scoped
// to a class. Every returned record has been through Normalize.
func (c *Client) FetchStudents(ctx context.Context, classID string) ([]models.StudentRecord, error) {
	endpoint := c.baseURL + "/api/students"
	if classID != "" {
		endpoint += "?classId=" + url.QueryEscape(classID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch students: unexpected status %d", resp.StatusCode)
	}

	var raw []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fetch students: decode response: %w", err)
	}

	records := make([]models.StudentRecord, 0, len(raw))
	for _, entry := range raw {
		records = append(records, models.Normalize(entry))
	}
	return records, nil
}

// PushStudent upserts one record's summary fields on the server.
// The call is idempotent per record id.
func (c *Client) PushStudent(ctx context.Context, rec models.StudentRecord) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/students", body)
}

// ProgressUpdate is the payload for one week's practice outcome.
type ProgressUpdate struct {
	Week     int          `json:"week"`
	Score    int          `json:"score"`
	Speed    models.Speed `json:"speed"`
	AudioURL string       `json:"audioUrl,omitempty"`
}

// PushProgress appends or updates one week's outcome for a student.
// Idempotent per (student, week).
func (c *Client) PushProgress(ctx context.Context, studentID string, update ProgressUpdate) error {
	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/students/"+url.PathEscape(studentID)+"/progress", body)
}

// UploadAudio sends a recorded audio artifact and returns the URL the
// server stored it under.
func (c *Client) UploadAudio(ctx context.Context, audio io.Reader, filename string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audioFile", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload-student-audio", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload audio: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("upload audio: decode response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("upload audio: server returned no url")
	}
	return result.URL, nil
}

// DeleteStudent removes one record from the server. There is no
// tombstone: a peer holding a stale cache can resurrect the record on
// its next sync.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/students/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete student: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}
