package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ntentasd/aggregator-api/pkg/types"
)

// PollTimeoutError is returned when a record never leaves the
// uploaded/processing states within the configured timeout.
type PollTimeoutError struct {
	FileID     string
	LastStatus types.ProcessingStatus
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for processing of %s (last status: %s)", e.FileID, e.LastStatus)
}

type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Detail)
}

// Client is a minimal HTTP client for the aggregator service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// UploadFile posts the file at path as a multipart upload and returns
// the assigned file_id.
func (c *Client) UploadFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(c.baseURL+"/files", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", statusError(resp)
	}

	var payload struct {
		FileID string `json:"file_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("unexpected upload response: %w", err)
	}
	if payload.FileID == "" {
		return "", errors.New("unexpected upload response: missing file_id")
	}
	return payload.FileID, nil
}

// GetResult fetches the current record for a file_id.
func (c *Client) GetResult(fileID string) (*types.ProcessingResult, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/files/" + fileID)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var record types.ProcessingResult
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("unexpected result response: %w", err)
	}
	return &record, nil
}

// PollResult polls until the record leaves the uploaded/processing
// states or the timeout elapses.
func (c *Client) PollResult(fileID string, interval, timeout time.Duration) (*types.ProcessingResult, error) {
	deadline := time.Now().Add(timeout)
	var last *types.ProcessingResult

	for {
		record, err := c.GetResult(fileID)
		if err != nil {
			return nil, err
		}
		last = record

		if record.Status.Terminal() {
			return record, nil
		}
		if time.Now().After(deadline) {
			return last, &PollTimeoutError{FileID: fileID, LastStatus: last.Status}
		}
		time.Sleep(interval)
	}
}

func statusError(resp *http.Response) error {
	detail := "no detail provided."
	var payload struct {
		Detail string `json:"detail"`
	}
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		detail = payload.Detail
	} else if len(bytes.TrimSpace(body)) > 0 {
		detail = string(bytes.TrimSpace(body))
	}
	return &StatusError{StatusCode: resp.StatusCode, Detail: detail}
}
