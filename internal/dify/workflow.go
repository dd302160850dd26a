package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

type uploadResponse struct {
	ID string `json:"id"`
}

// UploadFile uploads a document to Dify and returns its file id. The
// returned id can be fed into RunWorkflow as a local_file input.
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader, user string) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("copy file content: %w", err)
	}
	if err := form.WriteField("user", user); err != nil {
		return "", fmt.Errorf("write user field: %w", err)
	}
	if err := form.WriteField("type", "TXT"); err != nil {
		return "", fmt.Errorf("write type field: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+fileUploadPath, &buf)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		snippet := readSnippet(resp.Body)
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, snippet)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("upload response carried no file id")
	}

	return parsed.ID, nil
}

type workflowFile struct {
	TransferMethod string `json:"transfer_method"`
	UploadFileID   string `json:"upload_file_id"`
	Type           string `json:"type"`
}

type workflowInputs struct {
	Query string       `json:"query"`
	File  workflowFile `json:"file"`
}

type workflowRequest struct {
	Inputs       workflowInputs `json:"inputs"`
	ResponseMode string         `json:"response_mode"`
	User         string         `json:"user"`
}

// RunWorkflow runs a Dify workflow in blocking mode against a previously
// uploaded document and returns the decoded response body.
func (c *Client) RunWorkflow(ctx context.Context, fileID, query, user string) (map[string]any, error) {
	body := workflowRequest{
		Inputs: workflowInputs{
			Query: query,
			File: workflowFile{
				TransferMethod: "local_file",
				UploadFileID:   fileID,
				Type:           "document",
			},
		},
		ResponseMode: responseModeBlocking,
		User:         user,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal workflow request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+workflowRunPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create workflow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workflow request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet := readSnippet(resp.Body)
		return nil, fmt.Errorf("workflow failed with status %d: %s", resp.StatusCode, snippet)
	}

	var parsed map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode workflow response: %w", err)
	}

	return parsed, nil
}
