package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"videodub/types"
)

// Transcribe uploads a video file and returns its transcription.
func (c *Client) Transcribe(ctx context.Context, videoPath string) (string, error) {
	var result struct {
		Transcript string `json:"transcript"`
	}
	if err := c.doUpload(ctx, "/api/transcribe", videoPath, nil, &result); err != nil {
		return "", err
	}
	return result.Transcript, nil
}

// Translate translates text into the target language via the API.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	payload := map[string]interface{}{
		"text":           text,
		"targetLanguage": targetLanguage,
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/translate", payload, &result); err != nil {
		return "", err
	}
	return result.TranslatedText, nil
}

// Synthesize converts text to speech and returns the audio URL.
func (c *Client) Synthesize(ctx context.Context, text string, settings types.VoiceSettings) (string, error) {
	payload := map[string]interface{}{
		"text":          text,
		"voiceSettings": settings,
	}

	var result struct {
		AudioURL string `json:"audioUrl"`
	}
	if err := c.doJSONRequest(ctx, http.MethodPost, "/api/synthesize", payload, &result); err != nil {
		return "", err
	}
	return result.AudioURL, nil
}

// Dub remuxes synthesized audio into the video and returns the video URL.
func (c *Client) Dub(ctx context.Context, videoPath, audioURL string) (string, error) {
	var result struct {
		VideoURL string `json:"videoUrl"`
	}
	fields := map[string]string{"audioUrl": audioURL}
	if err := c.doUpload(ctx, "/api/dub", videoPath, fields, &result); err != nil {
		return "", err
	}
	return result.VideoURL, nil
}

// doJSONRequest performs a JSON request with the given method, path, payload, and result.
// If result is nil, the response body is not decoded.
func (c *Client) doJSONRequest(ctx context.Context, method, path string, payload, result interface{}) error {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// doUpload performs a multipart upload of the video file plus extra form
// fields and decodes the JSON response into result.
func (c *Client) doUpload(ctx context.Context, path, videoPath string, fields map[string]string, result interface{}) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("failed to open video: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("video", filepath.Base(videoPath))
	if err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read video: %w", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build form: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
