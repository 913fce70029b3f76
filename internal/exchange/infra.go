package exchange

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const exchangePath = "/transcribe_and_summarize"

type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string, client *http.Client) *HTTPClient {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

// Send posts one utterance. The call is bounded only by ctx and the transport.
func (c *HTTPClient) Send(ctx context.Context, in Input, targetLanguage string, mode Mode) (Reply, error) {
	hasText := strings.TrimSpace(in.Text) != ""
	hasAudio := len(in.Audio) > 0
	if hasText == hasAudio {
		return Reply{}, ErrInvalidInput
	}

	body, contentType, err := buildForm(in, targetLanguage, mode)
	if err != nil {
		return Reply{}, fmt.Errorf("build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+exchangePath, body)
	if err != nil {
		return Reply{}, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Reply{}, fmt.Errorf("exchange request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Reply{}, fmt.Errorf("read exchange reply: %w", err)
	}

	var parsed struct {
		Reply
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		if resp.StatusCode >= 300 {
			return Reply{}, fmt.Errorf("exchange status: %s", resp.Status)
		}
		return Reply{}, fmt.Errorf("decode exchange reply: %w", err)
	}
	if parsed.Error != "" {
		return Reply{}, &RemoteError{Status: resp.StatusCode, Message: parsed.Error}
	}
	if resp.StatusCode >= 300 {
		return Reply{}, fmt.Errorf("exchange status: %s", resp.Status)
	}

	return parsed.Reply, nil
}

func buildForm(in Input, targetLanguage string, mode Mode) (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)

	if len(in.Audio) > 0 {
		name := in.AudioName
		if name == "" {
			name = "recording.webm"
		}
		part, err := w.CreateFormFile("audio_file", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(in.Audio); err != nil {
			return nil, "", err
		}
	} else {
		if err := w.WriteField("text_input", in.Text); err != nil {
			return nil, "", err
		}
	}

	if err := w.WriteField("target_lang", targetLanguage); err != nil {
		return nil, "", err
	}
	if mode == "" {
		mode = ModeSummary
	}
	if err := w.WriteField("mode", string(mode)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf, w.FormDataContentType(), nil
}
