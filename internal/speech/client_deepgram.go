package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

const deepgramURL = "https://api.deepgram.com"

// DeepgramClient is an alternative transcriber with language detection.
type DeepgramClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewDeepgramClient(apiKey string, client *http.Client) *DeepgramClient {
	if client == nil {
		client = &http.Client{}
	}
	return &DeepgramClient{
		apiKey:  apiKey,
		baseURL: deepgramURL,
		client:  client,
	}
}

func (c *DeepgramClient) Transcribe(ctx context.Context, name string, audio io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		strings.TrimRight(c.baseURL, "/")+"/v1/listen?model=nova-2&smart_format=true&detect_language=true",
		audio,
	)
	if err != nil {
		return "", err
	}

	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", contentTypeFor(name))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepgram request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepgram error: %s", body)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode deepgram: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	return strings.TrimSpace(parsed.Results.Channels[0].Alternatives[0].Transcript), nil
}

func contentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(name), ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(strings.ToLower(name), ".wav"):
		return "audio/wav"
	case strings.HasSuffix(strings.ToLower(name), ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(strings.ToLower(name), ".m4a"):
		return "audio/mp4"
	}
	return "audio/webm"
}
