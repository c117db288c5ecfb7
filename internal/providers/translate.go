package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultTranslateBaseURL = "https://translate.googleapis.com"

// GoogleTranslator calls the unofficial Google Translate web endpoint. No API
// key is required, but the endpoint may rate-limit aggressive callers.
type GoogleTranslator struct {
	BaseURL string
	Client  *http.Client
	Log     *logrus.Logger
}

// NewGoogleTranslator returns a translator against the public endpoint.
func NewGoogleTranslator(log *logrus.Logger) *GoogleTranslator {
	return &GoogleTranslator{
		BaseURL: defaultTranslateBaseURL,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

// Translate returns text translated into the target language. Source may be
// "auto" to let the provider detect it.
func (t *GoogleTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	if source == "" {
		source = "auto"
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := t.BaseURL + "/translate_a/single?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("translation provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	translated, err := parseTranslateResponse(resp.Body)
	if err != nil {
		return "", err
	}
	return translated, nil
}

// parseTranslateResponse walks the endpoint's nested-array payload:
// [[["bonjour","hello",...],["le monde","world",...]],null,"en",...]. The
// translated text is the first element of each sentence array, concatenated.
func parseTranslateResponse(r io.Reader) (string, error) {
	var payload []json.RawMessage
	if err := decodeJSON(r, &payload); err != nil {
		return "", fmt.Errorf("decode translation response: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translation response")
	}

	var sentences []json.RawMessage
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return "", fmt.Errorf("decode translation sentences: %w", err)
	}

	var sb strings.Builder
	for _, raw := range sentences {
		var parts []json.RawMessage
		if err := json.Unmarshal(raw, &parts); err != nil || len(parts) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(parts[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("translation response carried no text")
	}
	return sb.String(), nil
}

func decodeJSON(r io.Reader, v any) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
