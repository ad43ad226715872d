package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/alhaneef/text-weaver-pro/internal/ports"
)

// Client talks to one translation backend over HTTP. All transport and
// protocol failures are mapped into the ports error taxonomy so the executor
// can decide what is retryable.
type Client struct {
	ProviderType string
	APIKey       string
	BaseURL      string
	Model        string
	http         *resty.Client
}

func New(providerType, apiKey, baseURL, model string) *Client {
	c := resty.New()
	return &Client{ProviderType: strings.ToLower(providerType), APIKey: apiKey, BaseURL: baseURL, Model: model, http: c}
}

func (c *Client) Translate(ctx context.Context, req ports.TranslateRequest) (ports.TranslateResult, error) {
	switch c.ProviderType {
	case "openrouter":
		return c.translateChat(ctx, openRouterURL(c.base("https://openrouter.ai"), "/chat/completions"), req, true)
	case "openai":
		return c.translateChat(ctx, strings.TrimRight(c.base("https://api.openai.com"), "/")+"/v1/chat/completions", req, true)
	case "ollama":
		return c.translateOllama(ctx, req)
	default:
		return ports.TranslateResult{}, &ports.CapabilityError{Message: "unsupported provider: " + c.ProviderType}
	}
}

func (c *Client) ListModels(ctx context.Context) ([]ports.ModelInfo, error) {
	switch c.ProviderType {
	case "ollama":
		url := strings.TrimRight(c.base("http://localhost:11434"), "/") + "/api/tags"
		var resp struct {
			Models []struct {
				Name string `json:"name"`
			} `json:"models"`
		}
		r, err := c.http.R().SetContext(ctx).SetResult(&resp).Get(url)
		if err := mapTransportErr(ctx, err); err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, mapStatusErr(r)
		}
		out := make([]ports.ModelInfo, 0, len(resp.Models))
		for _, m := range resp.Models {
			out = append(out, ports.ModelInfo{Name: m.Name})
		}
		return out, nil
	case "openrouter", "openai":
		url := openRouterURL(c.base("https://openrouter.ai"), "/models")
		if c.ProviderType == "openai" {
			url = strings.TrimRight(c.base("https://api.openai.com"), "/") + "/v1/models"
		}
		var resp struct {
			Data []struct {
				ID            string `json:"id"`
				Name          string `json:"name"`
				ContextLength int    `json:"context_length"`
			} `json:"data"`
		}
		r, err := c.http.R().SetContext(ctx).
			SetHeader("Authorization", "Bearer "+c.APIKey).
			SetResult(&resp).Get(url)
		if err := mapTransportErr(ctx, err); err != nil {
			return nil, err
		}
		if r.IsError() {
			return nil, mapStatusErr(r)
		}
		out := make([]ports.ModelInfo, 0, len(resp.Data))
		for _, d := range resp.Data {
			label := d.Name
			if label == "" {
				label = d.ID
			}
			out = append(out, ports.ModelInfo{Name: d.ID, Description: label, ContextTokens: d.ContextLength})
		}
		return out, nil
	default:
		return nil, &ports.CapabilityError{Message: "unsupported provider: " + c.ProviderType}
	}
}

func (c *Client) Test(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

func (c *Client) translateChat(ctx context.Context, url string, p ports.TranslateRequest, bearer bool) (ports.TranslateResult, error) {
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": p.SystemPrompt},
			{"role": "user", "content": p.UserPrompt},
		},
		"temperature":     p.Temperature,
		"response_format": map[string]string{"type": "json_object"},
	}
	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	r := c.http.R().SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).SetResult(&resp)
	if bearer {
		r.SetHeader("Authorization", "Bearer "+c.APIKey)
	}
	rr, err := r.Post(url)
	if err := mapTransportErr(ctx, err); err != nil {
		return ports.TranslateResult{}, err
	}
	if rr.IsError() {
		// Some gateways reject response_format; retry the call without it.
		if rr.StatusCode() == 400 {
			delete(body, "response_format")
			r2 := c.http.R().SetContext(ctx).
				SetHeader("Content-Type", "application/json").
				SetBody(body).SetResult(&resp)
			if bearer {
				r2.SetHeader("Authorization", "Bearer "+c.APIKey)
			}
			rr2, err2 := r2.Post(url)
			if err := mapTransportErr(ctx, err2); err != nil {
				return ports.TranslateResult{}, err
			}
			if rr2.IsError() {
				return ports.TranslateResult{}, mapStatusErr(rr2)
			}
		} else {
			return ports.TranslateResult{}, mapStatusErr(rr)
		}
	}
	if len(resp.Choices) == 0 {
		return ports.TranslateResult{}, &ports.CapabilityError{Message: "no choices returned", Transient: true}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	tr, err := extractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) translateOllama(ctx context.Context, p ports.TranslateRequest) (ports.TranslateResult, error) {
	url := strings.TrimRight(c.base("http://localhost:11434"), "/") + "/api/chat"
	model := p.Model
	if model == "" {
		model = c.Model
	}
	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": p.SystemPrompt},
			{"role": "user", "content": p.UserPrompt},
		},
		"stream":  false,
		"format":  "json",
		"options": map[string]any{"temperature": p.Temperature},
	}
	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	rr, err := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(body).SetResult(&resp).Post(url)
	if err := mapTransportErr(ctx, err); err != nil {
		return ports.TranslateResult{}, err
	}
	if rr.IsError() {
		return ports.TranslateResult{}, mapStatusErr(rr)
	}
	content := strings.TrimSpace(resp.Message.Content)
	tr, err := extractTranslation(content)
	if err != nil {
		return ports.TranslateResult{}, err
	}
	return ports.TranslateResult{Translation: tr, Raw: content}, nil
}

func (c *Client) base(def string) string {
	if c.BaseURL == "" {
		return def
	}
	return c.BaseURL
}

// mapTransportErr folds resty/network errors into the taxonomy.
func mapTransportErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ports.ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ports.ErrTimeout
		}
		return ctx.Err()
	}
	return &ports.CapabilityError{Message: err.Error(), Transient: true}
}

// mapStatusErr folds HTTP error responses into the taxonomy: 429 is rate
// limiting, 5xx is transient, other 4xx is permanent.
func mapStatusErr(r *resty.Response) error {
	status := r.StatusCode()
	if status == 429 {
		return fmt.Errorf("%w: %s", ports.ErrRateLimited, abbreviate(r.String(), 300))
	}
	return &ports.CapabilityError{
		Status:    status,
		Message:   abbreviate(r.String(), 300),
		Transient: status >= 500,
	}
}

var translationRE = regexp.MustCompile(`(?s)"translation"\s*:\s*"(.*?)"`)

// extractTranslation pulls the translated text out of a model response that
// should be JSON but often is not quite.
func extractTranslation(content string) (string, error) {
	s := strings.TrimSpace(content)
	if idx := strings.Index(s, "```"); idx >= 0 {
		rest := s[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			s = strings.TrimSpace(rest[:j])
		}
	}
	var obj struct {
		Translation string `json:"translation"`
	}
	if err := json.Unmarshal([]byte(s), &obj); err == nil && obj.Translation != "" {
		return obj.Translation, nil
	}
	if m := translationRE.FindStringSubmatch(s); len(m) == 2 {
		t := strings.ReplaceAll(m[1], `\n`, "\n")
		t = strings.ReplaceAll(t, `\"`, `"`)
		return t, nil
	}
	if i := strings.Index(s, "{"); i >= 0 {
		if j := strings.LastIndex(s, "}"); j > i {
			inner := s[i : j+1]
			if err := json.Unmarshal([]byte(inner), &obj); err == nil && obj.Translation != "" {
				return obj.Translation, nil
			}
		}
	}
	// Accept a plain-text answer when JSON mode was not respected.
	if !strings.Contains(s, "{") && s != "" {
		lower := strings.ToLower(s)
		for _, k := range []string{"translation:", "translated:", "result:", "output:"} {
			if pos := strings.Index(lower, k); pos >= 0 && pos < 80 {
				if cand := strings.TrimSpace(s[pos+len(k):]); cand != "" {
					return cand, nil
				}
			}
		}
		return s, nil
	}
	return "", &ports.CapabilityError{
		Message:   "failed to parse translation JSON; content: " + abbreviate(s, 2000),
		Transient: true,
	}
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

// openRouterURL builds a URL for OpenRouter whether base contains /api/v1 or not.
func openRouterURL(base, tail string) string {
	b := strings.TrimRight(base, "/")
	if strings.Contains(b, "/api/v1") {
		idx := strings.Index(b, "/api/v1")
		b = b[:idx+len("/api/v1")]
		return b + tail
	}
	return b + "/api/v1" + tail
}
