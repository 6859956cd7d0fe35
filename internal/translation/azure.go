package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"swf-translator/internal/interpolation"
	"swf-translator/internal/textutil"
	"swf-translator/internal/worker"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// AzureOptions configures an AzureClient.
type AzureOptions struct {
	Key      string
	Region   string
	Endpoint string
	From     string
	To       string

	// BatchSize caps the number of strings per request.
	BatchSize int
	// MaxBatchChars caps the characters per request.
	MaxBatchChars int
	// MaxRetries bounds retries of transient failures per request.
	MaxRetries int
	// Timeout applies to each HTTP request.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate.
	RequestsPerSecond float64
	// RetryInitialInterval is the first backoff delay.
	RetryInitialInterval time.Duration

	HTTPClient *http.Client
	Progress   ProgressFunc
}

// AzureClient translates through the Microsoft Translator v3 REST API.
type AzureClient struct {
	opts       AzureOptions
	httpClient *http.Client
	limiter    *rate.Limiter
}

// TranslationServiceError reports a failure returned by the translation service.
type TranslationServiceError struct {
	Status  int
	Code    int
	Message string
}

func (e *TranslationServiceError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("translation service error (status %d, code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("translation service error (status %d): %s", e.Status, e.Message)
}

// Retryable reports whether the failure is transient.
func (e *TranslationServiceError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// NewAzureClient creates a client. The subscription key is required.
func NewAzureClient(opts AzureOptions) (*AzureClient, error) {
	if opts.Key == "" {
		return nil, errors.New("azure translator subscription key is required")
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "https://api.cognitive.microsofttranslator.com"
	}
	if opts.From == "" {
		opts.From = "ja"
	}
	if opts.To == "" {
		opts.To = "en"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.MaxBatchChars <= 0 {
		opts.MaxBatchChars = 10000
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.RetryInitialInterval <= 0 {
		opts.RetryInitialInterval = time.Second
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &AzureClient{
		opts:       opts,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}, nil
}

func (c *AzureClient) Name() string { return "azure" }

// --- Translator v3 request/response types ---

type azureText struct {
	Text string `json:"text"`
}

type azureResult struct {
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

type azureErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type pending struct {
	index    int
	text     string
	mappings []interpolation.Mapping
}

// TranslateAll translates sources in batches. Blank strings are returned
// unchanged without being sent.
func (c *AzureClient) TranslateAll(ctx context.Context, sources []string) ([]string, error) {
	results := make([]string, len(sources))
	var work []pending
	for i, s := range sources {
		if textutil.IsBlank(s) {
			results[i] = s
			continue
		}
		safe, mappings := interpolation.Protect(s)
		work = append(work, pending{index: i, text: safe, mappings: mappings})
	}
	if len(work) == 0 {
		return results, nil
	}

	batches := worker.BatchBy(work, c.opts.BatchSize, c.opts.MaxBatchChars, func(p pending) int {
		return utf8.RuneCountInString(p.text)
	})

	done := 0
	for i, batch := range batches {
		texts := make([]string, len(batch))
		for j, p := range batch {
			texts[j] = p.text
		}

		log.Debug().Int("batch", i+1).Int("batches", len(batches)).Int("strings", len(texts)).Msg("Sending translation batch")
		translated, err := c.translateBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("batch %d/%d: %w", i+1, len(batches), err)
		}

		for j, p := range batch {
			restored, missing := interpolation.Restore(translated[j], p.mappings)
			if len(missing) > 0 {
				log.Warn().
					Str("source", textutil.Truncate(sources[p.index], 60)).
					Int("missing", len(missing)).
					Msg("Translation dropped placeholders")
			}
			results[p.index] = restored
		}

		done += len(batch)
		c.opts.Progress.report(done, len(work))
	}

	return results, nil
}

// translateBatch sends one request, retrying transient failures with
// exponential backoff.
func (c *AzureClient) translateBatch(ctx context.Context, texts []string) ([]string, error) {
	body := make([]azureText, len(texts))
	for i, t := range texts {
		body[i] = azureText{Text: t}
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal translation request: %w", err)
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.opts.RetryInitialInterval
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(c.opts.MaxRetries)), ctx)

	attempt := 0
	var out []string
	op := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		result, err := c.doRequest(ctx, bodyBytes)
		if err == nil {
			out = result
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		var svcErr *TranslationServiceError
		if errors.As(err, &svcErr) && !svcErr.Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", wait).Msg("Retrying translation")
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	if len(out) != len(texts) {
		return nil, &TranslationServiceError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("sent %d strings, received %d translations", len(texts), len(out)),
		}
	}
	return out, nil
}

func (c *AzureClient) doRequest(ctx context.Context, bodyBytes []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	query := url.Values{}
	query.Set("api-version", "3.0")
	query.Set("from", c.opts.From)
	query.Set("to", c.opts.To)
	endpoint := strings.TrimRight(c.opts.Endpoint, "/") + "/translate?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.opts.Key)
	if c.opts.Region != "" {
		req.Header.Set("Ocp-Apim-Subscription-Region", c.opts.Region)
	}
	req.Header.Set("X-ClientTraceId", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		svcErr := &TranslationServiceError{Status: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		var eb azureErrorBody
		if json.Unmarshal(respBody, &eb) == nil && eb.Error.Message != "" {
			svcErr.Code = eb.Error.Code
			svcErr.Message = eb.Error.Message
		}
		return nil, svcErr
	}

	var results []azureResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, &TranslationServiceError{Status: resp.StatusCode, Message: "malformed response: " + err.Error()}
	}

	out := make([]string, len(results))
	for i, r := range results {
		if len(r.Translations) == 0 {
			return nil, &TranslationServiceError{Status: resp.StatusCode, Message: fmt.Sprintf("no translation for string %d", i+1)}
		}
		out[i] = r.Translations[0].Text
	}
	return out, nil
}
