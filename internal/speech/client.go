// Package speech provides access to the Azure Speech batch transcription
// API (v3.1). Jobs are created from a publicly reachable audio URL and
// polled until Azure reports a terminal status.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"

	"podscribe/internal/transcript"
)

// JobState is the remote job lifecycle status.
type JobState string

const (
	StateNotStarted JobState = "NotStarted"
	StateRunning    JobState = "Running"
	StateSucceeded  JobState = "Succeeded"
	StateFailed     JobState = "Failed"
)

// Terminal reports whether the state can no longer change.
func (s JobState) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// CreateJobRequest describes a transcription job to submit.
type CreateJobRequest struct {
	AudioURL    string
	DisplayName string
	Language    string
}

// JobStatus is the polled state of a remote job. Message is set only when
// the service reports a failure.
type JobStatus struct {
	State   JobState
	Message string
}

// Service defines the remote transcription operations the rest of the
// program depends on.
type Service interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (string, error)
	GetStatus(ctx context.Context, jobID string) (JobStatus, error)
	FetchSegments(ctx context.Context, jobID string) ([]transcript.Segment, error)
	DeleteJob(ctx context.Context, jobID string) error
}

// autoDetectCandidates are the locales offered to Azure language
// identification when the channel language is "auto".
var autoDetectCandidates = []string{
	"en-US", "zh-CN", "ja-JP", "ko-KR", "de-DE", "fr-FR", "es-ES",
}

// Client talks to the Azure Speech batch transcription endpoint for one
// service region.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

var _ Service = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the regional endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// New creates a speech client for the given subscription key and region.
func New(apiKey, region string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("speech api key required (set AZURE_SPEECH_KEY)")
	}
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return nil, errors.New("speech region required (set AZURE_SPEECH_REGION)")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    fmt.Sprintf("https://%s.api.cognitive.microsoft.com", region),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// StatusError carries a non-success HTTP response from the speech API.
type StatusError struct {
	Operation string
	Code      int
	Body      string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200]
	}
	if body == "" {
		return fmt.Sprintf("speech %s returned %d", e.Operation, e.Code)
	}
	return fmt.Sprintf("speech %s returned %d: %s", e.Operation, e.Code, body)
}

type createPayload struct {
	ContentURLs []string      `json:"contentUrls"`
	DisplayName string        `json:"displayName"`
	Locale      string        `json:"locale"`
	Properties  jobProperties `json:"properties"`
}

type jobProperties struct {
	WordLevelTimestampsEnabled bool           `json:"wordLevelTimestampsEnabled"`
	PunctuationMode            string         `json:"punctuationMode"`
	ProfanityFilterMode        string         `json:"profanityFilterMode"`
	DiarizationEnabled         bool           `json:"diarizationEnabled"`
	LanguageIdentification     *languageIdent `json:"languageIdentification,omitempty"`
}

type languageIdent struct {
	CandidateLocales []string `json:"candidateLocales"`
}

type createResponse struct {
	Self string `json:"self"`
}

// CreateJob submits a batch transcription for a single audio URL and
// returns the remote job id (the last segment of the job's self link).
func (c *Client) CreateJob(ctx context.Context, req CreateJobRequest) (string, error) {
	audioURL := strings.TrimSpace(req.AudioURL)
	if audioURL == "" {
		return "", errors.New("audio url must not be empty")
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = "podcast-" + uuid.NewString()
	}

	payload := createPayload{
		ContentURLs: []string{audioURL},
		DisplayName: displayName,
		Properties: jobProperties{
			WordLevelTimestampsEnabled: true,
			PunctuationMode:            "DictatedAndAutomatic",
			ProfanityFilterMode:        "None",
			DiarizationEnabled:         true,
		},
	}

	lang := strings.TrimSpace(req.Language)
	if lang == "" || strings.EqualFold(lang, "auto") {
		payload.Locale = "en-US"
		payload.Properties.LanguageIdentification = &languageIdent{
			CandidateLocales: autoDetectCandidates,
		}
	} else {
		if _, err := language.Parse(lang); err != nil {
			return "", fmt.Errorf("invalid language %q: %w", lang, err)
		}
		payload.Locale = lang
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode job payload: %w", err)
	}

	var resp createResponse
	if err := c.do(ctx, http.MethodPost, "/speechtotext/v3.1/transcriptions", body, "create job", &resp); err != nil {
		return "", err
	}

	jobID := lastPathSegment(resp.Self)
	if jobID == "" {
		return "", fmt.Errorf("create job response missing self link: %q", resp.Self)
	}
	return jobID, nil
}

type statusResponse struct {
	Status     string `json:"status"`
	Properties struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"properties"`
}

// GetStatus fetches the current lifecycle status for a job, including the
// service's error message when the job failed.
func (c *Client) GetStatus(ctx context.Context, jobID string) (JobStatus, error) {
	if jobID == "" {
		return JobStatus{}, errors.New("job id must not be empty")
	}
	var resp statusResponse
	if err := c.do(ctx, http.MethodGet, "/speechtotext/v3.1/transcriptions/"+jobID, nil, "get status", &resp); err != nil {
		return JobStatus{}, err
	}
	switch state := JobState(resp.Status); state {
	case StateNotStarted, StateRunning, StateSucceeded, StateFailed:
		return JobStatus{State: state, Message: strings.TrimSpace(resp.Properties.Error.Message)}, nil
	default:
		return JobStatus{}, fmt.Errorf("unknown job status %q", resp.Status)
	}
}

type filesResponse struct {
	Values []struct {
		Kind  string `json:"kind"`
		Links struct {
			ContentURL string `json:"contentUrl"`
		} `json:"links"`
	} `json:"values"`
}

type resultDocument struct {
	RecognizedPhrases []struct {
		Offset   string `json:"offset"`
		Duration string `json:"duration"`
		Speaker  int    `json:"speaker"`
		NBest    []struct {
			Display string `json:"display"`
		} `json:"nBest"`
	} `json:"recognizedPhrases"`
}

// FetchSegments downloads the transcription result for a succeeded job
// and flattens the recognized phrases into transcript segments. Phrases
// with no recognized text are dropped.
func (c *Client) FetchSegments(ctx context.Context, jobID string) ([]transcript.Segment, error) {
	if jobID == "" {
		return nil, errors.New("job id must not be empty")
	}

	var files filesResponse
	if err := c.do(ctx, http.MethodGet, "/speechtotext/v3.1/transcriptions/"+jobID+"/files", nil, "list files", &files); err != nil {
		return nil, err
	}

	contentURL := ""
	for _, file := range files.Values {
		if file.Kind == "Transcription" {
			contentURL = file.Links.ContentURL
			break
		}
	}
	if contentURL == "" {
		return nil, errors.New("no transcription result file in job output")
	}

	// Result files are served from pre-signed storage URLs; no
	// subscription key is attached.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build result request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch result file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Operation: "fetch result", Code: resp.StatusCode}
	}

	var doc resultDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode result file: %w", err)
	}

	segments := make([]transcript.Segment, 0, len(doc.RecognizedPhrases))
	for _, phrase := range doc.RecognizedPhrases {
		if len(phrase.NBest) == 0 {
			continue
		}
		text := strings.TrimSpace(phrase.NBest[0].Display)
		if text == "" {
			continue
		}
		start, err := parseISODuration(phrase.Offset)
		if err != nil {
			return nil, fmt.Errorf("parse phrase offset %q: %w", phrase.Offset, err)
		}
		length, err := parseISODuration(phrase.Duration)
		if err != nil {
			return nil, fmt.Errorf("parse phrase duration %q: %w", phrase.Duration, err)
		}
		segments = append(segments, transcript.Segment{
			Start:   start,
			End:     start + length,
			Text:    text,
			Speaker: phrase.Speaker,
		})
	}
	return segments, nil
}

// DeleteJob removes the remote job and its stored artifacts.
func (c *Client) DeleteJob(ctx context.Context, jobID string) error {
	if jobID == "" {
		return errors.New("job id must not be empty")
	}
	return c.do(ctx, http.MethodDelete, "/speechtotext/v3.1/transcriptions/"+jobID, nil, "delete job", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, operation string, out any) error {
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return &StatusError{Operation: operation, Code: resp.StatusCode, Body: buf.String()}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func lastPathSegment(raw string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return ""
	}
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return ""
	}
	return trimmed[idx+1:]
}
