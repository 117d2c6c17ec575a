package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/katkatprog/sleepApp-sub000/internal/models"
	"github.com/katkatprog/sleepApp-sub000/pkg/errors"
	"github.com/katkatprog/sleepApp-sub000/pkg/storage"
)

// Designated voices of the synthesis service. One male voice; two
// female voices picked 50/50 per call for variety.
const (
	VoiceTakumi = "Takumi"
	VoiceKazuha = "Kazuha"
	VoiceTomoko = "Tomoko"

	synthesisLanguage = "ja-JP"
	outputFormat      = "mp3"

	// ObjectKeyPrefix is where synthesized tracks land in the bucket.
	ObjectKeyPrefix = "tracks/"
)

// SelectVoice resolves a voice gender to a concrete voice identity.
func SelectVoice(voiceGender string, rng *rand.Rand) string {
	if voiceGender == models.GenderMale {
		return VoiceTakumi
	}
	if rng.Intn(2) == 0 {
		return VoiceKazuha
	}
	return VoiceTomoko
}

// Dispatcher submits markup to the asynchronous synthesis service and
// returns a locator for the (possibly still-processing) output.
type Dispatcher interface {
	Submit(ctx context.Context, markup, voice string) (string, error)
}

// SynthesisClient submits synthesis tasks over HTTP. Completion is not
// awaited: the returned locator may reference a task still running
// server-side.
type SynthesisClient struct {
	serviceURL string
	apiKey     string
	store      storage.Store
	httpc      *http.Client
}

// NewSynthesisClient validates credentials up front so a misconfigured
// batch fails at startup rather than mid-run.
func NewSynthesisClient(serviceURL, apiKey string, store storage.Store) (*SynthesisClient, error) {
	if serviceURL == "" || apiKey == "" {
		return nil, errors.WithCode(errors.CodeSynthesis, "synthesis service credentials missing")
	}
	return &SynthesisClient{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		apiKey:     apiKey,
		store:      store,
		httpc:      &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type synthesisTaskRequest struct {
	Text         string `json:"text"`
	TextType     string `json:"textType"`
	Language     string `json:"language"`
	Voice        string `json:"voice"`
	OutputFormat string `json:"outputFormat"`
	OutputBucket string `json:"outputBucket"`
	OutputKey    string `json:"outputKey"`
}

type synthesisTaskResponse struct {
	TaskID    string `json:"taskId"`
	OutputURI string `json:"outputUri"`
}

// Submit sends one synthesis task and returns its output locator. Any
// submission problem is a synthesis-coded error; there is no retry at
// this layer.
func (c *SynthesisClient) Submit(ctx context.Context, markup, voice string) (string, error) {
	key := ObjectKeyPrefix + uuid.NewString() + "." + outputFormat
	body, err := json.Marshal(synthesisTaskRequest{
		Text:         markup,
		TextType:     "ssml",
		Language:     synthesisLanguage,
		Voice:        voice,
		OutputFormat: outputFormat,
		OutputBucket: c.store.Bucket(),
		OutputKey:    key,
	})
	if err != nil {
		return "", errors.WrapCode(errors.CodeSynthesis, err, "failed to marshal synthesis task")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serviceURL+"/v1/synthesis-tasks", bytes.NewReader(body))
	if err != nil {
		return "", errors.WrapCode(errors.CodeSynthesis, err, "failed to create synthesis request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", errors.WrapCode(errors.CodeSynthesis, err, "failed to submit synthesis task")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", errors.WithCodef(errors.CodeSynthesis, "synthesis service returned %d: %s", resp.StatusCode, raw)
	}

	var task synthesisTaskResponse
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return "", errors.WrapCode(errors.CodeSynthesis, err, "failed to decode synthesis response")
	}
	if task.OutputURI == "" {
		return "", errors.WithCode(errors.CodeSynthesis, "synthesis response lacks an output locator")
	}
	return task.OutputURI, nil
}
