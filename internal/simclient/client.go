package simclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
	"github.com/GEO-SCOPE/geoscope-backend/internal/logger"
)

// Client talks to the external simulation backend that answers benchmark
// questions as the tracked AI engines would. Simulate runs under the normal
// per-pair budget; AnalyzeCompetitors and GenerateQuestions carry the
// extended budget (deep analysis has been observed to take up to 120s).
type Client interface {
	Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error)
	AnalyzeCompetitors(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error)
	GenerateQuestions(ctx context.Context, req GenerateRequest) ([]GeneratedQuestion, error)
}

type SimulateRequest struct {
	Question    string   `json:"question"`
	Engine      string   `json:"engine"`
	Channel     string   `json:"channel"`
	BrandName   string   `json:"brand_name"`
	Competitors []string `json:"competitors"`
	PersonaRole string   `json:"persona_role,omitempty"`
}

type SimulateResponse struct {
	SimulatedResponse    string   `json:"simulated_response"`
	Sentiment            string   `json:"sentiment"`
	BrandMentioned       bool     `json:"brand_mentioned"`
	CompetitorMentioned  bool     `json:"competitor_mentioned"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	Ranking              *int     `json:"ranking"`
	Citations            []string `json:"citations"`
	RiskFlags            []string `json:"risk_flags"`
	CTA                  *string  `json:"cta"`
	VisibilityScore      int      `json:"visibility_score"`
}

type AnalyzeRequest struct {
	Question          string   `json:"question"`
	SimulatedResponse string   `json:"simulated_response"`
	Engine            string   `json:"engine"`
	BrandName         string   `json:"brand_name"`
	Competitors       []string `json:"competitors"`
}

type GenerateRequest struct {
	BrandName         string   `json:"brand_name"`
	Industry          string   `json:"industry"`
	Scenario          string   `json:"scenario"`
	TargetRoles       []string `json:"target_roles"`
	Intent            string   `json:"intent"`
	QuestionsPerStage int      `json:"questions_per_stage"`
}

type GeneratedQuestion struct {
	Text        string `json:"text"`
	PersonaRole string `json:"persona_role"`
	PersonaName string `json:"persona_name"`
	Keyword     string `json:"keyword"`
}

type client struct {
	log             *logger.Logger
	baseURL         string
	apiKey          string
	httpClient      *http.Client
	simulateTimeout time.Duration
	analysisTimeout time.Duration
}

func New(log *logger.Logger) (Client, error) {
	baseURL := os.Getenv("SIM_BACKEND_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("missing SIM_BACKEND_URL")
	}
	apiKey := os.Getenv("SIM_BACKEND_API_KEY")

	simulateSec := 60
	if v := os.Getenv("SIM_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			simulateSec = parsed
		}
	}
	analysisSec := 120
	if v := os.Getenv("SIM_ANALYSIS_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			analysisSec = parsed
		}
	}

	return &client{
		log:             log.With("service", "SimClient"),
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		httpClient:      &http.Client{},
		simulateTimeout: time.Duration(simulateSec) * time.Second,
		analysisTimeout: time.Duration(analysisSec) * time.Second,
	}, nil
}

func (c *client) Simulate(ctx context.Context, req SimulateRequest) (*SimulateResponse, error) {
	var out SimulateResponse
	if err := c.post(ctx, "/v1/simulate", c.simulateTimeout, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) AnalyzeCompetitors(ctx context.Context, req AnalyzeRequest) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.post(ctx, "/v1/analyze/competitors", c.analysisTimeout, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *client) GenerateQuestions(ctx context.Context, req GenerateRequest) ([]GeneratedQuestion, error) {
	var out struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := c.post(ctx, "/v1/generate/questions", c.analysisTimeout, req, &out); err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (c *client) post(ctx context.Context, path string, timeout time.Duration, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperr.UpstreamTimeout("simulation backend "+path, err)
		}
		return fmt.Errorf("simulation backend %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusGatewayTimeout {
			return apperr.UpstreamTimeout("simulation backend "+path, fmt.Errorf("http %d", resp.StatusCode))
		}
		return fmt.Errorf("simulation backend %s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
