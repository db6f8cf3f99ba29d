package opentdb

import (
	"context"
	"fmt"
	"html"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"quiz-runner/internal/domain"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com"

// AnyDifficulty requests questions of every difficulty.
const AnyDifficulty = "any"

// Response codes documented by Open Trivia DB.
const (
	codeSuccess   = 0
	codeNoResults = 1
)

type apiResponse struct {
	ResponseCode int         `json:"response_code"`
	Results      []apiResult `json:"results"`
}

type apiResult struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// Client loads multiple-choice questions from Open Trivia DB.
type Client struct {
	http   *resty.Client
	logger *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Client.
type Option func(*Client)

// WithRand sets the source used to shuffle options.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Client) { c.rnd = rnd }
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		logger: zap.NewNop(),
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadQuestions fetches count questions of type multiple for difficulty.
func (c *Client) LoadQuestions(ctx context.Context, difficulty string, count int) ([]domain.Question, error) {
	params := map[string]string{
		"amount": strconv.Itoa(count),
		"type":   "multiple",
	}
	if difficulty != "" && difficulty != AnyDifficulty {
		params["difficulty"] = difficulty
	}

	var body apiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(&body).
		Get("/api.php")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrSourceUnavailable, resp.StatusCode())
	}

	switch body.ResponseCode {
	case codeSuccess:
	case codeNoResults:
		return nil, fmt.Errorf("%w: no results for difficulty %q", domain.ErrEmptyResult, difficulty)
	default:
		return nil, fmt.Errorf("%w: response code %d", domain.ErrSourceUnavailable, body.ResponseCode)
	}

	questions := c.normalize(body.Results)
	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: difficulty %q", domain.ErrEmptyResult, difficulty)
	}
	return questions, nil
}

// normalize decodes HTML entities, shuffles options and drops questions that
// do not form a valid multiple-choice set.
func (c *Client) normalize(results []apiResult) []domain.Question {
	c.mu.Lock()
	defer c.mu.Unlock()

	questions := make([]domain.Question, 0, len(results))
	for _, r := range results {
		q := domain.Question{
			Prompt:        html.UnescapeString(r.Question),
			CorrectOption: html.UnescapeString(r.CorrectAnswer),
		}
		q.Options = make([]string, 0, len(r.IncorrectAnswers)+1)
		for _, ans := range r.IncorrectAnswers {
			q.Options = append(q.Options, html.UnescapeString(ans))
		}
		q.Options = append(q.Options, q.CorrectOption)

		if err := q.Validate(); err != nil {
			c.logger.Warn("dropping malformed question", zap.String("prompt", q.Prompt), zap.Error(err))
			continue
		}
		questions = append(questions, q.Shuffled(c.rnd))
	}
	return questions
}
