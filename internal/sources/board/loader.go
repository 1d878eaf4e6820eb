package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/agora/internal/logger"
)

// ErrNoSource is returned when the loader has nothing to read from.
var ErrNoSource = errors.New("board source is empty")

// maxBoardBytes caps remote documents.
const maxBoardBytes = 8 << 20

var templateVar = regexp.MustCompile(`\{\{[^}]+\}\}`)

// StatusError is a non-200 answer from a remote board source.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("board source %s answered HTTP %d", e.URL, e.Code)
}

// Loader reads and parses a board document from a local path or an
// http(s) URL. Remote fetches are retried with backoff; 4xx answers are not.
type Loader struct {
	source   string
	client   *http.Client
	logger   logger.Logger
	attempts uint
	delay    time.Duration
	maxDelay time.Duration
}

// Option customizes a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for remote sources.
func WithHTTPClient(c *http.Client) Option { return func(l *Loader) { l.client = c } }

// WithLogger sets the logger used to report retries.
func WithLogger(log logger.Logger) Option { return func(l *Loader) { l.logger = log } }

// WithRetry sets the attempt budget and the initial delay between attempts.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(l *Loader) {
		if attempts > 0 {
			l.attempts = attempts
		}
		l.delay = delay
	}
}

// NewLoader creates a board loader for source.
func NewLoader(source string, opts ...Option) *Loader {
	l := &Loader{
		source:   strings.TrimSpace(source),
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger.Nop(),
		attempts: 5,
		delay:    time.Second,
		maxDelay: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Source returns the configured path or URL.
func (l *Loader) Source() string { return l.source }

// IsRemote reports whether the source is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return strings.HasPrefix(l.source, "http://") || strings.HasPrefix(l.source, "https://")
}

// Load reads and parses the board document.
func (l *Loader) Load(ctx context.Context) (*File, error) {
	if l.source == "" {
		return nil, ErrNoSource
	}

	var (
		data []byte
		err  error
	)
	if l.IsRemote() {
		data, err = l.fetch(ctx)
	} else {
		data, err = os.ReadFile(l.source)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read board source: %w", err)
	}

	// Placeholders like {{AGORA_VAR_X}} are deployment templating leftovers.
	data = stripTemplateVariables(data)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse board yaml: %w", err)
	}

	return &file, nil
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	var body []byte

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, http.NoBody)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("create request: %w", err))
			}
			req.Header.Set("Accept", "application/yaml, text/yaml, text/plain;q=0.9, */*;q=0.5")

			resp, err := l.client.Do(req)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := resp.Body.Close(); closeErr != nil {
					l.logger.Debug("failed to close board response body", logger.Error(closeErr))
				}
			}()

			if resp.StatusCode != http.StatusOK {
				statusErr := &StatusError{URL: l.source, Code: resp.StatusCode}
				if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
					return retry.Unrecoverable(statusErr)
				}
				return statusErr
			}

			b, err := io.ReadAll(io.LimitReader(resp.Body, maxBoardBytes))
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}
			body = b
			return nil
		},
		retry.Attempts(l.attempts),
		retry.Delay(l.delay),
		retry.MaxDelay(l.maxDelay),
		retry.MaxJitter(max(l.delay, time.Millisecond)),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			l.logger.Warn("board fetch failed, retrying",
				logger.String("source", l.source),
				logger.Int("attempt", int(n)+1),
				logger.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("after retries: %w", err)
	}
	return body, nil
}

// stripTemplateVariables replaces {{...}} placeholders with empty strings.
func stripTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAll(data, []byte(`""`))
}
