package tibber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/alejandrodnm/wattcast/internal/telemetry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	defaultAPIURL = "https://api.tibber.com/v1-beta/gql"

	// Tibber no documenta límites por token; con 2 req/s no vemos 429 en la
	// práctica y un rango de un año en chunks de 168h tarda ~30s.
	defaultRatePerSec = 2
	defaultBurst      = 4

	defaultMaxRetries = 6
	maxJitter         = 500 * time.Millisecond
	requestTimeout    = 30 * time.Second
)

// DefaultRetryWait es la espera base del backoff: 1s, 2s, 4s, ... hasta 64s.
const DefaultRetryWait = time.Second

// Client es el cliente GraphQL de Tibber con rate limiting, retries y circuit breaker.
type Client struct {
	http       *http.Client
	apiURL     string
	token      string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	metrics    *telemetry.Metrics
	maxRetries int
	retryWait  time.Duration
}

// Option configura un Client.
type Option func(*Client)

// WithHTTPClient reemplaza el http.Client por defecto.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit cambia el token bucket de peticiones.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(perSec), burst) }
}

// WithRetry cambia el número máximo de reintentos y la espera base del backoff.
func WithRetry(maxRetries int, wait time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryWait = wait
	}
}

// WithMetrics activa los contadores de peticiones.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient crea un Client autenticado con token.
// Si apiURL está vacío usa el endpoint de producción.
func NewClient(apiURL, token string, opts ...Option) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	c := &Client{
		http:       &http.Client{Timeout: requestTimeout},
		apiURL:     apiURL,
		token:      token,
		limiter:    rate.NewLimiter(defaultRatePerSec, defaultBurst),
		maxRetries: defaultMaxRetries,
		retryWait:  DefaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "tibber",
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Un error GraphQL es una respuesta válida del servidor; no abre el circuito.
		IsSuccessful: func(err error) bool {
			var gqlErr *GraphQLError
			return err == nil || errors.As(err, &gqlErr)
		},
	})
	return c
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// GraphQLError agrupa los mensajes del array "errors" de la respuesta.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "tibber API error: " + strings.Join(e.Messages, ", ")
}

// query envía una consulta GraphQL y decodifica la respuesta en out.
func (c *Client) query(ctx context.Context, q string, vars map[string]any, out envelope) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		if err := c.doWithRetry(ctx, graphQLRequest{Query: q, Variables: vars}, out); err != nil {
			return nil, err
		}
		if msgs := out.errorMessages(); len(msgs) > 0 {
			return nil, &GraphQLError{Messages: msgs}
		}
		return nil, nil
	})
	return err
}

// doWithRetry ejecuta el POST con backoff exponencial y jitter.
// 429, 5xx y errores de red se reintentan; el resto de 4xx falla directamente.
func (c *Client) doWithRetry(ctx context.Context, body graphQLRequest, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			c.metrics.Request("network_error")
			if attempt == c.maxRetries || ctx.Err() != nil {
				return fmt.Errorf("request failed after %d retries: %w", attempt, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			outcome := "server_error"
			if resp.StatusCode == http.StatusTooManyRequests {
				outcome = "rate_limited"
				slog.Warn("rate limited by API", "attempt", attempt+1)
			}
			c.metrics.Request(outcome)
			if attempt == c.maxRetries {
				return fmt.Errorf("tibber HTTP error %d after %d retries", resp.StatusCode, attempt)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			b, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			c.metrics.Request("client_error")
			return fmt.Errorf("tibber HTTP error %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}

		defer resp.Body.Close()
		c.metrics.Request("ok")
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return fmt.Errorf("exhausted %d retries", c.maxRetries)
}

// sleep espera retryWait·2^attempt más jitter, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	c.metrics.Retry()
	wait := time.Duration(math.Pow(2, float64(attempt))) * c.retryWait
	if c.retryWait > 0 {
		wait += rand.N(maxJitter)
	}
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}
