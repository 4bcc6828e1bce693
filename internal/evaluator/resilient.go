package evaluator

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ResilienceConfig reintentos, límite de peticiones y circuit breaker
type ResilienceConfig struct {
	MaxRetries        int           // reintentos tras el primer intento
	BaseBackoff       time.Duration // espera inicial, se duplica en cada reintento
	RequestsPerMinute int           // 0 = sin límite
	MaxFailures       uint32        // fallos consecutivos que abren el circuito
	OpenTimeout       time.Duration // tiempo que el circuito permanece abierto
}

// DefaultResilienceConfig valores razonables para una API pública
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxRetries:  3,
		BaseBackoff: time.Second,
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
	}
}

// Resilient envuelve un TextGenerator con límite de peticiones, reintentos
// exponenciales y circuit breaker
type Resilient struct {
	next    TextGenerator
	cfg     ResilienceConfig
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewResilient crea el envoltorio
func NewResilient(next TextGenerator, cfg ResilienceConfig) *Resilient {
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 5
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	r := &Resilient{next: next, cfg: cfg}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
	})
	if cfg.RequestsPerMinute > 0 {
		r.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return r
}

// Complete delega en el generador envuelto
func (r *Resilient) Complete(ctx context.Context, prompt string) (string, error) {
	backoff := retry.WithMaxRetries(uint64(r.cfg.MaxRetries), retry.NewExponential(r.cfg.BaseBackoff))

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		result, err := r.breaker.Execute(func() (interface{}, error) {
			return r.next.Complete(ctx, prompt)
		})
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		text = result.(string)
		return nil
	})
	return text, err
}

// State estado actual del circuit breaker
func (r *Resilient) State() gobreaker.State {
	return r.breaker.State()
}

func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
