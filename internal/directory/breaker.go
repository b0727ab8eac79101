package directory

import (
	"context"
	"errors"
	"log/slog"

	"medfund/pkg/platform/circuit"
)

// ErrGatewayOpen signals that the payment collaborator is being skipped
// because its circuit is open. Callers surface it as an unavailability.
var ErrGatewayOpen = errors.New("payment gateway circuit open")

// BreakerGateway shields the payment collaborator behind a circuit breaker:
// consecutive settlement transport failures stop further calls for a
// cooldown instead of hammering a failing processor. Declined payments are
// business outcomes, not failures, and never trip the breaker.
type BreakerGateway struct {
	next    PaymentGateway
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// NewBreakerGateway wraps next with breaker.
func NewBreakerGateway(next PaymentGateway, breaker *circuit.Breaker, logger *slog.Logger) *BreakerGateway {
	return &BreakerGateway{next: next, breaker: breaker, logger: logger}
}

func (g *BreakerGateway) Settle(ctx context.Context, req SettlementRequest) (SettlementResult, error) {
	if !g.breaker.Allow() {
		return SettlementResult{}, ErrGatewayOpen
	}

	result, err := g.next.Settle(ctx, req)
	if err != nil {
		if g.breaker.RecordFailure() {
			g.logger.ErrorContext(ctx, "payment gateway circuit opened",
				"breaker", g.breaker.Name(),
				"error", err.Error(),
			)
		}
		return SettlementResult{}, err
	}
	g.breaker.RecordSuccess()
	return result, nil
}
