package directory_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"medfund/internal/directory"
	"medfund/internal/directory/mocks"
	"medfund/pkg/domain"
	"medfund/pkg/platform/circuit"
)

func settleReq() directory.SettlementRequest {
	return directory.SettlementRequest{
		DonorID:       domain.NewDonorID(),
		CaseID:        domain.NewCaseID(),
		Amount:        10_000,
		Currency:      "USD",
		PaymentMethod: "card",
	}
}

func TestBreakerGateway(t *testing.T) {
	ctx := context.Background()

	t.Run("passes settlements through while healthy", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockPaymentGateway(ctrl)
		inner.EXPECT().Settle(gomock.Any(), gomock.Any()).
			Return(directory.SettlementResult{Outcome: domain.PaymentCompleted}, nil)

		gw := directory.NewBreakerGateway(inner,
			circuit.New("payments", 3, time.Minute), slog.Default())

		result, err := gw.Settle(ctx, settleReq())
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentCompleted, result.Outcome)
	})

	t.Run("opens after consecutive transport failures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockPaymentGateway(ctrl)
		boom := errors.New("connection refused")
		inner.EXPECT().Settle(gomock.Any(), gomock.Any()).
			Return(directory.SettlementResult{}, boom).Times(2)

		gw := directory.NewBreakerGateway(inner,
			circuit.New("payments", 2, time.Minute), slog.Default())

		for i := 0; i < 2; i++ {
			_, err := gw.Settle(ctx, settleReq())
			assert.ErrorIs(t, err, boom)
		}

		// Circuit open: the inner gateway is no longer called.
		_, err := gw.Settle(ctx, settleReq())
		assert.ErrorIs(t, err, directory.ErrGatewayOpen)
	})

	t.Run("declined payments do not trip the breaker", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		inner := mocks.NewMockPaymentGateway(ctrl)
		inner.EXPECT().Settle(gomock.Any(), gomock.Any()).
			Return(directory.SettlementResult{Outcome: domain.PaymentFailed}, nil).Times(5)

		gw := directory.NewBreakerGateway(inner,
			circuit.New("payments", 2, time.Minute), slog.Default())

		for i := 0; i < 5; i++ {
			result, err := gw.Settle(ctx, settleReq())
			require.NoError(t, err)
			assert.Equal(t, domain.PaymentFailed, result.Outcome)
		}
	})
}
