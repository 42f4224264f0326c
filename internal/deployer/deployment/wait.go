package deployment

import (
	"context"
	"time"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/ethereum/go-ethereum/common"
)

// IndexWaiter blocks until the explorer can be expected to know a freshly
// deployed contract.
type IndexWaiter interface {
	WaitIndexed(ctx context.Context, address common.Address) error
}

// FixedDelay sleeps for a fixed duration regardless of the explorer state.
type FixedDelay time.Duration

func (d FixedDelay) WaitIndexed(ctx context.Context, _ common.Address) error {
	timer := time.NewTimer(time.Duration(d))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NewIndexWaiter picks the waiting strategy configured in index-wait. poller
// is used in poll mode.
func NewIndexWaiter(cfg configs.IndexWait, poller IndexWaiter) IndexWaiter {
	if cfg.Mode == configs.IndexWaitModeFixed {
		return FixedDelay(cfg.Delay)
	}
	return poller
}
