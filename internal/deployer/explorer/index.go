package explorer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
)

// WaitIndexed polls the explorer until it reports a creation transaction for
// address. The budget comes from explorer.index-wait.
func (c *Client) WaitIndexed(ctx context.Context, address common.Address) error {
	log := c.logger.With("address", address.Hex())
	attempts := 0

	operation := func() error {
		attempts++
		resp, err := c.do(ctx, http.MethodGet, url.Values{
			"module":            {moduleContract},
			"action":            {"getcontractcreation"},
			"contractaddresses": {address.Hex()},
		})
		if err != nil {
			return err
		}
		if resp.ok() && len(resp.Result.Array()) > 0 {
			return nil
		}
		if isInvalidKey(resp.text()) {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrInvalidAPIKey, resp.text()))
		}
		return fmt.Errorf("not indexed yet: %s", resp.text())
	}

	notify := func(err error, next time.Duration) {
		log.With("attempt", attempts).With("retry_in", next.String()).With("reason", err.Error()).
			Info("waiting for explorer to index contract")
	}

	if err := backoff.RetryNotify(operation, newBackOff(ctx, c.cfg.IndexWait.Backoff), notify); err != nil {
		if errors.Is(err, ErrInvalidAPIKey) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %s after %d attempts: %w", ErrIndexerTimeout, address.Hex(), attempts, err)
	}

	log.With("attempts", attempts).Info("contract indexed by explorer")

	return nil
}
