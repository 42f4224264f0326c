package explorer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
)

const codeFormatStandardJSON = "solidity-standard-json-input"

type (
	Status string

	// Request carries everything the explorer needs to rebuild the deployed bytecode.
	Request struct {
		Address common.Address
		// ContractName is fully qualified, "<sourceName>:<ContractName>".
		ContractName    string
		CompilerVersion string
		// SourceCode is the solc standard JSON input.
		SourceCode string
		// ConstructorArguments is ABI encoded hex without the 0x prefix.
		ConstructorArguments string
	}

	Result struct {
		Status   Status
		GUID     string
		Attempts int
		URL      string
	}
)

const (
	StatusVerified        Status = "verified"
	StatusAlreadyVerified Status = "already_verified"
)

// Verify submits req and waits for the explorer to accept or reject it.
// Submissions are retried while the explorer cannot yet see the contract code.
func (c *Client) Verify(ctx context.Context, req Request) (*Result, error) {
	log := c.logger.With("address", req.Address.Hex()).With("contract", req.ContractName)

	result := &Result{URL: c.AddressURL(req.Address)}

	form := url.Values{
		"module":          {moduleContract},
		"action":          {"verifysourcecode"},
		"contractaddress": {req.Address.Hex()},
		"sourceCode":      {req.SourceCode},
		"codeformat":      {codeFormatStandardJSON},
		"contractname":    {req.ContractName},
		"compilerversion": {req.CompilerVersion},
		// misspelled in the Etherscan API
		"constructorArguements": {req.ConstructorArguments},
	}

	submit := func() error {
		result.Attempts++
		resp, err := c.do(ctx, http.MethodPost, form)
		if err != nil {
			return err
		}

		text := resp.text()
		switch {
		case resp.ok():
			result.GUID = resp.Result.String()
			return nil
		case isAlreadyVerified(text):
			result.Status = StatusAlreadyVerified
			return nil
		case contains(text, "unable to locate contractcode"), isRateLimited(text):
			return fmt.Errorf("submission deferred: %s", text)
		case isInvalidKey(text):
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrInvalidAPIKey, text))
		default:
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, text))
		}
	}

	log.Info("submitting source code for verification")
	if err := c.retry(ctx, submit, log.With("step", "submit")); err != nil {
		return nil, err
	}

	if result.Status == StatusAlreadyVerified {
		log.Info("contract is already verified")
		return result, nil
	}

	log = log.With("guid", result.GUID)
	log.Info("verification submitted, polling status")

	check := func() error {
		result.Attempts++
		resp, err := c.do(ctx, http.MethodGet, url.Values{
			"module": {moduleContract},
			"action": {"checkverifystatus"},
			"guid":   {result.GUID},
		})
		if err != nil {
			return err
		}

		text := resp.text()
		switch {
		case isAlreadyVerified(text):
			result.Status = StatusAlreadyVerified
			return nil
		case resp.ok() && contains(text, "pass"):
			result.Status = StatusVerified
			return nil
		case contains(text, "pending"), contains(text, "in progress"), isRateLimited(text):
			return fmt.Errorf("verification pending: %s", text)
		default:
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrRejected, text))
		}
	}

	if err := c.retry(ctx, check, log.With("step", "status")); err != nil {
		return nil, err
	}

	log.With("status", string(result.Status)).With("url", result.URL).Info("verification finished")

	return result, nil
}

func (c *Client) retry(ctx context.Context, operation backoff.Operation, log *slog.Logger) error {
	attempts := 0
	counted := func() error {
		attempts++
		return operation()
	}
	notify := func(err error, next time.Duration) {
		log.With("attempt", attempts).With("retry_in", next.String()).With("reason", err.Error()).
			Info("retrying explorer request")
	}

	err := backoff.RetryNotify(counted, newBackOff(ctx, c.cfg.VerifyPoll), notify)
	if err == nil || ctx.Err() != nil {
		return err
	}
	if errors.Is(err, ErrRejected) || errors.Is(err, ErrInvalidAPIKey) {
		return err
	}

	return fmt.Errorf("%w: gave up after %d attempts: %w", ErrVerifyTimeout, attempts, err)
}

func isAlreadyVerified(text string) bool {
	return contains(text, "already verified")
}
