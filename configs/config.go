package configs

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var Values Config

type (
	IndexWaitMode string

	Config struct {
		Network   Network   `mapstructure:"network"`
		Explorer  Explorer  `mapstructure:"explorer"`
		Compiler  Compiler  `mapstructure:"compiler"`
		Contract  Contract  `mapstructure:"contract"`
		Constants Constants `mapstructure:"constants"`
		Paths     Paths     `mapstructure:"paths"`
		Metrics   Metrics   `mapstructure:"metrics"`
		Log       Log       `mapstructure:"log"`
	}

	Network struct {
		Name                string        `mapstructure:"name"`
		RPCURL              string        `mapstructure:"rpc-url"`
		PrivateKey          string        `mapstructure:"private-key"`
		ChainID             int64         `mapstructure:"chain-id"`
		GasLimit            uint64        `mapstructure:"gas-limit"`
		ConfirmationTimeout time.Duration `mapstructure:"confirmation-timeout"`
	}

	Explorer struct {
		Network                string    `mapstructure:"network"`
		APIURL                 string    `mapstructure:"api-url"`
		BrowserURL             string    `mapstructure:"browser-url"`
		APIKey                 string    `mapstructure:"api-key"`
		RequestsPerSecond      float64   `mapstructure:"requests-per-second"`
		AlreadyVerifiedIsError bool      `mapstructure:"already-verified-is-error"`
		IndexWait              IndexWait `mapstructure:"index-wait"`
		VerifyPoll             Backoff   `mapstructure:"verify-poll"`
	}

	// IndexWait controls how the deployer synchronises with the explorer indexer
	// between confirmation and verification.
	IndexWait struct {
		Mode    IndexWaitMode `mapstructure:"mode"`
		Delay   time.Duration `mapstructure:"delay"`
		Backoff `mapstructure:",squash"`
	}

	Backoff struct {
		InitialInterval time.Duration `mapstructure:"initial-interval"`
		MaxInterval     time.Duration `mapstructure:"max-interval"`
		MaxElapsed      time.Duration `mapstructure:"max-elapsed"`
	}

	Compiler struct {
		Version      string     `mapstructure:"version"`
		Image        string     `mapstructure:"image"`
		SourcesDir   string     `mapstructure:"sources-dir"`
		LibraryPaths []string   `mapstructure:"library-paths"`
		Optimizer    bool       `mapstructure:"optimizer"`
		Runs         int        `mapstructure:"runs"`
		EVMVersion   string     `mapstructure:"evm-version"`
		Repository   Repository `mapstructure:"repository"`
	}

	Repository struct {
		URL    string `mapstructure:"url"`
		Branch string `mapstructure:"branch"`
	}

	Contract struct {
		Name string `mapstructure:"name"`
	}

	// Constants are the constructor arguments of the game contract. They are passed
	// through unchanged to both the deployment and the verification request.
	Constants struct {
		VRFCoordinator string `mapstructure:"vrf-coordinator"`
		LinkToken      string `mapstructure:"link-token"`
		KeyHash        string `mapstructure:"key-hash"`
		Fee            string `mapstructure:"fee"`
	}

	Paths struct {
		Artifacts   string `mapstructure:"artifacts"`
		Deployments string `mapstructure:"deployments"`
		Cache       string `mapstructure:"cache"`
	}

	Metrics struct {
		PushgatewayURL string `mapstructure:"pushgateway-url"`
		Job            string `mapstructure:"job"`
	}

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}
)

const (
	IndexWaitModeFixed IndexWaitMode = "fixed"
	IndexWaitModePoll  IndexWaitMode = "poll"

	ContractNameRandomWinnerGame = "RandomWinnerGame"
)

// ErrConfiguration marks every error produced while validating configuration.
var ErrConfiguration = errors.New("configuration error")

// MissingEnvVarError reports a required value that was neither configured nor exported.
type MissingEnvVarError struct {
	Key     string
	EnvVars []string
}

func (e *MissingEnvVarError) Error() string {
	if len(e.EnvVars) == 0 {
		return fmt.Sprintf("%s is required", e.Key)
	}
	return fmt.Sprintf("%s is required (set %s)", e.Key, strings.Join(e.EnvVars, " or "))
}

// Args returns the constructor arguments in declaration order.
func (c Constants) Args() []string {
	return []string{c.VRFCoordinator, c.LinkToken, c.KeyHash, c.Fee}
}

func (c Constants) Validate() error {
	var errs []error

	if c.VRFCoordinator == "" {
		errs = append(errs, missing("constants.vrf-coordinator"))
	}
	if c.LinkToken == "" {
		errs = append(errs, missing("constants.link-token"))
	}
	if c.KeyHash == "" {
		errs = append(errs, missing("constants.key-hash"))
	}
	if c.Fee == "" {
		errs = append(errs, missing("constants.fee"))
	}

	return errors.Join(errs...)
}

func (n Network) Validate() error {
	var errs []error

	if n.Name == "" {
		errs = append(errs, missing("network.name"))
	}
	if n.RPCURL == "" {
		errs = append(errs, missing("network.rpc-url"))
	}
	if n.PrivateKey == "" {
		errs = append(errs, missing("network.private-key"))
	}
	if n.ConfirmationTimeout < 0 {
		errs = append(errs, errors.New("network.confirmation-timeout must not be negative"))
	}

	return errors.Join(errs...)
}

// LogValue keeps the signing key out of the logs.
func (n Network) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", n.Name),
		slog.String("rpc_url", n.RPCURL),
		slog.Bool("private_key_set", n.PrivateKey != ""),
		slog.Int64("chain_id", n.ChainID),
		slog.Uint64("gas_limit", n.GasLimit),
		slog.Duration("confirmation_timeout", n.ConfirmationTimeout),
	)
}

func (e Explorer) Validate() error {
	var errs []error

	if e.Network == "" {
		errs = append(errs, missing("explorer.network"))
	}
	if e.APIURL == "" {
		errs = append(errs, missing("explorer.api-url"))
	}
	if e.APIKey == "" {
		errs = append(errs, missing("explorer.api-key"))
	}
	if e.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("explorer.requests-per-second must be positive"))
	}

	switch e.IndexWait.Mode {
	case IndexWaitModeFixed:
		if e.IndexWait.Delay < 0 {
			errs = append(errs, errors.New("explorer.index-wait.delay must not be negative"))
		}
	case IndexWaitModePoll:
		if e.IndexWait.MaxElapsed <= 0 {
			errs = append(errs, errors.New("explorer.index-wait.max-elapsed must be positive in poll mode"))
		}
	default:
		errs = append(errs, fmt.Errorf("explorer.index-wait.mode must be either '%s' or '%s'", IndexWaitModeFixed, IndexWaitModePoll))
	}

	if e.VerifyPoll.MaxElapsed <= 0 {
		errs = append(errs, errors.New("explorer.verify-poll.max-elapsed must be positive"))
	}

	return errors.Join(errs...)
}

// LogValue keeps the API key out of the logs.
func (e Explorer) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("network", e.Network),
		slog.String("api_url", e.APIURL),
		slog.Bool("api_key_set", e.APIKey != ""),
		slog.String("index_wait_mode", string(e.IndexWait.Mode)),
	)
}

func (c Compiler) Validate() error {
	var errs []error

	if c.Version == "" {
		errs = append(errs, missing("compiler.version"))
	}
	if c.Image == "" {
		errs = append(errs, missing("compiler.image"))
	}
	if c.SourcesDir == "" {
		errs = append(errs, missing("compiler.sources-dir"))
	}
	if c.Optimizer && c.Runs <= 0 {
		errs = append(errs, errors.New("compiler.runs must be positive when the optimizer is enabled"))
	}
	if c.Repository.URL != "" && c.Repository.Branch == "" {
		errs = append(errs, missing("compiler.repository.branch"))
	}

	return errors.Join(errs...)
}

func (p Paths) Validate() error {
	var errs []error

	if p.Artifacts == "" {
		errs = append(errs, missing("paths.artifacts"))
	}
	if p.Deployments == "" {
		errs = append(errs, missing("paths.deployments"))
	}

	return errors.Join(errs...)
}

// ValidateDeploy checks everything the deploy and verify commands need before
// any network call is made.
func (c *Config) ValidateDeploy() error {
	errs := []error{
		c.Network.Validate(),
		c.Explorer.Validate(),
		c.Constants.Validate(),
		c.Paths.Validate(),
	}
	if c.Contract.Name == "" {
		errs = append(errs, missing("contract.name"))
	}

	return wrap("deploy", errs)
}

// ValidateVerify checks what re-running verification needs. The signing key is
// not required.
func (c *Config) ValidateVerify() error {
	errs := []error{
		c.Explorer.Validate(),
		c.Constants.Validate(),
		c.Paths.Validate(),
	}
	if c.Network.Name == "" {
		errs = append(errs, missing("network.name"))
	}
	if c.Contract.Name == "" {
		errs = append(errs, missing("contract.name"))
	}

	return wrap("verify", errs)
}

func (c *Config) ValidateCompile() error {
	return wrap("compile", []error{c.Compiler.Validate(), c.Paths.Validate()})
}

func wrap(scope string, errs []error) error {
	joined := errors.Join(errs...)
	if joined == nil {
		return nil
	}

	return fmt.Errorf("%w: %s configuration validation failed: %w", ErrConfiguration, scope, joined)
}

func missing(key string) error {
	return &MissingEnvVarError{Key: key, EnvVars: EnvVarsFor(key)}
}
