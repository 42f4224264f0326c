package deployment

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/deployer/chain"
	"github.com/compose-network/random-winner-game/internal/deployer/explorer"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

const (
	stepResolve = "resolve"
	stepDeploy  = "deploy"
	stepConfirm = "confirm"
	stepIndex   = "index"
	stepVerify  = "verify"
)

type (
	factoryResolver interface {
		Resolve(name string) (*artifacts.Contract, error)
		BuildInfo(contract *artifacts.Contract) (*artifacts.BuildInfo, error)
	}
	// Deployer submits and confirms contract creation transactions.
	Deployer interface {
		Deploy(ctx context.Context, contract *artifacts.Contract, args ...any) (*chain.PendingDeployment, error)
		WaitDeployed(ctx context.Context, pending *chain.PendingDeployment) (*chain.Receipt, error)
		From() common.Address
		ChainID() *big.Int
	}
	// Connector opens the connection deployments are sent through. Run calls it
	// only after the contract and its arguments are resolved.
	Connector func(ctx context.Context) (Deployer, error)
	verifier interface {
		Verify(ctx context.Context, req explorer.Request) (*explorer.Result, error)
	}
	recordStore interface {
		Save(record Record) error
		Load(network, contract string) (*Record, error)
	}
	metricsRecorder interface {
		ObserveStep(step string, d time.Duration)
		SetGasUsed(gas uint64)
		SetVerificationAttempts(attempts int)
		SetResult(result string)
		Push(ctx context.Context) error
	}

	Settings struct {
		Network                string
		ContractName           string
		AlreadyVerifiedIsError bool
	}

	// Service deploys the game contract and verifies it on the explorer.
	Service struct {
		settings  Settings
		artifacts factoryResolver
		connect   Connector
		indexer   IndexWaiter
		verifier  verifier
		records   recordStore
		metrics   metricsRecorder
		now       func() time.Time
		logger    *slog.Logger
	}

	// prepared is everything derived from artifacts and constants before any
	// network call is made.
	prepared struct {
		contract  *artifacts.Contract
		buildInfo *artifacts.BuildInfo
		values    []string
		args      []any
		encoded   string
	}
)

// NewService creates a deployment service. connect may be nil when the service
// is only used to verify existing deployments.
func NewService(
	settings Settings,
	resolver factoryResolver,
	connect Connector,
	indexer IndexWaiter,
	verifier verifier,
	records recordStore,
	metrics metricsRecorder) *Service {
	return &Service{
		settings:  settings,
		artifacts: resolver,
		connect:   connect,
		indexer:   indexer,
		verifier:  verifier,
		records:   records,
		metrics:   metrics,
		now:       time.Now,
		logger:    logger.Named("deployment_service"),
	}
}

// Run deploys the contract with constants as constructor arguments, waits for
// confirmation and verifies it with the same arguments. Steps run strictly in
// order and the first failure ends the run.
func (s *Service) Run(ctx context.Context, constants configs.Constants) (outcome Outcome) {
	outcome = Outcome{RunID: uuid.NewString(), Contract: s.settings.ContractName}
	log := s.logger.With("run_id", outcome.RunID).With("network", s.settings.Network)
	defer func() { s.finish(ctx, log, outcome) }()

	log.With("contract", s.settings.ContractName).Info("step 1 - resolving contract factory")
	p, err := s.prepare(constants)
	if err != nil {
		outcome.Err = err
		return outcome
	}
	outcome.Contract = p.contract.FullyQualifiedName()

	if s.connect == nil {
		outcome.Err = fmt.Errorf("%w: no chain connection configured", ErrDeploymentFailed)
		return outcome
	}
	deployer, err := s.connect(ctx)
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %w", ErrDeploymentFailed, err)
		return outcome
	}

	log.With("args", p.values).Info("step 2 - submitting deployment transaction")
	started := s.now()
	pending, err := deployer.Deploy(ctx, p.contract, p.args...)
	s.metrics.ObserveStep(stepDeploy, s.now().Sub(started))
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %w", ErrDeploymentFailed, err)
		return outcome
	}
	outcome.Address = pending.Address
	outcome.TxHash = pending.TxHash

	log.With("tx_hash", pending.TxHash.Hex()).Info("step 3 - waiting for confirmation")
	started = s.now()
	receipt, err := deployer.WaitDeployed(ctx, pending)
	s.metrics.ObserveStep(stepConfirm, s.now().Sub(started))
	if err != nil {
		outcome.Err = fmt.Errorf("%w: %w", ErrDeploymentFailed, err)
		return outcome
	}
	outcome.Deployed = true
	s.metrics.SetGasUsed(receipt.GasUsed)

	log.
		With("contract", outcome.Contract).
		With("address", receipt.Address.Hex()).
		With("block", receipt.BlockNumber).
		With("gas_used", receipt.GasUsed).
		Info("contract deployed")

	record := Record{
		RunID:           outcome.RunID,
		Network:         s.settings.Network,
		ChainID:         deployer.ChainID().Int64(),
		Contract:        outcome.Contract,
		Address:         receipt.Address,
		TxHash:          receipt.TxHash,
		BlockNumber:     receipt.BlockNumber,
		GasUsed:         receipt.GasUsed,
		Deployer:        deployer.From(),
		ConstructorArgs: p.values,
		EncodedArgs:     p.encoded,
		CompilerVersion: p.buildInfo.CompilerVersion(),
		DeployedAt:      s.now().UTC(),
	}
	s.save(log, record)

	result, err := s.verify(ctx, log, p, receipt.Address)
	outcome.Verification = result
	if err != nil {
		outcome.Err = err
		return outcome
	}

	record.Verification = verificationRecord(result, s.now())
	s.save(log, record)

	return outcome
}

// Verify re-runs the explorer steps for a contract that is already deployed
// at address. The constants must match the ones it was deployed with.
func (s *Service) Verify(ctx context.Context, constants configs.Constants, address common.Address) (outcome Outcome) {
	outcome = Outcome{RunID: uuid.NewString(), Contract: s.settings.ContractName, Address: address, Deployed: true}
	log := s.logger.With("run_id", outcome.RunID).With("network", s.settings.Network).With("address", address.Hex())
	defer func() { s.finish(ctx, log, outcome) }()

	p, err := s.prepare(constants)
	if err != nil {
		outcome.Deployed = false
		outcome.Err = err
		return outcome
	}
	outcome.Contract = p.contract.FullyQualifiedName()

	result, err := s.verify(ctx, log, p, address)
	outcome.Verification = result
	if err != nil {
		outcome.Err = err
		return outcome
	}

	record, err := s.records.Load(s.settings.Network, outcome.Contract)
	if err != nil || record.Address != address {
		log.Debug("no matching deployment record, verification not recorded")
		return outcome
	}
	record.Verification = verificationRecord(result, s.now())
	s.save(log, *record)

	return outcome
}

// Deployed returns the stored record of the configured contract.
func (s *Service) Deployed() (*Record, error) {
	return s.records.Load(s.settings.Network, s.settings.ContractName)
}

func (s *Service) prepare(constants configs.Constants) (*prepared, error) {
	started := s.now()
	defer func() { s.metrics.ObserveStep(stepResolve, s.now().Sub(started)) }()

	contract, err := s.artifacts.Resolve(s.settings.ContractName)
	if err != nil {
		return nil, err
	}

	buildInfo, err := s.artifacts.BuildInfo(contract)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", artifacts.ErrContractNotFound, err)
	}

	values := constants.Args()
	args, err := chain.CoerceArgs(contract.ABI.Constructor.Inputs, values)
	if err != nil {
		return nil, fmt.Errorf("%w: constants: %w", configs.ErrConfiguration, err)
	}

	encoded, err := chain.EncodeArgs(contract.ABI.Constructor.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%w: constants: %w", configs.ErrConfiguration, err)
	}

	return &prepared{
		contract:  contract,
		buildInfo: buildInfo,
		values:    values,
		args:      args,
		encoded:   encoded,
	}, nil
}

func (s *Service) verify(ctx context.Context, log *slog.Logger, p *prepared, address common.Address) (*explorer.Result, error) {
	log.Info("step 4 - waiting for explorer to index the contract")
	started := s.now()
	err := s.indexer.WaitIndexed(ctx, address)
	s.metrics.ObserveStep(stepIndex, s.now().Sub(started))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}

	log.With("contract", p.contract.FullyQualifiedName()).Info("step 5 - verifying source code")
	started = s.now()
	result, err := s.verifier.Verify(ctx, explorer.Request{
		Address:              address,
		ContractName:         p.contract.FullyQualifiedName(),
		CompilerVersion:      p.buildInfo.CompilerVersion(),
		SourceCode:           string(p.buildInfo.Input),
		ConstructorArguments: p.encoded,
	})
	s.metrics.ObserveStep(stepVerify, s.now().Sub(started))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
	}
	s.metrics.SetVerificationAttempts(result.Attempts)

	if result.Status == explorer.StatusAlreadyVerified && s.settings.AlreadyVerifiedIsError {
		return result, fmt.Errorf("%w: %s is already verified", ErrVerificationFailed, address.Hex())
	}

	return result, nil
}

func (s *Service) save(log *slog.Logger, record Record) {
	if err := s.records.Save(record); err != nil {
		log.With("error", err).Warn("could not persist deployment record")
	}
}

func (s *Service) finish(ctx context.Context, log *slog.Logger, outcome Outcome) {
	result := outcome.Result()
	s.metrics.SetResult(result)

	if err := s.metrics.Push(context.WithoutCancel(ctx)); err != nil {
		log.With("error", err).Warn("could not push metrics")
	}

	if outcome.Err != nil {
		log.With("result", result).With("error", outcome.Err.Error()).Error("run failed")
		return
	}
	log.With("result", result).Info("run finished")
}

func verificationRecord(result *explorer.Result, at time.Time) *Verification {
	return &Verification{
		Status:     string(result.Status),
		GUID:       result.GUID,
		URL:        result.URL,
		VerifiedAt: at.UTC(),
	}
}
