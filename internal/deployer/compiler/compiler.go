package compiler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/compose-network/random-winner-game/configs"
	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/logger"
)

// ErrCompilation is returned when solc reports errors for the sources.
var ErrCompilation = errors.New("compilation failed")

type (
	solcRunner interface {
		// LongVersion returns the full compiler version, e.g. "0.8.17+commit.8df45f5f".
		LongVersion(ctx context.Context) (string, error)
		CompileStandardJSON(ctx context.Context, input []byte) ([]byte, error)
	}
	artifactWriter interface {
		Write(info artifacts.BuildInfo, artifacts []artifacts.Artifact) (string, error)
	}

	// Compiler compiles the project's Solidity sources into Hardhat style artifacts
	Compiler struct {
		cfg        configs.Compiler
		projectDir string
		solc       solcRunner
		store      artifactWriter
		logger     *slog.Logger
	}

	// Result summarises a compilation.
	Result struct {
		BuildInfoID string
		Contracts   []string
		Warnings    int
	}
)

// NewCompiler creates a new contract compiler
func NewCompiler(cfg configs.Compiler, projectDir string, solc solcRunner, store artifactWriter) *Compiler {
	return &Compiler{
		cfg:        cfg,
		projectDir: projectDir,
		solc:       solc,
		store:      store,
		logger:     logger.Named("contracts_compiler"),
	}
}

// Compile compiles every source under the sources directory and persists the output
func (c *Compiler) Compile(ctx context.Context) (*Result, error) {
	c.logger.
		With("project_dir", c.projectDir).
		With("sources_dir", c.cfg.SourcesDir).
		Info("starting contract compilation")

	sources, err := collectSources(c.projectDir, c.cfg.SourcesDir, c.cfg.LibraryPaths)
	if err != nil {
		return nil, err
	}
	c.logger.With("sources", len(sources)).Info("sources collected")

	input, err := json.Marshal(newStandardInput(sources, c.cfg.Optimizer, c.cfg.Runs, c.cfg.EVMVersion))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compiler input: %w", err)
	}

	longVersion, err := c.solc.LongVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get solc version: %w", err)
	}
	if !strings.HasPrefix(longVersion, c.cfg.Version+"+") {
		return nil, fmt.Errorf("solc reports version %s, configuration expects %s", longVersion, c.cfg.Version)
	}

	c.logger.With("solc", longVersion).Info("running solc")
	raw, err := c.solc.CompileStandardJSON(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run solc: %w", err)
	}

	var output standardOutput
	if err := json.Unmarshal(raw, &output); err != nil {
		return nil, fmt.Errorf("failed to parse solc output: %w", err)
	}
	if failures := output.failures(); len(failures) > 0 {
		return nil, fmt.Errorf("%w:\n%s", ErrCompilation, strings.Join(failures, "\n"))
	}

	var (
		compiled []artifacts.Artifact
		names    []string
	)
	for sourceName, contracts := range output.Contracts {
		for name, contract := range contracts {
			compiled = append(compiled, artifacts.Artifact{
				ContractName:           name,
				SourceName:             sourceName,
				ABI:                    contract.ABI,
				Bytecode:               withPrefix(contract.EVM.Bytecode.Object),
				DeployedBytecode:       withPrefix(contract.EVM.DeployedBytecode.Object),
				LinkReferences:         contract.EVM.Bytecode.LinkReferences,
				DeployedLinkReferences: contract.EVM.DeployedBytecode.LinkReferences,
			})
			names = append(names, sourceName+":"+name)
		}
	}
	sort.Strings(names)

	id, err := c.store.Write(artifacts.BuildInfo{
		SolcVersion:     c.cfg.Version,
		SolcLongVersion: longVersion,
		Input:           input,
		Output:          raw,
	}, compiled)
	if err != nil {
		return nil, err
	}

	result := &Result{BuildInfoID: id, Contracts: names, Warnings: len(output.Errors)}
	c.logger.
		With("build_info", id).
		With("contracts", len(names)).
		With("warnings", result.Warnings).
		Info("contracts compiled successfully")

	return result, nil
}

func withPrefix(object string) string {
	return "0x" + strings.TrimPrefix(object, "0x")
}
