package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/compose-network/random-winner-game/internal/logger"
	"github.com/ethereum/go-ethereum/crypto"
)

// Store reads and writes contract artifacts laid out the way Hardhat does:
//
//	<root>/<sourceName>/<ContractName>.json
//	<root>/<sourceName>/<ContractName>.dbg.json
//	<root>/build-info/<id>.json
type Store struct {
	root   string
	fs     filesystem.ReadWriter
	logger *slog.Logger
}

// NewStore creates an artifact store rooted at root
func NewStore(root string, files filesystem.ReadWriter) *Store {
	return &Store{
		root:   root,
		fs:     files,
		logger: logger.Named("artifact_store"),
	}
}

// Root returns the artifacts directory.
func (s *Store) Root() string {
	return s.root
}

// Resolve finds and parses the artifact for name. name is either a bare
// contract name or a fully qualified "<sourceName>:<ContractName>".
func (s *Store) Resolve(name string) (*Contract, error) {
	path, err := s.locate(name)
	if err != nil {
		return nil, err
	}

	var artifact Artifact
	if err := s.fs.ReadJSON(path, &artifact); err != nil {
		return nil, fmt.Errorf("failed to read artifact for %s: %w", name, err)
	}

	contract, err := artifact.parse()
	if err != nil {
		return nil, err
	}
	contract.buildInfoPath, err = s.buildInfoPath(path)
	if err != nil {
		return nil, err
	}

	s.logger.
		With("contract", contract.FullyQualifiedName()).
		With("bytecode_size", len(contract.Bytecode)).
		Debug("artifact resolved")

	return contract, nil
}

// BuildInfo loads the compiler input and version the contract was built with.
func (s *Store) BuildInfo(contract *Contract) (*BuildInfo, error) {
	if contract.buildInfoPath == "" {
		return nil, fmt.Errorf("no build info recorded for %s", contract.FullyQualifiedName())
	}

	var info BuildInfo
	if err := s.fs.ReadJSON(contract.buildInfoPath, &info); err != nil {
		return nil, fmt.Errorf("failed to read build info for %s: %w", contract.FullyQualifiedName(), err)
	}
	if info.Format != buildInfoFormat {
		return nil, fmt.Errorf("unsupported build info format '%s'", info.Format)
	}
	if info.SolcLongVersion == "" || len(info.Input) == 0 {
		return nil, fmt.Errorf("build info %s is missing the compiler version or input", info.ID)
	}

	return &info, nil
}

// Write persists a compilation: one build info plus an artifact and debug file
// per contract. It returns the build info ID.
func (s *Store) Write(info BuildInfo, artifacts []Artifact) (string, error) {
	info.Format = buildInfoFormat
	if info.ID == "" {
		info.ID = crypto.Keccak256Hash([]byte(info.SolcLongVersion), info.Input).Hex()[2:34]
	}

	buildInfoFile := filepath.Join(s.root, buildInfoDirName, info.ID+".json")
	if err := s.fs.WriteJSON(buildInfoFile, info); err != nil {
		return "", fmt.Errorf("failed to write build info: %w", err)
	}

	for _, artifact := range artifacts {
		artifact.Format = artifactFormat
		dir := filepath.Join(s.root, filepath.FromSlash(artifact.SourceName))

		artifactFile := filepath.Join(dir, artifact.ContractName+".json")
		if err := s.fs.WriteJSON(artifactFile, artifact); err != nil {
			return "", fmt.Errorf("failed to write artifact for %s: %w", artifact.ContractName, err)
		}

		rel, err := filepath.Rel(dir, buildInfoFile)
		if err != nil {
			return "", fmt.Errorf("failed to relate %s to build info: %w", artifactFile, err)
		}

		dbg := debugFile{Format: debugFormat, BuildInfo: filepath.ToSlash(rel)}
		if err := s.fs.WriteJSON(filepath.Join(dir, artifact.ContractName+".dbg.json"), dbg); err != nil {
			return "", fmt.Errorf("failed to write debug file for %s: %w", artifact.ContractName, err)
		}
	}

	s.logger.With("build_info", info.ID).With("contracts", len(artifacts)).Info("artifacts written")

	return info.ID, nil
}

func (s *Store) locate(name string) (string, error) {
	if sourceName, contractName, ok := strings.Cut(name, ":"); ok {
		path := filepath.Join(s.root, filepath.FromSlash(sourceName), contractName+".json")
		exists, err := s.fs.Exists(path)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("%w: %s (looked in %s)", ErrContractNotFound, name, s.root)
		}
		return path, nil
	}

	var matches []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.root && d.Name() == buildInfoDirName {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == name+".json" && strings.HasSuffix(filepath.Dir(path), ".sol") {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s (artifacts directory %s does not exist, run compile first)", ErrContractNotFound, name, s.root)
		}
		return "", fmt.Errorf("failed to scan artifacts in %s: %w", s.root, err)
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s (looked in %s)", ErrContractNotFound, name, s.root)
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		names := make([]string, 0, len(matches))
		for _, match := range matches {
			rel, _ := filepath.Rel(s.root, filepath.Dir(match))
			names = append(names, filepath.ToSlash(rel)+":"+name)
		}
		return "", fmt.Errorf("%w: use one of %s", ErrAmbiguousName, strings.Join(names, ", "))
	}
}

func (s *Store) buildInfoPath(artifactPath string) (string, error) {
	dbgPath := strings.TrimSuffix(artifactPath, ".json") + ".dbg.json"

	var dbg debugFile
	if err := s.fs.ReadJSON(dbgPath, &dbg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read debug file: %w", err)
	}

	return filepath.Join(filepath.Dir(artifactPath), filepath.FromSlash(dbg.BuildInfo)), nil
}
