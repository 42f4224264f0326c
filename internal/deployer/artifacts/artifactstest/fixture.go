// Package artifactstest provides a deployable stand-in for the game contract.
package artifactstest

import (
	"encoding/json"
	"testing"

	"github.com/compose-network/random-winner-game/internal/deployer/artifacts"
	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/stretchr/testify/require"
)

const (
	ContractName = "RandomWinnerGame"
	SourceName   = "contracts/RandomWinnerGame.sol"

	// GameABI has the constructor signature of the real contract.
	GameABI = `[
		{"type":"constructor","stateMutability":"nonpayable","inputs":[
			{"name":"vrfCoordinator","type":"address","internalType":"address"},
			{"name":"linkToken","type":"address","internalType":"address"},
			{"name":"vrfKeyHash","type":"bytes32","internalType":"bytes32"},
			{"name":"vrfFee","type":"uint256","internalType":"uint256"}
		]},
		{"type":"function","name":"fee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256","internalType":"uint256"}]}
	]`

	// GameBytecode copies a one byte runtime (STOP) into memory and returns it,
	// ignoring the appended constructor arguments.
	GameBytecode = "0x6001600c60003960016000f300"

	SolcLongVersion = "0.8.17+commit.8df45f5f"
	SourceCode      = "// SPDX-License-Identifier: MIT\npragma solidity ^0.8.4;\ncontract RandomWinnerGame {}\n"
)

// Artifact returns the Hardhat artifact of the stand-in contract.
func Artifact() artifacts.Artifact {
	return artifacts.Artifact{
		ContractName:     ContractName,
		SourceName:       SourceName,
		ABI:              json.RawMessage(GameABI),
		Bytecode:         GameBytecode,
		DeployedBytecode: "0x00",
	}
}

// BuildInfo returns a build info whose input contains the stand-in source.
func BuildInfo(t testing.TB) artifacts.BuildInfo {
	t.Helper()

	input, err := json.Marshal(map[string]any{
		"language": "Solidity",
		"sources": map[string]any{
			SourceName: map[string]string{"content": SourceCode},
		},
		"settings": map[string]any{
			"optimizer": map[string]any{"enabled": false, "runs": 200},
		},
	})
	require.NoError(t, err)

	return artifacts.BuildInfo{
		SolcVersion:     "0.8.17",
		SolcLongVersion: SolcLongVersion,
		Input:           input,
	}
}

// Write stores the stand-in contract under root and returns the store.
func Write(t testing.TB, root string) *artifacts.Store {
	t.Helper()

	store := artifacts.NewStore(root, filesystem.NewJSON())
	_, err := store.Write(BuildInfo(t), []artifacts.Artifact{Artifact()})
	require.NoError(t, err)

	return store
}
