package deployment

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/compose-network/random-winner-game/internal/infra/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordsSaveAndLoad(t *testing.T) {
	root := t.TempDir()
	records := NewRecords(root, filesystem.NewJSON())

	record := Record{
		RunID:           "run-1",
		Network:         "mumbai",
		ChainID:         80001,
		Contract:        "contracts/RandomWinnerGame.sol:RandomWinnerGame",
		Address:         gameAddress,
		TxHash:          gameTxHash,
		ConstructorArgs: gameConstants().Args(),
		DeployedAt:      time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, records.Save(record))
	assert.FileExists(t, filepath.Join(root, "mumbai", "RandomWinnerGame.json"))

	for _, name := range []string{"RandomWinnerGame", "contracts/RandomWinnerGame.sol:RandomWinnerGame"} {
		loaded, err := records.Load("mumbai", name)
		require.NoError(t, err)
		assert.Equal(t, record, *loaded)
	}
}

func TestRecordsLoadMissing(t *testing.T) {
	records := NewRecords(t.TempDir(), filesystem.NewJSON())

	_, err := records.Load("mumbai", "RandomWinnerGame")
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestRecordsList(t *testing.T) {
	root := t.TempDir()
	records := NewRecords(root, filesystem.NewJSON())

	empty, err := NewRecords(filepath.Join(root, "missing"), filesystem.NewJSON()).List()
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, records.Save(Record{Network: "sepolia", Contract: "RandomWinnerGame"}))
	require.NoError(t, records.Save(Record{Network: "mumbai", Contract: "RandomWinnerGame"}))
	require.NoError(t, records.Save(Record{Network: "mumbai", Contract: "Lottery"}))

	listed, err := records.List()
	require.NoError(t, err)
	require.Len(t, listed, 3)

	var names []string
	for _, r := range listed {
		names = append(names, r.Network+"/"+r.Contract)
	}
	assert.Equal(t, []string{"mumbai/Lottery", "mumbai/RandomWinnerGame", "sepolia/RandomWinnerGame"}, names)
}
