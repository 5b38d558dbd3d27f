package repositories

import (
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"session-lab/contract"
	"session-lab/repositories/storetest"
)

func TestBadgerStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) contract.Store {
		db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR))
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		return NewBadgerStore(db, slog.Default())
	})
}

func TestDiskResponse_RejectsMismatchedPayload(t *testing.T) {
	req := require.New(t)
	disk := DiskResponse{QuestionType: "rating-scale"}
	disk.Payload.Type = "single-choice"

	_, err := disk.ToResponse()
	req.Error(err)
}
