package internal

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		StoreDriver:            StoreBadger,
		AuthSecret:             "0123456789abcdef0123456789abcdef",
		CapacityWarningPercent: 90,
		CharReplacement:        "*",
	}
}

func TestConfigValidate(t *testing.T) {
	req := require.New(t)
	req.NoError(validConfig().Validate())

	cfg := validConfig()
	cfg.StoreDriver = "postgres"
	req.ErrorContains(cfg.Validate(), "STORE_DRIVER")

	cfg = validConfig()
	cfg.AuthSecret = "short"
	req.ErrorContains(cfg.Validate(), "AUTH_SECRET")

	cfg = validConfig()
	cfg.CapacityWarningPercent = 120
	req.ErrorContains(cfg.Validate(), "CAPACITY_WARNING_PERCENT")

	cfg = validConfig()
	cfg.CharReplacement = "**"
	req.ErrorContains(cfg.Validate(), "CHARACTER_REPLACEMENT")
}

func TestDefaultMapper(t *testing.T) {
	req := require.New(t)

	// Given a CBOR encoded participant
	val, err := cbor.Marshal(map[string]any{"DisplayName": "Ada", "Online": true})
	req.NoError(err)

	// When the row is built
	row := DefaultMapper("participant:s1:p1", val)

	// Then the key parts and the fields are shown
	req.Equal("PARTICIPANT", row.Type)
	req.Equal("s1", row.SessionID)
	req.Equal("p1", row.EntityID)
	req.Equal("DisplayName=Ada Online=true", row.Detail)
}

func TestDebugHandler(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	val, err := cbor.Marshal(map[string]any{"Code": "123456", "State": "active"})
	req.NoError(err)
	req.NoError(db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("session:s1"), val)
	}))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewDebugHandler(log, db, nil, func() map[string]any {
		return map[string]any{"live_sessions": 1}
	}))
	t.Cleanup(srv.Close)

	// When the inspector page is requested
	res, err := http.Get(srv.URL + "/inspect?prefix=session:")
	req.NoError(err)
	body, err := io.ReadAll(res.Body)
	_ = res.Body.Close()
	req.NoError(err)

	// Then the stored session and the stats are listed
	req.Equal(http.StatusOK, res.StatusCode)
	req.Contains(string(body), "Code=123456")
	req.Contains(string(body), "live_sessions")

	// And the stats are exposed as JSON
	res, err = http.Get(srv.URL + "/stats")
	req.NoError(err)
	defer func() { _ = res.Body.Close() }()
	var stats map[string]any
	req.NoError(json.NewDecoder(res.Body).Decode(&stats))
	req.EqualValues(1, stats["live_sessions"])
}
