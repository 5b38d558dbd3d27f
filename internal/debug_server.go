package internal

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/fxamacker/cbor/v2"
)

//go:embed inspect.html
var templatesFS embed.FS

const maxRows = 500

type InspectRow struct {
	Key       string
	Type      string
	SessionID string
	EntityID  string
	Size      string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix    string
	Items     []InspectRow
	Truncated bool
	Stats     []Stat
}

type Stat struct {
	Name  string
	Value string
}

// StartDebugServer serves the debug handler until ctx is cancelled.
func StartDebugServer(ctx context.Context, log *slog.Logger, db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", port),
		Handler:           NewDebugHandler(log, db, mapper, statsProvider),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Debug inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("debug server stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv
}

// NewDebugHandler exposes a read-only view of the badger keys on /inspect and
// the live stats as JSON on /stats. db may be nil when another store is used.
func NewDebugHandler(log *slog.Logger, db *badger.DB, mapper RowMapper, statsProvider StatsProvider) http.Handler {
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))
	if mapper == nil {
		mapper = DefaultMapper
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "session:"
		}

		data := PageData{Prefix: prefix}
		if statsProvider != nil {
			data.Stats = flatten(statsProvider())
		}

		if db != nil {
			_ = db.View(func(txn *badger.Txn) error {
				it := txn.NewIterator(badger.DefaultIteratorOptions)
				defer it.Close()
				for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
					if len(data.Items) == maxRows {
						data.Truncated = true
						return nil
					}
					item := it.Item()
					_ = item.Value(func(val []byte) error {
						data.Items = append(data.Items, mapper(string(item.Key()), val))
						return nil
					})
				}
				return nil
			})
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			log.Warn("debug page rendering failed", "error", err)
		}
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := map[string]any{}
		if statsProvider != nil {
			stats = statsProvider()
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(stats)
	})

	return mux
}

func flatten(stats map[string]any) []Stat {
	res := make([]Stat, 0, len(stats))
	for k, v := range stats {
		res = append(res, Stat{Name: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res
}

// DefaultMapper splits "kind:session:entity..." keys and summarises the CBOR value.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.SplitN(key, ":", 3)
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		SessionID: "-",
		EntityID:  "-",
		Size:      humanize.Bytes(uint64(len(val))),
		Detail:    "-",
	}
	if len(parts) >= 2 {
		row.Type = strings.ToUpper(parts[0])
		row.SessionID = parts[1]
	}
	if len(parts) == 3 {
		row.EntityID = parts[2]
	}

	var fields map[string]any
	if err := cbor.Unmarshal(val, &fields); err != nil {
		// Code index values are plain session ids
		row.Detail = strconv.Quote(string(val))
		return row
	}
	row.Detail = summarize(fields)
	return row
}

func summarize(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		v := fmt.Sprint(fields[k])
		if len(v) > 40 {
			v = v[:40] + "…"
		}
		fmt.Fprintf(&b, "%s=%s ", k, v)
	}
	return strings.TrimSpace(b.String())
}
