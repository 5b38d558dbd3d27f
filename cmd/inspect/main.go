package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"session-lab/aggregation"
	"session-lab/contract"
	"session-lab/domain"
	"session-lab/internal"
	"session-lab/repositories"
	"session-lab/repositories/sqlite"
)

func main() {
	driver := flag.String("driver", internal.StoreBadger, "Store driver (badger or sqlite)")
	path := flag.String("db", "./data/badger", "Path to the badger directory or the sqlite file")
	session := flag.String("session", "", "Session id or join code to detail; lists live sessions when empty")
	maxWords := flag.Int("words", 20, "Words shown per word cloud")
	flag.Parse()

	if err := run(os.Stdout, *driver, *path, *session, *maxWords); err != nil {
		color.Red.Printf("inspect: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer, driver, path, session string, maxWords int) error {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := open(ctx, driver, path, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if session == "" {
		return listSessions(ctx, out, store)
	}
	return describeSession(ctx, out, store, session, maxWords)
}

func open(ctx context.Context, driver, path string, log *slog.Logger) (contract.Store, error) {
	if driver == internal.StoreSQLite {
		return sqlite.Open(ctx, path, log)
	}
	// Read-only so a running server keeps its lock
	db, err := badger.Open(badger.DefaultOptions(path).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return repositories.NewBadgerStore(db, log), nil
}

func newTable(out io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func listSessions(ctx context.Context, out io.Writer, store contract.Store) error {
	sessions, err := store.ListOpenSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		color.Yellow.Println("No live session")
		return nil
	}
	table := newTable(out, "Session", "Code", "Owner", "State", "Submodule", "Version", "Created")
	for _, s := range sessions {
		table.Append([]string{
			string(s.ID), s.Code, s.OwnerID, stateLabel(s.State), string(s.CurrentSubmodule),
			strconv.FormatUint(s.Version, 10), humanize.Time(s.CreatedAt),
		})
	}
	table.Render()
	return nil
}

func describeSession(ctx context.Context, out io.Writer, store contract.Store, ref string, maxWords int) error {
	s, err := store.GetSession(ctx, domain.SessionID(ref))
	if err != nil {
		// Fall back to the join code
		if s, err = store.FindSessionByCode(ctx, ref); err != nil {
			return err
		}
	}
	participants, err := store.ListParticipants(ctx, s.ID)
	if err != nil {
		return err
	}
	questions, err := store.ListQuestions(ctx, s.ID)
	if err != nil {
		return err
	}
	records, err := store.ListResponses(ctx, s.ID)
	if err != nil {
		return err
	}

	color.Cyan.Printf("Session %s  code=%s  state=%s  version=%d\n", s.ID, s.Code, stateLabel(s.State), s.Version)
	fmt.Fprintf(out, "module=%s unlocked=%v submodule=%s question=%s participants=%d responses=%d\n\n",
		s.ModuleID, s.UnlockedModules, s.CurrentSubmodule, s.CurrentQuestion, len(participants), len(records))

	table := newTable(out, "Question", "Submodule", "Type", "Visibility", "Closed", "Responses", "Tally")
	for _, q := range questions {
		snap := aggregation.NewQuestionTally(q, maxWords).Recompute(records)
		table.Append([]string{
			string(q.ID), string(q.SubmoduleID), string(q.Type), string(q.Visibility),
			strconv.FormatBool(q.Closed), strconv.Itoa(snap.Responses), describeTally(snap, maxWords),
		})
	}
	table.Render()
	return nil
}

func describeTally(s aggregation.Snapshot, maxWords int) string {
	switch {
	case len(s.Counts) > 0:
		parts := make([]string, len(s.Counts))
		for i, n := range s.Counts {
			parts[i] = fmt.Sprintf("#%d:%d", i, n)
		}
		res := strings.Join(parts, " ")
		if s.Correct > 0 {
			res += fmt.Sprintf(" correct:%d", s.Correct)
		}
		return res
	case len(s.Histogram) > 0:
		return fmt.Sprintf("mean:%.2f", s.Mean)
	case len(s.Words) > 0:
		words := s.Words
		if len(words) > maxWords {
			words = words[:maxWords]
		}
		parts := make([]string, len(words))
		for i, w := range words {
			parts[i] = fmt.Sprintf("%s:%d", w.Word, w.Count)
		}
		return strings.Join(parts, " ")
	case len(s.Pairs) > 0:
		return fmt.Sprintf("fully-correct:%d", s.FullyCorrect)
	}
	return "-"
}

func stateLabel(s domain.State) string {
	switch s {
	case domain.StateActive:
		return color.Green.Render(string(s))
	case domain.StatePaused:
		return color.Yellow.Render(string(s))
	case domain.StateEnded:
		return color.Gray.Render(string(s))
	}
	return string(s)
}
