package ledger_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/classtally/classtally/internal/classroom"
	"github.com/classtally/classtally/internal/db"
	"github.com/classtally/classtally/internal/ledger"

	_ "modernc.org/sqlite"
)

func newTestLedger(t *testing.T) (*ledger.Ledger, *classroom.SQLStore) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dbh.Close() })
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatal(err)
	}
	store := classroom.NewSQLStore(dbh, "sqlite")
	return ledger.New(store), store
}

func TestRecordLoginBlankNoOp(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	if err := l.RecordLogin(ctx, "  ", "2024-09-01"); err != nil {
		t.Fatal(err)
	}
	if err := l.RecordLogin(ctx, "S1", "   "); err != nil {
		t.Fatal(err)
	}
	events, err := store.ListLogins(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("blank args must record nothing, got %d", len(events))
	}
}

func TestSheetSeededFromLoginsAndStoredCounts(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	if err := l.RecordLogin(ctx, "S1", "2024-09-01"); err != nil {
		t.Fatal(err)
	}
	// S2 never logged in but has a stored count.
	if err := store.SaveParticipation(ctx, "2024-09-01", []classroom.ParticipationRow{
		{StudentID: "S2", Count: 4},
	}); err != nil {
		t.Fatal(err)
	}

	sheet, err := l.LoadSheet(ctx, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	rows := sheet.Rows()
	if len(rows) != 2 {
		t.Fatalf("sheet must union logins and stored counts: %v", rows)
	}
	if rows[0].StudentID != "S1" || rows[0].Count != 0 {
		t.Fatalf("logged-in student seeds at zero: %+v", rows[0])
	}
	if rows[1].StudentID != "S2" || rows[1].Count != 4 {
		t.Fatalf("stored count must carry over: %+v", rows[1])
	}
}

func TestSheetAdjustClampsAtZero(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if err := l.RecordLogin(ctx, "S1", "2024-09-01"); err != nil {
		t.Fatal(err)
	}
	sheet, err := l.LoadSheet(ctx, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if n := sheet.Adjust("S1", -1); n != 0 {
		t.Fatalf("decrement must clamp at zero, got %d", n)
	}
	if n := sheet.Adjust("S1", 1); n != 1 {
		t.Fatalf("increment broken, got %d", n)
	}
	if n := sheet.Adjust("S1", 1); n != 2 {
		t.Fatalf("increment broken, got %d", n)
	}
}

func TestSaveSheetPersistsBatch(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	if err := l.RecordLogin(ctx, "S1", "2024-09-01"); err != nil {
		t.Fatal(err)
	}
	sheet, err := l.LoadSheet(ctx, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	sheet.Adjust("S1", 3)
	if err := l.SaveSheet(ctx, sheet); err != nil {
		t.Fatal(err)
	}

	counts, err := store.ParticipationCounts(ctx, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if counts["S1"] != 3 {
		t.Fatalf("saved count = %d, want 3", counts["S1"])
	}
}

func TestSheetsRegistryKeepsAdjustments(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()
	sheets := ledger.NewSheets()

	if err := l.RecordLogin(ctx, "S1", "2024-09-01"); err != nil {
		t.Fatal(err)
	}
	first, err := sheets.GetOrLoad(ctx, l, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	first.Adjust("S1", 2)

	again, err := sheets.GetOrLoad(ctx, l, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if again != first {
		t.Fatal("registry must hand back the live sheet")
	}
	if rows := again.Rows(); rows[0].Count != 2 {
		t.Fatalf("adjustment lost: %+v", rows[0])
	}

	sheets.Drop("2024-09-01")
	fresh, err := sheets.GetOrLoad(ctx, l, "2024-09-01")
	if err != nil {
		t.Fatal(err)
	}
	if fresh == first {
		t.Fatal("dropped sheet must be reloaded")
	}
}
