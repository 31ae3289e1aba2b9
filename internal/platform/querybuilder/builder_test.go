package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "field_key").
		From("slots").
		Where(Eq("league_id", "metro-youth-2026"), IsNull("deleted_at")).
		OrderBy("game_date", "start_minutes").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, field_key FROM slots WHERE league_id = $1 AND deleted_at IS NULL ORDER BY game_date, start_minutes LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "metro-youth-2026" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RangeConditions(t *testing.T) {
	query, args, err := Select("id").
		From("slots").
		Where(
			Gte("game_date", "2026-04-06"),
			Lte("game_date", "2026-04-19"),
			In("status", []any{"Open", "Pending"}),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build range query: %v", err)
	}

	wantQuery := "SELECT id FROM slots WHERE game_date >= $1 AND game_date <= $2 AND status IN ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[0] != "2026-04-06" || args[3] != "Pending" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ExprCondition(t *testing.T) {
	query, args, err := Select("id").
		From("slots").
		Where(
			Eq("league_id", "metro-youth-2026"),
			Expr("(start_minutes < ? AND end_minutes > ?)", 1290, 1050),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build expr query: %v", err)
	}

	wantQuery := "SELECT id FROM slots WHERE league_id = $1 AND (start_minutes < $2 AND end_minutes > $3)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[1] != 1290 || args[2] != 1050 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("slot_requests").
		Columns("id", "slot_id").
		Values("req-1", "slot-1").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO slot_requests (id, slot_id) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "req-1" || args[1] != "slot-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID       string `db:"id"`
		SlotID   string `db:"slot_id"`
		Internal string `db:"-"`
		NoTag    string
	}

	query, args, err := InsertModel("slot_requests", row{ID: "req-1", SlotID: "slot-1", Internal: "x", NoTag: "y"}, "")
	if err != nil {
		t.Fatalf("build insert from model: %v", err)
	}

	wantQuery := "INSERT INTO slot_requests (id, slot_id) VALUES ($1, $2)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "req-1" || args[1] != "slot-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("slots").
		Set("status", "Cancelled").
		SetExpr("updated_at", "NOW()").
		Where(Eq("id", "slot-1"), Eq("version_token", "tok-1")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE slots SET status = $1, updated_at = NOW() WHERE id = $2 AND version_token = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "Cancelled" || args[2] != "tok-1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
