package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "ring_name").
		From("rikishi").
		Where(Eq("basho_id", 7), IsNull("deleted_at")).
		OrderBy("id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, ring_name FROM rikishi WHERE basho_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 7 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderJoin(t *testing.T) {
	query, args, err := Select("banzuke.rikishi_id", "ranks.rank_no").
		From("banzuke").
		Join("JOIN ranks ON ranks.id = banzuke.rank_id").
		Where(Eq("banzuke.basho_id", 3)).
		OrderBy("ranks.rank_no").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT banzuke.rikishi_id, ranks.rank_no FROM banzuke JOIN ranks ON ranks.id = banzuke.rank_id WHERE banzuke.basho_id = $1 ORDER BY ranks.rank_no"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("rikishi").
		Columns("ring_name", "rank_id").
		Values("Onosato", 1).
		Suffix("ON CONFLICT (ring_name) DO NOTHING").
		Returning("id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO rikishi (ring_name, rank_id) VALUES ($1, $2) ON CONFLICT (ring_name) DO NOTHING RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Onosato" || args[1] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("drafts").
		Set("name", "new").
		SetExpr("last_seen", "NOW()").
		Where(Eq("id", 9)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE drafts SET name = $1, last_seen = NOW() WHERE id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "new" || args[1] != 9 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilderIncrementCounter(t *testing.T) {
	query, args, err := Update("drafts").
		Set("last_days_results_loaded", 5).
		Where(Eq("id", 2), Eq("last_days_results_loaded", 4)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE drafts SET last_days_results_loaded = $1 WHERE id = $2 AND last_days_results_loaded = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != 5 || args[1] != 2 || args[2] != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
