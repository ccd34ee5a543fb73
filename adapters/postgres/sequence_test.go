package postgres

import (
	"testing"
	"time"
)

func TestSequenceLockKey_Deterministic(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	scope := "SA" + day.Format("20060102")

	if sequenceLockKey("shortage_alerts", scope) != sequenceLockKey("shortage_alerts", scope) {
		t.Fatal("same table and scope must map to the same lock key")
	}
}

func TestSequenceLockKey_DistinctScopes(t *testing.T) {
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	nextDay := day.AddDate(0, 0, 1)

	keys := map[int64]string{}
	add := func(table, scope string) {
		key := sequenceLockKey(table, scope)
		if prev, ok := keys[key]; ok {
			t.Fatalf("lock key collision: %s/%s vs %s", table, scope, prev)
		}
		keys[key] = table + "/" + scope
	}

	// Different entities and different days must not serialize on each
	// other's locks.
	add("shortage_alerts", "SA"+day.Format("20060102"))
	add("shortage_alerts", "SA"+nextDay.Format("20060102"))
	add("demand_forecasts", "FC"+day.Format("20060102"))
	add("shortage_handling_plans", "SP"+day.Format("20060102"))
}
