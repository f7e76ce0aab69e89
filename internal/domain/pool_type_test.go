package domain

import "testing"

func TestPoolFetchType_WireValue(t *testing.T) {
	tests := []struct {
		typ   PoolFetchType
		farms bool
		want  string
	}{
		{PoolFetchAll, false, "all"},
		{PoolFetchAll, true, "allFarm"},
		{PoolFetchStandard, true, "standardFarm"},
		{PoolFetchConcentrated, false, "concentrated"},
	}

	for _, tt := range tests {
		if got := tt.typ.WireValue(tt.farms); got != tt.want {
			t.Errorf("%s.WireValue(%v) = %s, want %s", tt.typ, tt.farms, got, tt.want)
		}
	}
}

func TestParsePoolFetchType(t *testing.T) {
	got, err := ParsePoolFetchType("")
	if err != nil || got != PoolFetchAll {
		t.Errorf("empty should parse as all, got %q err %v", got, err)
	}

	got, err = ParsePoolFetchType("concentrated")
	if err != nil || got != PoolFetchConcentrated {
		t.Errorf("expected concentrated, got %q err %v", got, err)
	}

	if _, err := ParsePoolFetchType("allFarm"); err == nil {
		t.Error("farm wire values are not fetch types")
	}
}

func TestSortOrder_IsValid(t *testing.T) {
	if !SortAsc.IsValid() || !SortDesc.IsValid() {
		t.Error("asc and desc must be valid")
	}
	if SortOrder("up").IsValid() {
		t.Error("unexpected valid order")
	}
}
