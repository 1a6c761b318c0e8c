package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Normalize(Params{})
	if p.Page != DefaultPage || p.PageSize != DefaultPageSize {
		t.Fatalf("unexpected defaults %+v", p)
	}
}

func TestNormalizeCapsPageSize(t *testing.T) {
	p := Normalize(Params{Page: 2, PageSize: 500})
	if p.PageSize != MaxPageSize {
		t.Fatalf("expected page size capped at %d, got %d", MaxPageSize, p.PageSize)
	}
	if p.Page != 2 {
		t.Fatalf("page should be preserved, got %d", p.Page)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total    int
		pageSize int
		want     int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{95, 10, 10},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.pageSize); got != tt.want {
			t.Fatalf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.pageSize, got, tt.want)
		}
	}
}

func TestSliceBounds(t *testing.T) {
	p := Normalize(Params{Page: 2, PageSize: 10})

	start, end := Slice(p, 25)
	if start != 10 || end != 20 {
		t.Fatalf("expected [10, 20), got [%d, %d)", start, end)
	}

	start, end = Slice(p, 12)
	if start != 10 || end != 12 {
		t.Fatalf("expected [10, 12), got [%d, %d)", start, end)
	}

	// Page past the end collapses to empty.
	start, end = Slice(Normalize(Params{Page: 9, PageSize: 10}), 12)
	if start != end {
		t.Fatalf("expected empty interval, got [%d, %d)", start, end)
	}
}
