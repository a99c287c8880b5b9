package split

import "testing"

func TestCompute(t *testing.T) {
	tests := []struct {
		name          string
		total         int64
		count         int64
		wantPerPerson int64
		wantOverhead  int64
	}{
		{
			name:          "three people with remainder",
			total:         10000,
			count:         3,
			wantPerPerson: 3400,
			wantOverhead:  200,
		},
		{
			name:          "exact division on rounding unit",
			total:         30000,
			count:         3,
			wantPerPerson: 10000,
			wantOverhead:  0,
		},
		{
			name:          "single participant rounds up",
			total:         12345,
			count:         1,
			wantPerPerson: 12400,
			wantOverhead:  55,
		},
		{
			name:          "share below rounding unit",
			total:         150,
			count:         4,
			wantPerPerson: 100,
			wantOverhead:  250,
		},
		{
			name:          "zero total is degenerate",
			total:         0,
			count:         3,
			wantPerPerson: 0,
			wantOverhead:  0,
		},
		{
			name:          "zero participants is degenerate",
			total:         10000,
			count:         0,
			wantPerPerson: 0,
			wantOverhead:  0,
		},
		{
			name:          "negative total is degenerate",
			total:         -500,
			count:         2,
			wantPerPerson: 0,
			wantOverhead:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.total, tt.count)
			if got.PerPerson != tt.wantPerPerson {
				t.Errorf("PerPerson = %d, want %d", got.PerPerson, tt.wantPerPerson)
			}
			if got.Overhead != tt.wantOverhead {
				t.Errorf("Overhead = %d, want %d", got.Overhead, tt.wantOverhead)
			}
		})
	}
}

// Rounding must never under-collect: for any valid input the per-person
// charge is a multiple of the rounding unit and the overhead stays within
// one unit per participant.
func TestComputeProperties(t *testing.T) {
	for total := int64(1); total <= 5000; total += 137 {
		for count := int64(1); count <= 12; count++ {
			s := Compute(total, count)
			if s.PerPerson%RoundingUnit != 0 {
				t.Fatalf("Compute(%d, %d).PerPerson = %d, not a multiple of %d",
					total, count, s.PerPerson, RoundingUnit)
			}
			collected := s.PerPerson * count
			if collected < total {
				t.Fatalf("Compute(%d, %d) under-collects: %d", total, count, collected)
			}
			if s.Overhead != collected-total {
				t.Fatalf("Compute(%d, %d).Overhead = %d, want %d",
					total, count, s.Overhead, collected-total)
			}
			if s.Overhead < 0 || s.Overhead >= RoundingUnit*count {
				t.Fatalf("Compute(%d, %d).Overhead = %d out of range [0, %d)",
					total, count, s.Overhead, RoundingUnit*count)
			}
		}
	}
}
