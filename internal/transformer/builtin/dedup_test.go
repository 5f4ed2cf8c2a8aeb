package builtin

import (
	"reflect"
	"testing"

	"injuryreport/pkg/records"
)

// TestDeDupApply covers the keep-first and keep-last policies, the Removed
// counter, and pass-through of records missing a key field.
func TestDeDupApply(t *testing.T) {
	t.Parallel()

	in := func() []records.Record {
		return []records.Record{
			{"id": "1", "v": "a"},
			{"id": "2", "v": "b"},
			{"id": "1", "v": "c"},
			{"v": "nokey"}, // missing key field: passes through
		}
	}

	tests := []struct {
		name        string
		policy      string
		want        []records.Record
		wantRemoved int
	}{
		{
			name:   "keep_last_default",
			policy: "",
			want: []records.Record{
				{"id": "2", "v": "b"},
				{"id": "1", "v": "c"},
				{"v": "nokey"},
			},
			wantRemoved: 1,
		},
		{
			name:   "keep_first",
			policy: "keep-first",
			want: []records.Record{
				{"id": "1", "v": "a"},
				{"id": "2", "v": "b"},
				{"v": "nokey"},
			},
			wantRemoved: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			d := &DeDup{Keys: []string{"id"}, Policy: tt.policy}
			got := d.Apply(in())
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
			if d.Removed != tt.wantRemoved {
				t.Errorf("Removed = %d, want %d", d.Removed, tt.wantRemoved)
			}
		})
	}
}

// TestDeDupNoKeysPassthrough verifies that an unconfigured DeDup is a no-op.
func TestDeDupNoKeysPassthrough(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": "1"}, {"a": "1"}}
	d := &DeDup{}
	got := d.Apply(in)
	if len(got) != 2 || d.Removed != 0 {
		t.Errorf("no-op dedup changed input: %v removed=%d", got, d.Removed)
	}
}
