package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name        string
		targetFiles []string
		storedIDs   []string
		wantUpserts []string
		wantDeletes []string
	}{
		{
			name:        "empty store indexes everything",
			targetFiles: []string{"a.md", "b.md"},
			storedIDs:   nil,
			wantUpserts: []string{"a.md", "b.md"},
			wantDeletes: nil,
		},
		{
			name:        "identical sets still refresh all targets",
			targetFiles: []string{"a.md", "b.md"},
			storedIDs:   []string{"a.md", "b.md"},
			wantUpserts: []string{"a.md", "b.md"},
			wantDeletes: nil,
		},
		{
			name:        "stale ids are deleted",
			targetFiles: []string{"a.md", "c.md"},
			storedIDs:   []string{"a.md", "b.md"},
			wantUpserts: []string{"a.md", "c.md"},
			wantDeletes: []string{"b.md"},
		},
		{
			name:        "disjoint sets replace the collection",
			targetFiles: []string{"x.md"},
			storedIDs:   []string{"a.md", "b.md"},
			wantUpserts: []string{"x.md"},
			wantDeletes: []string{"a.md", "b.md"},
		},
		{
			name:        "no targets empties the collection",
			targetFiles: nil,
			storedIDs:   []string{"a.md", "b.md"},
			wantUpserts: nil,
			wantDeletes: []string{"a.md", "b.md"},
		},
		{
			name:        "both empty is a no-op",
			targetFiles: nil,
			storedIDs:   nil,
			wantUpserts: nil,
			wantDeletes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := Reconcile(tt.targetFiles, tt.storedIDs)
			assert.Equal(t, tt.wantUpserts, diff.Upserts)
			assert.Equal(t, tt.wantDeletes, diff.Deletes)
		})
	}
}
