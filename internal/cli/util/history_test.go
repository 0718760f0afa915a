package util

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/toastkit/internal/history"
)

func TestFilterEntries(t *testing.T) {
	t.Parallel()

	entries := []history.HistoryEntry{
		{ID: "c", Status: history.StatusActivated},
		{ID: "b", Status: history.StatusFailed},
		{ID: "a", Status: history.StatusActivated},
	}

	tests := map[string]struct {
		status string
		limit  int
		want   []string
	}{
		"all":              {want: []string{"c", "b", "a"}},
		"limit":            {limit: 2, want: []string{"c", "b"}},
		"status":           {status: "activated", want: []string{"c", "a"}},
		"status any case":  {status: "FAILED", want: []string{"b"}},
		"status and limit": {status: "activated", limit: 1, want: []string{"c"}},
		"no match":         {status: "dismissed"},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var ids []string
			for _, e := range filterEntries(entries, tc.status, tc.limit) {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestFormatID(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "-       ", formatID(""))
	assert.Equal(t, "5f0c6d1e", formatID("5f0c6d1e-0000-4000-8000-000000000001"))
	assert.Equal(t, "abc     ", formatID("abc"))
}

func TestTruncateCommit(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "0123abcd", truncateCommit("0123abcdef99"))
	assert.Equal(t, "unknown", truncateCommit("unknown"))
}
