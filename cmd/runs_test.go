package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pskc-research/sunassign/internal/model"
)

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "12345678", truncateID("12345678-abcd-efgh"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestFormatRunsList(t *testing.T) {
	runs := []model.Run{
		{
			ID:          "aaaaaaaa-1111-2222-3333-444444444444",
			WindowStart: time.Date(2007, 6, 1, 0, 0, 0, 0, time.UTC),
			WindowEnd:   time.Date(2011, 8, 31, 0, 0, 0, 0, time.UTC),
			Status:      model.RunStatusComplete,
			Regions:     230,
			Assignments: 150000,
			Intervals:   900,
			CreatedAt:   time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "aaaaaaaa")
	assert.Contains(t, out, "2007-06-01..2011-08-31")
	assert.Contains(t, out, "complete")
	assert.Contains(t, out, "150000")
}

func TestRootCommandRegistration(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["centers"])
	assert.True(t, names["assign"])
	assert.True(t, names["runs"])
}
