package main

import (
	"bytes"
	"testing"

	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/apps/kids"
	"github.com/ahmetcoskunkizilkaya/speakup-backend/internal/practicesync"
	"github.com/stretchr/testify/assert"
)

func TestRun_ListPrintsSourcesWithoutDatabase(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 0, run([]string{"--list"}, &out))
	assert.Contains(t, out.String(), kids.SourceVocabulary)
}

func TestRun_UsageErrorsReturnExitCode(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run([]string{"--source", "kids_vocabulary,nope"}, &out))
	assert.Equal(t, 1, run([]string{"--no-such-flag"}, &out))
	assert.Empty(t, out.String())
}

func TestPrintReport(t *testing.T) {
	var out bytes.Buffer
	printReport(&out, &practicesync.Report{
		DryRun:  true,
		Sources: []practicesync.SourceReport{{Source: "kids_game", Scanned: 3, Created: 2, Skipped: 1}},
		Scanned: 3, Created: 2, Skipped: 1,
	})
	assert.Contains(t, out.String(), "DRY RUN")
	assert.Contains(t, out.String(), "kids_game")
	assert.Contains(t, out.String(), "0 failed")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}
