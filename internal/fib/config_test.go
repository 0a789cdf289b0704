package fib

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_AppliesValidLines(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"# this is a comment",
		"ccnx:/a/b tcp host1 host2",
		"",
		"ccnx:/c udp host3",
	}, "\n"))

	tbl := NewTable()
	resolver := &stubResolver{}
	err := LoadConfig(src, tbl, resolver)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
}

func TestLoadConfig_SkipsBadLinesButKeepsProcessing(t *testing.T) {
	src := strings.NewReader(strings.Join([]string{
		"not-a-uri tcp host1",
		"ccnx:/ok tcp host1",
		"ccnx:/also-bad sctp host1",
		"ccnx:/short",
	}, "\n"))

	tbl := NewTable()
	resolver := &stubResolver{}
	err := LoadConfig(src, tbl, resolver)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	_, ok := tbl.Get(keyOf(t, "ccnx:/ok"))
	assert.True(t, ok)
}

func TestLoadConfig_TooManyHostsSkipped(t *testing.T) {
	hosts := make([]string, maxConfigHosts+1)
	for i := range hosts {
		hosts[i] = "h"
	}
	line := "ccnx:/a tcp " + strings.Join(hosts, " ")

	tbl := NewTable()
	resolver := &stubResolver{}
	err := LoadConfig(strings.NewReader(line), tbl, resolver)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}
