package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vango-dev/reactor/internal/config"
)

func TestCurrentBuild(t *testing.T) {
	b := currentBuild()
	assert.Equal(t, config.DefaultMaxUpdateCount, b.MaxUpdateCount)
	assert.Equal(t, []string{"SetText", "SetAttr", "RemoveAttr", "InsertNode", "RemoveNode", "MoveNode", "CreateNode"}, b.PatchOps)
	assert.NotEmpty(t, b.GoVersion)

	var out strings.Builder
	b.print(&out)
	assert.Contains(t, out.String(), "Update bound: 100 runs per watcher per flush")
	assert.Contains(t, out.String(), "max 100000 patches")
}
