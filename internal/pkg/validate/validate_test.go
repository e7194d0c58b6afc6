package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlowName(t *testing.T) {
	assert.True(t, FlowName("order-sync"))
	assert.True(t, FlowName("Order Sync v2"))

	assert.False(t, FlowName(""))
	assert.False(t, FlowName("   "))
	assert.False(t, FlowName("bad\nname"))
	assert.False(t, FlowName("bad\x00name"))
	assert.False(t, FlowName(strings.Repeat("x", FlowNameMaxLen+1)))
	assert.True(t, FlowName(strings.Repeat("x", FlowNameMaxLen)))
}

func TestDefinition(t *testing.T) {
	assert.True(t, Definition("{}"))
	assert.True(t, Definition(`{"nodes":[]}`))
	assert.True(t, Definition("[]"))
	assert.True(t, Definition("  {\"a\":1}"))

	assert.False(t, Definition(""))
	assert.False(t, Definition("not json"))
	assert.False(t, Definition(`"just a string"`))

	big := "{" + strings.Repeat(" ", DefinitionMaxBytes) + "}"
	assert.False(t, Definition(big))
}
