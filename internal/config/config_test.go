package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	c := New()
	assert.True(t, c.GetBool("emit.optimize_constants"))
	assert.Equal(t, "main", c.GetString("emit.package_name"))
	assert.False(t, c.GetBool("emit.remove_runtime_lib"))
	assert.Equal(t, 4, c.GetInt("lexer.tab_width"))
}

func TestOverride(t *testing.T) {
	c := New()
	c.SetString("emit.package_name", "vexout")
	assert.Equal(t, "vexout", c.GetString("emit.package_name"))
}

func TestWrongTypeAccessPanics(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.GetInt("emit.package_name") })
}

func TestMissingKeyPanics(t *testing.T) {
	c := New()
	assert.Panics(t, func() { c.GetBool("no.such.key") })
}
