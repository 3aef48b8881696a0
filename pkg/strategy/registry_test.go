package strategy

import (
	"testing"

	"github.com/raykavin/stratbook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, r.Register(
		Definition{Name: "counting", Description: "test", New: func() Tunable { return &countingStrategy{warmup: 1} }},
		Definition{Name: "another", New: func() Tunable { return &countingStrategy{} }},
	))
	return r
}

func TestRegistry_Register(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Register(Definition{Name: "counting", New: func() Tunable { return &countingStrategy{} }})
	require.ErrorIs(t, err, core.ErrDuplicateStrategy)
	require.Error(t, r.Register(Definition{Name: "empty"}))
	require.Panics(t, func() { r.MustRegister(Definition{Name: "another", New: func() Tunable { return nil }}) })

	require.Equal(t, []string{"another", "counting"}, r.Names())
	require.Len(t, r.Definitions(), 2)
	require.Equal(t, "another", r.Definitions()[0].Name)

	_, err = r.Get("missing")
	require.ErrorIs(t, err, core.ErrUnknownStrategy)

	def, err := r.Get("counting")
	require.NoError(t, err)
	require.Len(t, def.Parameters(), 2)
}

func TestRegistry_New(t *testing.T) {
	r := newTestRegistry(t)

	s, err := r.New("counting", nil)
	require.NoError(t, err)
	require.Equal(t, 14, s.(*countingStrategy).period)

	s, err = r.New("counting", core.ParameterSet{"period": "21"})
	require.NoError(t, err)
	require.Equal(t, 21, s.(*countingStrategy).period)

	_, err = r.New("counting", core.ParameterSet{"period": 99})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = r.New("counting", core.ParameterSet{"unknown": 1})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = r.New("counting", core.ParameterSet{"source": "volume"})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = r.New("nope", nil)
	require.ErrorIs(t, err, core.ErrUnknownStrategy)
}

func TestParseAssignments(t *testing.T) {
	set, err := ParseAssignments([]string{"fast=9", " slow = 21 "})
	require.NoError(t, err)
	assert.Equal(t, core.ParameterSet{"fast": "9", "slow": "21"}, set)

	_, err = ParseAssignments([]string{"fast"})
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestValidate(t *testing.T) {
	defs := []core.Parameter{
		{Name: "ratio", Type: core.TypeFloat, Min: 0.0, Max: 1.0},
		{Name: "enabled", Type: core.TypeBool},
		{Name: "label", Type: core.TypeString},
	}

	out, err := Validate(defs, core.ParameterSet{"ratio": "0.25", "enabled": "true", "label": 5})
	require.NoError(t, err)
	assert.Equal(t, 0.25, out["ratio"])
	assert.Equal(t, true, out["enabled"])
	assert.Equal(t, "5", out["label"])

	_, err = Validate(defs, core.ParameterSet{"ratio": 1.5})
	require.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = Validate(defs, core.ParameterSet{"enabled": "maybe"})
	require.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestParamReader(t *testing.T) {
	var (
		period  = 1
		ratio   = 0.1
		enabled bool
		name    = "x"
	)

	err := ReadParams(core.ParameterSet{"period": 7, "ratio": "0.5", "enabled": true}).
		Int("period", &period).
		Float("ratio", &ratio).
		Bool("enabled", &enabled).
		String("name", &name).
		Err()
	require.NoError(t, err)
	assert.Equal(t, 7, period)
	assert.Equal(t, 0.5, ratio)
	assert.True(t, enabled)
	assert.Equal(t, "x", name)

	err = ReadParams(core.ParameterSet{"period": "abc"}).Int("period", &period).Err()
	require.ErrorIs(t, err, core.ErrInvalidParameter)
	assert.Equal(t, 7, period)
}
