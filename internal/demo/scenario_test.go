package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/statetrack/internal/errors"
	"github.com/vango-dev/statetrack/pkg/reactive"
)

func TestScenarios(t *testing.T) {
	tests := map[string][]Step{
		"a": {
			{Action: "x=1 initially", Value: 2, Runs: 1},
			{Action: "write x=1", Value: 2, Runs: 1},
			{Action: "write x=5", Value: 10, Runs: 2},
		},
		"b": {
			{Action: "a=1 b=2 initially", Value: 3, Runs: 1},
			{Action: "update a=10 b=20", Value: 30, Runs: 2},
		},
		"c": {
			{Action: "flag=true a=1 b=2 initially", Value: 1, Runs: 1},
			{Action: "write b=99", Value: 1, Runs: 1},
			{Action: "write flag=false", Value: 99, Runs: 2},
			{Action: "write a=100", Value: 99, Runs: 2},
			{Action: "write b=50", Value: 50, Runs: 3},
		},
	}

	for _, s := range Scenarios() {
		t.Run(s.Name, func(t *testing.T) {
			tr := reactive.New()
			assert.Equal(t, tests[s.Name], s.Run(tr))
			assert.Equal(t, 0, tr.Stats().Selectors, "scenario disposes its selectors")
		})
	}
}

func TestLookup(t *testing.T) {
	s, err := Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "b", s.Name)

	_, err = Lookup("z")
	require.Error(t, err)
	assert.Equal(t, "ST020", errors.Code(err))
}
