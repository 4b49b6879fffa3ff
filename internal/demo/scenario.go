package demo

import (
	"fmt"

	"github.com/vango-dev/statetrack/internal/errors"
	"github.com/vango-dev/statetrack/pkg/reactive"
)

// Step is one observation made while running a scenario.
type Step struct {
	Action string `json:"action"`
	Value  any    `json:"value"`
	// Runs is how many times the observed selector has computed so far,
	// including its first run.
	Runs uint64 `json:"runs"`
}

// Scenario is a scripted walk through the runtime's guarantees.
type Scenario struct {
	Name  string
	Title string
	Run   func(t *reactive.Tracker) []Step
}

// Scenarios returns the built-in scenarios in order.
func Scenarios() []Scenario {
	return []Scenario{
		{Name: "a", Title: "equal writes are skipped", Run: scenarioA},
		{Name: "b", Title: "one update, one recompute", Run: scenarioB},
		{Name: "c", Title: "dependencies follow the branch taken", Run: scenarioC},
	}
}

// Lookup returns the scenario called name.
func Lookup(name string) (Scenario, error) {
	for _, s := range Scenarios() {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, errors.New("ST020").
		WithDetail(fmt.Sprintf("%q", name)).
		WithSuggestion("Use one of a, b, c or all")
}

func observe[T any](action string, s *reactive.Selector[T]) Step {
	return Step{Action: action, Value: s.Value(), Runs: s.Runs()}
}

func scenarioA(t *reactive.Tracker) []Step {
	x := reactive.NewField(t, 1)
	double := reactive.NewSelector(t, func() int { return x.Get() * 2 }, reactive.WithName("double"))
	defer double.Dispose()

	steps := []Step{observe("x=1 initially", double)}
	x.Set(1)
	steps = append(steps, observe("write x=1", double))
	x.Set(5)
	return append(steps, observe("write x=5", double))
}

func scenarioB(t *reactive.Tracker) []Step {
	store := reactive.NewStore(t, "pair")
	a := reactive.Declare(store, "a", 1)
	b := reactive.Declare(store, "b", 2)
	sum := reactive.NewSelector(t, func() int { return a.Get() + b.Get() }, reactive.WithName("sum"))
	defer sum.Dispose()

	steps := []Step{observe("a=1 b=2 initially", sum)}
	store.Update(func() {
		a.Set(10)
		b.Set(20)
	})
	return append(steps, observe("update a=10 b=20", sum))
}

func scenarioC(t *reactive.Tracker) []Step {
	flag := reactive.NewField(t, true)
	a := reactive.NewField(t, 1)
	b := reactive.NewField(t, 2)
	cond := reactive.NewSelector(t, func() int {
		if flag.Get() {
			return a.Get()
		}
		return b.Get()
	}, reactive.WithName("cond"))
	defer cond.Dispose()

	steps := []Step{observe("flag=true a=1 b=2 initially", cond)}
	b.Set(99)
	steps = append(steps, observe("write b=99", cond))
	flag.Set(false)
	steps = append(steps, observe("write flag=false", cond))
	a.Set(100)
	steps = append(steps, observe("write a=100", cond))
	b.Set(50)
	return append(steps, observe("write b=50", cond))
}
