package app

import (
	"fmt"
	"sort"
)

var runnerRegistry = map[string]func() IRunner{}

// RegisterRunner registers a runner factory under the subcommand name, which
// must match the runner's Name(). Bad registrations panic.
func RegisterRunner(name string, factory func() IRunner) {
	if err := checkRunner(name, factory); err != nil {
		panic(err)
	}
	runnerRegistry[name] = factory
}

func checkRunner(name string, factory func() IRunner) error {
	if name == "" || factory == nil {
		return fmt.Errorf("runner registration needs a name and a factory")
	}
	if _, ok := runnerRegistry[name]; ok {
		return fmt.Errorf("runner %s registered twice", name)
	}
	if got := factory().Name(); got != name {
		return fmt.Errorf("runner registered as %s reports name %s", name, got)
	}
	return nil
}

// ResolveRunner returns a new runner instance for the given name.
func ResolveRunner(name string) (IRunner, error) {
	factory, ok := runnerRegistry[name]
	if !ok {
		return nil, fmt.Errorf("runner %s not registered", name)
	}
	return factory(), nil
}

func MustResolveRunner(name string) IRunner {
	r, err := ResolveRunner(name)
	if err != nil {
		panic(err)
	}
	return r
}

// RunnerList returns the registered runner names in sorted order.
func RunnerList() []string {
	rs := make([]string, 0, len(runnerRegistry))
	for k := range runnerRegistry {
		rs = append(rs, k)
	}
	sort.Strings(rs)
	return rs
}
