package machinedef

import (
	"fmt"
	"os"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/aretw0/cascade/pkg/dsl"
)

// Load reads and builds a machine definition from a YAML file.
func Load(path string) (*Definition, []*domain.StateType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML machine definition and builds its state types,
// dependency order resolved.
func Parse(data []byte) (*Definition, []*domain.StateType, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	var def Definition
	if err := mapstructure.Decode(raw, &def); err != nil {
		return nil, nil, fmt.Errorf("failed to decode definition: %w", err)
	}

	types, err := Build(&def)
	if err != nil {
		return nil, nil, err
	}
	return &def, types, nil
}

// Build compiles a decoded definition into state type descriptors, ordered
// so every state appears after its dependencies.
func Build(def *Definition) ([]*domain.StateType, error) {
	byName := make(map[string]*StateDef, len(def.States))
	for i := range def.States {
		sd := &def.States[i]
		if sd.Name == "" {
			return nil, fmt.Errorf("state at index %d has no name", i)
		}
		if _, ok := byName[sd.Name]; ok {
			return nil, fmt.Errorf("duplicate state %q", sd.Name)
		}
		byName[sd.Name] = sd
	}

	built := make(map[string]*domain.StateType, len(def.States))
	ordered := make([]*domain.StateType, 0, len(def.States))

	// Build states whose dependencies are already built until the set stops
	// growing. A leftover state has an undefined or cyclic dependency.
	for len(ordered) < len(def.States) {
		progress := false
		for i := range def.States {
			sd := &def.States[i]
			if _, done := built[sd.Name]; done {
				continue
			}
			deps, ok := resolveDeps(sd, byName, built)
			if !ok {
				continue
			}
			st, err := buildState(sd, deps)
			if err != nil {
				return nil, err
			}
			built[sd.Name] = st
			ordered = append(ordered, st)
			progress = true
		}
		if !progress {
			for i := range def.States {
				sd := &def.States[i]
				if _, done := built[sd.Name]; done {
					continue
				}
				for _, dep := range sd.DependsOn {
					if _, defined := byName[dep]; !defined {
						return nil, fmt.Errorf("state %q depends on undefined state %q", sd.Name, dep)
					}
				}
				return nil, fmt.Errorf("state %q is part of a dependency cycle", sd.Name)
			}
		}
	}

	return ordered, nil
}

func resolveDeps(sd *StateDef, byName map[string]*StateDef, built map[string]*domain.StateType) ([]*domain.StateType, bool) {
	deps := make([]*domain.StateType, 0, len(sd.DependsOn))
	for _, name := range sd.DependsOn {
		if _, defined := byName[name]; !defined {
			return nil, false
		}
		st, done := built[name]
		if !done {
			return nil, false
		}
		deps = append(deps, st)
	}
	return deps, true
}

func buildState(sd *StateDef, deps []*domain.StateType) (*domain.StateType, error) {
	kind := sd.Kind
	if kind == "" {
		kind = kindRoot
		if len(sd.DependsOn) > 0 {
			kind = kindSub
		}
	}

	switch kind {
	case kindRoot:
		if len(sd.DependsOn) > 0 {
			return nil, fmt.Errorf("root state %q cannot depend on other states", sd.Name)
		}
		if sd.ActiveWhen != "" {
			return nil, fmt.Errorf("root state %q cannot have an active_when guard", sd.Name)
		}
		b := dsl.Root(sd.Name)
		switch sd.Target {
		case "", targetReplace:
		case targetToggle:
			b = b.Toggleable()
		default:
			return nil, fmt.Errorf("state %q has unknown target %q", sd.Name, sd.Target)
		}
		return b.Build(), nil

	case kindSub:
		if sd.Target != "" && sd.Target != targetReplace {
			return nil, fmt.Errorf("sub state %q supports only the replace target", sd.Name)
		}
		b := dsl.Sub(sd.Name, deps...).WithDefault(sd.Default)
		if sd.ActiveWhen != "" {
			guard, err := compileGuard(sd)
			if err != nil {
				return nil, err
			}
			b = b.ActiveWhen(guard)
		}
		return b.Build(), nil

	default:
		return nil, fmt.Errorf("state %q has unknown kind %q", sd.Name, kind)
	}
}

// compileGuard compiles the active_when expression once; evaluation per cycle
// only runs the program. A guard that errors at runtime reads as false.
func compileGuard(sd *StateDef) (func(domain.Dependencies) bool, error) {
	program, err := expr.Compile(sd.ActiveWhen,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("state %q has invalid guard: %w", sd.Name, err)
	}

	return func(deps domain.Dependencies) bool {
		return runGuard(program, deps)
	}, nil
}

func runGuard(program *vm.Program, deps domain.Dependencies) bool {
	env := make(map[string]any, len(deps)+2)
	enabled := make(map[string]bool, len(deps))
	updated := make(map[string]bool, len(deps))
	for _, v := range deps {
		env[v.Name()] = v.Current()
		enabled[v.Name()] = v.Enabled()
		updated[v.Name()] = v.IsUpdated()
	}
	env["enabled"] = enabled
	env["updated"] = updated

	out, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	b, _ := out.(bool)
	return b
}
