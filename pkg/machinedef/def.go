// Package machinedef loads state type definitions from YAML documents, so
// machine layouts can live next to configuration instead of Go code.
package machinedef

// Definition is the root of a machine definition document.
type Definition struct {
	Machine string     `json:"machine" mapstructure:"machine"`
	States  []StateDef `json:"states" mapstructure:"states"`
}

// StateDef declares one state type.
type StateDef struct {
	Name string `json:"name" mapstructure:"name"`

	// Kind is "root" (dependency-free, externally driven) or "sub"
	// (guarded by its dependencies). Defaults to "root" when DependsOn is
	// empty and "sub" otherwise.
	Kind string `json:"kind" mapstructure:"kind"`

	// Target selects the update channel for root states: "replace"
	// (default) or "toggle".
	Target string `json:"target" mapstructure:"target"`

	// DependsOn names the states whose updates propagate to this one.
	DependsOn []string `json:"depends_on" mapstructure:"depends_on"`

	// Default is the value a sub state takes when its guard first becomes
	// true and nothing was staged.
	Default any `json:"default" mapstructure:"default"`

	// ActiveWhen is an expr-lang guard over the dependencies. Each
	// dependency's current value is bound to its state name; "enabled" and
	// "updated" are maps from state name to bool.
	ActiveWhen string `json:"active_when" mapstructure:"active_when"`
}

const (
	kindRoot = "root"
	kindSub  = "sub"

	targetReplace = "replace"
	targetToggle  = "toggle"
)
