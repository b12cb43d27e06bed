package slot

// Shipped modes. Each has its own samples and its own stored rules.
const (
	ModeDefault  = "default"
	ModeEuropapa = "europapa"
)

// Modes in switcher order
func Modes() []string {
	return []string{ModeDefault, ModeEuropapa}
}

// Pad is one entry of the pad layout
type Pad struct {
	Name  string
	Color string
}

// Layout is the pad set, in display order
var Layout = []Pad{
	{Name: "Kick", Color: "#FF4136"},
	{Name: "Clap", Color: "#2ECC40"},
	{Name: "Whole", Color: "#0074D9"},
	{Name: "Half", Color: "#FFDC00"},
	{Name: "Quarter", Color: "#B10DC9"},
}

func defaultTable() map[string]MatchRule {
	return map[string]MatchRule{
		"Kick":    {Note: Any(), Velocity: Any(), Channel: Only(0)},
		"Clap":    {Note: Any(), Velocity: Any(), Channel: Only(1)},
		"Whole":   {Note: Any(), Velocity: Only(127), Channel: Only(2)},
		"Half":    {Note: Any(), Velocity: Only(126), Channel: Only(2)},
		"Quarter": {Note: Any(), Velocity: Only(125), Channel: Only(2)},
	}
}

// Defaults holds the built-in rule per mode and slot. Both modes ship the
// same rules but are stored separately so they can diverge.
var Defaults = map[string]map[string]MatchRule{
	ModeDefault:  defaultTable(),
	ModeEuropapa: defaultTable(),
}

// DefaultRule returns the built-in rule for slot in mode. Unknown modes use
// the default mode's table; unknown slots match everything.
func DefaultRule(mode, slot string) MatchRule {
	table, ok := Defaults[mode]
	if !ok {
		table = Defaults[ModeDefault]
	}
	if r, ok := table[slot]; ok {
		return r
	}
	return AnyRule()
}
