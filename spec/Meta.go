package spec

// Dtype describes the element type of a meta-variable. All numeric
// data in this module is float64, but the descriptor records the type
// explicitly so that external storage layers can allocate correctly.
type Dtype string

const (
	Float64 Dtype = "float64"
)

// Meta is a static descriptor for a meta-variable that an agent
// produces during action selection. Outer training loops use the
// descriptor to allocate storage for the variable, e.g. the skill
// vector of a skill-discovery agent.
type Meta struct {
	Shape int
	Type  Dtype
	Name  string
}

// NewMeta returns the descriptor of a float64 meta-variable
func NewMeta(shape int, name string) Meta {
	return Meta{Shape: shape, Type: Float64, Name: name}
}
