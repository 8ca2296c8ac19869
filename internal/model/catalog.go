package model

// EntryKind identifies one of the named auxiliary lists kept alongside
// applications.
type EntryKind string

const (
	KindComponent         EntryKind = "component"
	KindSubstitute        EntryKind = "substitute"
	KindIngressAnnotation EntryKind = "ingress_annotation"
)

// String returns the string representation of the kind.
func (k EntryKind) String() string {
	return string(k)
}

// IsValid checks whether the kind is a known value.
func (k EntryKind) IsValid() bool {
	switch k {
	case KindComponent, KindSubstitute, KindIngressAnnotation:
		return true
	}
	return false
}

// Entry is a single named item of a component, substitute or ingress
// annotation list. The on-disk key is "nom".
type Entry struct {
	Name string `yaml:"nom" json:"name"`
}
