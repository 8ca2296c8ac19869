package model

import "strings"

// DefaultBase is the base tag assigned to every newly created application.
const DefaultBase = "apps"

// Application is a deployable unit identified by its (name, namespace) pair.
// Field names and order mirror the YAML records kept in the catalog
// repository.
type Application struct {
	Active        bool            `yaml:"active" json:"active"`
	Name          string          `yaml:"name" json:"name" validate:"required,excludesall=:/"`
	Namespace     string          `yaml:"namespace" json:"namespace" validate:"required,excludesall=:/"`
	Base          string          `yaml:"base,omitempty" json:"base,omitempty"`
	Prune         bool            `yaml:"prune" json:"prune"`
	RetryInterval string          `yaml:"retryInterval,omitempty" json:"retryInterval,omitempty" validate:"omitempty,duration"`
	Timeout       string          `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,duration"`
	Interval      string          `yaml:"interval,omitempty" json:"interval,omitempty" validate:"omitempty,duration"`
	Components    []ComponentRef  `yaml:"components" json:"components"`
	DependsOn     []DependencyRef `yaml:"dependsOn" json:"dependsOn" validate:"dive"`
	Ingress       *Ingress        `yaml:"ingress,omitempty" json:"ingress,omitempty"`
	Helm          map[string]any  `yaml:"helm,omitempty" json:"helm,omitempty"`
	Substitute    []SubstituteVar `yaml:"substitute,omitempty" json:"substitute,omitempty" validate:"dive"`

	// Path is the YAML file the record was loaded from. It is never
	// serialized; the store uses it to locate the record on update.
	Path string `yaml:"-" json:"-"`
}

// DependencyRef names another application this one depends on.
type DependencyRef struct {
	Name      string `yaml:"name" json:"name" validate:"required"`
	Namespace string `yaml:"namespace" json:"namespace" validate:"required"`
}

// ComponentRef points an application at a component by path. Older records
// reference components by name (nom) instead.
type ComponentRef struct {
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	Nom  string `yaml:"nom,omitempty" json:"nom,omitempty"`
}

// SubstituteVar is a single post-build substitution variable.
type SubstituteVar struct {
	Key   string `yaml:"key" json:"key" validate:"required"`
	Value string `yaml:"value" json:"value"`
}

// Ingress holds the ingress settings of an application.
type Ingress struct {
	ClassName       string            `yaml:"className,omitempty" json:"className,omitempty"`
	SectionPath     string            `yaml:"section_path,omitempty" json:"section_path,omitempty"`
	HelmreleaseFile string            `yaml:"helmrelease_file,omitempty" json:"helmrelease_file,omitempty"`
	Active          bool              `yaml:"active,omitempty" json:"active,omitempty"`
	Annotations     map[string]string `yaml:"annotations,omitempty" json:"annotations,omitempty"`
}

// Normalize prepares an application for persistence: identity fields are
// trimmed, empty ingress annotation values are pruned, and an ingress block
// left with nothing in it is dropped.
func (a *Application) Normalize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Namespace = strings.TrimSpace(a.Namespace)

	if a.Ingress != nil {
		for k, v := range a.Ingress.Annotations {
			if v == "" {
				delete(a.Ingress.Annotations, k)
			}
		}
		if len(a.Ingress.Annotations) == 0 {
			a.Ingress.Annotations = nil
		}
		if a.Ingress.isEmpty() {
			a.Ingress = nil
		}
	}
	if len(a.Helm) == 0 {
		a.Helm = nil
	}
	if a.Components == nil {
		a.Components = []ComponentRef{}
	}
	if a.DependsOn == nil {
		a.DependsOn = []DependencyRef{}
	}
}

func (i *Ingress) isEmpty() bool {
	return i.ClassName == "" && i.SectionPath == "" && i.HelmreleaseFile == "" &&
		!i.Active && len(i.Annotations) == 0
}

// Clone returns a deep copy of the application.
func (a *Application) Clone() *Application {
	c := *a
	c.Components = append([]ComponentRef(nil), a.Components...)
	c.DependsOn = append([]DependencyRef(nil), a.DependsOn...)
	c.Substitute = append([]SubstituteVar(nil), a.Substitute...)
	if a.Ingress != nil {
		ing := *a.Ingress
		if a.Ingress.Annotations != nil {
			ing.Annotations = make(map[string]string, len(a.Ingress.Annotations))
			for k, v := range a.Ingress.Annotations {
				ing.Annotations[k] = v
			}
		}
		c.Ingress = &ing
	}
	if a.Helm != nil {
		c.Helm = make(map[string]any, len(a.Helm))
		for k, v := range a.Helm {
			c.Helm[k] = v
		}
	}
	return &c
}
