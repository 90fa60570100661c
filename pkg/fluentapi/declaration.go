package fluentapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Declaration describes one endpoint and its nested sub-resources. It is the
// only configuration shape the builder accepts.
type Declaration struct {
	// Property is the name the endpoint is exposed under. Required.
	Property string `json:"property" yaml:"property" validate:"required"`
	// URLPart is the path segment. Defaults to Property.
	URLPart string `json:"urlPart,omitempty" yaml:"urlPart,omitempty"`
	// Endpoints are the sub-resources, materialized lazily.
	Endpoints []Declaration `json:"endpoints,omitempty" yaml:"endpoints,omitempty"`
	// Class names a kind registered in the Registry.
	Class string `json:"endpointClass,omitempty" yaml:"endpointClass,omitempty"`
	// Factory builds a custom kind. It wins over Class.
	Factory Factory `json:"-" yaml:"-"`
}

// Segment returns the URL segment for the declaration.
func (d Declaration) Segment() string {
	if d.URLPart != "" {
		return d.URLPart
	}

	return d.Property
}

// Validate checks this declaration only. Nested declarations are checked
// when their parent materializes them.
func (d Declaration) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		return &ConfigurationError{Declaration: d, Err: ErrMissingProperty}
	}

	return &ConfigurationError{Declaration: d, Err: err}
}

// ValidateTree checks the declaration and every descendant.
func (d Declaration) ValidateTree() error {
	err := d.Validate()
	if err != nil {
		return err
	}

	for _, child := range d.Endpoints {
		err := child.ValidateTree()
		if err != nil {
			return err
		}
	}

	return nil
}
