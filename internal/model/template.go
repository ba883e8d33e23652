package model

import (
	"errors"
	"fmt"

	"github.com/udisondev/elemental/internal/resistance"
)

// ErrInvalidTemplate is returned by Template.Validate.
var ErrInvalidTemplate = errors.New("invalid enemy template")

// Template describes an enemy type loaded from configuration.
type Template struct {
	Name        string             `yaml:"name"`
	MaxHP       float64            `yaml:"max_hp"`
	MoveSpeed   float64            `yaml:"move_speed"`
	Resistances []resistance.Entry `yaml:"resistances"`
}

// Validate checks fields a spawn cannot work without.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTemplate)
	}
	if t.MaxHP <= 0 {
		return fmt.Errorf("%w: %s: max_hp must be positive, got %v", ErrInvalidTemplate, t.Name, t.MaxHP)
	}
	if t.MoveSpeed < 0 {
		return fmt.Errorf("%w: %s: move_speed must not be negative, got %v", ErrInvalidTemplate, t.Name, t.MoveSpeed)
	}
	return nil
}
