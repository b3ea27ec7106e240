package model

import (
	"errors"
	"fmt"
)

var ErrInvalidOption = errors.New("invalid generation option")

// GenerationOptions configures sampling for a remote call. A nil field
// leaves the endpoint default in place.
type GenerationOptions struct {
	Temperature     *float32 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	TopP            *float32 `json:"top_p,omitempty" yaml:"top_p,omitempty"`
	MaxOutputTokens *int32   `json:"max_output_tokens,omitempty" yaml:"max_output_tokens,omitempty"`
}

func (o GenerationOptions) Validate() error {
	if o.Temperature != nil && *o.Temperature < 0 {
		return fmt.Errorf("%w: temperature must be >= 0, got %v", ErrInvalidOption, *o.Temperature)
	}
	if o.TopP != nil && (*o.TopP <= 0 || *o.TopP > 1) {
		return fmt.Errorf("%w: top_p must be in (0,1], got %v", ErrInvalidOption, *o.TopP)
	}
	if o.MaxOutputTokens != nil && *o.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: max_output_tokens must be positive, got %d", ErrInvalidOption, *o.MaxOutputTokens)
	}
	return nil
}

// Merge returns o with every field that is set in override replaced.
func (o GenerationOptions) Merge(override GenerationOptions) GenerationOptions {
	if override.Temperature != nil {
		o.Temperature = override.Temperature
	}
	if override.TopP != nil {
		o.TopP = override.TopP
	}
	if override.MaxOutputTokens != nil {
		o.MaxOutputTokens = override.MaxOutputTokens
	}
	return o
}

func Float32(v float32) *float32 {
	return &v
}

func Int32(v int32) *int32 {
	return &v
}
