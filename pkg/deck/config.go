package deck

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ViewState is the initial camera of the Deck.
type ViewState struct {
	Longitude float64 `json:"longitude" yaml:"longitude" validate:"gte=-180,lte=180"`
	Latitude  float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
	Zoom      float64 `json:"zoom" yaml:"zoom" validate:"gte=0,lte=24"`
	Pitch     float64 `json:"pitch" yaml:"pitch" validate:"gte=0,lte=85"`
	Bearing   float64 `json:"bearing" yaml:"bearing"`
}

// Canvas is a drawing surface. The Deck renders into it unless it runs in
// interleaved mode.
type Canvas struct {
	ID     string `validate:"required"`
	Width  int    `validate:"gte=0"`
	Height int    `validate:"gte=0"`
}

// Parent is the element a Deck attaches its surface to.
type Parent struct {
	ID string `validate:"required"`
}

// Config is the one-time construction configuration of a Deck.
type Config struct {
	// InitialViewState positions the camera before the first commit.
	InitialViewState ViewState

	// Controller enables input handling.
	Controller bool

	// Canvas is the surface to draw into. Required unless Interleaved is set.
	Canvas *Canvas `validate:"required_without=Interleaved"`

	// Parent is the element hosting the surface.
	Parent *Parent `validate:"omitempty"`

	// Interleaved suspends the Deck's own surface in favor of one owned by
	// another renderer, typically a base map.
	Interleaved bool

	Width  int `validate:"gte=0"`
	Height int `validate:"gte=0"`

	// OnConfigure is invoked once the Deck is constructed, with the instance
	// and the resolved config.
	OnConfigure func(d *Deck, resolved Config) `validate:"-"`
}

var validate = validator.New()

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid deck config: %w", err)
	}
	return nil
}

// resolved fills derived defaults.
func (c Config) resolved() Config {
	if c.Canvas != nil {
		if c.Width == 0 {
			c.Width = c.Canvas.Width
		}
		if c.Height == 0 {
			c.Height = c.Canvas.Height
		}
	}
	return c
}
