package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/imaging"
)

// Request converts the settings into a validated bake request.
func (c *Config) Request() (bake.Request, error) {
	pass, err := bake.ParsePass(c.Bake.Type)
	if err != nil {
		return bake.Request{}, err
	}
	format, err := imaging.ParseFormat(c.Output.Format)
	if err != nil {
		return bake.Request{}, fmt.Errorf("%w: %v", bake.ErrConfiguration, err)
	}
	if len(c.Bake.NormalSwizzle) != 3 {
		return bake.Request{}, fmt.Errorf("%w: normal swizzle needs 3 axes, got %d",
			bake.ErrConfiguration, len(c.Bake.NormalSwizzle))
	}

	req := bake.Request{
		Pass:             pass,
		Margin:           c.Bake.Margin,
		Clear:            c.Bake.Clear,
		SplitMaterials:   c.Output.SplitMaterials,
		AutomaticName:    c.Output.AutomaticName,
		SelectedToActive: c.Bake.SelectedToActive,
		CageExtrusion:    c.Bake.CageExtrusion,
		MaxRayDistance:   c.Bake.MaxRayDistance,
		Cage:             c.Bake.Cage,
		NormalSpace:      bake.NormalSpace(strings.ToUpper(c.Bake.NormalSpace)),
		Width:            c.Output.Width,
		Height:           c.Output.Height,
		FilePath:         c.Output.FilePath,
		Format:           format,
		ColorDepth:       c.Output.ColorDepth,
		SaveMode:         bake.SaveMode(strings.ToUpper(c.Output.SaveMode)),
	}
	for i, a := range c.Bake.NormalSwizzle {
		req.NormalSwizzle[i] = bake.Axis(strings.ToUpper(a))
	}
	if err := req.Validate(); err != nil {
		return bake.Request{}, err
	}
	return req, nil
}
