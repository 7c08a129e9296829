package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	domain "github.com/alexisbeaulieu97/floatkit/internal/domain/overlay"
	floatkiterrors "github.com/alexisbeaulieu97/floatkit/pkg/errors"
)

type placeOptions struct {
	trigger  string
	overlay  string
	viewport string
	side     string
	indent   float64
	json     bool
}

type placeResult struct {
	Top     float64 `json:"top"`
	Left    float64 `json:"left"`
	Side    string  `json:"side"`
	Flipped bool    `json:"flipped"`
}

func newPlaceCmd(app *AppContext) *cobra.Command {
	opts := placeOptions{}

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Compute an overlay position for the given geometry",
		Example: `  floatkit place --trigger 20,500,100,40 --overlay 200,300 --viewport 375,600 --indent 8
  floatkit place --trigger 300,100,50,30 --overlay 150,100 --viewport 375,667 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, logger := app.CommandContext(cmd, "command.place")

			in, err := placementInput(app, cmd, opts)
			if err != nil {
				return err
			}

			pos := domain.Place(in)
			start := in.Trigger.Y
			if in.Side == geometry.SideBottom {
				start = in.Trigger.Bottom()
			}
			result := placeResult{
				Top:     pos.Top,
				Left:    pos.Left,
				Side:    in.Side.String(),
				Flipped: pos.Top < start,
			}
			logger.Debug(ctx, "placement computed", "top", pos.Top, "left", pos.Left, "flipped", result.Flipped)

			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "top=%g left=%g\n", result.Top, result.Left)
			return err
		},
	}

	cmd.Flags().StringVar(&opts.trigger, "trigger", "", "Trigger rect as x,y,w,h")
	cmd.Flags().StringVar(&opts.overlay, "overlay", "", "Overlay size as w,h")
	cmd.Flags().StringVar(&opts.viewport, "viewport", "", "Viewport size as w,h")
	cmd.Flags().StringVar(&opts.side, "side", "", "Preferred side (bottom or top); defaults to overlay.side")
	cmd.Flags().Float64Var(&opts.indent, "indent", 0, "Screen indent; defaults to overlay.screen_indent")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the result as JSON")
	cmd.MarkFlagRequired("trigger")  //nolint:errcheck
	cmd.MarkFlagRequired("overlay")  //nolint:errcheck
	cmd.MarkFlagRequired("viewport") //nolint:errcheck

	return cmd
}

func placementInput(app *AppContext, cmd *cobra.Command, opts placeOptions) (domain.PlacementInput, error) {
	trigger, err := parseRect("trigger", opts.trigger)
	if err != nil {
		return domain.PlacementInput{}, err
	}
	ow, oh, err := parseSize("overlay", opts.overlay)
	if err != nil {
		return domain.PlacementInput{}, err
	}
	vw, vh, err := parseSize("viewport", opts.viewport)
	if err != nil {
		return domain.PlacementInput{}, err
	}

	sideName := app.Config.Overlay.Side
	if cmd.Flags().Changed("side") {
		sideName = opts.side
	}
	side, err := geometry.ParseSide(sideName)
	if err != nil {
		return domain.PlacementInput{}, floatkiterrors.NewValidationError("side", err.Error(), err)
	}

	indent := app.Config.Overlay.ScreenIndent
	if cmd.Flags().Changed("indent") {
		if opts.indent < 0 {
			return domain.PlacementInput{}, floatkiterrors.NewValidationError("indent", "indent must not be negative", nil)
		}
		indent = opts.indent
	}

	return domain.PlacementInput{
		Trigger:      trigger,
		Overlay:      geometry.Rect{Width: ow, Height: oh},
		Viewport:     geometry.Viewport{Width: vw, Height: vh},
		Side:         side,
		ScreenIndent: indent,
	}, nil
}
