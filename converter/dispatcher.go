package converter

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/samber/lo"

	"docconv/contracts"
	"docconv/markup"
	"docconv/office"
	"docconv/render"
)

// Dispatcher maps every conversion mode to exactly one converter.
type Dispatcher struct {
	converters map[contracts.Mode]Converter
}

// NewDispatcher fails when a mode has no converter or a converter is
// registered under an unknown mode.
func NewDispatcher(converters map[contracts.Mode]Converter) (*Dispatcher, error) {
	modes := contracts.Modes()
	for _, m := range modes {
		if converters[m] == nil {
			return nil, fmt.Errorf("no converter registered for mode %q", m)
		}
	}
	for m := range converters {
		if !lo.Contains(modes, m) {
			return nil, fmt.Errorf("converter registered for unknown mode %q", m)
		}
	}
	return &Dispatcher{converters: converters}, nil
}

// Dispatch runs the converter for mode. Unknown modes fail before any
// converter runs.
func (d *Dispatcher) Dispatch(ctx context.Context, mode contracts.Mode, req contracts.ConversionRequest) (contracts.ConversionResult, error) {
	c, ok := d.converters[mode]
	if !ok {
		return contracts.ConversionResult{}, &contracts.UnsupportedModeError{Mode: mode}
	}
	req.Mode = mode
	log.Debugf("dispatching %s: %d file(s), base name %q", mode, len(req.Payloads), req.BaseName)

	res, err := c.Convert(ctx, req)
	if err != nil {
		return contracts.ConversionResult{}, err
	}
	log.Debugf("%s produced %s", mode, res)
	return res, nil
}

type Options struct {
	Renderer     render.Renderer
	Policy       markup.Policy
	WordStrategy WordStrategy
	Office       *office.Driver
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Renderer, validation.Required),
		validation.Field(&o.WordStrategy, validation.In(StrategyParagraphs, StrategyOffice)),
		validation.Field(&o.Office, validation.When(o.WordStrategy == StrategyOffice, validation.Required)),
	)
}

// New builds the dispatcher with the standard converter for every mode.
func New(opts Options) (*Dispatcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid converter options: %w", err)
	}
	if opts.WordStrategy == "" {
		opts.WordStrategy = StrategyParagraphs
	}
	if opts.Policy == "" {
		opts.Policy = markup.PolicyAlways
	}
	injector := markup.NewInjector(opts.Policy)

	return NewDispatcher(map[contracts.Mode]Converter{
		contracts.ModeHTML: &HTMLConverter{Renderer: opts.Renderer, Injector: injector},
		contracts.ModeWord: &WordConverter{
			Strategy: opts.WordStrategy,
			Renderer: opts.Renderer,
			Injector: injector,
			Office:   opts.Office,
		},
		contracts.ModeImage:            &ImagesToPDFConverter{},
		contracts.ModeImageToGrayscale: &GrayscaleConverter{},
		contracts.ModePNGToJPG:         NewPNGToJPEG(),
		contracts.ModeBMPToJPG:         NewBMPToJPEG(),
		contracts.ModeImageDistort:     &DistortConverter{},
	})
}
