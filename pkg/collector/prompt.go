package collector

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/mimir-aip/carprice/pkg/models"
)

// Prompt asks for each field in an interactive terminal form. Numeric inputs
// are validated against their bounds before the form can be submitted.
type Prompt struct {
	specs      []models.FieldSpec
	input      io.Reader
	output     io.Writer
	accessible bool
}

// PromptOption configures a Prompt
type PromptOption func(*Prompt)

// WithIO sets the terminal streams
func WithIO(in io.Reader, out io.Writer) PromptOption {
	return func(p *Prompt) {
		p.input = in
		p.output = out
	}
}

// WithAccessible switches to line-based prompts for screen readers and
// non-TTY sessions
func WithAccessible(accessible bool) PromptOption {
	return func(p *Prompt) {
		p.accessible = accessible
	}
}

// NewPrompt creates an interactive collector
func NewPrompt(specs []models.FieldSpec, opts ...PromptOption) *Prompt {
	p := &Prompt{specs: specs}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Collect runs the form and returns the entered values
func (p *Prompt) Collect() (models.RawFeatureSet, error) {
	form, answers := p.buildForm()
	if err := form.Run(); err != nil {
		return models.RawFeatureSet{}, fmt.Errorf("input cancelled: %w", err)
	}
	return NewValues(p.specs, answers.values()).Collect()
}

// answers holds the text bound to each form widget
type answers struct {
	names []string
	texts map[string]*string
}

func (a *answers) values() map[string]string {
	out := make(map[string]string, len(a.names))
	for _, name := range a.names {
		out[name] = *a.texts[name]
	}
	return out
}

func (p *Prompt) buildForm() (*huh.Form, *answers) {
	ans := &answers{texts: make(map[string]*string, len(p.specs))}
	var numeric, choices []huh.Field

	for _, spec := range p.specs {
		text := spec.Default
		ans.names = append(ans.names, spec.Name)
		ans.texts[spec.Name] = &text

		if spec.Kind == models.FieldKindEnum {
			choices = append(choices, huh.NewSelect[string]().
				Title(spec.Label).
				Options(huh.NewOptions(spec.Options...)...).
				Value(ans.texts[spec.Name]))
			continue
		}

		numeric = append(numeric, huh.NewInput().
			Title(spec.Label).
			Description(spec.Describe()).
			Value(ans.texts[spec.Name]).
			Validate(func(s string) error {
				_, err := spec.Parse(s)
				return err
			}))
	}

	var groups []*huh.Group
	if len(numeric) > 0 {
		groups = append(groups, huh.NewGroup(numeric...).Title("Vehicle details"))
	}
	if len(choices) > 0 {
		groups = append(groups, huh.NewGroup(choices...).Title("Vehicle type"))
	}

	form := huh.NewForm(groups...).WithAccessible(p.accessible)
	if p.input != nil {
		form = form.WithInput(p.input)
	}
	if p.output != nil {
		form = form.WithOutput(p.output)
	}
	return form, ans
}
