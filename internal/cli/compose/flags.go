package compose

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

// contentFlags describes a toast on the command line.
type contentFlags struct {
	file     string
	title    string
	lines    []string
	images   []string
	logo     string
	hero     string
	crop     string
	audio    string
	silent   bool
	loop     bool
	actions  []string
	long     bool
	launch   string
	scenario string
}

// markupFlags are the flags that conflict with --file.
var markupFlags = []string{"title", "line", "image", "logo", "hero", "crop", "audio", "silent", "loop", "action", "long", "launch", "scenario"}

func (f *contentFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "Read the toast from an XML document or YAML template")
	fs.StringVarP(&f.title, "title", "t", "", "Title line")
	fs.StringArrayVarP(&f.lines, "line", "l", nil, "Body line (repeatable, at most two)")
	fs.StringArrayVar(&f.images, "image", nil, "Inline image path or URI (repeatable)")
	fs.StringVar(&f.logo, "logo", "", "App logo image shown beside the text")
	fs.StringVar(&f.hero, "hero", "", "Hero image shown above the text")
	fs.StringVar(&f.crop, "crop", "", "Crop for the logo image: circle or none")
	fs.StringVar(&f.audio, "audio", "", "Sound URI, e.g. ms-winsoundevent:Notification.SMS")
	fs.BoolVar(&f.silent, "silent", false, "Show the toast without sound")
	fs.BoolVar(&f.loop, "loop", false, "Loop the sound while the toast is visible")
	fs.StringArrayVarP(&f.actions, "action", "a", nil, "Button as label=arguments (repeatable)")
	fs.BoolVar(&f.long, "long", false, "Keep the toast on screen longer")
	fs.StringVar(&f.launch, "launch", "", "Arguments delivered when the toast body is clicked")
	fs.StringVar(&f.scenario, "scenario", "", "Scenario: default, alarm, reminder, incomingCall or urgent")
}

// content builds the toast described by the flags.
func (f *contentFlags) content(cmd *cobra.Command) (*toast.Content, error) {
	if f.file != "" {
		for _, name := range markupFlags {
			if cmd.Flags().Changed(name) {
				return nil, shared.InvalidArgs("--%s cannot be combined with --file", name)
			}
		}
		return toast.LoadFile(f.file)
	}

	t, err := f.template()
	if err != nil {
		return nil, err
	}
	return toast.Build(t)
}

func (f *contentFlags) template() (toast.Template, error) {
	if strings.TrimSpace(f.title) == "" {
		return toast.Template{}, shared.InvalidArgs("--title or --file is required")
	}

	t := toast.Template{
		Launch:   f.launch,
		Scenario: f.scenario,
		Texts:    append([]string{f.title}, f.lines...),
	}
	if f.long {
		t.Duration = toast.DurationLong
	}

	if f.logo != "" {
		t.Images = append(t.Images, toast.Image{Placement: toast.PlacementAppLogo, Crop: toast.Crop(f.crop), Src: f.logo})
	} else if f.crop != "" {
		return toast.Template{}, shared.InvalidArgs("--crop requires --logo")
	}
	if f.hero != "" {
		t.Images = append(t.Images, toast.Image{Placement: toast.PlacementHero, Src: f.hero})
	}
	for _, src := range f.images {
		t.Images = append(t.Images, toast.Image{Placement: toast.PlacementInline, Src: src})
	}

	switch {
	case f.silent:
		t.Audio = &toast.Audio{Src: f.audio, Silent: true, Loop: f.loop}
	case f.audio != "":
		t.Audio = &toast.Audio{Src: f.audio, Loop: f.loop}
	case f.loop:
		return toast.Template{}, shared.InvalidArgs("--loop requires --audio")
	}

	for _, spec := range f.actions {
		a, err := parseAction(spec)
		if err != nil {
			return toast.Template{}, err
		}
		t.Actions = append(t.Actions, a)
	}
	return t, nil
}

// parseAction reads "label=arguments". Arguments may contain '='.
func parseAction(spec string) (toast.Action, error) {
	label, args, ok := strings.Cut(spec, "=")
	label = strings.TrimSpace(label)
	if !ok || label == "" {
		return toast.Action{}, shared.InvalidArgs("--action %q: expected label=arguments", spec)
	}
	return toast.Action{Label: label, Arguments: args}, nil
}
