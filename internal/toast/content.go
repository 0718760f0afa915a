package toast

import (
	"encoding/xml"
	"strconv"
	"strings"
)

// Duration is the display duration hint of a toast.
type Duration string

const (
	DurationDefault Duration = ""
	DurationShort   Duration = "short"
	DurationLong    Duration = "long"
)

// Placement positions an image inside the toast.
type Placement string

const (
	PlacementInline  Placement = ""
	PlacementAppLogo Placement = "appLogoOverride"
	PlacementHero    Placement = "hero"

	placementInvalid Placement = "\x00"
)

// Normalize maps a case-insensitive placement name to its canonical form.
// Unknown names normalize to an invalid sentinel.
func (p Placement) Normalize() Placement {
	switch {
	case p == "" || strings.EqualFold(string(p), "inline"):
		return PlacementInline
	case strings.EqualFold(string(p), string(PlacementAppLogo)):
		return PlacementAppLogo
	case strings.EqualFold(string(p), string(PlacementHero)):
		return PlacementHero
	default:
		return placementInvalid
	}
}

// Crop is the hint-crop attribute of an image.
type Crop string

const (
	CropDefault Crop = ""
	CropCircle  Crop = "circle"
	CropNone    Crop = "none"
)

// Text is one text line of a toast, identified by its ordinal id.
type Text struct {
	ID    int
	Value string
}

// Image references a picture shown in the toast.
type Image struct {
	Placement Placement `yaml:"placement,omitempty"`
	Crop      Crop      `yaml:"crop,omitempty"`
	Src       string    `yaml:"src"`
	Alt       string    `yaml:"alt,omitempty"`
	ID        string    `yaml:"id,omitempty"`
}

// Audio is the sound played with the toast.
type Audio struct {
	Src    string `yaml:"src,omitempty"`
	Loop   bool   `yaml:"loop,omitempty"`
	Silent bool   `yaml:"silent,omitempty"`
}

// Action is a button on the toast. Arguments is returned verbatim in the
// Activated event when the button is pressed.
type Action struct {
	Label          string `yaml:"label"`
	Arguments      string `yaml:"arguments"`
	ActivationType string `yaml:"activation_type,omitempty"`
}

// Template is the structured description a Content is built from.
// Text ids are assigned from their position, starting at 1.
type Template struct {
	Duration Duration `yaml:"duration,omitempty"`
	Launch   string   `yaml:"launch,omitempty"`
	Scenario string   `yaml:"scenario,omitempty"`
	Texts    []string `yaml:"texts"`
	Images   []Image  `yaml:"images,omitempty"`
	Audio    *Audio   `yaml:"audio,omitempty"`
	Actions  []Action `yaml:"actions,omitempty"`
}

// Content is a validated, immutable toast document.
type Content struct {
	doc    xmlToast
	markup string
}

// Build validates t against the toast schema and returns its content.
// Local image and audio paths are converted to file URIs. Errors match
// ErrMalformed.
func Build(t Template) (*Content, error) {
	doc := xmlToast{
		Duration: string(t.Duration),
		Launch:   t.Launch,
		Scenario: t.Scenario,
		Visual: xmlVisual{Binding: xmlBinding{
			Template: "ToastGeneric",
		}},
	}

	for i, s := range t.Texts {
		doc.Visual.Binding.Texts = append(doc.Visual.Binding.Texts, xmlText{
			ID:    strconv.Itoa(i + 1),
			Value: s,
		})
	}
	for _, img := range t.Images {
		doc.Visual.Binding.Images = append(doc.Visual.Binding.Images, xmlImage{
			ID:        img.ID,
			Placement: string(img.Placement),
			HintCrop:  string(img.Crop),
			Src:       sourceURI(img.Src),
			Alt:       img.Alt,
		})
	}
	if t.Audio != nil {
		doc.Audio = &xmlAudio{
			Src:    sourceURI(t.Audio.Src),
			Loop:   boolAttr(t.Audio.Loop),
			Silent: boolAttr(t.Audio.Silent),
		}
	}
	if len(t.Actions) > 0 {
		doc.Actions = &xmlActions{}
		for _, a := range t.Actions {
			doc.Actions.Items = append(doc.Actions.Items, xmlAction{
				Content:        a.Label,
				Arguments:      a.Arguments,
				ActivationType: a.ActivationType,
			})
		}
	}

	return newContent(doc)
}

// Parse reads toast markup. The document must have a single <toast> root
// and only the elements of the toast grammar. Comments are ignored and
// unknown attributes are dropped. Errors match ErrMalformed.
func Parse(markup string) (*Content, error) {
	if strings.TrimSpace(markup) == "" {
		return nil, malformed(0, "empty document", nil)
	}
	if err := checkStructure(markup); err != nil {
		return nil, err
	}
	var doc xmlToast
	if err := xml.Unmarshal([]byte(markup), &doc); err != nil {
		return nil, malformed(0, "", err)
	}
	return newContent(doc)
}

func newContent(doc xmlToast) (*Content, error) {
	if err := validateDoc(&doc); err != nil {
		return nil, err
	}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, malformed(0, "encode", err)
	}
	return &Content{doc: doc, markup: string(out)}, nil
}

// XML returns the canonical markup. Attribute and text values are escaped.
func (c *Content) XML() string { return c.markup }

func (c *Content) Duration() Duration { return Duration(c.doc.Duration) }

func (c *Content) Launch() string { return c.doc.Launch }

func (c *Content) Scenario() string { return c.doc.Scenario }

// Texts returns a copy of the text lines in document order.
func (c *Content) Texts() []Text {
	out := make([]Text, 0, len(c.doc.Visual.Binding.Texts))
	for i, t := range c.doc.Visual.Binding.Texts {
		id := i + 1
		if t.ID != "" {
			if n, err := strconv.Atoi(t.ID); err == nil {
				id = n
			}
		}
		out = append(out, Text{ID: id, Value: t.Value})
	}
	return out
}

// Title returns the first text line, or "".
func (c *Content) Title() string {
	if len(c.doc.Visual.Binding.Texts) == 0 {
		return ""
	}
	return c.doc.Visual.Binding.Texts[0].Value
}

// Body returns the remaining text lines joined by newlines.
func (c *Content) Body() string {
	texts := c.doc.Visual.Binding.Texts
	if len(texts) < 2 {
		return ""
	}
	lines := make([]string, 0, len(texts)-1)
	for _, t := range texts[1:] {
		lines = append(lines, t.Value)
	}
	return strings.Join(lines, "\n")
}

// Images returns a copy of the images with normalized placements.
func (c *Content) Images() []Image {
	out := make([]Image, 0, len(c.doc.Visual.Binding.Images))
	for _, img := range c.doc.Visual.Binding.Images {
		out = append(out, Image{
			Placement: Placement(img.Placement).Normalize(),
			Crop:      Crop(img.HintCrop),
			Src:       img.Src,
			Alt:       img.Alt,
			ID:        img.ID,
		})
	}
	return out
}

// Image returns the first image with placement p.
func (c *Content) Image(p Placement) (Image, bool) {
	for _, img := range c.Images() {
		if img.Placement == p {
			return img, true
		}
	}
	return Image{}, false
}

// Audio returns the audio element, if present.
func (c *Content) Audio() (Audio, bool) {
	if c.doc.Audio == nil {
		return Audio{}, false
	}
	return Audio{
		Src:    c.doc.Audio.Src,
		Loop:   c.doc.Audio.Loop == "true",
		Silent: c.doc.Audio.Silent == "true",
	}, true
}

// Actions returns a copy of the actions in document order.
func (c *Content) Actions() []Action {
	if c.doc.Actions == nil {
		return nil
	}
	out := make([]Action, 0, len(c.doc.Actions.Items))
	for _, a := range c.doc.Actions.Items {
		out = append(out, Action{Label: a.Content, Arguments: a.Arguments, ActivationType: a.ActivationType})
	}
	return out
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return ""
}

// sourceURI turns local paths into file URIs and leaves other URIs alone.
func sourceURI(s string) string {
	if s == "" {
		return ""
	}
	if isDrivePath(s) || !strings.Contains(s, ":") {
		return FileURI(s)
	}
	return s
}
