package toast

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// The xml* types mirror the subset of the ToastGeneric schema this package
// understands. Struct tags carry both the wire names and the schema rules.

type xmlToast struct {
	XMLName  xml.Name    `xml:"toast"`
	Duration string      `xml:"duration,attr,omitempty" validate:"omitempty,oneof=short long"`
	Launch   string      `xml:"launch,attr,omitempty" validate:"xmltext"`
	Scenario string      `xml:"scenario,attr,omitempty" validate:"omitempty,oneof=default alarm reminder incomingCall urgent"`
	Visual   xmlVisual   `xml:"visual"`
	Audio    *xmlAudio   `xml:"audio,omitempty" validate:"omitempty"`
	Actions  *xmlActions `xml:"actions,omitempty" validate:"omitempty"`
}

type xmlVisual struct {
	Binding xmlBinding `xml:"binding"`
}

type xmlBinding struct {
	Template string     `xml:"template,attr" validate:"required,eq=ToastGeneric"`
	Texts    []xmlText  `xml:"text" validate:"max=3,dive"`
	Images   []xmlImage `xml:"image" validate:"max=6,dive"`
}

type xmlText struct {
	ID    string `xml:"id,attr,omitempty" validate:"omitempty,numeric"`
	Value string `xml:",chardata" validate:"xmltext"`
}

type xmlImage struct {
	ID        string `xml:"id,attr,omitempty" validate:"xmltext"`
	Placement string `xml:"placement,attr,omitempty" validate:"omitempty,placement"`
	HintCrop  string `xml:"hint-crop,attr,omitempty" validate:"omitempty,oneof=circle none"`
	Src       string `xml:"src,attr" validate:"required,xmltext"`
	Alt       string `xml:"alt,attr,omitempty" validate:"xmltext"`
}

type xmlAudio struct {
	Src    string `xml:"src,attr,omitempty" validate:"required_unless=Silent true,xmltext"`
	Loop   string `xml:"loop,attr,omitempty" validate:"omitempty,oneof=true false"`
	Silent string `xml:"silent,attr,omitempty" validate:"omitempty,oneof=true false"`
}

type xmlActions struct {
	Items []xmlAction `xml:"action" validate:"max=5,dive"`
}

type xmlAction struct {
	Content        string `xml:"content,attr" validate:"required,xmltext"`
	Arguments      string `xml:"arguments,attr" validate:"xmltext"`
	ActivationType string `xml:"activationType,attr,omitempty" validate:"omitempty,oneof=foreground background protocol system"`
}

// allowedChildren lists the element names permitted under each parent.
// The empty key is the document itself.
var allowedChildren = map[string][]string{
	"":        {"toast"},
	"toast":   {"visual", "audio", "actions"},
	"visual":  {"binding"},
	"binding": {"text", "image"},
	"actions": {"action"},
}

// singular elements may appear at most once under their parent.
var singular = map[string]bool{
	"toast":   true,
	"visual":  true,
	"binding": true,
	"audio":   true,
	"actions": true,
}

var schema = newSchemaValidator()

func newSchemaValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("xml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// placement values are matched case-insensitively by the platform
	_ = v.RegisterValidation("placement", func(fl validator.FieldLevel) bool {
		return Placement(fl.Field().String()).Normalize() != placementInvalid
	})
	// encoding/xml would silently replace these characters on output
	_ = v.RegisterValidation("xmltext", func(fl validator.FieldLevel) bool {
		return ValidText(fl.Field().String())
	})
	return v
}

// checkStructure walks the markup token stream and rejects anything outside
// the toast element grammar before it is decoded.
func checkStructure(markup string) error {
	type frame struct {
		name string
		seen map[string]bool
	}

	dec := xml.NewDecoder(strings.NewReader(markup))
	dec.Strict = true
	stack := []*frame{{name: "", seen: map[string]bool{}}}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		line, _ := dec.InputPos()
		if err != nil {
			var syn *xml.SyntaxError
			if errors.As(err, &syn) {
				line = syn.Line
			}
			return malformed(line, "", err)
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if t.Name.Space != "" {
				return malformed(line, fmt.Sprintf("namespaced element <%s:%s> is not allowed", t.Name.Space, name), nil)
			}
			if !slices.Contains(allowedChildren[top.name], name) {
				return malformed(line, fmt.Sprintf("unexpected element <%s> in %s", name, describeParent(top.name)), nil)
			}
			if singular[name] {
				if top.seen[name] {
					return malformed(line, fmt.Sprintf("duplicate element <%s>", name), nil)
				}
				top.seen[name] = true
			}
			stack = append(stack, &frame{name: name, seen: map[string]bool{}})
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if strings.TrimSpace(string(t)) == "" {
				continue
			}
			if top.name != "text" {
				return malformed(line, fmt.Sprintf("unexpected character data in %s", describeParent(top.name)), nil)
			}
		case xml.Directive:
			return malformed(line, "directives are not allowed", nil)
		case xml.Comment, xml.ProcInst:
		}
	}

	if !stack[0].seen["toast"] {
		return malformed(0, "missing <toast> root element", nil)
	}
	return nil
}

func describeParent(name string) string {
	if name == "" {
		return "document"
	}
	return "<" + name + ">"
}

// validateDoc runs the tag rules over a decoded or built document.
func validateDoc(doc *xmlToast) error {
	if err := schema.Struct(doc); err != nil {
		return malformed(0, describeValidation(err), err)
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	path := fe.Namespace()
	if i := strings.IndexByte(path, '.'); i >= 0 {
		path = path[i+1:]
	}
	switch fe.Tag() {
	case "required", "required_unless":
		return path + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", path, fe.Param(), fe.Value())
	case "eq":
		return fmt.Sprintf("%s must be %q, got %q", path, fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("%s allows at most %s entries", path, fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric, got %q", path, fe.Value())
	case "xmltext":
		return fmt.Sprintf("%s contains a character XML cannot carry: %q", path, fe.Value())
	case "placement":
		return fmt.Sprintf("%s has unknown placement %q", path, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s check", path, fe.Tag())
	}
}
