package toast

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_RoundTripsReservedCharacters(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"double quote":  `say "hi"`,
		"single quote":  `it's`,
		"angle":         `<b>bold</b>`,
		"ampersand":     `fish & chips`,
		"entity text":   `&amp; stays literal`,
		"all of them":   `"<&>'`,
		"tab and lines": "a\tb\nc",
		"unicode":       "naïve ☃",
	}

	for name, s := range tests {
		s := s
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := Build(Template{
				Texts:   []string{s, "body " + s},
				Images:  []Image{{Src: "https://example.com/a.png", Alt: s}},
				Actions: []Action{{Label: s, Arguments: s}},
			})
			require.NoError(t, err)

			parsed, err := Parse(c.XML())
			require.NoError(t, err, c.XML())

			assert.Equal(t, s, parsed.Title())
			assert.Equal(t, "body "+s, parsed.Body())
			require.Len(t, parsed.Images(), 1)
			assert.Equal(t, s, parsed.Images()[0].Alt)
			require.Len(t, parsed.Actions(), 1)
			assert.Equal(t, s, parsed.Actions()[0].Label)
			assert.Equal(t, s, parsed.Actions()[0].Arguments)
			assert.Equal(t, c.XML(), parsed.XML())
		})
	}
}

func TestEscapeAttr(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"plain":     {in: "hello", want: "hello"},
		"quotes":    {in: `"x'`, want: "&#34;x&#39;"},
		"brackets":  {in: "<a>", want: "&lt;a&gt;"},
		"ampersand": {in: "a&b", want: "a&amp;b"},
		"newline":   {in: "a\nb", want: "a&#xA;b"},
		"empty":     {in: "", want: ""},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EscapeAttr(tt.in))
		})
	}
}

func TestEscapeAttr_HandComposedMarkup(t *testing.T) {
	t.Parallel()

	path := `C:\Users\O'Brien\"pics"\<a&b>.jpg`
	markup := `<toast><visual><binding template="ToastGeneric">` +
		`<text id="1">hand made</text>` +
		`<image src="` + EscapeAttr(FileURI(path)) + `" alt="` + EscapeAttr(path) + `"/>` +
		`</binding></visual></toast>`

	c, err := Parse(markup)
	require.NoError(t, err)
	require.Len(t, c.Images(), 1)
	assert.Equal(t, path, c.Images()[0].Alt)
	assert.Equal(t, FileURI(path), c.Images()[0].Src)
}

func TestFileURI(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in   string
		want string
	}{
		"windows drive":  {in: `C:\path_to_image_in_toast.jpg`, want: "file:///C:/path_to_image_in_toast.jpg"},
		"forward drive":  {in: "c:/img/a.png", want: "file:///c:/img/a.png"},
		"unix absolute":  {in: "/tmp/a b.png", want: "file:///tmp/a%20b.png"},
		"already an uri": {in: "https://example.com/x.png", want: "https://example.com/x.png"},
		"empty":          {in: "", want: ""},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FileURI(tt.in))
		})
	}
}

func TestLocalPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.FromSlash("/tmp/a b.png"), LocalPath("file:///tmp/a%20b.png"))
	assert.Equal(t, filepath.FromSlash("C:/x/y.wav"), LocalPath("file:///C:/x/y.wav"))
	assert.Empty(t, LocalPath("ms-winsoundevent:Notification.SMS"))
}

func TestParse_Example(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(filepath.Join("testdata", "example.xml"))
	require.NoError(t, err)

	c, err := Parse(string(data))
	require.NoError(t, err)

	assert.Equal(t, DurationShort, c.Duration())
	assert.Equal(t, "title", c.Title())
	assert.Equal(t, "first line\nthird line", c.Body())
	assert.Equal(t, []Text{{1, "title"}, {2, "first line"}, {3, "third line"}}, c.Texts())

	images := c.Images()
	require.Len(t, images, 3)
	assert.Equal(t, PlacementAppLogo, images[0].Placement)
	assert.Equal(t, CropCircle, images[0].Crop)
	assert.Equal(t, PlacementHero, images[1].Placement, "placement matching is case-insensitive")
	assert.Equal(t, PlacementInline, images[2].Placement)
	assert.Equal(t, `file:///C:/Users/O'Brien/"pics"/a&b.jpg`, images[2].Src)

	hero, ok := c.Image(PlacementHero)
	require.True(t, ok)
	assert.Equal(t, "alt text2", hero.Alt)

	audio, ok := c.Audio()
	require.True(t, ok)
	assert.Equal(t, "ms-winsoundevent:Notification.SMS", audio.Src)
	assert.False(t, audio.Silent)

	assert.Equal(t, []Action{
		{Label: "left", Arguments: "first"},
		{Label: "right", Arguments: "second"},
	}, c.Actions())

	assert.NotContains(t, c.XML(), "<!--")
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	const binding = `<visual><binding template="ToastGeneric"><text>hi</text></binding></visual>`

	tests := map[string]struct {
		markup string
		reason string
	}{
		"empty document":       {markup: "  ", reason: "empty document"},
		"unknown root":         {markup: `<alert>` + binding + `</alert>`, reason: "unexpected element <alert>"},
		"unknown child":        {markup: `<toast>` + binding + `<banner/></toast>`, reason: "unexpected element <banner>"},
		"two roots":            {markup: `<toast>` + binding + `</toast><toast>` + binding + `</toast>`, reason: "duplicate element <toast>"},
		"duplicate visual":     {markup: `<toast>` + binding + binding + `</toast>`, reason: "duplicate element <visual>"},
		"stray text":           {markup: `<toast>hello` + binding + `</toast>`, reason: "unexpected character data"},
		"unclosed":             {markup: `<toast><visual>`},
		"mismatched":           {markup: `<toast></visual>`},
		"doctype":              {markup: `<!DOCTYPE toast><toast>` + binding + `</toast>`, reason: "directives are not allowed"},
		"namespaced":           {markup: `<x:toast xmlns:x="urn:x">` + binding + `</x:toast>`, reason: "namespaced element"},
		"missing visual":       {markup: `<toast/>`, reason: "visual.binding.template is required"},
		"wrong template":       {markup: `<toast><visual><binding template="ToastImageAndText01"/></visual></toast>`, reason: "must be \"ToastGeneric\""},
		"bad duration":         {markup: `<toast duration="forever">` + binding + `</toast>`, reason: "duration must be one of"},
		"bad crop":             {markup: `<toast><visual><binding template="ToastGeneric"><image src="a.png" hint-crop="square"/></binding></visual></toast>`, reason: "hint-crop must be one of"},
		"bad placement":        {markup: `<toast><visual><binding template="ToastGeneric"><image src="a.png" placement="sideways"/></binding></visual></toast>`, reason: "unknown placement"},
		"image without src":    {markup: `<toast><visual><binding template="ToastGeneric"><image alt="x"/></binding></visual></toast>`, reason: "src is required"},
		"non numeric text id":  {markup: `<toast><visual><binding template="ToastGeneric"><text id="one">x</text></binding></visual></toast>`, reason: "must be numeric"},
		"too many texts":       {markup: `<toast><visual><binding template="ToastGeneric"><text>1</text><text>2</text><text>3</text><text>4</text></binding></visual></toast>`, reason: "at most 3"},
		"audio without source": {markup: `<toast>` + binding + `<audio loop="true"/></toast>`, reason: "src is required"},
		"action without label": {markup: `<toast>` + binding + `<actions><action arguments="x"/></actions></toast>`, reason: "content is required"},
		"element inside text":  {markup: `<toast><visual><binding template="ToastGeneric"><text><b>x</b></text></binding></visual></toast>`, reason: "unexpected element <b>"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c, err := Parse(tt.markup)
			require.Error(t, err)
			assert.Nil(t, c)
			assert.True(t, errors.Is(err, ErrMalformed), "error %v should match ErrMalformed", err)

			var ce *ContentError
			require.True(t, errors.As(err, &ce))
			if tt.reason != "" {
				assert.Contains(t, ce.Error(), tt.reason)
			}
		})
	}
}

func TestParse_ReportsLine(t *testing.T) {
	t.Parallel()

	markup := strings.Join([]string{
		`<toast>`,
		`  <visual><binding template="ToastGeneric"><text>x</text></binding></visual>`,
		`  <header id="1"/>`,
		`</toast>`,
	}, "\n")

	_, err := Parse(markup)
	var ce *ContentError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 3, ce.Line)
	assert.Contains(t, err.Error(), "line 3")
}

func TestParse_SilentAudioNeedsNoSource(t *testing.T) {
	t.Parallel()

	c, err := Parse(`<toast><visual><binding template="ToastGeneric"><text>quiet</text></binding></visual><audio silent="true"/></toast>`)
	require.NoError(t, err)

	audio, ok := c.Audio()
	require.True(t, ok)
	assert.True(t, audio.Silent)
	assert.Empty(t, audio.Src)
}

func TestParse_IgnoresUnknownAttributes(t *testing.T) {
	t.Parallel()

	c, err := Parse(`<toast displayTimestamp="2024-01-01T00:00:00Z"><visual><binding template="ToastGeneric"><text hint-maxLines="1">x</text></binding></visual></toast>`)
	require.NoError(t, err)
	assert.NotContains(t, c.XML(), "displayTimestamp")
	assert.Equal(t, "x", c.Title())
}

func TestBuild(t *testing.T) {
	t.Parallel()

	c, err := Build(Template{
		Duration: DurationLong,
		Launch:   "open",
		Texts:    []string{"Title", "Line"},
		Images: []Image{
			{Placement: PlacementAppLogo, Crop: CropCircle, Src: "/tmp/logo.png"},
			{Placement: PlacementHero, Src: `C:\img\hero.jpg`},
		},
		Audio:   &Audio{Src: "ms-winsoundevent:Notification.Default", Loop: true},
		Actions: []Action{{Label: "OK", Arguments: "ok"}},
	})
	require.NoError(t, err)

	markup := c.XML()
	assert.True(t, strings.HasPrefix(markup, `<toast duration="long" launch="open">`), markup)
	assert.Contains(t, markup, `<text id="1">Title</text>`)
	assert.Contains(t, markup, `<text id="2">Line</text>`)
	assert.Contains(t, markup, `src="file:///tmp/logo.png"`)
	assert.Contains(t, markup, `src="file:///C:/img/hero.jpg"`)
	assert.Contains(t, markup, `loop="true"`)
	assert.Contains(t, markup, `<action content="OK" arguments="ok"></action>`)
}

func TestBuild_Rejects(t *testing.T) {
	t.Parallel()

	tests := map[string]Template{
		"four texts":       {Texts: []string{"1", "2", "3", "4"}},
		"bad duration":     {Texts: []string{"x"}, Duration: "medium"},
		"missing image":    {Texts: []string{"x"}, Images: []Image{{Alt: "no src"}}},
		"bad crop":         {Texts: []string{"x"}, Images: []Image{{Src: "https://a/b.png", Crop: "square"}}},
		"unlabeled action": {Texts: []string{"x"}, Actions: []Action{{Arguments: "a"}}},
		"six actions": {Texts: []string{"x"}, Actions: []Action{
			{Label: "1"}, {Label: "2"}, {Label: "3"}, {Label: "4"}, {Label: "5"}, {Label: "6"},
		}},
		"control char in text":      {Texts: []string{"a\x01b"}},
		"invalid utf8 in text":      {Texts: []string{"bad\xffutf8"}},
		"control char in arguments": {Texts: []string{"x"}, Actions: []Action{{Label: "go", Arguments: "a\x01b"}}},
		"invalid utf8 in label":     {Texts: []string{"x"}, Actions: []Action{{Label: "bad\xff"}}},
		"noncharacter in launch":    {Texts: []string{"x"}, Launch: "id=\uFFFE"},
		"control char in alt":       {Texts: []string{"x"}, Images: []Image{{Src: "https://a/b.png", Alt: "\x1b[0m"}}},
	}

	for name, tmpl := range tests {
		tmpl := tmpl
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c, err := Build(tmpl)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, c)
		})
	}
}

func TestBuild_RejectsNamesField(t *testing.T) {
	t.Parallel()

	_, err := Build(Template{Texts: []string{"x"}, Actions: []Action{{Label: "go", Arguments: "a\x01b"}}})
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, cerr.Reason, "arguments")
	assert.Contains(t, cerr.Reason, "character XML cannot carry")
}

func TestBuild_ArgumentsSurviveParse(t *testing.T) {
	t.Parallel()

	args := "tab\there\nline \u00e9\U0001F600 <&\"'>"
	c, err := Build(Template{Texts: []string{args}, Actions: []Action{{Label: "go", Arguments: args}}})
	require.NoError(t, err)

	back, err := Parse(c.XML())
	require.NoError(t, err)
	assert.Equal(t, args, back.Actions()[0].Arguments)
}

func TestValidText(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"":                 true,
		"plain":            true,
		"\t\n\r":           true,
		"\u00e9\U0001F600": true,
		"\uFFFD":           true,
		"\x00":             false,
		"a\x01b":           false,
		"\x7f":             true,
		"bad\xffutf8":      false,
		"\uFFFE":           false,
		"\uFFFF":           false,
	}

	for in, want := range tests {
		assert.Equal(t, want, ValidText(in), "input %q", in)
	}
}

func TestContentAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	c, err := Build(Template{Texts: []string{"a"}, Actions: []Action{{Label: "x", Arguments: "1"}}})
	require.NoError(t, err)

	acts := c.Actions()
	acts[0].Arguments = "mutated"
	texts := c.Texts()
	texts[0].Value = "mutated"

	assert.Equal(t, "1", c.Actions()[0].Arguments)
	assert.Equal(t, "a", c.Title())
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	t.Run("yaml template", func(t *testing.T) {
		t.Parallel()
		c, err := LoadFile(filepath.Join("testdata", "reminder.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DurationLong, c.Duration())
		assert.Equal(t, "reminder", c.Scenario())
		assert.Equal(t, `Room <B> & "Annex"`, c.Body())
		require.Len(t, c.Actions(), 2)
		assert.Equal(t, "action=join&id=42", c.Actions()[1].Arguments)
		assert.Contains(t, c.XML(), `arguments="action=snooze&amp;id=42"`)
	})

	t.Run("xml markup", func(t *testing.T) {
		t.Parallel()
		c, err := LoadFile(filepath.Join("testdata", "example.xml"))
		require.NoError(t, err)
		assert.Equal(t, "title", c.Title())
	})

	t.Run("unknown yaml key", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("texts: [a]\ncolour: red\n"), 0o644))
		_, err := LoadFile(path)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.xml"))
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrMalformed))
	})
}
