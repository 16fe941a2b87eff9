// Package embed renders the markup a page uses to host a scroll-scrubbed
// animation.
package embed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"scrollreel/internal/frames"
	"scrollreel/internal/store"
)

// ContainerClass marks elements the browser player attaches to.
const ContainerClass = "scrollreel-anim"

// View is everything the markup needs. FrameURLs are in display order.
type View struct {
	ID         int64
	Title      string
	Settings   frames.Settings
	FrameURLs  []string
	Dimensions frames.Dimensions
	Class      string
}

type templateData struct {
	View
	FramesJSON string
	First      string
	Aspect     bool
}

var markup = template.Must(template.New("embed").Parse(
	`<div class="` + ContainerClass + `{{if .Class}} {{.Class}}{{end}}" id="scrollreel-{{.ID}}" data-anim-id="{{.ID}}" data-easing="{{.Settings.Easing}}" data-loops="{{.Settings.LoopCount}}" data-frames='{{.FramesJSON}}' style="width:100%;{{if .Aspect}}aspect-ratio:{{.Dimensions.Width}} / {{.Dimensions.Height}}{{end}}">
<img class="scrollreel-frame" src="{{.First}}" alt="{{.Title}}" loading="lazy" decoding="async">
</div>
`))

// NewView builds a View from a stored animation. url maps frame locations to
// public addresses.
func NewView(anim *store.Animation, list frames.List, url func(string) string, class string) View {
	urls := make([]string, 0, list.Len())
	for _, loc := range list.Locations() {
		urls = append(urls, url(loc))
	}
	return View{
		ID:         anim.ID,
		Title:      anim.Title,
		Settings:   anim.Settings,
		FrameURLs:  urls,
		Dimensions: anim.Dimensions,
		Class:      strings.TrimSpace(class),
	}
}

// Render writes the container markup for v. An animation without frames
// renders nothing.
func Render(w io.Writer, v View) error {
	if len(v.FrameURLs) == 0 {
		return nil
	}
	encoded, err := json.Marshal(v.FrameURLs)
	if err != nil {
		return fmt.Errorf("encode frame list: %w", err)
	}
	v.Settings = v.Settings.Normalized()
	data := templateData{
		View:       v,
		FramesJSON: string(encoded),
		First:      v.FrameURLs[0],
		Aspect:     v.Dimensions.Known(),
	}
	if err := markup.Execute(w, data); err != nil {
		return fmt.Errorf("render embed: %w", err)
	}
	return nil
}

// HTML renders v to a string.
func HTML(v View) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
