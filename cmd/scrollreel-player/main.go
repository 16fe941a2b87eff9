//go:build js && wasm

// Command scrollreel-player scrubs every scrollreel container on a page
// through its frames as the page scrolls. Build with GOOS=js GOARCH=wasm.
package main

import (
	"syscall/js"

	"scrollreel/internal/embed"
	"scrollreel/internal/playback"
)

type rafScheduler struct {
	window js.Value
}

func (s rafScheduler) RequestFrame(fn func()) func() {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		fn()
		return nil
	})
	id := s.window.Call("requestAnimationFrame", cb)
	return func() {
		s.window.Call("cancelAnimationFrame", id)
		cb.Release()
	}
}

type elementMetrics struct {
	window js.Value
	el     js.Value
}

func (m elementMetrics) Metrics() playback.Metrics {
	rect := m.el.Call("getBoundingClientRect")
	return playback.Metrics{
		ViewportHeight: m.window.Get("innerHeight").Float(),
		ElementTop:     rect.Get("top").Float(),
		ElementHeight:  rect.Get("height").Float(),
	}
}

type windowScroll struct {
	window js.Value
}

func (s windowScroll) Subscribe(fn func()) func() {
	handler := js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	opts := map[string]any{"passive": true}
	s.window.Call("addEventListener", "scroll", handler, opts)
	return func() {
		s.window.Call("removeEventListener", "scroll", handler, opts)
		handler.Release()
	}
}

type instance struct {
	el        js.Value
	gate      *playback.Gate
	urls      []string
	preloaded bool
}

func main() {
	window := js.Global()
	document := window.Get("document")
	console := window.Get("console")

	nodes := document.Call("querySelectorAll", "."+embed.ContainerClass)
	var instances []*instance
	for i := 0; i < nodes.Length(); i++ {
		el := nodes.Index(i)
		urls, settings, err := embed.ParseAttributes(func(name string) string {
			v := el.Call("getAttribute", name)
			if v.IsNull() {
				return ""
			}
			return v.String()
		})
		if err != nil {
			console.Call("warn", "scrollreel: skipping container:", err.Error())
			continue
		}
		img := el.Call("querySelector", "img.scrollreel-frame")
		if img.IsNull() {
			continue
		}
		engine := playback.NewEngine(urls, settings, playback.FrameSinkFunc(func(_ int, url string) {
			img.Set("src", url)
		}))
		if !engine.Active() {
			continue
		}
		gate := playback.NewGate(engine, rafScheduler{window}, elementMetrics{window, el}, windowScroll{window})
		instances = append(instances, &instance{el: el, gate: gate, urls: urls})
	}
	if len(instances) == 0 {
		return
	}

	observer := window.Get("IntersectionObserver").New(js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries := args[0]
		for i := 0; i < entries.Length(); i++ {
			entry := entries.Index(i)
			target := entry.Get("target")
			for _, inst := range instances {
				if !inst.el.Equal(target) {
					continue
				}
				visible := entry.Get("isIntersecting").Bool()
				if visible && !inst.preloaded {
					preload(window, inst.urls)
					inst.preloaded = true
				}
				inst.gate.SetVisible(visible)
			}
		}
		return nil
	}), map[string]any{"threshold": 0})
	for _, inst := range instances {
		observer.Call("observe", inst.el)
	}

	select {}
}

// preload warms the browser cache so scrubbing does not wait on the network.
func preload(window js.Value, urls []string) {
	image := window.Get("Image")
	for _, url := range urls[1:] {
		image.New().Set("src", url)
	}
}
