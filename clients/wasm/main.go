//go:build js && wasm

// GoPoster WASM — Client-side poster preview.
// Compiled with: GOOS=js GOARCH=wasm go build -o goposter.wasm ./clients/wasm/
//
// The browser lays out and renders with the same layout and compositor code
// as the server, so the preview matches the final poster. Images are never
// fetched from here: the page registers template backgrounds and the cropped
// photo as assets and references them as "asset:<id>".
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"syscall/js"

	"github.com/xob0t/GoPoster/pkg/compositor"
	"github.com/xob0t/GoPoster/pkg/fonts"
	"github.com/xob0t/GoPoster/pkg/layout"
	"github.com/xob0t/GoPoster/pkg/logging"
	"github.com/xob0t/GoPoster/pkg/template"
)

const defaultPreviewSize = 540

var (
	assets = compositor.NewMemoryStore()
	fm     *fonts.Manager
	comp   *compositor.Compositor
	fast   *compositor.Compositor
)

func main() {
	logging.Init(logging.Options{Level: "warn", Format: "json"})

	var err error
	fm, err = fonts.NewManager()
	if err != nil {
		fmt.Println("GoPoster WASM: fonts:", err)
		return
	}
	fetcher := compositor.MultiFetcher{Store: assets}
	comp = compositor.New(fm, fetcher)
	fast = compositor.New(fm, fetcher, compositor.WithEstimatedLayout())
	fmt.Println("GoPoster WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goLayoutPoster", js.FuncOf(layoutPoster))
	js.Global().Set("goRenderPreview", js.FuncOf(renderPreview))
	js.Global().Set("goRegisterAsset", js.FuncOf(registerAsset))
	js.Global().Set("goRemoveAsset", js.FuncOf(removeAsset))
	js.Global().Set("goRegisterFont", js.FuncOf(registerFont))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func errorValue(format string, args ...any) js.Value {
	return js.ValueOf("error: " + fmt.Sprintf(format, args...))
}

// goRegisterAsset(id, base64Data, mime) — store an image in Go memory.
func registerAsset(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("need id, base64Data, mime")
	}
	id := strings.TrimPrefix(args[0].String(), compositor.AssetScheme)
	data, err := base64.StdEncoding.DecodeString(args[1].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	assets.PutWithID(id, data, args[2].String())
	return js.ValueOf(compositor.Ref(id))
}

// goRemoveAsset(id) — drop an image from Go memory.
func removeAsset(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errorValue("need id")
	}
	assets.Delete(strings.TrimPrefix(args[0].String(), compositor.AssetScheme))
	return js.ValueOf("ok")
}

// goRegisterFont(family, weight, base64TTF) — make a template font available.
func registerFont(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return errorValue("need family, weight, base64TTF")
	}
	data, err := base64.StdEncoding.DecodeString(args[2].String())
	if err != nil {
		return errorValue("invalid base64: %v", err)
	}
	if err := fm.RegisterBytes(args[0].String(), args[1].String(), data); err != nil {
		return errorValue("register font: %v", err)
	}
	return js.ValueOf("ok")
}

type previewArgs struct {
	tpl     template.Template
	content layout.Content
	size    int
	fast    bool
}

// parseArgs reads (templateJSON, contentJSON[, size[, fast]]).
func parseArgs(args []js.Value) (previewArgs, error) {
	if len(args) < 2 {
		return previewArgs{}, fmt.Errorf("need templateJSON, contentJSON")
	}
	tpl, err := template.Parse([]byte(args[0].String()), template.NormalizeOptions{LayoutStyle: template.StylePhotoCenter})
	if err != nil {
		return previewArgs{}, fmt.Errorf("parse template: %w", err)
	}
	p := previewArgs{tpl: *tpl, size: defaultPreviewSize}
	if s := args[1].String(); s != "" && s != "null" {
		if err := json.Unmarshal([]byte(s), &p.content); err != nil {
			return previewArgs{}, fmt.Errorf("parse content: %w", err)
		}
	}
	if len(args) > 2 && args[2].Type() == js.TypeNumber && args[2].Int() > 0 {
		p.size = args[2].Int()
	}
	if len(args) > 3 && args[3].Type() == js.TypeBoolean {
		p.fast = args[3].Bool()
	}
	return p, nil
}

// goLayoutPoster(templateJSON, contentJSON, size, fast) — zone layout as JSON.
func layoutPoster(this js.Value, args []js.Value) any {
	p, err := parseArgs(args)
	if err != nil {
		return errorValue("%v", err)
	}

	var m layout.Measurer = layout.EstimateMeasurer{}
	if !p.fast {
		faces := layout.NewFaceMeasurer(fm)
		defer faces.Close()
		m = faces
	}
	zones, err := comp.Calculator(m).Layout(p.tpl, p.content, p.size)
	if err != nil {
		return errorValue("layout: %v", err)
	}
	out, err := json.Marshal(zones)
	if err != nil {
		return errorValue("encode: %v", err)
	}
	return js.ValueOf(string(out))
}

// goRenderPreview(templateJSON, contentJSON, size, fast) — render and return
// base64 PNG.
func renderPreview(this js.Value, args []js.Value) any {
	p, err := parseArgs(args)
	if err != nil {
		return errorValue("%v", err)
	}

	c := comp
	if p.fast {
		c = fast
	}
	data, _, err := c.RenderPNG(context.Background(), compositor.RenderRequest{
		Template:   p.tpl,
		Content:    p.content,
		TargetSize: p.size,
		Mode:       compositor.ModePreview,
	})
	if err != nil {
		return errorValue("render: %v", err)
	}
	return js.ValueOf(base64.StdEncoding.EncodeToString(data))
}
