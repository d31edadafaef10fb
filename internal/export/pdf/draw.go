package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/keepsake-labs/chronoline/internal/config"
	"github.com/keepsake-labs/chronoline/internal/core/model"
	"github.com/keepsake-labs/chronoline/internal/core/placement"
	"github.com/keepsake-labs/chronoline/internal/core/thumbnail"
	"github.com/keepsake-labs/chronoline/internal/core/timescale"
	"github.com/keepsake-labs/chronoline/internal/presentation/rail"
)

const (
	railY       = pageH * 0.56
	headerY     = 42.0
	footerY     = pageH - 24
	connectorH  = 24.0
	dotRadius   = 3.5
	thumbInsetY = 16.0
)

// drawer paints one export document. It carries the frozen scale plus the
// prefetched thumbnail payloads; nothing here fetches.
type drawer struct {
	doc     *fpdf.Fpdf
	tr      func(string) string
	look    *config.Config
	margin  float64
	scale   timescale.Scale
	byEvent map[string]*thumbnail.Payload
	thumbs  ThumbnailSource

	registered map[uint64]bool
}

// pageX converts a content coordinate into the current page's coordinate
func (d *drawer) pageX(win PageWindow, contentX float64) float64 {
	return d.margin + (contentX - win.Start)
}

func (d *drawer) drawHeader(tl *model.Timeline) {
	d.doc.SetFont("Helvetica", "B", 18)
	d.doc.SetTextColor(40, 40, 40)
	d.doc.Text(d.margin, headerY, d.tr(tl.Title))

	if tl.Description != "" {
		d.doc.SetFont("Helvetica", "", 10)
		d.doc.SetTextColor(110, 110, 110)
		d.doc.Text(d.margin, headerY+16, d.tr(tl.Description))
	}
}

func (d *drawer) drawWatermark() {
	text := d.look.Export.Watermark
	if text == "" {
		return
	}
	d.doc.SetFont("Helvetica", "B", 64)
	d.doc.SetTextColor(228, 228, 228)
	d.doc.TransformBegin()
	d.doc.TransformRotate(30, pageW/2, pageH/2)
	w := d.doc.GetStringWidth(text)
	d.doc.Text(pageW/2-w/2, pageH/2, d.tr(text))
	d.doc.TransformEnd()
}

func (d *drawer) drawRail(win PageWindow) {
	d.doc.SetDrawColor(70, 70, 70)
	d.doc.SetLineWidth(1.2)
	d.doc.Line(d.margin, railY, pageW-d.margin, railY)
}

func (d *drawer) drawTicks(win PageWindow, ticks []rail.Tick) {
	for _, tick := range ticks {
		if tick.X < win.Start || tick.X > win.End {
			continue
		}
		x := d.pageX(win, tick.X)

		h := 5.0
		if tick.Major {
			h = 9.0
			d.doc.SetDrawColor(70, 70, 70)
		} else {
			d.doc.SetDrawColor(150, 150, 150)
		}
		d.doc.SetLineWidth(0.8)
		d.doc.Line(x, railY-h, x, railY+h)

		d.doc.SetFont("Helvetica", "", 7)
		d.doc.SetTextColor(120, 120, 120)
		lw := d.doc.GetStringWidth(tick.Label)
		d.doc.Text(x-lw/2, railY+h+10, d.tr(tick.Label))
	}
}

// drawYearLabel centers the year of the window's midpoint above the page
func (d *drawer) drawYearLabel(win PageWindow) {
	mid := d.scale.TimeAt((win.Start + win.End) / 2)
	label := fmt.Sprintf("%d", mid.Year())

	d.doc.SetFont("Helvetica", "B", 12)
	d.doc.SetTextColor(150, 150, 150)
	w := d.doc.GetStringWidth(label)
	d.doc.Text(pageW/2-w/2, headerY, label)
}

func (d *drawer) drawFooter(page, total int) {
	label := fmt.Sprintf("Page %d of %d", page, total)
	d.doc.SetFont("Helvetica", "", 8)
	d.doc.SetTextColor(150, 150, 150)
	w := d.doc.GetStringWidth(label)
	d.doc.Text(pageW/2-w/2, footerY, label)
}

// drawVisibleEvents draws the cards whose adjusted position falls inside
// the window plus bleed. Selecting on the adjusted position keeps a card
// on the page it is actually painted on; the global minimum-gap pass
// already holds on any contiguous subset.
func (d *drawer) drawVisibleEvents(win PageWindow, placements []placement.Placement, bleed float64) {
	for _, p := range placement.VisibleAdjusted(placements, win.Start, win.End, bleed) {
		d.drawCard(win, p, p.AdjustedX)
	}
}

func (d *drawer) drawCard(win PageWindow, p placement.Placement, adjustedX float64) {
	x := d.pageX(win, adjustedX)
	cardW, cardH := p.CardW, p.CardH

	var cardTop, connY0, connY1 float64
	if p.Side == placement.SideAbove {
		cardTop = railY - connectorH - cardH
		connY0, connY1 = cardTop+cardH, railY
	} else {
		cardTop = railY + connectorH
		connY0, connY1 = railY, cardTop
	}

	d.doc.SetDrawColor(170, 170, 170)
	d.doc.SetLineWidth(0.6)
	d.doc.Line(x, connY0, x, connY1)

	d.doc.SetFillColor(70, 70, 70)
	d.doc.Circle(x, railY, dotRadius, "F")

	left := x - cardW/2
	d.doc.SetFillColor(255, 255, 255)
	d.doc.SetDrawColor(200, 200, 200)
	d.doc.Rect(left, cardTop, cardW, cardH, "FD")

	d.doc.SetFont("Helvetica", "B", 9)
	d.doc.SetTextColor(40, 40, 40)
	d.doc.Text(left+6, cardTop+14, d.tr(clipToWidth(d.doc, p.Event.Title, cardW-12)))

	d.doc.SetFont("Helvetica", "", 7)
	d.doc.SetTextColor(130, 130, 130)
	d.doc.Text(left+6, cardTop+25, p.Event.Timestamp.Format("Jan 02, 2006"))

	d.drawCardMedia(p.Event, left, cardTop, cardW, cardH)
}

// drawCardMedia is the single point where a thumbnail is drawn; the media
// kind switch here is exhaustive.
func (d *drawer) drawCardMedia(ev model.Event, left, top, cardW, cardH float64) {
	thumbs, ok := d.thumbs.Get(ev.ID)
	if !ok || len(thumbs) == 0 {
		return
	}

	boxX, boxY := left+6, top+25+thumbInsetY-8
	boxW, boxH := cardW-12, cardH-(25+thumbInsetY)

	switch thumbs[0].Kind {
	case model.MediaPhoto:
		payload := d.byEvent[ev.ID]
		if payload == nil {
			return
		}
		d.embedImage(payload, boxX, boxY, boxW, boxH)
	case model.MediaVideo:
		d.doc.SetFillColor(235, 235, 235)
		d.doc.Rect(boxX, boxY, boxW, boxH, "F")
		d.doc.SetFillColor(120, 120, 120)
		cx, cy := boxX+boxW/2, boxY+boxH/2
		d.doc.Polygon([]fpdf.PointType{
			{X: cx - 5, Y: cy - 7},
			{X: cx + 7, Y: cy},
			{X: cx - 5, Y: cy + 7},
		}, "F")
	}
}

// embedImage registers a payload once per document and references it per
// use, so duplicate images cost their bytes a single time.
func (d *drawer) embedImage(payload *thumbnail.Payload, x, y, maxW, maxH float64) {
	if d.registered == nil {
		d.registered = make(map[uint64]bool)
	}

	opts := fpdf.ImageOptions{ImageType: payload.Format}
	var info *fpdf.ImageInfoType
	if !d.registered[payload.Key] {
		info = d.doc.RegisterImageOptionsReader(payload.Name(), opts, bytes.NewReader(payload.Bytes))
		d.registered[payload.Key] = true
	} else {
		info = d.doc.GetImageInfo(payload.Name())
	}
	if info == nil || info.Width() <= 0 || info.Height() <= 0 {
		return
	}

	w, h := fitBox(info.Width(), info.Height(), maxW, maxH)
	d.doc.ImageOptions(payload.Name(), x+(maxW-w)/2, y+(maxH-h)/2, w, h, false, opts, 0, "")
}

// fitBox scales (w, h) to fit inside (maxW, maxH) preserving aspect ratio
func fitBox(w, h, maxW, maxH float64) (float64, float64) {
	ratio := maxW / w
	if r := maxH / h; r < ratio {
		ratio = r
	}
	if ratio > 1 {
		ratio = 1
	}
	return w * ratio, h * ratio
}

// clipToWidth trims a string until it fits the given width in the current
// font
func clipToWidth(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 1 && doc.GetStringWidth(string(runes)+"…") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
