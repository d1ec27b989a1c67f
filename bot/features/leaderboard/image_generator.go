package leaderboard

import (
	"bytes"
	"fmt"
	"time"

	"pointsbot/bot/common"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
)

// ImageFileName is the attachment name the leaderboard embed points at
const ImageFileName = "leaderboard.png"

const maxNameRunes = 16

// TableColumn defines a column in the leaderboard table
type TableColumn struct {
	Header    string
	XPosition int
	ColorRGB  [3]float64
}

// TableStyle defines the visual style of the table
type TableStyle struct {
	Width     int
	MinHeight int
	Padding   int
	RowHeight int
	PodiumBG  [3][4]float64 // RGBA for 1st, 2nd and 3rd place rows
}

// ImageGenerator renders leaderboard pages as PNG tables
type ImageGenerator struct {
	style TableStyle
}

// NewImageGenerator creates a new image generator with default style
func NewImageGenerator() *ImageGenerator {
	return &ImageGenerator{
		style: TableStyle{
			Width:     420,
			MinHeight: 120,
			Padding:   15,
			RowHeight: 26,
			PodiumBG: [3][4]float64{
				{1, 0.84, 0, 0.1},     // Gold
				{0.8, 0.8, 0.8, 0.08}, // Silver
				{0.8, 0.5, 0.2, 0.06}, // Bronze
			},
		},
	}
}

// Generate draws one leaderboard page
func (g *ImageGenerator) Generate(rows []Row) ([]byte, error) {
	start := time.Now()
	defer func() {
		log.WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("row_count", len(rows)).
			Debug("Leaderboard image generation completed")
	}()

	columns := []TableColumn{
		{Header: "#", XPosition: g.style.Padding, ColorRGB: [3]float64{0.85, 0.85, 0.9}},
		{Header: "Участник", XPosition: g.style.Padding + 35, ColorRGB: [3]float64{1.0, 1.0, 1.0}},
		{Header: "Поинты", XPosition: g.style.Padding + 195, ColorRGB: [3]float64{1.0, 0.92, 0.6}},
		{Header: "Роль", XPosition: g.style.Padding + 275, ColorRGB: [3]float64{0.85, 0.85, 1.0}},
	}

	// Header (25px) + header padding (30px) + rows + bottom padding (15px)
	height := 25 + 30 + len(rows)*g.style.RowHeight + 15
	if height < g.style.MinHeight {
		height = g.style.MinHeight
	}

	dc := gg.NewContext(g.style.Width, height)

	// Gradient background
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height)
		dc.SetRGB(0.02+t*0.03, 0.02+t*0.05, 0.05+t*0.1)
		dc.DrawLine(0, float64(y), float64(g.style.Width), float64(y))
		dc.Stroke()
	}

	face, err := loadFont(gomono.TTF, 11)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	rankFace, err := loadFont(gobold.TTF, 9)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(face)

	y := float64(25)

	// Header background
	dc.SetRGBA(0.3, 0.3, 0.4, 0.4)
	dc.DrawRectangle(0, y-15, float64(g.style.Width), 20)
	dc.Fill()

	dc.SetRGB(1.0, 1.0, 1.0)
	for _, col := range columns {
		drawSharpText(dc, col.Header, float64(col.XPosition), y)
	}

	dc.SetRGBA(0.6, 0.6, 0.7, 0.7)
	dc.SetLineWidth(1)
	dc.DrawLine(0, y+8, float64(g.style.Width), y+8)
	dc.Stroke()

	y += 30
	for _, row := range rows {
		podium := row.Position >= 1 && row.Position <= 3

		if podium {
			bg := g.style.PodiumBG[row.Position-1]
			dc.SetRGBA(bg[0], bg[1], bg[2], bg[3])
		} else {
			dc.SetRGBA(0.5, 0.5, 0.6, 0.02)
		}
		dc.DrawRectangle(0, y-15, float64(g.style.Width), float64(g.style.RowHeight))
		dc.Fill()

		if podium {
			r, gr, b := podiumColor(row.Position)
			dc.SetRGB(r, gr, b)
			dc.DrawCircle(float64(g.style.Padding+3), y-4, 6)
			dc.Fill()

			dc.SetRGB(0, 0, 0)
			dc.SetFontFace(rankFace)
			dc.DrawStringAnchored(fmt.Sprintf("%d", row.Position), float64(g.style.Padding+3), y-5, 0.5, 0.4)
			dc.SetFontFace(face)
		} else {
			c := columns[0].ColorRGB
			dc.SetRGB(c[0], c[1], c[2])
			drawSharpText(dc, fmt.Sprintf("%d", row.Position), float64(columns[0].XPosition), y)
		}

		cells := []string{
			truncate(row.Name, maxNameRunes),
			common.FormatPoints(row.Points),
			truncate(row.TierName(), maxNameRunes),
		}
		for j, cell := range cells {
			col := columns[j+1]
			c := col.ColorRGB
			// Tier names are drawn in the tier colour
			if j == 2 && row.Tier != nil {
				c = rgb(row.Tier.ColorValue())
			}
			dc.SetRGB(c[0], c[1], c[2])
			drawSharpText(dc, cell, float64(col.XPosition), y)
		}

		y += float64(g.style.RowHeight)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}

	return buf.Bytes(), nil
}

func podiumColor(position int) (float64, float64, float64) {
	switch position {
	case 1:
		return 1, 0.84, 0
	case 2:
		return 0.75, 0.75, 0.75
	default:
		return 0.8, 0.5, 0.2
	}
}

// rgb splits a 0xRRGGBB colour into components, brightening very dark tiers
func rgb(color int) [3]float64 {
	c := [3]float64{
		float64((color>>16)&0xFF) / 255,
		float64((color>>8)&0xFF) / 255,
		float64(color&0xFF) / 255,
	}
	if c[0]+c[1]+c[2] < 0.6 {
		return [3]float64{0.85, 0.85, 1.0}
	}
	return c
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// drawSharpText draws text with a subtle shadow for perceived sharpness
func drawSharpText(dc *gg.Context, text string, x, y float64) {
	dc.Push()
	dc.SetRGBA(0, 0, 0, 0.5)
	dc.DrawString(text, x+0.5, y+0.5)
	dc.Pop()

	dc.DrawString(text, x, y)
}

// loadFont loads a font from byte data
func loadFont(fontData []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(fontData)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{
		Size:       size,
		DPI:        72,
		Hinting:    font.HintingFull,
		SubPixelsX: 4,
		SubPixelsY: 4,
	})
	return face, nil
}
