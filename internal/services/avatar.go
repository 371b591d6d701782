package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/skillsprint/skillsprint-backend/internal/logger"
	"github.com/skillsprint/skillsprint-backend/internal/types"
)

// avatarPalette is the fixed set of background colors. The pick for a given
// user is deterministic on their email so re-rendering never changes it.
var avatarPalette = []color.NRGBA{
	{R: 0x4F, G: 0x46, B: 0xE5, A: 0xFF}, // indigo
	{R: 0x05, G: 0x96, B: 0x69, A: 0xFF}, // emerald
	{R: 0xD9, G: 0x77, B: 0x06, A: 0xFF}, // amber
	{R: 0xDC, G: 0x26, B: 0x26, A: 0xFF}, // red
	{R: 0x7C, G: 0x3A, B: 0xED, A: 0xFF}, // violet
	{R: 0x0E, G: 0xA5, B: 0xE9, A: 0xFF}, // sky
	{R: 0xDB, G: 0x27, B: 0x77, A: 0xFF}, // pink
	{R: 0x0D, G: 0x94, B: 0x88, A: 0xFF}, // teal
}

type AvatarService interface {
	GenerateUserAvatar(ctx context.Context, user *types.User) ([]byte, error)
}

type avatarService struct {
	log      *logger.Logger
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	face, err := loadFontFace(os.Getenv("AVATAR_FONT"), 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		fontFace: face,
	}, nil
}

func (as *avatarService) GenerateUserAvatar(ctx context.Context, user *types.User) ([]byte, error) {
	const size = 512

	dc := gg.NewContext(size, size)

	// Clip to circle
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	// Fill bg
	dc.SetColor(pickColor(user.Email))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	// Initials
	initials := computeInitials(user.FirstName, user.LastName)

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initials)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initials, cx-(tw/2)+5, cy+(th/2)-10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func pickColor(email string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	return avatarPalette[h.Sum32()%uint32(len(avatarPalette))]
}

func computeInitials(first, last string) string {
	fInit := "?"
	if len(first) > 0 {
		fInit = strings.ToUpper(first[:1])
	}
	lInit := ""
	if len(last) > 0 {
		lInit = strings.ToUpper(last[:1])
	}
	return fInit + lInit
}

// loadFontFace parses the TTF at fontPath, falling back to the bundled Go
// Regular face when the path is empty.
func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes := goregular.TTF
	if strings.TrimSpace(fontPath) != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		fontBytes = data
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	face := truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	return face, nil
}
