package services

import (
	"bytes"
	"context"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	types "github.com/yomikata/yomikata-backend/internal/domain"
	"github.com/yomikata/yomikata-backend/internal/platform/localmedia"
	"github.com/yomikata/yomikata-backend/internal/platform/logger"
)

// avatarPalette is the fixed set of background colors. The pick is a hash
// of the username, so the same account always renders the same avatar.
var avatarPalette = []color.NRGBA{
	{R: 0xE5, G: 0x39, B: 0x35, A: 0xFF},
	{R: 0xD8, G: 0x1B, B: 0x60, A: 0xFF},
	{R: 0x8E, G: 0x24, B: 0xAA, A: 0xFF},
	{R: 0x5E, G: 0x35, B: 0xB1, A: 0xFF},
	{R: 0x39, G: 0x49, B: 0xAB, A: 0xFF},
	{R: 0x1E, G: 0x88, B: 0xE5, A: 0xFF},
	{R: 0x00, G: 0x89, B: 0x7B, A: 0xFF},
	{R: 0x43, G: 0xA0, B: 0x47, A: 0xFF},
	{R: 0xF4, G: 0x51, B: 0x1E, A: 0xFF},
	{R: 0x6D, G: 0x4C, B: 0x41, A: 0xFF},
}

type AvatarService interface {
	// CreateUserAvatar renders an initial-letter avatar, stores it, and sets
	// the user's avatar fields. The user row itself is not persisted here.
	CreateUserAvatar(ctx context.Context, user *types.User) error
}

type avatarService struct {
	log      *logger.Logger
	media    localmedia.Store
	fontFace font.Face
}

func NewAvatarService(log *logger.Logger, media localmedia.Store) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	fontPath := strings.TrimSpace(os.Getenv("AVATAR_FONT"))
	if fontPath == "" {
		return nil, fmt.Errorf("env var AVATAR_FONT is empty")
	}
	serviceLog.Info("Loading avatar font", "font", fontPath)

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		log:      serviceLog,
		media:    media,
		fontFace: face,
	}, nil
}

func (as *avatarService) CreateUserAvatar(ctx context.Context, user *types.User) error {
	buf, err := as.renderAvatar(user.Username)
	if err != nil {
		return err
	}

	oldKey := strings.TrimSpace(user.AvatarPath)

	// Versioned key so cached copies of a previous avatar never survive a
	// regeneration.
	newKey := fmt.Sprintf("%s/%d.png", user.ID.String(), time.Now().UnixNano())
	if err := as.media.Save(localmedia.CategoryAvatar, newKey, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to store user avatar: %w", err)
	}

	user.AvatarPath = newKey
	user.AvatarURL = as.media.PublicURL(localmedia.CategoryAvatar, newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.media.Delete(localmedia.CategoryAvatar, oldKey); err != nil {
			as.log.Warn("Failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}
	return nil
}

func (as *avatarService) renderAvatar(username string) (bytes.Buffer, error) {
	const size = 512
	var buf bytes.Buffer

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	dc.SetColor(pickAvatarColor(username))
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	initial := "?"
	if len(username) > 0 {
		initial = strings.ToUpper(username[:1])
	}

	dc.SetFontFace(as.fontFace)
	tw, th := dc.MeasureString(initial)
	cx, cy := float64(size)/2, float64(size)/2

	dc.SetColor(color.White)
	dc.DrawString(initial, cx-(tw/2)+5, cy+(th/2)-10)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

func pickAvatarColor(username string) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(username)))
	return avatarPalette[int(h.Sum32())%len(avatarPalette)]
}

func loadFontFace(fontPath string, size float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	parsedFont, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsedFont, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}
