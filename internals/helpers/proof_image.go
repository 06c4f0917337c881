package helper

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const (
	ProofMaxBytes    = 8 << 20
	ProofMaxPixels   = 40_000_000
	ProofMaxEdge     = 1600
	ProofWebPQuality = 80
)

var (
	ErrProofTooLarge      = errors.New("payment proof exceeds 8MB")
	ErrProofTooManyPixels = errors.New("payment proof exceeds 40 megapixels")
)

// NormalizeProofImage turns a base64 (or data URL) receipt image into a
// downscaled webp data URL. Payloads that are not jpeg/png/webp images are
// returned unchanged. Empty input returns "".
func NormalizeProofImage(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	payload := raw
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.Contains(payload[:idx], ";base64") {
			return raw, nil
		}
		payload = payload[idx+1:]
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > ProofMaxBytes+3 {
		return "", ErrProofTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// bukan base64 valid → simpan apa adanya
		return raw, nil
	}
	if len(data) > ProofMaxBytes {
		return "", ErrProofTooLarge
	}

	img, err := decodeProof(data)
	if errors.Is(err, ErrProofTooManyPixels) {
		return "", err
	}
	if err != nil {
		return raw, nil
	}

	img = imaging.Fit(img, ProofMaxEdge, ProofMaxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: ProofWebPQuality}); err != nil {
		return "", fmt.Errorf("encode webp: %w", err)
	}
	return "data:image/webp;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeProof reads the header first and refuses images whose decoded
// size would exceed ProofMaxPixels.
func decodeProof(all []byte) (image.Image, error) {
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)

	var (
		decodeConfig func(io.Reader) (image.Config, error)
		decode       func(io.Reader) (image.Image, error)
	)
	switch {
	case strings.Contains(ct, "jpeg"):
		decodeConfig, decode = jpeg.DecodeConfig, jpeg.Decode
	case strings.Contains(ct, "png"):
		decodeConfig, decode = png.DecodeConfig, png.Decode
	case strings.Contains(ct, "webp"):
		decodeConfig, decode = webp.DecodeConfig, webp.Decode
	default:
		return nil, fmt.Errorf("unsupported image type: %s", ct)
	}

	cfg, err := decodeConfig(bytes.NewReader(all))
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", ct, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("empty %s image", ct)
	}
	if int64(cfg.Width)*int64(cfg.Height) > ProofMaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrProofTooManyPixels, cfg.Width, cfg.Height)
	}
	return decode(bytes.NewReader(all))
}
