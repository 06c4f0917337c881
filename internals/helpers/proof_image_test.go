package helper

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
)

// pngHeader returns a PNG signature plus IHDR chunk declaring w x h gray
// pixels, with no image data behind it.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 0 // grayscale

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestNormalizeProofImageRefusesHugeDimensions(t *testing.T) {
	tests := []struct {
		name string
		w, h uint32
	}{
		{"12000x12000", 12000, 12000},
		{"one very long edge", 1, ProofMaxPixels + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngHeader(tt.w, tt.h))
			out, err := NormalizeProofImage(raw)
			if !errors.Is(err, ErrProofTooManyPixels) {
				t.Fatalf("err = %v, want ErrProofTooManyPixels", err)
			}
			if out != "" {
				t.Errorf("out = %q, want empty", out)
			}
		})
	}
}

func TestNormalizeProofImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		img.SetGray(x, 10, color.Gray{Y: 200})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	small := base64.StdEncoding.EncodeToString(buf.Bytes())

	tests := []struct {
		name       string
		in         string
		wantPrefix string
		wantSame   bool
		wantErr    error
	}{
		{"empty", "  ", "", false, nil},
		{"png data url becomes webp", "data:image/png;base64," + small, "data:image/webp;base64,", false, nil},
		{"bare base64 png", small, "data:image/webp;base64,", false, nil},
		{"plain text kept", "transfer ref 8812", "", true, nil},
		{"non-image base64 kept", base64.StdEncoding.EncodeToString([]byte("hello receipt")), "", true, nil},
		{"truncated png kept", base64.StdEncoding.EncodeToString(buf.Bytes()[:40]), "", true, nil},
		{"over 8MB", strings.Repeat("A", 12<<20), "", false, ErrProofTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NormalizeProofImage(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			switch {
			case tt.wantSame && out != strings.TrimSpace(tt.in):
				t.Errorf("out = %.40q, want input unchanged", out)
			case tt.wantPrefix != "" && !strings.HasPrefix(out, tt.wantPrefix):
				t.Errorf("out = %.40q, want prefix %q", out, tt.wantPrefix)
			case tt.wantErr == nil && !tt.wantSame && tt.wantPrefix == "" && out != "":
				t.Errorf("out = %.40q, want empty", out)
			}
		})
	}
}
