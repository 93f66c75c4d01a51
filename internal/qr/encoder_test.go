package qr

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	gzqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

func decode(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		t.Fatalf("bitmap: %v", err)
	}
	res, err := gzqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		t.Fatalf("qr decode: %v", err)
	}
	return res.GetText()
}

func TestEncodeCarriesExactPayload(t *testing.T) {
	for _, roll := range []string{"R1", "BCA-2021-042", "a.b_c"} {
		data, err := Encode(roll)
		if err != nil {
			t.Fatalf("encode %s: %v", roll, err)
		}
		if got := decode(t, data); got != roll {
			t.Fatalf("decoded %q, want %q", got, roll)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	first, err := Encode("R1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Encode("R1")
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("call %d produced different bytes", i)
		}
	}
	other, err := Encode("R2")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(first, other) {
		t.Fatal("different payloads must not share an image")
	}
}

func TestEncodeModuleSize(t *testing.T) {
	data, err := Encode("R1")
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	// version 1 is 21 modules plus a 4 module quiet zone on each side.
	if w := img.Bounds().Dx(); w != (21+8)*ModulePixels {
		t.Fatalf("width = %d", w)
	}
}

func TestEncodeEmpty(t *testing.T) {
	if _, err := Encode(""); !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
}

func TestDataURI(t *testing.T) {
	data, err := Encode("R1")
	if err != nil {
		t.Fatal(err)
	}
	uri := DataURI(data)
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.40s", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, data) {
		t.Fatal("data uri does not round trip")
	}
}
