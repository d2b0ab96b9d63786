package render

import (
	"bytes"
	"os/exec"
	"strconv"
	"strings"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

// ConverterBinary is the external SVG converter used by [ToPDF] and [ToPNG].
const ConverterBinary = "rsvg-convert"

// ToPDF converts SVG bytes to PDF with rsvg-convert.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "-f", "pdf")
}

// ToPNG converts SVG bytes to PNG with rsvg-convert at the given zoom.
// A scale of 2.0 doubles the pixel dimensions.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "-f", "png", "-z", strconv.FormatFloat(scale, 'f', -1, 64))
}

func convert(svg []byte, args ...string) ([]byte, error) {
	bin, err := exec.LookPath(ConverterBinary)
	if err != nil {
		return nil, rnaerrors.Wrap(rnaerrors.ErrCodeRenderTarget, err,
			"%s not found (install librsvg)", ConverterBinary)
	}

	var out, stderr bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, rnaerrors.Wrap(rnaerrors.ErrCodeRenderTarget, err,
			"%s: %s", ConverterBinary, firstLine(stderr.String()))
	}
	if out.Len() == 0 {
		return nil, rnaerrors.New(rnaerrors.ErrCodeRenderTarget, "%s produced no output", ConverterBinary)
	}
	return out.Bytes(), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if line == "" {
		return "conversion failed"
	}
	return line
}
