package sink

import (
	"os"
	"path/filepath"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

// WriteFile writes rendered output to path, creating the file with mode
// 0644. Any failure is reported as RENDER_TARGET_UNAVAILABLE; nothing is
// retried.
func WriteFile(path string, data []byte) error {
	if err := rnaerrors.ValidateOutputPath(path); err != nil {
		return rnaerrors.Wrap(rnaerrors.ErrCodeRenderTarget, err, "invalid output path %q", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return rnaerrors.New(rnaerrors.ErrCodeRenderTarget, "output directory %s does not exist", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return rnaerrors.Wrap(rnaerrors.ErrCodeRenderTarget, err, "write %s", path)
	}
	return nil
}
