package scene

import (
	"context"
	"image"
	"path/filepath"

	"github.com/taigrr/cheer/pkg/models"
)

// LoadFunc produces the scene's model. It runs on its own goroutine.
type LoadFunc func(ctx context.Context) (*models.Mesh, image.Image, error)

// GLBLoader loads path with its embedded texture. When fit is set the mesh
// is re-centred and scaled to a 4 unit extent first.
func GLBLoader(path string, fit bool) LoadFunc {
	return func(ctx context.Context) (*models.Mesh, image.Image, error) {
		mesh, img, err := models.LoadGLBWithTexture(path)
		if err != nil {
			return nil, nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		if mesh.Name == "" {
			mesh.Name = filepath.Base(path)
		}
		if fit {
			mesh.Fit(4)
		}
		return mesh, img, nil
	}
}
