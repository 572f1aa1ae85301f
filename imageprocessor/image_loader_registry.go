package imageprocessor

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// ImageLoaderRegistry maintains the loader used for every detected format
type ImageLoaderRegistry struct {
	loaders map[FormatType]ImageLoader
	mutex   sync.RWMutex
}

// NewImageLoaderRegistry creates a registry with loaders for every known format
func NewImageLoaderRegistry() *ImageLoaderRegistry {
	registry := &ImageLoaderRegistry{
		loaders: make(map[FormatType]ImageLoader),
	}

	standardLoader := NewStandardImageLoader()
	registry.RegisterLoader(FormatJPEG, standardLoader)
	registry.RegisterLoader(FormatPNG, standardLoader)
	registry.RegisterLoader(FormatGIF, NewGIFImageLoader())
	registry.RegisterLoader(FormatHEIF, NewHEIFImageLoader())

	return registry
}

// RegisterLoader registers a loader for a format, replacing any previous one
func (r *ImageLoaderRegistry) RegisterLoader(format FormatType, loader ImageLoader) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.loaders[format] = loader
}

// GetLoader returns the loader for the format, or nil
func (r *ImageLoaderRegistry) GetLoader(format FormatType) ImageLoader {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.loaders[format]
}

// LoadImage loads path using the loader registered for format
func (r *ImageLoaderRegistry) LoadImage(path string, format FormatType) (gocv.Mat, error) {
	loader := r.GetLoader(format)
	if loader == nil || !loader.CanLoad(format) {
		return gocv.NewMat(), fmt.Errorf("no suitable loader found for %s (%s)", path, format)
	}
	return loader.LoadImage(path)
}
