package inspector

type Option func(*ImageInspector)

// MaxPixels bounds width*height of accepted images.
func MaxPixels(n int) Option {
	return func(p *ImageInspector) {
		p.maxPixels = n
	}
}
