package dto

// ImageInfo describes decoded image content.
type ImageInfo struct {
	ContentType string
	Extension   string
	Width       int
	Height      int
}
