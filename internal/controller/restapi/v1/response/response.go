package response

import "github.com/andreyxaxa/Image-Moderation/internal/entity"

type Error struct {
	Error string `json:"error" example:"image not found"`
}

type Message struct {
	Message string `json:"message" example:"Image deleted successfully"`
}

type Image struct {
	Message string        `json:"message" example:"Image uploaded successfully"`
	Image   *entity.Image `json:"image"`
}
