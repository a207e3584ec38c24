package model

// Image is one photo returned by the image provider
type Image struct {
	ID            int64  `json:"id"`
	PageURL       string `json:"page_url"`
	Tags          string `json:"tags"`
	PreviewURL    string `json:"preview_url"`
	WebformatURL  string `json:"webformat_url"`
	LargeImageURL string `json:"large_image_url"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	User          string `json:"user"`
}
