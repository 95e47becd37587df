package model

import "time"

// Product represents one catalog entry owned by a single user.
//
// Price is a decimal-as-string ("49.99"), not a float: it is validated for
// shape on the way in and never used in arithmetic, so string round-trips
// avoid float formatting surprises.
//
// BannerImage is always a public URL by the time a row is written. Raw file
// uploads are pushed to object storage first and only the resulting URL is
// stored (see service.ProductService.Save).
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	BannerImage string    `json:"bannerImage"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
