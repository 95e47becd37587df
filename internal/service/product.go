package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/vichithchamodya/product-catalog/internal/apperror"
	"github.com/vichithchamodya/product-catalog/internal/cache"
	"github.com/vichithchamodya/product-catalog/internal/model"
	"github.com/vichithchamodya/product-catalog/internal/repository"
	"github.com/vichithchamodya/product-catalog/internal/storage"
)

// Validation constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// ErrBannerUpload marks a failed object store upload so the handler can
// surface the specific "upload failed" notification instead of a generic
// save failure.
var ErrBannerUpload = errors.New("banner upload failed")

// priceShape accepts plain decimals with at most two fraction digits:
// "10", "10.5", "10.50". Prices stay strings end to end.
var priceShape = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// ProductInput is the dashboard form payload for both create and update.
//
// Banner carries the raw upload when the user attached a file; it is nil
// otherwise. ExistingBannerURL carries the already-stored URL when editing a
// product whose image is unchanged.
type ProductInput struct {
	Title             string
	Description       string
	Price             string
	Banner            io.Reader
	BannerFilename    string
	ExistingBannerURL string
}

// ProductService handles the product CRUD rules: validation, the
// upload-then-write ordering, ownership matching, and cache invalidation.
type ProductService struct {
	repo   repository.ProductRepository
	store  storage.ObjectStore
	cache  *cache.ProductCache
	logger *slog.Logger
}

// NewProductService creates a ProductService. cache may be nil; every cache
// call on a nil cache is a no-op.
func NewProductService(
	repo repository.ProductRepository,
	store storage.ObjectStore,
	productCache *cache.ProductCache,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:   repo,
		store:  store,
		cache:  productCache,
		logger: logger,
	}
}

// List returns every product owned by userID, newest last. Reads go through
// the cache; the database populates it on a miss.
func (s *ProductService) List(ctx context.Context, userID string) ([]model.Product, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "user ID is required")
	}

	if products, ok := s.cache.GetList(ctx, userID); ok {
		return products, nil
	}

	products, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list products",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing products: %w", err)
	}

	s.cache.SetList(ctx, userID, products)

	return products, nil
}

// Get returns one product matched on (id, userID). Used to pre-fill the
// dashboard form when editing.
func (s *ProductService) Get(ctx context.Context, id, userID string) (*model.Product, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product ID is required")
	}
	return s.repo.GetByID(ctx, id, userID)
}

// Save handles the dashboard submit for both states of the form:
// editID == "" creates, editID != "" updates the row matched on
// (editID, userID).
//
// When a banner file is attached it is uploaded first and the returned
// public URL replaces the file reference before any row is written. If the
// upload fails the whole submit aborts: no row is written or updated, so a
// row never points at an image that was never stored.
//
// The returned bool is true when a new product was created.
func (s *ProductService) Save(ctx context.Context, userID, editID string, in ProductInput) (*model.Product, bool, error) {
	if userID == "" {
		return nil, false, apperror.ValidationFailed("userId", "user ID is required")
	}
	if errs := validateProduct(in); len(errs) > 0 {
		return nil, false, errs
	}

	bannerURL := strings.TrimSpace(in.ExistingBannerURL)
	if in.Banner != nil {
		name := storage.ObjectName(in.BannerFilename, time.Now())
		if err := s.store.Save(ctx, name, in.Banner); err != nil {
			s.logger.Error("banner upload failed",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
			return nil, false, fmt.Errorf("%w: %v", ErrBannerUpload, err)
		}
		bannerURL = s.store.PublicURL(name)
	}

	if editID != "" {
		product, err := s.repo.GetByID(ctx, editID, userID)
		if err != nil {
			return nil, false, err
		}

		product.Title = strings.TrimSpace(in.Title)
		product.Description = strings.TrimSpace(in.Description)
		product.Price = strings.TrimSpace(in.Price)
		product.BannerImage = bannerURL

		if err := s.repo.Update(ctx, product); err != nil {
			s.logger.Error("failed to update product",
				slog.String("id", editID),
				slog.String("error", err.Error()),
			)
			return nil, false, fmt.Errorf("updating product: %w", err)
		}

		s.cache.Invalidate(ctx, userID)
		s.logger.Info("product updated",
			slog.String("id", product.ID),
			slog.String("userID", userID),
		)
		return product, false, nil
	}

	product := &model.Product{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       strings.TrimSpace(in.Price),
		BannerImage: bannerURL,
		UserID:      userID,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, false, fmt.Errorf("creating product: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	s.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("userID", userID),
	)

	return product, true, nil
}

// Delete removes the product matched on (id, userID).
//
// The interactive confirmation step lives in the handler; by the time Delete
// is called the user has already confirmed.
func (s *ProductService) Delete(ctx context.Context, id, userID string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "product ID is required")
	}
	if userID == "" {
		return apperror.ValidationFailed("userId", "user ID is required")
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		s.logger.Error("failed to delete product",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting product: %w", err)
	}

	s.cache.Invalidate(ctx, userID)
	s.logger.Info("product deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)

	return nil
}

// validateProduct checks the form rules and returns all failures at once.
func validateProduct(in ProductInput) apperror.FieldErrors {
	errs := apperror.FieldErrors{}

	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		errs["title"] = "Product title is required"
	case len(title) > MaxTitleLength:
		errs["title"] = fmt.Sprintf("Product title must be %d characters or less", MaxTitleLength)
	}

	description := strings.TrimSpace(in.Description)
	switch {
	case description == "":
		errs["description"] = "Description is required"
	case len(description) > MaxDescriptionLength:
		errs["description"] = fmt.Sprintf("Description must be %d characters or less", MaxDescriptionLength)
	}

	price := strings.TrimSpace(in.Price)
	switch {
	case price == "":
		errs["price"] = "Product price is required"
	case !priceShape.MatchString(price):
		errs["price"] = "Price must be a decimal number like 49.99"
	}

	return errs
}
