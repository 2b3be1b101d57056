// internal/services/review_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/velora/velora-backend/internal/models"
	"github.com/velora/velora-backend/internal/utils"
)

var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("product already reviewed by this user")
)

type ReviewService struct {
	db *gorm.DB
}

type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty" validate:"max=2000"`
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{db: db}
}

// CreateReview stores the review and recomputes the product's rating aggregate
// in the same transaction, so average_rating and num_reviews always reflect
// the stored reviews.
func (s *ReviewService) CreateReview(userID, productID uuid.UUID, req *ReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review *models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		var existing models.Review
		if err := tx.Where("product_id = ? AND user_id = ?", productID, userID).First(&existing).Error; err == nil {
			return ErrAlreadyReviewed
		}

		review = &models.Review{
			ProductID: productID,
			UserID:    userID,
			Rating:    req.Rating,
			Comment:   req.Comment,
		}
		if err := tx.Create(review).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}

		return s.recomputeRating(tx, productID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(userID, reviewID uuid.UUID, req *ReviewRequest) (*models.Review, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var review models.Review
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", reviewID, userID).First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		review.Rating = req.Rating
		review.Comment = req.Comment
		if err := tx.Save(&review).Error; err != nil {
			return fmt.Errorf("failed to update review: %w", err)
		}

		return s.recomputeRating(tx, review.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) DeleteReview(userID, reviewID uuid.UUID, isAdmin bool) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var review models.Review
		query := tx.Where("id = ?", reviewID)
		if !isAdmin {
			query = query.Where("user_id = ?", userID)
		}
		if err := query.First(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Delete(&review).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}

		return s.recomputeRating(tx, review.ProductID)
	})
}

func (s *ReviewService) ListProductReviews(productID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var reviews []models.Review
	var total int64

	query := s.db.Model(&models.Review{}).Where("product_id = ?", productID)
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count reviews: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "rating"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("User").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}

	result := utils.CreatePaginationResult(reviews, total, params)
	return &result, nil
}

func (s *ReviewService) recomputeRating(tx *gorm.DB, productID uuid.UUID) error {
	var stats struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&stats).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate reviews: %w", err)
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"average_rating": stats.Avg,
			"num_reviews":    stats.Count,
		}).Error
}
