// internal/services/review_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/velora-backend/internal/models"
)

func TestCreateReviewRecomputesRating(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	product := createTestProduct(t, db, 30, 10)
	alice := createTestUser(t, db)
	bob := createTestUser(t, db)

	_, err := svc.CreateReview(alice.ID, product.ID, &ReviewRequest{Rating: 5, Comment: "great"})
	require.NoError(t, err)
	_, err = svc.CreateReview(bob.ID, product.ID, &ReviewRequest{Rating: 2})
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 2, got.NumReviews)
	assert.InDelta(t, 3.5, got.AverageRating, 1e-9)
}

func TestCreateReviewOncePerUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	product := createTestProduct(t, db, 30, 10)
	user := createTestUser(t, db)

	_, err := svc.CreateReview(user.ID, product.ID, &ReviewRequest{Rating: 4})
	require.NoError(t, err)

	_, err = svc.CreateReview(user.ID, product.ID, &ReviewRequest{Rating: 1})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestDeleteReviewRecomputesRating(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	product := createTestProduct(t, db, 30, 10)
	alice := createTestUser(t, db)
	bob := createTestUser(t, db)

	review, err := svc.CreateReview(alice.ID, product.ID, &ReviewRequest{Rating: 1})
	require.NoError(t, err)
	_, err = svc.CreateReview(bob.ID, product.ID, &ReviewRequest{Rating: 5})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReview(alice.ID, review.ID, false))

	var got models.Product
	require.NoError(t, db.First(&got, "id = ?", product.ID).Error)
	assert.Equal(t, 1, got.NumReviews)
	assert.InDelta(t, 5.0, got.AverageRating, 1e-9)
}

func TestDeleteReviewOwnershipUnlessAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewReviewService(db)

	product := createTestProduct(t, db, 30, 10)
	owner := createTestUser(t, db)
	stranger := createTestUser(t, db)

	review, err := svc.CreateReview(owner.ID, product.ID, &ReviewRequest{Rating: 3})
	require.NoError(t, err)

	err = svc.DeleteReview(stranger.ID, review.ID, false)
	assert.ErrorIs(t, err, ErrReviewNotFound)

	require.NoError(t, svc.DeleteReview(stranger.ID, review.ID, true))
}
