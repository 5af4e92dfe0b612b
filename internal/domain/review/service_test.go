package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookreview/internal/domain/book"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, r *Review) error {
	args := m.Called(ctx, r)
	if args.Error(0) == nil {
		r.ID = 100
	}
	return args.Error(0)
}

func (m *mockRepository) LockByID(ctx context.Context, id uint) (*Review, error) {
	args := m.Called(ctx, id)
	return reviewOrNil(args.Get(0)), args.Error(1)
}

func (m *mockRepository) FindByUserAndBook(ctx context.Context, userID, bookID uint) (*Review, error) {
	args := m.Called(ctx, userID, bookID)
	return reviewOrNil(args.Get(0)), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, r *Review) error {
	return m.Called(ctx, r).Error(0)
}

func (m *mockRepository) Delete(ctx context.Context, id, userID uint) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *mockRepository) Summarize(ctx context.Context, bookID uint) (Summary, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).(Summary), args.Error(1)
}

func (m *mockRepository) SummarizeMany(ctx context.Context, bookIDs []uint) (map[uint]Summary, error) {
	args := m.Called(ctx, bookIDs)
	return args.Get(0).(map[uint]Summary), args.Error(1)
}

func (m *mockRepository) ListByBook(ctx context.Context, bookID uint, page, pageSize int) ([]*ReviewWithUser, error) {
	args := m.Called(ctx, bookID, page, pageSize)
	return args.Get(0).([]*ReviewWithUser), args.Error(1)
}

func reviewOrNil(v interface{}) *Review {
	if r, ok := v.(*Review); ok {
		return r
	}
	return nil
}

type mockBooks struct {
	mock.Mock
}

func (m *mockBooks) Exists(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// passThroughTx 直接执行fn,记录调用次数
type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

func newTestService() (*service, *mockRepository, *mockBooks, *passThroughTx) {
	repo := new(mockRepository)
	books := new(mockBooks)
	tx := &passThroughTx{}
	svc := NewService(repo, books, tx).(*service)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, repo, books, tx
}

func TestService_AddReview(t *testing.T) {
	svc, repo, books, tx := newTestService()
	books.On("Exists", mock.Anything, uint(3)).Return(true, nil)
	repo.On("FindByUserAndBook", mock.Anything, uint(7), uint(3)).Return(nil, ErrReviewNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*review.Review")).Return(nil)

	r, err := svc.AddReview(context.Background(), 3, 7, 5, "great")

	require.NoError(t, err)
	assert.Equal(t, uint(100), r.ID)
	assert.Equal(t, svc.now(), r.CreatedAt)
	assert.Equal(t, 1, tx.calls)
	repo.AssertExpectations(t)
}

func TestService_AddReview_SecondTimeConflicts(t *testing.T) {
	svc, repo, books, _ := newTestService()
	books.On("Exists", mock.Anything, uint(3)).Return(true, nil)
	repo.On("FindByUserAndBook", mock.Anything, uint(7), uint(3)).Return(&Review{ID: 100, BookID: 3, UserID: 7}, nil)

	_, err := svc.AddReview(context.Background(), 3, 7, 4, "again")

	assert.ErrorIs(t, err, ErrReviewDuplicate)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_AddReview_ConstraintConflict(t *testing.T) {
	svc, repo, books, _ := newTestService()
	books.On("Exists", mock.Anything, uint(3)).Return(true, nil)
	repo.On("FindByUserAndBook", mock.Anything, uint(7), uint(3)).Return(nil, ErrReviewNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrReviewDuplicate)

	_, err := svc.AddReview(context.Background(), 3, 7, 4, "raced")

	assert.ErrorIs(t, err, ErrReviewDuplicate)
}

func TestService_AddReview_InvalidRatingBeforeStorage(t *testing.T) {
	for _, rating := range []int{0, 6} {
		svc, repo, books, tx := newTestService()

		_, err := svc.AddReview(context.Background(), 3, 7, rating, "x")

		assert.ErrorIs(t, err, ErrInvalidRating)
		assert.Zero(t, tx.calls, "参数错误不应开启事务")
		books.AssertNotCalled(t, "Exists", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestService_AddReview_BookNotFound(t *testing.T) {
	svc, repo, books, _ := newTestService()
	books.On("Exists", mock.Anything, uint(404)).Return(false, nil)

	_, err := svc.AddReview(context.Background(), 404, 7, 4, "x")

	assert.ErrorIs(t, err, book.ErrBookNotFound)
	repo.AssertNotCalled(t, "FindByUserAndBook", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_UpdateReview(t *testing.T) {
	svc, repo, _, _ := newTestService()
	existing := &Review{ID: 10, BookID: 3, UserID: 7, Rating: 4, Comment: "good"}
	repo.On("LockByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Update", mock.Anything, existing).Return(nil)

	r, err := svc.UpdateReview(context.Background(), 10, 7, 2, "meh")

	require.NoError(t, err)
	assert.Equal(t, 2, r.Rating)
	assert.Equal(t, "meh", r.Comment)
	assert.Equal(t, svc.now(), r.CreatedAt, "修改时刷新created_at")
	assert.Equal(t, svc.now(), r.UpdatedAt)
}

func TestService_UpdateReview_NotAuthor(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("LockByID", mock.Anything, uint(10)).Return(&Review{ID: 10, BookID: 3, UserID: 7, Rating: 4}, nil)

	_, err := svc.UpdateReview(context.Background(), 10, 8, 1, "hijack")

	assert.ErrorIs(t, err, ErrNotReviewOwner)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_UpdateReview_NotFound(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("LockByID", mock.Anything, uint(10)).Return(nil, ErrReviewNotFound)

	_, err := svc.UpdateReview(context.Background(), 10, 7, 3, "x")

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestService_UpdateReview_InvalidRating(t *testing.T) {
	svc, repo, _, tx := newTestService()

	_, err := svc.UpdateReview(context.Background(), 10, 7, 6, "x")

	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Zero(t, tx.calls)
	repo.AssertNotCalled(t, "LockByID", mock.Anything, mock.Anything)
}

func TestService_DeleteReview(t *testing.T) {
	svc, repo, _, _ := newTestService()
	existing := &Review{ID: 10, BookID: 3, UserID: 7, Rating: 4}
	repo.On("LockByID", mock.Anything, uint(10)).Return(existing, nil)
	repo.On("Delete", mock.Anything, uint(10), uint(7)).Return(nil)

	r, err := svc.DeleteReview(context.Background(), 10, 7)

	require.NoError(t, err)
	assert.Same(t, existing, r)
}

func TestService_DeleteReview_NotAuthor(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("LockByID", mock.Anything, uint(10)).Return(&Review{ID: 10, UserID: 7}, nil)

	_, err := svc.DeleteReview(context.Background(), 10, 8)

	assert.ErrorIs(t, err, ErrNotReviewOwner)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_DeleteReview_ConcurrentlyDeleted(t *testing.T) {
	svc, repo, _, _ := newTestService()
	repo.On("LockByID", mock.Anything, uint(10)).Return(&Review{ID: 10, UserID: 7}, nil)
	repo.On("Delete", mock.Anything, uint(10), uint(7)).Return(ErrReviewNotFound)

	_, err := svc.DeleteReview(context.Background(), 10, 7)

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestService_BookReviews_SingleTransaction(t *testing.T) {
	svc, repo, _, tx := newTestService()
	repo.On("Summarize", mock.Anything, uint(3)).Return(Summarize(3, []int{4, 5, 3}), nil)
	repo.On("ListByBook", mock.Anything, uint(3), 1, 5).Return([]*ReviewWithUser{{UserName: "Alice"}}, nil)

	summary, reviews, err := svc.BookReviews(context.Background(), 3, 1, 5)

	require.NoError(t, err)
	assert.Equal(t, "4.0", summary.AverageRating.String())
	assert.Equal(t, int64(3), summary.TotalReviews)
	assert.Len(t, reviews, 1)
	assert.Equal(t, 1, tx.calls)
}

func TestService_BookReviews_Error(t *testing.T) {
	svc, repo, _, _ := newTestService()
	dbErr := errors.New("connection reset")
	repo.On("Summarize", mock.Anything, uint(3)).Return(Summary{}, dbErr)

	_, _, err := svc.BookReviews(context.Background(), 3, 1, 5)

	assert.ErrorIs(t, err, dbErr)
}

func TestService_AggregateForBooks_Empty(t *testing.T) {
	svc, repo, _, _ := newTestService()

	got, err := svc.AggregateForBooks(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	repo.AssertNotCalled(t, "SummarizeMany", mock.Anything, mock.Anything)
}
