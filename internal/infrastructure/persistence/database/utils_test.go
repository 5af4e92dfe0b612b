package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm翻译后的错误", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"mysql", errors.New("Error 1062: Duplicate entry '7-3' for key 'uniq_review_user_book'"), true},
		{"sqlite", errors.New("UNIQUE constraint failed: reviews.user_id, reviews.book_id"), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "uniq_review_user_book"`), true},
		{"其他错误", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateError(tt.err))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%dune%", containsPattern("Dune"))
	assert.Equal(t, "%100!%%", containsPattern("100%"))
	assert.Equal(t, "%a!_b%", containsPattern("a_b"))
	assert.Equal(t, "%wow!!%", containsPattern("wow!"))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, offset(1, 10))
	assert.Equal(t, 0, offset(0, 10))
	assert.Equal(t, 20, offset(3, 10))
}
