package policy

import (
	"errors"
	"testing"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanModifyProduct(t *testing.T) {
	product := &models.Product{ID: 10, UserID: 1}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"owner", Actor{ID: 1, Role: models.RoleUser}, true},
		{"other user", Actor{ID: 2, Role: models.RoleUser}, false},
		{"admin", Actor{ID: 3, Role: models.RoleAdmin}, true},
		{"owner who is admin", Actor{ID: 1, Role: models.RoleAdmin}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanModifyProduct(tc.actor, product))
		})
	}
}

func TestCanViewConversation(t *testing.T) {
	conv := &models.Conversation{ID: 5, User1ID: 2, User2ID: 1, ProductID: 10}

	assert.True(t, CanViewConversation(Actor{ID: 1}, conv))
	assert.True(t, CanViewConversation(Actor{ID: 2}, conv))
	assert.False(t, CanViewConversation(Actor{ID: 3}, conv))
	assert.False(t, CanViewConversation(Actor{ID: 3, Role: models.RoleAdmin}, conv), "admins are not participants")

	assert.Equal(t, CanViewConversation(Actor{ID: 3}, conv), CanSendMessage(Actor{ID: 3}, conv))
	assert.Equal(t, CanViewConversation(Actor{ID: 1}, conv), CanSendMessage(Actor{ID: 1}, conv))
}

func TestIsSelfConversation(t *testing.T) {
	assert.True(t, IsSelfConversation(4, 4))
	assert.False(t, IsSelfConversation(4, 5))
}

func TestRequireHelpers(t *testing.T) {
	product := &models.Product{UserID: 1}
	conv := &models.Conversation{User1ID: 1, User2ID: 2}

	assert.NoError(t, RequireModifyProduct(Actor{ID: 1}, product))
	err := RequireModifyProduct(Actor{ID: 2}, product)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))

	assert.NoError(t, RequireParticipant(Actor{ID: 2}, conv))
	err = RequireParticipant(Actor{ID: 9}, conv)
	assert.True(t, errors.Is(err, apperrors.ErrForbidden))
}
