// Package policy holds the access rules checked before every mutation or
// sensitive read. The predicates are pure; the Require helpers turn a failed
// predicate into an apperrors value.
package policy

import (
	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/models"
)

// Actor is the authenticated user performing a request.
type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanModifyProduct allows the owner or any admin.
func CanModifyProduct(actor Actor, product *models.Product) bool {
	return actor.ID == product.UserID || actor.IsAdmin()
}

// CanViewConversation allows only the two participants. Admins get no
// special access to private threads.
func CanViewConversation(actor Actor, conversation *models.Conversation) bool {
	return actor.ID == conversation.User1ID || actor.ID == conversation.User2ID
}

// CanSendMessage uses the same rule as viewing.
func CanSendMessage(actor Actor, conversation *models.Conversation) bool {
	return CanViewConversation(actor, conversation)
}

func IsSelfConversation(userA, userB uint) bool {
	return userA == userB
}

// RequireModifyProduct returns a forbidden error unless the actor may change the product.
func RequireModifyProduct(actor Actor, product *models.Product) error {
	if !CanModifyProduct(actor, product) {
		return apperrors.Forbidden("you are not allowed to modify this product")
	}
	return nil
}

// RequireParticipant returns a forbidden error unless the actor is in the conversation.
func RequireParticipant(actor Actor, conversation *models.Conversation) error {
	if !CanViewConversation(actor, conversation) {
		return apperrors.Forbidden("you are not a participant in this conversation")
	}
	return nil
}
