package repository

import (
	"errors"
	"fmt"

	"github.com/Baaaki/campus-market/internal/apperrors"
	"gorm.io/gorm"
)

// translateError maps driver level failures onto apperrors so services never
// import gorm to classify them.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}
