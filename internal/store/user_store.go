package store

import (
	"errors"
	"time"

	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the persistence contract for identity records. Lookups
// return ErrNotFound when no row matches; Create returns ErrDuplicate when
// a unique index (email, matric) rejects the insert.
type UserStore interface {
	ByEmail(email string) (*models.User, error)
	ByMatric(matric string) (*models.User, error)
	ByID(id uuid.UUID) (*models.User, error)
	// ByResetToken matches an exact token whose expiry is after now.
	ByResetToken(token string, now time.Time) (*models.User, error)
	Create(user *models.User) error
	Save(user *models.User) error
}

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) ByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) ByMatric(matric string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("matric_number = ?", matric).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) ByID(id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) ByResetToken(token string, now time.Time) (*models.User, error) {
	var user models.User
	err := s.db.Where("reset_token = ? AND reset_token_expires > ?", token, now).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormUserStore) Create(user *models.User) error {
	if err := s.db.Create(user).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (s *GormUserStore) Save(user *models.User) error {
	return s.db.Save(user).Error
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
