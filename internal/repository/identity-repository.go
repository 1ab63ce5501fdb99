package repository

import (
	"errors"

	"github.com/crewple/user_service/internal/domain"
	"gorm.io/gorm"
)

type IdentityRepository interface {
	CreateIdentity(identity *domain.UserIdentity) (*domain.UserIdentity, error)
	FindByProvider(provider, providerUserID string) (*domain.UserIdentity, error)
	FindByUser(userID uint) ([]domain.UserIdentity, error)
	FindByUserAndProvider(userID uint, provider string) (*domain.UserIdentity, error)
	SaveIdentity(identity *domain.UserIdentity) error
	DeleteIdentity(identityID uint) error
	CountByUser(userID uint) (int64, error)
}

type identityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) CreateIdentity(identity *domain.UserIdentity) (*domain.UserIdentity, error) {
	if identity == nil {
		return nil, errors.New("nil identity")
	}
	if err := r.db.Create(identity).Error; err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *identityRepository) FindByProvider(provider, providerUserID string) (*domain.UserIdentity, error) {
	identity := &domain.UserIdentity{}
	err := r.db.
		Where("provider = ? AND provider_user_id = ?", provider, providerUserID).
		First(identity).Error
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *identityRepository) FindByUser(userID uint) ([]domain.UserIdentity, error) {
	var identities []domain.UserIdentity
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&identities).Error
	if err != nil {
		return nil, err
	}
	return identities, nil
}

func (r *identityRepository) FindByUserAndProvider(userID uint, provider string) (*domain.UserIdentity, error) {
	identity := &domain.UserIdentity{}
	err := r.db.
		Where("user_id = ? AND provider = ?", userID, provider).
		First(identity).Error
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func (r *identityRepository) SaveIdentity(identity *domain.UserIdentity) error {
	if identity == nil {
		return errors.New("nil identity")
	}
	return r.db.Save(identity).Error
}

func (r *identityRepository) DeleteIdentity(identityID uint) error {
	return r.db.Unscoped().Delete(&domain.UserIdentity{}, identityID).Error
}

func (r *identityRepository) CountByUser(userID uint) (int64, error) {
	var n int64
	err := r.db.Model(&domain.UserIdentity{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
