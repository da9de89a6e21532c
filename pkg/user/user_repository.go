package user

import (
	"Apoteka-Backend/entities"
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type (
	UserRepository interface {
		CreateUser(ctx context.Context, user *entities.User) error
		GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
		GetUserByID(ctx context.Context, id string) (*entities.User, error)
		UpdateUser(ctx context.Context, user *entities.User) error
		UpdateUserPassword(ctx context.Context, id string, hashed string) error
		DeleteUser(ctx context.Context, id string) error

		CreateClient(ctx context.Context, client *entities.Client) error
		GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error)
		UpdateClient(ctx context.Context, client *entities.Client) error
		DeleteClient(ctx context.Context, clientID uuid.UUID) error

		CreatePharmacist(ctx context.Context, pharmacist *entities.Pharmacist) error
		DeletePharmacist(ctx context.Context, userID string) error

		GetStarTransactions(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*entities.StarTransaction, int64, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateUserPassword(ctx context.Context, id string, hashed string) error {
	return r.db.WithContext(ctx).
		Model(&entities.User{}).
		Where("id = ?", id).
		Update("password", hashed).Error
}

func (r *userRepository) DeleteUser(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.User{}).Error
}

func (r *userRepository) CreateClient(ctx context.Context, client *entities.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *userRepository) GetClientByUserID(ctx context.Context, userID string) (*entities.Client, error) {
	var client entities.Client
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *userRepository) UpdateClient(ctx context.Context, client *entities.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *userRepository) DeleteClient(ctx context.Context, clientID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", clientID).Delete(&entities.Client{}).Error
}

func (r *userRepository) CreatePharmacist(ctx context.Context, pharmacist *entities.Pharmacist) error {
	return r.db.WithContext(ctx).Create(pharmacist).Error
}

func (r *userRepository) DeletePharmacist(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entities.Pharmacist{}).Error
}

func (r *userRepository) GetStarTransactions(ctx context.Context, clientID uuid.UUID, page, limit int) ([]*entities.StarTransaction, int64, error) {
	var transactions []*entities.StarTransaction
	var count int64

	offset := (page - 1) * limit

	if err := r.db.WithContext(ctx).
		Model(&entities.StarTransaction{}).
		Where("client_id = ?", clientID).
		Count(&count).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}

	return transactions, count, nil
}
