package user

import (
	"Apoteka-Backend/domain"
	"Apoteka-Backend/entities"
	"Apoteka-Backend/internal/utils"
	"Apoteka-Backend/internal/utils/mailing"
	"Apoteka-Backend/pkg/jwt"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type (
	UserService interface {
		Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error)
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		Me(ctx context.Context, userID string) (domain.MeResponse, error)
		UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) error
		ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		DeleteAccount(ctx context.Context, userID string) error
		GetStarHistory(ctx context.Context, userID string, page, limit int) ([]domain.StarTransactionResponse, int64, error)
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
	}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	if _, err := s.userRepository.GetUserByEmail(ctx, req.Email); err == nil {
		return domain.RegisterResponse{}, domain.ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.RegisterResponse{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	user := &entities.User{
		ID:        uuid.New(),
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.userRepository.CreateUser(ctx, user); err != nil {
		return domain.RegisterResponse{}, err
	}

	switch req.Role {
	case domain.RoleClient:
		var dateOfBirth time.Time
		if req.DateOfBirth != "" {
			dateOfBirth, err = time.Parse("2006-01-02", req.DateOfBirth)
			if err != nil {
				return domain.RegisterResponse{}, domain.ErrInvalidDateOfBirth
			}
		}

		client := &entities.Client{
			ID:          uuid.New(),
			UserID:      user.ID,
			Stars:       0,
			DateOfBirth: dateOfBirth,
			Gender:      req.Gender,
			Phone:       req.Phone,
		}
		// The identification QR payload the pharmacist app scans. It
		// carries the user id, which is what the scan pipeline resolves
		// the client row by.
		client.QRCode = fmt.Sprintf(`{"userId":"%s"}`, user.ID)

		if err := s.userRepository.CreateClient(ctx, client); err != nil {
			return domain.RegisterResponse{}, err
		}
	case domain.RolePharmacist:
		pharmacist := &entities.Pharmacist{
			ID:     uuid.New(),
			UserID: user.ID,
		}
		if err := s.userRepository.CreatePharmacist(ctx, pharmacist); err != nil {
			return domain.RegisterResponse{}, err
		}
	default:
		return domain.RegisterResponse{}, domain.ErrInvalidRole
	}

	return domain.RegisterResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.LoginResponse{}, domain.ErrInvalidCredentials
		}
		return domain.LoginResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token := s.jwtService.GenerateTokenUser(user.ID.String(), user.Role)

	return domain.LoginResponse{
		Token: token,
		Role:  user.Role,
	}, nil
}

func (s *userService) Me(ctx context.Context, userID string) (domain.MeResponse, error) {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.MeResponse{}, domain.ErrUserNotFound
		}
		return domain.MeResponse{}, err
	}

	res := domain.MeResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}

	if user.Role == domain.RoleClient {
		client, err := s.userRepository.GetClientByUserID(ctx, userID)
		if err != nil {
			return domain.MeResponse{}, err
		}
		res.Stars = client.Stars
		res.QRCode = client.QRCode
	}

	return res, nil
}

func (s *userService) UpdateUser(ctx context.Context, req domain.UpdateUserRequest, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if err := s.userRepository.UpdateUser(ctx, user); err != nil {
		return err
	}

	if req.Phone != "" && user.Role == domain.RoleClient {
		client, err := s.userRepository.GetClientByUserID(ctx, userID)
		if err != nil {
			return err
		}
		client.Phone = req.Phone
		if err := s.userRepository.UpdateClient(ctx, client); err != nil {
			return err
		}
	}

	return nil
}

func (s *userService) ForgotPassword(ctx context.Context, req domain.ForgotPasswordRequest) error {
	user, err := s.userRepository.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	token, err := s.jwtService.GenerateTokenForgetPassword(map[string]any{
		"user_id": user.ID.String(),
	}, 30*time.Minute)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", utils.GetConfig("APP_URL"), token)
	body := fmt.Sprintf(
		"<p>Zdravo %s,</p><p>Zatražili ste promenu lozinke. Kliknite na link ispod da postavite novu:</p><p><a href=\"%s\">Promeni lozinku</a></p><p>Link važi 30 minuta.</p>",
		user.FirstName, resetURL,
	)

	return mailing.SendMail(user.Email, "Promena lozinke", body)
}

func (s *userService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	claims, err := s.jwtService.ValidateTokenForgetPassword(req.Token)
	if err != nil {
		return err
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return domain.ErrTokenInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepository.UpdateUserPassword(ctx, userID, string(hashed))
}

// DeleteAccount removes the role row first, then the user row, so a
// failure partway never leaves a role row pointing at a deleted user.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.userRepository.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	switch user.Role {
	case domain.RoleClient:
		client, err := s.userRepository.GetClientByUserID(ctx, userID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err == nil {
			if err := s.userRepository.DeleteClient(ctx, client.ID); err != nil {
				return err
			}
		}
	case domain.RolePharmacist:
		if err := s.userRepository.DeletePharmacist(ctx, userID); err != nil {
			return err
		}
	}

	return s.userRepository.DeleteUser(ctx, user.ID.String())
}

func (s *userService) GetStarHistory(ctx context.Context, userID string, page, limit int) ([]domain.StarTransactionResponse, int64, error) {
	client, err := s.userRepository.GetClientByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, domain.ErrClientNotFound
		}
		return nil, 0, err
	}

	transactions, count, err := s.userRepository.GetStarTransactions(ctx, client.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]domain.StarTransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		result = append(result, domain.StarTransactionResponse{
			ID:          tx.ID.String(),
			Amount:      tx.Amount,
			Type:        tx.Type,
			Description: tx.Description,
			Balance:     tx.Balance,
			CreatedAt:   tx.CreatedAt,
		})
	}

	return result, count, nil
}
