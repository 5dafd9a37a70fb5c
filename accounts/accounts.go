// Package accounts handles registration, login, profiles and admin moderation
// of users.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"peer-delivery-api/lifecycle"
	"peer-delivery-api/models"
	"peer-delivery-api/session"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	validate *validator.Validate
	cost     int
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		logger:   logger.Named("accounts"),
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"default_address" validate:"max=500"`
}

// Register creates a regular (non-admin) account
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	return s.create(ctx, in, false)
}

func (s *Service) create(ctx context.Context, in RegisterInput, admin bool) (*models.User, error) {
	var taken int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return nil, models.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Name:           in.Name,
		Email:          in.Email,
		Phone:          in.Phone,
		PasswordHash:   string(hash),
		DefaultAddress: in.Address,
		IsAdmin:        admin,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.ErrEmailTaken
		}
		s.logger.Error("failed to create user", zap.String("email", in.Email), zap.Error(err))
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", zap.Uint("user_id", user.ID), zap.Bool("admin", admin))
	return user, nil
}

// EnsureAdmin creates the configured administrator unless the email exists.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("look up admin: %w", err)
	}
	return s.create(ctx, RegisterInput{Name: name, Email: email, Password: password}, true)
}

// Login checks credentials. Banned users are refused even with the right password.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	if user.IsBanned {
		s.logger.Warn("banned user attempted login", zap.Uint("user_id", user.ID))
		return nil, models.ErrBanned
	}
	return &user, nil
}

// Profile returns the session user's account
func (s *Service) Profile(ctx context.Context, sess session.Session) (*models.User, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	return s.get(ctx, sess.UserID)
}

func (s *Service) get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &user, nil
}

// ProfileUpdate lists the editable profile fields; nil leaves a field alone.
type ProfileUpdate struct {
	Name           *string `json:"name" validate:"omitempty,min=1,max=100"`
	Phone          *string `json:"phone" validate:"omitempty,max=30"`
	DefaultAddress *string `json:"default_address" validate:"omitempty,max=500"`
	ProfileImage   *string `json:"profile_image" validate:"omitempty,max=500"`
}

func (s *Service) UpdateProfile(ctx context.Context, sess session.Session, in ProfileUpdate) (*models.User, error) {
	if err := sess.Require(); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}

	update := map[string]any{}
	if in.Name != nil {
		update["name"] = *in.Name
	}
	if in.Phone != nil {
		update["phone"] = *in.Phone
	}
	if in.DefaultAddress != nil {
		update["default_address"] = *in.DefaultAddress
	}
	if in.ProfileImage != nil {
		update["profile_image"] = *in.ProfileImage
	}
	if len(update) > 0 {
		err := s.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", sess.UserID).Updates(update).Error
		if err != nil {
			return nil, fmt.Errorf("update profile: %w", err)
		}
	}
	return s.get(ctx, sess.UserID)
}

// ListUsers returns every account, optionally only banned ones (admin only)
func (s *Service) ListUsers(ctx context.Context, sess session.Session, bannedOnly bool) ([]models.User, error) {
	if err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	var users []models.User
	q := s.db.WithContext(ctx)
	if bannedOnly {
		q = q.Where("is_banned = ?", true)
	}
	if err := q.Order("user_id asc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetBanned bans or unbans a user (admin only). Admins cannot ban themselves.
func (s *Service) SetBanned(ctx context.Context, sess session.Session, userID uint, banned bool) (bool, error) {
	if err := sess.RequireAdmin(); err != nil {
		return false, err
	}
	if userID == sess.UserID {
		return false, fmt.Errorf("%w: cannot change your own ban state", models.ErrValidation)
	}
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Update("is_banned", banned)
	if res.Error != nil {
		return false, fmt.Errorf("set banned: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		s.logger.Info("user ban state changed", zap.Uint("user_id", userID), zap.Bool("banned", banned), zap.Uint("admin_id", sess.UserID))
	}
	return res.RowsAffected > 0, nil
}

// DeleteUser removes a user and, atomically, everything that depends on them:
// the orders they posted (with all their rows), the deliveries, earnings and
// ratings where they were the partner, and their notifications.
func (s *Service) DeleteUser(ctx context.Context, sess session.Session, userID uint) (bool, error) {
	if err := sess.RequireAdmin(); err != nil {
		return false, err
	}
	if userID == sess.UserID {
		return false, fmt.Errorf("%w: cannot delete your own account", models.ErrValidation)
	}

	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orderIDs []uint
		if err := tx.Model(&models.Order{}).Where("customer_id = ?", userID).Pluck("order_id", &orderIDs).Error; err != nil {
			return err
		}
		if err := lifecycle.DeleteOrderRows(tx, orderIDs...); err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", userID).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		for _, model := range []any{&models.Delivery{}, &models.Earning{}, &models.Rating{}} {
			if err := tx.Where("delivery_person_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("customer_id = ?", userID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Notification{}).Error; err != nil {
			return err
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.User{})
		deleted = res.RowsAffected > 0
		return res.Error
	})
	if err != nil {
		s.logger.Error("failed to delete user", zap.Uint("user_id", userID), zap.Error(err))
		return false, fmt.Errorf("delete user %d: %w", userID, err)
	}
	if deleted {
		s.logger.Info("user deleted by admin", zap.Uint("user_id", userID), zap.Uint("admin_id", sess.UserID))
	}
	return deleted, nil
}
