package auth

import (
	"context"

	"github.com/salonhq/salon-api/internal/model"
	"github.com/salonhq/salon-api/internal/repository"
	"github.com/salonhq/salon-api/pkg/auth"
	apperrors "github.com/salonhq/salon-api/pkg/errors"
	"github.com/salonhq/salon-api/pkg/security"
)

type Service struct {
	staffRepo repository.StaffRepository
	hasher    security.PasswordHasher
	jwt       auth.JWTService
}

func NewService(staffRepo repository.StaffRepository, hasher security.PasswordHasher, jwtSvc auth.JWTService) *Service {
	return &Service{staffRepo: staffRepo, hasher: hasher, jwt: jwtSvc}
}

// Login checks the credentials and issues an access token. Wrong email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	staff, err := s.staffRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials", nil)
	}
	if staff.Status != "active" {
		return nil, apperrors.NewUnauthorized("invalid credentials", nil)
	}
	if err := s.hasher.Compare(staff.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials", nil)
	}

	token, err := s.jwt.GenerateAccessToken(staff.ID, staff.Name, staff.Role)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	return &model.LoginResponse{Token: token, Staff: staff}, nil
}
