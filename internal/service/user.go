package service

import (
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{userRepository: userRepository}
}

// Profile returns the caller's account; repository.ErrUserNotFound if it is gone.
func (s *UserService) Profile(userID string) (*model.User, error) {
	return s.userRepository.ByID(userID)
}
