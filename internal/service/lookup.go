package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/validation"
)

var (
	ErrUnknownLookup = errors.New("unknown lookup kind")
)

// LookupService manages the per-user contact person and operator lists.
type LookupService struct {
	repos map[string]repository.LookupRepository
}

func NewLookupService(contactPersons, operators repository.LookupRepository) *LookupService {
	return &LookupService{
		repos: map[string]repository.LookupRepository{
			model.LookupContactPerson: contactPersons,
			model.LookupOperator:      operators,
		},
	}
}

func (s *LookupService) repo(kind string) (repository.LookupRepository, error) {
	r, ok := s.repos[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLookup, kind)
	}
	return r, nil
}

func (s *LookupService) Add(kind, userID, name string) (*model.LookupEntry, error) {
	r, err := s.repo(kind)
	if err != nil {
		return nil, err
	}

	err = validation.ValidateName(name)
	if err != nil {
		return nil, invalidInput(err)
	}

	entry, err := r.Add(userID, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("failed to add %s: %w", kind, err)
	}
	return entry, nil
}

func (s *LookupService) Delete(kind, userID, name string) error {
	r, err := s.repo(kind)
	if err != nil {
		return err
	}

	err = r.Delete(userID, strings.TrimSpace(name))
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// DropdownOptions returns both name lists, sorted.
func (s *LookupService) DropdownOptions(userID string) (*model.DropdownOptions, error) {
	contactPersons, err := s.repos[model.LookupContactPerson].Names(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact persons: %w", err)
	}

	operators, err := s.repos[model.LookupOperator].Names(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operators: %w", err)
	}

	return &model.DropdownOptions{
		ContactPersons: contactPersons,
		Operators:      operators,
	}, nil
}
