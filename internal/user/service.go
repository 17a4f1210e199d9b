package user

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(userID int64) (*User, error) {
	return s.repo.GetByID(userID)
}

func (s *Service) List() ([]*User, error) {
	return s.repo.List()
}

// UpdateProfile applies only the fields present in the DTO.
func (s *Service) UpdateProfile(userID int64, dto UpdateProfileDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if dto.Email != nil {
		current.Email = *dto.Email
	}
	if dto.Phone != nil {
		current.Phone = *dto.Phone
	}
	if dto.Nickname != nil {
		current.Nickname = *dto.Nickname
	}
	if dto.Avatar != nil {
		current.Avatar = *dto.Avatar
	}

	if err := s.repo.UpdateProfile(current); err != nil {
		return nil, err
	}
	return current, nil
}

// Delete soft-deletes the user; the row is never physically removed.
func (s *Service) Delete(userID int64) error {
	if _, err := s.repo.GetByID(userID); err != nil {
		return err
	}
	return s.repo.SoftDelete(userID)
}
