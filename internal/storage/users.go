package storage

import (
	"chatvault/backend/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func (s *Service) CreateUser(user *models.User) error {
	if err := s.DB.Create(user).Error; err != nil {
		return errors.WithMessage(err, "create user")
	}
	return nil
}

func (s *Service) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithMessage(err, "find user by email")
	}
	return &user, nil
}

func (s *Service) FindUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.WithMessage(err, "find user by id")
	}
	return &user, nil
}

func (s *Service) FindUsersByIDs(ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, errors.WithMessage(err, "find users by ids")
	}
	return users, nil
}

// ListUsersExcept returns every account except the given one, for the
// contact picker.
func (s *Service) ListUsersExcept(id string) ([]models.User, error) {
	var users []models.User
	if err := s.DB.Where("id <> ?", id).Order("name asc").Find(&users).Error; err != nil {
		return nil, errors.WithMessage(err, "list users")
	}
	return users, nil
}

func (s *Service) UpdateProfilePic(userID, url string) (*models.User, error) {
	user, err := s.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	user.ProfilePic = url
	if err := s.DB.Save(user).Error; err != nil {
		return nil, errors.WithMessage(err, "update profile pic")
	}
	return user, nil
}

// DeleteAccount removes the user and their direct history, prunes them from
// pair summaries, and walks them out of every group with the same
// reassignment rules as a voluntary exit, so no group is ever left with an
// admin outside its member set.
func (s *Service) DeleteAccount(userID string) error {
	if err := s.DB.Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&models.DirectMessage{}).Error; err != nil {
		return errors.WithMessage(err, "delete direct messages")
	}

	if err := s.DB.Exec(
		`UPDATE chats SET members = array_remove(members, ?) WHERE ? = ANY(members)`,
		userID, userID).Error; err != nil {
		return errors.WithMessage(err, "prune chat memberships")
	}
	if err := s.DB.Exec(
		`DELETE FROM chats WHERE cardinality(members) = 0`).Error; err != nil {
		return errors.WithMessage(err, "delete empty chats")
	}

	groups, err := s.ListGroupsForUser(userID)
	if err != nil {
		return err
	}
	for i := range groups {
		if err := s.removeGroupMember(&groups[i], userID); err != nil {
			return err
		}
	}

	if err := s.DB.Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		return errors.WithMessage(err, "delete user")
	}
	return nil
}
