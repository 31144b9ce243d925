package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/apextelemetry/apextelemetry/database"
	"github.com/apextelemetry/apextelemetry/database/model"
	"github.com/apextelemetry/apextelemetry/logger"
	"github.com/apextelemetry/apextelemetry/util/crypto"

	"gorm.io/gorm"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 80

	// DeleteConfirmation must be typed by the user to delete their account.
	DeleteConfirmation = "DELETE"
)

type UserService struct{}

// Register validates the input, hashes the password and creates the user.
func (s *UserService) Register(username, email, password, confirm string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if n := len([]rune(username)); n < minUsernameLen || n > maxUsernameLen {
		return nil, invalid("username", "username must be between 3 and 80 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, invalid("email", "invalid email address")
	}
	if err := crypto.CheckPasswordStrength(password); err != nil {
		return nil, invalid("password", err.Error())
	}
	if password != confirm {
		return nil, invalid("confirm", "passwords do not match")
	}

	db := database.GetDB()
	var count int64
	if err := db.Model(model.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalid("username", "username already taken")
	}
	if err := db.Model(model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalid("email", "email already registered")
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: username, Email: email, Password: hash}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, invalid("username", "username or email already registered")
		}
		return nil, err
	}
	logger.Infof("registered user %s", username)
	return user, nil
}

// CheckUser returns the user when the credentials match, ErrInvalidCredentials otherwise.
func (s *UserService) CheckUser(username, password string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", strings.TrimSpace(username)).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Model(model.User{}).Where("id = ?", id).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Exists(id int) (bool, error) {
	var count int64
	err := database.GetDB().Model(model.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *UserService) GetUserByUsername(username string) (*model.User, error) {
	user := &model.User{}
	err := database.GetDB().Model(model.User{}).Where("username = ?", username).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword updates the hash only if every rule holds: the current password matches,
// the new one passes the strength policy, the confirmation matches and it differs from
// the current one.
func (s *UserService) ChangePassword(userID int, current, newPassword, confirm string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPasswordHash(user.Password, current) {
		return invalid("currentPassword", "current password is incorrect")
	}
	if err := crypto.CheckPasswordStrength(newPassword); err != nil {
		return invalid("newPassword", err.Error())
	}
	if newPassword != confirm {
		return invalid("confirmPassword", "new passwords do not match")
	}
	if newPassword == current {
		return invalid("newPassword", "new password must be different from current password")
	}
	return s.setPassword(user.Id, newPassword)
}

// ResetPassword sets a new password without knowing the old one. It is meant for the
// command line, where the operator is trusted.
func (s *UserService) ResetPassword(username, newPassword string) error {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return err
	}
	if err := crypto.CheckPasswordStrength(newPassword); err != nil {
		return invalid("password", err.Error())
	}
	return s.setPassword(user.Id, newPassword)
}

func (s *UserService) setPassword(userID int, password string) error {
	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return err
	}
	return database.GetDB().Model(model.User{}).
		Where("id = ?", userID).
		Update("password", hash).
		Error
}

// DeleteAccount removes the user and everything they own once confirmation reads DELETE.
func (s *UserService) DeleteAccount(userID int, confirmation string) error {
	if confirmation != DeleteConfirmation {
		return invalid("confirmation", `type "DELETE" to confirm`)
	}
	return DeleteUserCascade(userID)
}

// DeleteUserCascade deletes car data, race sessions, comparisons and finally the user in
// one transaction.
func DeleteUserCascade(userID int) error {
	return database.Transaction(func(tx *gorm.DB) error {
		sessionIDs := tx.Model(model.RaceSession{}).Select("id").Where("user_id = ?", userID)
		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&model.CarData{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.RaceSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&model.Comparison{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", userID).Delete(&model.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// isUniqueViolation catches the race where two registrations pass the count check together.
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"))
}
