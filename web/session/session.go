// Package session stores the logged-in user in the signed cookie session.
package session

import (
	"encoding/gob"

	"github.com/apextelemetry/apextelemetry/config"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const loginUser = "LOGIN_USER"

// LoginUser is the identity kept in the cookie. It never carries the password hash.
type LoginUser struct {
	Id       int
	Username string
}

func init() {
	gob.Register(LoginUser{})
}

func SetLoginUser(c *gin.Context, id int, username string) error {
	s := sessions.Default(c)
	s.Set(loginUser, LoginUser{Id: id, Username: username})
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) *LoginUser {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(LoginUser); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(config.GetName(), "", -1, "/", "", false, true)
	return nil
}
