package login

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguaku/linguaku/internal/router"
	"github.com/linguaku/linguaku/internal/screens/screentest"
)

// fill types values into the fields in order, tabbing between them.
func fill(s *LoginScreen, values ...string) {
	for i, v := range values {
		screentest.Type(s, v)
		if i < len(values)-1 {
			s.Update(screentest.Key("tab"))
		}
	}
}

func submit(t *testing.T, s *LoginScreen) any {
	t.Helper()
	_, cmd := s.Update(screentest.Key("enter"))
	require.NotNil(t, cmd)
	assert.True(t, s.busy)
	_, cmd = s.Update(cmd())
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestLoginSuccessGoesHome(t *testing.T) {
	h := screentest.New(t)
	require.NoError(t, h.Env.Auth.Logout(t.Context()))

	s := New(h.Env, ModeLogin)
	fill(s, screentest.Email, screentest.Password)

	msg := submit(t, s)
	reset, ok := msg.(router.ResetScreenMsg)
	require.True(t, ok, "got %T", msg)
	assert.Equal(t, "home", reset.Screen.Title())
	assert.True(t, h.Env.Session.SignedIn(t.Context()))
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	h := screentest.New(t)

	s := New(h.Env, ModeLogin)
	fill(s, "", "")

	assert.Nil(t, submit(t, s))
	assert.False(t, s.busy)
	assert.NotEmpty(t, s.errMsg)
	assert.Equal(t, 0, h.API.Hits("POST /auth/login"))
}

func TestWrongPasswordShowsError(t *testing.T) {
	h := screentest.New(t)

	s := New(h.Env, ModeLogin)
	fill(s, screentest.Email, "nope")

	assert.Nil(t, submit(t, s))
	assert.NotEmpty(t, s.errMsg)
}

func TestRegisterWithVerificationReturnsToLogin(t *testing.T) {
	h := screentest.New(t)
	h.API.SetRequireVerification(true)

	s := New(h.Env, ModeLogin)
	s.Update(screentest.Ctrl('r'))
	require.Equal(t, ModeRegister, s.mode)
	assert.Equal(t, "Create Account", s.Title())

	fill(s, "Dewi", "dewi@example.com", "Secret1!", "Secret1!")
	msg := submit(t, s)
	_, navigated := msg.(router.ResetScreenMsg)
	assert.False(t, navigated, "got %T", msg)

	assert.Equal(t, ModeLogin, s.mode)
	assert.True(t, s.field("Email").Focused())
	assert.Contains(t, s.notice, "verify")
	assert.Equal(t, "dewi@example.com", s.field("Email").Value())
}

func TestForgotPasswordNotice(t *testing.T) {
	h := screentest.New(t)

	s := New(h.Env, ModeLogin)
	fill(s, screentest.Email)

	_, cmd := s.Update(screentest.Ctrl('f'))
	require.NotNil(t, cmd)
	s.Update(cmd())
	assert.NotEmpty(t, s.notice)
	assert.Empty(t, s.errMsg)
	assert.Equal(t, 1, h.API.Hits("POST /auth/forgot-password"))
}

func TestCloseDiscardsResult(t *testing.T) {
	h := screentest.New(t)

	s := New(h.Env, ModeLogin)
	fill(s, screentest.Email, screentest.Password)
	_, cmd := s.Update(screentest.Key("enter"))
	require.NotNil(t, cmd)
	s.Close()

	_, next := s.Update(cmd())
	assert.Nil(t, next)
	assert.True(t, s.busy)
}
