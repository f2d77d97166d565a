package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/linguaku/linguaku/internal/model"
)

// API paths.
const (
	PathLogin              = "/auth/login"
	PathRegister           = "/auth/register"
	PathGoogle             = "/auth/google"
	PathMe                 = "/auth/me"
	PathResendVerification = "/auth/resend-verification"
	PathForgotPassword     = "/auth/forgot-password"
	PathResetPassword      = "/auth/reset-password/"
	PathMaterials          = "/materials"
	PathAnalyze            = "/practice/analyze"
	PathPracticeHistory    = "/practice/history"
	PathPractice           = "/practice/"
	PathRecent             = "/practice/recent"
	PathWeeklyPerformance  = "/practice/weekly-performance"
	PathWeeklyInsight      = "/practice/weekly-insight"
	PathHistory            = "/history"
	PathClearHistory       = "/history/clear"
	PathUserStatistics     = "/user/statistics"
	PathUserProfile        = "/user/profile"
	PathChangePassword     = "/user/change-password"
	PathHealth             = "/health"
)

// AnalyzeTimeout bounds a scoring request, which is slower than the rest.
const AnalyzeTimeout = 60 * time.Second

// RegisterResult is the outcome of a registration. When the server requires
// email verification no token is issued.
type RegisterResult struct {
	Token                string
	User                 *model.User
	Email                string
	Name                 string
	RequiresVerification bool
}

// call runs req and decodes the envelope's data into out.
func (c *Client) call(ctx context.Context, req Request, out any) (*envelope, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.decode(out)
}

// message runs req and returns the envelope message.
func (c *Client) message(ctx context.Context, req Request) (string, error) {
	env, err := c.call(ctx, req, nil)
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// Login exchanges credentials for a token. An unverified account fails with
// a ServerError wrapping ErrVerificationRequired.
func (c *Client) Login(ctx context.Context, email, password string) (*model.AuthPayload, error) {
	var out model.AuthPayload
	_, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   PathLogin,
		Body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &ServerError{Status: http.StatusOK, Message: "login returned no token", Err: ErrMalformedResponse}
	}
	return &out, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, name, email, password string) (*RegisterResult, error) {
	var data struct {
		Token string      `json:"token"`
		User  *model.User `json:"user"`
		Email string      `json:"email"`
		Name  string      `json:"name"`
	}
	env, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   PathRegister,
		Body:   map[string]string{"name": name, "email": email, "password": password},
	}, &data)
	if err != nil {
		return nil, err
	}

	res := &RegisterResult{
		Token:                data.Token,
		User:                 data.User,
		Email:                data.Email,
		Name:                 data.Name,
		RequiresVerification: env.RequiresVerification,
	}
	if res.Email == "" {
		res.Email = email
	}
	if res.Name == "" {
		res.Name = name
	}
	return res, nil
}

// GoogleSignIn exchanges an identity-provider ID token for a session.
func (c *Client) GoogleSignIn(ctx context.Context, idToken string) (*model.AuthPayload, error) {
	var out model.AuthPayload
	if _, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   PathGoogle,
		Body:   map[string]string{"idToken": idToken},
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var raw json.RawMessage
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathMe, Auth: true}, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// ResendVerification asks the server to send another verification email.
func (c *Client) ResendVerification(ctx context.Context, email string) (string, error) {
	return c.message(ctx, Request{
		Method: http.MethodPost,
		Path:   PathResendVerification,
		Body:   map[string]string{"email": email},
	})
}

// ForgotPassword requests a password reset email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, Request{
		Method: http.MethodPost,
		Path:   PathForgotPassword,
		Body:   map[string]string{"email": email},
	})
}

// ResetPassword sets a new password using the emailed reset token.
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) (string, error) {
	return c.message(ctx, Request{
		Method: http.MethodPost,
		Path:   PathResetPassword + url.PathEscape(resetToken),
		Body:   map[string]string{"password": password},
	})
}

// Materials lists every material.
func (c *Client) Materials(ctx context.Context) ([]model.Material, error) {
	var out []model.Material
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathMaterials, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Material fetches one material by ID.
func (c *Client) Material(ctx context.Context, id string) (*model.Material, error) {
	var out model.Material
	if _, err := c.call(ctx, Request{
		Method: http.MethodGet,
		Path:   PathMaterials + "/" + url.PathEscape(id),
		Auth:   true,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze submits a transcript for scoring.
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) (*model.PracticeResult, error) {
	var data struct {
		Result *model.PracticeResult `json:"result"`
	}
	if _, err := c.call(ctx, Request{
		Method: http.MethodPost,
		Path:   PathAnalyze,
		Body:   req,
		Auth:   true,
		// The practice session owns the retry for scoring.
		Timeout: AnalyzeTimeout,
		Retries: -1,
	}, &data); err != nil {
		return nil, err
	}
	if data.Result == nil {
		return nil, &ServerError{
			Status:  http.StatusOK,
			Message: "Analysis failed - no result returned",
			Err:     ErrMalformedResponse,
		}
	}
	return data.Result, nil
}

// PracticeHistory lists the user's practice attempts.
func (c *Client) PracticeHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathPracticeHistory, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeletePractice removes one practice attempt.
func (c *Client) DeletePractice(ctx context.Context, id string) error {
	_, err := c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   PathPractice + url.PathEscape(id),
		Auth:   true,
	}, nil)
	return err
}

// RecentActivity returns the latest limit attempts.
func (c *Client) RecentActivity(ctx context.Context, limit int) ([]model.RecentActivity, error) {
	path := PathRecent
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []model.RecentActivity
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: path, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// History lists history records.
func (c *Client) History(ctx context.Context) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathHistory, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteHistory removes one history record.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	_, err := c.call(ctx, Request{
		Method: http.MethodDelete,
		Path:   PathHistory + "/" + url.PathEscape(id),
		Auth:   true,
	}, nil)
	return err
}

// ClearHistory removes every history record.
func (c *Client) ClearHistory(ctx context.Context) error {
	_, err := c.call(ctx, Request{Method: http.MethodDelete, Path: PathClearHistory, Auth: true}, nil)
	return err
}

// WeeklyPerformance returns the server-computed weekly buckets.
func (c *Client) WeeklyPerformance(ctx context.Context) ([]model.WeeklyBucket, error) {
	var out []model.WeeklyBucket
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathWeeklyPerformance, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WeeklyInsight returns the server-computed insight, or nil when the server
// has none.
func (c *Client) WeeklyInsight(ctx context.Context) (*model.WeeklyInsight, error) {
	var out *model.WeeklyInsight
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathWeeklyInsight, Auth: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UserStatistics returns the lifetime summary.
func (c *Client) UserStatistics(ctx context.Context) (*model.UserStatistics, error) {
	var out model.UserStatistics
	if _, err := c.call(ctx, Request{Method: http.MethodGet, Path: PathUserStatistics, Auth: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the display name and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, name string) (*model.User, error) {
	var raw json.RawMessage
	if _, err := c.call(ctx, Request{
		Method: http.MethodPut,
		Path:   PathUserProfile,
		Body:   map[string]string{"name": name},
		Auth:   true,
	}, &raw); err != nil {
		return nil, err
	}
	return decodeUser(raw)
}

// ChangePassword replaces the password of the signed-in user.
func (c *Client) ChangePassword(ctx context.Context, current, next string) (string, error) {
	return c.message(ctx, Request{
		Method: http.MethodPut,
		Path:   PathChangePassword,
		Body:   map[string]string{"currentPassword": current, "newPassword": next},
		Auth:   true,
	})
}

// decodeUser accepts either a bare user object or {"user": {...}}.
func decodeUser(raw json.RawMessage) (*model.User, error) {
	var wrapped struct {
		User *model.User `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil {
		return wrapped.User, nil
	}
	var u model.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, &ServerError{Status: http.StatusOK, Message: "unexpected user payload", Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return &u, nil
}
