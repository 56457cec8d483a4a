package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookmarket/internal/identity"
	"bookmarket/internal/models"
	"bookmarket/internal/repository"
	"bookmarket/internal/session"
	"bookmarket/internal/validation"

	"github.com/go-resty/resty/v2"
)

const avatarDownloadTimeout = 15 * time.Second

// AuthService exchanges Firebase ID tokens for API sessions.
type AuthService struct {
	users      repository.UserRepository
	verifier   identity.Verifier
	sessions   *session.Manager
	images     *ImageService
	httpClient *resty.Client
}

// AuthResult answers a token exchange. AccessToken is nil until the user registers.
type AuthResult struct {
	IsRegistered bool    `json:"isRegistered"`
	AccessToken  *string `json:"accessToken"`
}

type RegisterResult struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"accessToken"`
}

func NewAuthService(
	users repository.UserRepository,
	verifier identity.Verifier,
	sessions *session.Manager,
	images *ImageService,
) *AuthService {
	return &AuthService{
		users:      users,
		verifier:   verifier,
		sessions:   sessions,
		images:     images,
		httpClient: resty.New().SetDebug(false).SetTimeout(avatarDownloadTimeout),
	}
}

func (s *AuthService) verify(ctx context.Context, token string) (*identity.Identity, error) {
	if token == "" {
		return nil, models.NewValidationError("firebaseTokenId is required")
	}
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, models.NewUnauthorizedError("Invalid token")
		}
		return nil, models.NewInternalError(err)
	}
	return id, nil
}

// Authenticate reports whether the Firebase user is registered and, if so, issues a session token.
func (s *AuthService) Authenticate(ctx context.Context, firebaseToken string) (*AuthResult, error) {
	id, err := s.verify(ctx, firebaseToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, id.Email)
	if err != nil {
		if models.AsAppError(err).Code == models.CodeNotFound {
			return &AuthResult{IsRegistered: false}, nil
		}
		return nil, err
	}

	token, err := s.sessions.Issue(user.ID, id.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{IsRegistered: true, AccessToken: &token}, nil
}

// Register creates the user, account and profile for a Firebase identity and
// copies the Firebase photo into avatar storage.
func (s *AuthService) Register(ctx context.Context, in validation.RegisterInput) (*RegisterResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	id, err := s.verify(ctx, in.FirebaseTokenID)
	if err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrGoogleID(ctx, id.Email, id.UID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("User already registered")
	}

	user := &models.User{
		Account: &models.Account{Email: id.Email, GoogleID: id.UID},
		Profile: &models.Profile{
			Name:              id.Name,
			PhoneNumber:       in.PhoneNumber,
			CityLocality:      in.City,
			AdminAreaLocality: in.AdministrationArea,
			Address:           in.Address,
		},
	}
	if err := s.users.CreateWithProfile(ctx, user); err != nil {
		return nil, err
	}

	if id.Picture != "" {
		if err := s.importAvatar(ctx, user.ID, id.Picture); err != nil {
			slog.WarnContext(ctx, "registered without avatar", "user_id", user.ID, "err", err)
		}
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.sessions.Issue(created.ID, id.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &RegisterResult{User: created, AccessToken: token}, nil
}

func (s *AuthService) importAvatar(ctx context.Context, userID, pictureURL string) error {
	res, err := s.httpClient.R().SetContext(ctx).Get(pictureURL)
	if err != nil {
		return err
	}
	if res.IsError() {
		return errors.New("avatar download failed: " + res.Status())
	}

	img, err := s.images.Prepare(ImageInput{Filename: "avatar", Content: res.Body()})
	if err != nil {
		return err
	}
	url, err := s.images.UploadAvatar(ctx, userID, img)
	if err != nil {
		return err
	}
	return s.users.UpdateAvatarURL(ctx, userID, url)
}

// Logout revokes the session token until it would have expired.
func (s *AuthService) Logout(ctx context.Context, claims *session.Claims) error {
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
