// Package credential registers users and handles login and password reset.
package credential

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Luismorlan/socialmux/app_setting"
	"github.com/Luismorlan/socialmux/file_store"
	"github.com/Luismorlan/socialmux/mailer"
	"github.com/Luismorlan/socialmux/model"
	"github.com/Luismorlan/socialmux/store"
	"github.com/Luismorlan/socialmux/token"
	"github.com/Luismorlan/socialmux/utils"
	Logger "github.com/Luismorlan/socialmux/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 5
	minNameLength     = 2
	maxNameLength     = 50

	invalidResetTokenMessage = "invalid or expired token"
)

type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Location   string
	Occupation string
	// optional profile picture
	Picture *file_store.Upload
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type Service struct {
	users      store.UserStore
	tokens     *token.Service
	ledger     utils.GrantLedger
	mail       mailer.Mailer
	pictures   file_store.PictureStore
	stats      utils.StatsReporter
	bcryptCost int
	resetTTL   time.Duration
	now        func() time.Time
}

func NewService(
	users store.UserStore,
	tokens *token.Service,
	ledger utils.GrantLedger,
	mail mailer.Mailer,
	pictures file_store.PictureStore,
	stats utils.StatsReporter,
	setting app_setting.AppSetting,
) *Service {
	if stats == nil {
		stats = utils.NoopStats
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		ledger:     ledger,
		mail:       mail,
		pictures:   pictures,
		stats:      stats,
		bcryptCost: setting.BCRYPT_COST,
		resetTTL:   setting.ResetTokenTTL(),
		now:        time.Now,
	}
}

func validateRegisterInput(in RegisterInput) error {
	if in.Password == "" {
		return utils.NewError(utils.ErrValidation, "password is required")
	}
	if len(in.Password) < minPasswordLength {
		return utils.NewError(utils.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	if strings.TrimSpace(in.Email) == "" {
		return utils.NewError(utils.ErrValidation, "email is required")
	}
	for field, name := range map[string]string{"firstName": in.FirstName, "lastName": in.LastName} {
		n := utf8.RuneCountInString(strings.TrimSpace(name))
		if n < minNameLength || n > maxNameLength {
			return utils.NewError(utils.ErrValidation, "%s must be %d to %d characters", field, minNameLength, maxNameLength)
		}
	}
	return nil
}

// Register creates a user. Only the bcrypt hash of the password is stored.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Wrap(err, "fail to hash password")
	}

	user := &model.User{
		Id:            uuid.New().String(),
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Email:         in.Email,
		PasswordHash:  string(hash),
		Location:      in.Location,
		Occupation:    in.Occupation,
		ViewedProfile: utils.RandomCounter(),
		Impressions:   utils.RandomCounter(),
		Friends:       []string{},
	}

	if in.Picture != nil {
		key, err := s.pictures.Store(ctx, in.Picture.FileName, in.Picture.Body)
		if err != nil {
			return nil, errors.Wrap(err, "fail to store profile picture")
		}
		user.PicturePath = s.pictures.GetUrlFromKey(key)
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	Logger.Log.WithFields(logrus.Fields{"user_id": user.Id}).Info("user registered")
	utils.ReportIncr(s.stats, utils.StatUserRegistered)
	return user, nil
}

// Login verifies the password and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, utils.NewError(utils.ErrAuth, "Invalid credentials")
	}

	tok, err := s.tokens.IssueSession(user.Id)
	if err != nil {
		return nil, errors.Wrap(err, "fail to issue session token")
	}
	utils.ReportIncr(s.stats, utils.StatUserLogin)
	return &LoginResult{Token: tok, User: user}, nil
}

// ResetLink appends tok to redirectBase, adding a "/" only if missing.
func ResetLink(redirectBase, tok string) string {
	if strings.HasSuffix(redirectBase, "/") {
		return redirectBase + tok
	}
	return redirectBase + "/" + tok
}

// RequestPasswordReset mails a short lived reset link to the user.
func (s *Service) RequestPasswordReset(ctx context.Context, email, redirectBase string) error {
	if strings.TrimSpace(redirectBase) == "" {
		return utils.NewError(utils.ErrValidation, "redirectUrl is required")
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	tok, err := s.tokens.IssueReset(user.Id)
	if err != nil {
		return errors.Wrap(err, "fail to issue reset token")
	}

	msg, err := mailer.RenderResetPassword(user.Email, user.FirstName, ResetLink(redirectBase, tok), int64(s.resetTTL/time.Minute))
	if err != nil {
		return errors.Wrap(err, "fail to render reset email")
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		Logger.Log.WithFields(logrus.Fields{"user_id": user.Id}).Error("fail to send reset email: ", err)
		return utils.NewError(utils.ErrInternal, "fail to send reset email")
	}
	return nil
}

// ResetPassword replaces the password of the token subject. Each reset token
// can be used once.
func (s *Service) ResetPassword(ctx context.Context, tok, newPassword string) error {
	grant, err := s.tokens.VerifyReset(tok)
	if err != nil {
		return utils.NewError(utils.ErrAuth, invalidResetTokenMessage)
	}
	if newPassword == "" {
		return utils.NewError(utils.ErrValidation, "newPassword is required")
	}
	if len(newPassword) < minPasswordLength {
		return utils.NewError(utils.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}

	user, err := s.users.GetUserById(ctx, grant.Subject)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.NewError(utils.ErrAuth, invalidResetTokenMessage)
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return errors.Wrap(err, "fail to hash password")
	}

	ttl := grant.ExpiresAt.Sub(s.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	first, err := s.ledger.Consume(ctx, grant.Id, ttl)
	if err != nil {
		return errors.Wrap(err, "fail to consume reset grant")
	}
	if !first {
		return utils.NewError(utils.ErrAuth, invalidResetTokenMessage)
	}

	if err := s.users.UpdatePasswordHash(ctx, user.Id, string(hash)); err != nil {
		// the password is unchanged, keep the link usable
		if releaseErr := s.ledger.Release(ctx, grant.Id); releaseErr != nil {
			Logger.Log.WithFields(logrus.Fields{"user_id": user.Id}).Errorln("fail to release reset grant", releaseErr)
		}
		return err
	}
	Logger.Log.WithFields(logrus.Fields{"user_id": user.Id}).Info("password reset")
	utils.ReportIncr(s.stats, utils.StatPasswordReset)
	return nil
}
