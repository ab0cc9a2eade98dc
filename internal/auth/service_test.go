package auth_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/opsvista/opsvista/internal/auth"
)

type MockUserRepository struct {
	users      map[string]*auth.User
	hashes     map[string]string
	shouldFail bool
	failError  error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[string]*auth.User),
		hashes: make(map[string]string),
	}
}

func (m *MockUserRepository) addUser(user *auth.User, password string) {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	m.users[user.Email] = user
	m.hashes[user.Email] = string(hash)
}

func (m *MockUserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.shouldFail {
		return "", 0, m.failError
	}
	user, ok := m.users[email]
	if !ok {
		return "", 0, errors.New("user not found")
	}
	return m.hashes[email], user.ID, nil
}

func (m *MockUserRepository) GetUserWithPermissions(userID int64) (*auth.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

var _ = Describe("Service", func() {
	var (
		repo    *MockUserRepository
		service *auth.Service
	)

	activeUser := &auth.User{
		ID:             1,
		Email:          "dev@opsvista.io",
		Name:           "Dev User",
		Role:           "developer",
		OrganizationID: 10,
		IsActive:       true,
		Permissions:    []string{"cost:read"},
	}

	BeforeEach(func() {
		repo = NewMockUserRepository()
		repo.addUser(activeUser, "s3cret-password")

		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-at-least-32-chars!",
			"test-refresh-secret-at-least-32-chars",
			auth.TokenTTLs{Access: time.Minute, Refresh: time.Hour},
		)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		It("should return a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "s3cret-password"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
			Expect(tokens.AccessToken).NotTo(Equal(tokens.RefreshToken))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "wrong"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "ghost@opsvista.io", Password: "whatever"})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject an inactive user", func() {
			inactive := &auth.User{ID: 2, Email: "gone@opsvista.io", Role: "viewer", IsActive: false}
			repo.addUser(inactive, "password-123")

			_, err := service.Authenticate(auth.LoginDTO{Email: "gone@opsvista.io", Password: "password-123"})
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("should reject missing fields with a validation error", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io"})
			Expect(err).To(BeAssignableToTypeOf(auth.ValidationError{}))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should accept a token the service issued", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "s3cret-password"})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
			Expect(claims.Email).To(Equal("dev@opsvista.io"))
		})

		It("should reject a refresh token used as an access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "s3cret-password"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(tokens.RefreshToken)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("should reject garbage", func() {
			_, err := service.ValidateAccessToken("not-a-jwt")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})

		It("should report expiry distinctly", func() {
			expiredGen := auth.NewJWTTokenGenerator(
				"test-access-secret-at-least-32-chars!",
				"test-refresh-secret-at-least-32-chars",
				auth.TokenTTLs{Access: -time.Minute, Refresh: time.Hour},
			)
			token, err := expiredGen.GenerateAccessToken("1", "dev@opsvista.io")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(auth.ErrTokenExpired))
		})
	})

	Describe("RefreshTokens", func() {
		It("should rotate the pair for a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "s3cret-password"})
			Expect(err).NotTo(HaveOccurred())

			renewed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(renewed.AccessToken).NotTo(BeEmpty())

			claims, err := service.ValidateAccessToken(renewed.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal("1"))
		})

		It("should reject an access token used as a refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "dev@opsvista.io", Password: "s3cret-password"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RefreshTokens(tokens.AccessToken)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("Subject", func() {
		It("should map the user onto an evaluator subject", func() {
			subject := activeUser.Subject()
			Expect(subject.UserID).To(Equal(int64(1)))
			Expect(subject.Role).To(Equal("developer"))
			Expect(subject.OrganizationID).To(Equal(int64(10)))
			Expect(subject.ExtraPermissions).To(ConsistOf("cost:read"))
			Expect(subject.IsActive).To(BeTrue())
		})
	})
})
