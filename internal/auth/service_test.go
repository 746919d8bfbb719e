package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/fieldops/advance-settlement/internal/auth"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

type mockUserRepository struct {
	passwordsByEmail map[string]string
	idsByEmail       map[string]string
	usersByID        map[int64]*auth.User
	getPasswordErr   error
	getUserErr       error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		passwordsByEmail: make(map[string]string),
		idsByEmail:       make(map[string]string),
		usersByID:        make(map[int64]*auth.User),
	}
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, string, error) {
	if m.getPasswordErr != nil {
		return "", "", m.getPasswordErr
	}
	hash, ok := m.passwordsByEmail[email]
	if !ok {
		return "", "", auth.ErrInvalidCredentials
	}
	return hash, m.idsByEmail[email], nil
}

func (m *mockUserRepository) GetUserByID(userID int64) (*auth.User, error) {
	if m.getUserErr != nil {
		return nil, m.getUserErr
	}
	u, ok := m.usersByID[userID]
	if !ok {
		return nil, auth.ErrUserInactive
	}
	return u, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		mockRepo *mockUserRepository
		tokenGen *auth.JWTTokenGenerator
	)

	const (
		accessSecret  = "test-access-secret-0123456789abcdef"
		refreshSecret = "test-refresh-secret-0123456789abcdef"
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = auth.NewJWTTokenGenerator(accessSecret, refreshSecret, 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(mockRepo, tokenGen, bcrypt.MinCost)

		hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())

		mockRepo.passwordsByEmail["ravi@mail.com"] = string(hash)
		mockRepo.idsByEmail["ravi@mail.com"] = "42"
		mockRepo.usersByID[42] = &auth.User{
			ID:    42,
			Email: "ravi@mail.com",
			Name:  "Ravi",
			Role:  auth.RoleStaff,
		}
	})

	Describe("Authenticate", func() {
		It("should return tokens for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "ravi@mail.com",
				Password: "correct-password",
			})

			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())
		})

		It("should embed the user's role in the access token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "ravi@mail.com",
				Password: "correct-password",
			})
			Expect(err).ToNot(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal("42"))
			Expect(claims.Role).To(Equal(string(auth.RoleStaff)))
		})

		It("should reject a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "ravi@mail.com",
				Password: "wrong-password",
			})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject an unknown email", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "nobody@mail.com",
				Password: "correct-password",
			})
			Expect(err).To(Equal(auth.ErrInvalidCredentials))
		})

		It("should reject an inactive user", func() {
			delete(mockRepo.usersByID, 42)

			_, err := service.Authenticate(auth.LoginDTO{
				Email:    "ravi@mail.com",
				Password: "correct-password",
			})
			Expect(err).To(Equal(auth.ErrUserInactive))
		})

		It("should reject a missing email", func() {
			_, err := service.Authenticate(auth.LoginDTO{
				Password: "correct-password",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("should issue new tokens from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{
				Email:    "ravi@mail.com",
				Password: "correct-password",
			})
			Expect(err).ToNot(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(refreshed.AccessToken).ToNot(BeEmpty())
			Expect(refreshed.RefreshToken).ToNot(BeEmpty())
		})

		It("should reject garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("should reject an expired token", func() {
			shortGen := auth.NewJWTTokenGenerator(accessSecret, refreshSecret, time.Nanosecond, 7*24*time.Hour)
			token, err := shortGen.GenerateAccessToken("42", auth.RoleStaff)
			Expect(err).ToNot(HaveOccurred())

			time.Sleep(10 * time.Millisecond)

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(auth.ErrTokenExpired))
		})

		It("should reject a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("some-other-secret-0123456789abcdef", "another-secret-0123456789abcdef", 15*time.Minute, time.Hour)
			token, err := otherGen.GenerateAccessToken("42", auth.RoleStaff)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(Equal(auth.ErrInvalidToken))
		})
	})

	Describe("HashPassword", func() {
		It("should produce a hash that verifies", func() {
			hash, err := service.HashPassword("s3cret")
			Expect(err).ToNot(HaveOccurred())
			Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(Succeed())
		})
	})
})
