package user_test

import (
	"testing"

	"github.com/wiratama/access-management/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.Repository for testing
type MockRepository struct {
	users map[int64]*user.User
}

func NewMockRepository() *MockRepository {
	return &MockRepository{users: make(map[int64]*user.User)}
}

func (m *MockRepository) GetByID(userID int64) (*user.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *MockRepository) List() ([]*user.User, error) {
	var result []*user.User
	for _, u := range m.users {
		result = append(result, u)
	}
	return result, nil
}

func (m *MockRepository) UpdateProfile(u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrNotFound
	}
	m.users[u.ID] = u
	return nil
}

func (m *MockRepository) SoftDelete(userID int64) error {
	delete(m.users, userID)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *MockRepository
		service *user.Service
	)

	str := func(s string) *string { return &s }

	BeforeEach(func() {
		repo = NewMockRepository()
		repo.users[1] = &user.User{
			ID:       1,
			Username: "alice",
			Email:    "alice@example.com",
			Nickname: "Alice",
		}
		service = user.NewService(repo)
	})

	Describe("GetByID", func() {
		It("should return the profile", func() {
			got, err := service.GetByID(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("alice"))
		})

		It("should report unknown users", func() {
			_, err := service.GetByID(99)
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("UpdateProfile", func() {
		It("should apply only the fields present in the request", func() {
			updated, err := service.UpdateProfile(1, user.UpdateProfileDTO{
				Nickname: str("Allie"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Nickname).To(Equal("Allie"))
			Expect(updated.Email).To(Equal("alice@example.com"))
		})

		It("should allow clearing a field with an explicit empty value", func() {
			updated, err := service.UpdateProfile(1, user.UpdateProfileDTO{
				Email: str(""),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Email).To(BeEmpty())
		})

		It("should reject a request that updates nothing", func() {
			_, err := service.UpdateProfile(1, user.UpdateProfileDTO{})
			Expect(err).To(BeAssignableToTypeOf(user.ValidationError{}))
		})

		It("should report unknown users", func() {
			_, err := service.UpdateProfile(99, user.UpdateProfileDTO{Nickname: str("x")})
			Expect(err).To(MatchError(user.ErrNotFound))
		})
	})

	Describe("Delete", func() {
		It("should remove the user from subsequent reads", func() {
			Expect(service.Delete(1)).To(Succeed())
			_, err := service.GetByID(1)
			Expect(err).To(MatchError(user.ErrNotFound))
		})

		It("should report unknown users", func() {
			Expect(service.Delete(99)).To(MatchError(user.ErrNotFound))
		})
	})
})
