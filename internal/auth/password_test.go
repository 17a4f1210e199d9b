package auth_test

import (
	"github.com/wiratama/access-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("PasswordHasher", func() {
	var hasher *auth.PasswordHasher

	BeforeEach(func() {
		// MinCost keeps the suite fast; the cost factor does not change semantics
		hasher = auth.NewPasswordHasher(bcrypt.MinCost)
	})

	Describe("Hash", func() {
		It("should produce a hash that verifies against the original password", func() {
			hash, err := hasher.Hash("s3cret-pass")
			Expect(err).NotTo(HaveOccurred())
			Expect(hasher.Verify("s3cret-pass", hash)).To(BeTrue())
		})

		It("should salt independently so repeated hashes differ but both verify", func() {
			first, err := hasher.Hash("same-input")
			Expect(err).NotTo(HaveOccurred())
			second, err := hasher.Hash("same-input")
			Expect(err).NotTo(HaveOccurred())

			Expect(first).NotTo(Equal(second))
			Expect(hasher.Verify("same-input", first)).To(BeTrue())
			Expect(hasher.Verify("same-input", second)).To(BeTrue())
		})

		It("should handle empty and unicode passwords", func() {
			for _, password := range []string{"", "pässwörd-ünïcode", "密码测试"} {
				hash, err := hasher.Hash(password)
				Expect(err).NotTo(HaveOccurred())
				Expect(hasher.Verify(password, hash)).To(BeTrue())
			}
		})
	})

	Describe("Verify", func() {
		It("should reject the wrong password", func() {
			hash, err := hasher.Hash("correct")
			Expect(err).NotTo(HaveOccurred())
			Expect(hasher.Verify("incorrect", hash)).To(BeFalse())
		})

		It("should return false for malformed hashes instead of failing", func() {
			Expect(hasher.Verify("whatever", "not-a-bcrypt-hash")).To(BeFalse())
			Expect(hasher.Verify("whatever", "")).To(BeFalse())
		})
	})

	Describe("NewPasswordHasher", func() {
		It("should fall back to the bcrypt default when cost is zero", func() {
			h := auth.NewPasswordHasher(0)
			Expect(h.Cost).To(Equal(bcrypt.DefaultCost))
		})
	})

	Describe("VerifyPassword", func() {
		It("should match the hasher's behavior", func() {
			hash, err := hasher.Hash("hunter2")
			Expect(err).NotTo(HaveOccurred())
			Expect(auth.VerifyPassword(hash, "hunter2")).To(BeTrue())
			Expect(auth.VerifyPassword(hash, "hunter3")).To(BeFalse())
		})
	})
})
