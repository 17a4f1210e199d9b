package auth_test

import (
	"time"

	"github.com/wiratama/access-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testSecret = "unit-test-signing-secret-at-least-32b"

var _ = Describe("TokenCodec", func() {
	var codec *auth.TokenCodec

	BeforeEach(func() {
		codec = auth.NewTokenCodec(testSecret, time.Hour)
	})

	Describe("Issue and Verify", func() {
		It("should round-trip every claim unchanged", func() {
			token, err := codec.Issue("alice", 42, "ADMIN", "user:view,role:view")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).NotTo(BeEmpty())

			claims, err := codec.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Username()).To(Equal("alice"))
			Expect(claims.UserID).To(Equal(int64(42)))
			Expect(claims.Role).To(Equal("ADMIN"))
			Expect(claims.Permissions).To(Equal("user:view,role:view"))
			Expect(claims.PermissionCodes()).To(Equal([]string{"user:view", "role:view"}))
		})

		It("should set expiry to issuance plus the configured ttl", func() {
			token, err := codec.Issue("alice", 1, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			claims, err := codec.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.ExpiresAt.Time).To(BeTemporally("~",
				claims.IssuedAt.Time.Add(time.Hour), time.Second))
		})

		It("should keep an empty permission snapshot empty", func() {
			token, err := codec.Issue("bob", 7, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			claims, err := codec.Verify(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Permissions).To(BeEmpty())
			Expect(claims.PermissionCodes()).To(BeNil())
		})
	})

	Describe("Verify failures", func() {
		It("should report an expired token as expired, not invalid", func() {
			expired := auth.NewTokenCodec(testSecret, -time.Minute)
			token, err := expired.Issue("alice", 1, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			_, err = codec.Verify(token)
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("should reject a token signed with a different secret", func() {
			other := auth.NewTokenCodec("another-signing-secret-of-32-bytes!!", time.Hour)
			token, err := other.Issue("alice", 1, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			_, err = codec.Verify(token)
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject a tampered token", func() {
			token, err := codec.Issue("alice", 1, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			_, err = codec.Verify(token + "x")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})

		It("should reject garbage input", func() {
			for _, input := range []string{"", "not.a.jwt", "aaaa"} {
				_, err := codec.Verify(input)
				Expect(err).To(MatchError(auth.ErrInvalidToken))
			}
		})
	})

	Describe("Subject and UserID", func() {
		It("should read claims through full verification", func() {
			token, err := codec.Issue("carol", 9, "USER", "")
			Expect(err).NotTo(HaveOccurred())

			subject, err := codec.Subject(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(subject).To(Equal("carol"))

			userID, err := codec.UserID(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(userID).To(Equal(int64(9)))
		})

		It("should propagate verification errors", func() {
			_, err := codec.Subject("broken")
			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})
})
