package rbac_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/wiratama/access-management/internal"
	"github.com/wiratama/access-management/internal/auth"
	"github.com/wiratama/access-management/internal/rbac"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StubVerifier implements rbac.TokenVerifier for testing
type StubVerifier struct {
	claims map[string]*auth.Claims
	err    error
}

func (v *StubVerifier) Verify(tokenString string) (*auth.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	claims, ok := v.claims[tokenString]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// StubResolver implements rbac.GrantResolver for testing
type StubResolver struct {
	roles       map[int64][]string
	permissions map[int64][]string
	err         error
	calls       int
}

func (r *StubResolver) GrantsOf(userID int64) ([]string, []string, error) {
	r.calls++
	if r.err != nil {
		return nil, nil, r.err
	}
	return r.roles[userID], r.permissions[userID], nil
}

// RecordedDenial captures what the gate reported to the audit trail
type RecordedDenial struct {
	Method  string
	URI     string
	UserID  int64
	Code    string
	Message string
}

type StubRecorder struct {
	denials []RecordedDenial
}

func (s *StubRecorder) RecordDenial(_ context.Context, method, uri string, userID int64, code, message string) {
	s.denials = append(s.denials, RecordedDenial{method, uri, userID, code, message})
}

var _ = Describe("Gate", func() {
	var (
		verifier *StubVerifier
		resolver *StubResolver
		recorder *StubRecorder
		gate     *rbac.Gate
	)

	aliceClaims := func() *auth.Claims {
		c := &auth.Claims{UserID: 42, Role: "USER"}
		c.Subject = "alice"
		return c
	}

	BeforeEach(func() {
		verifier = &StubVerifier{claims: map[string]*auth.Claims{"alice-token": aliceClaims()}}
		resolver = &StubResolver{
			roles:       map[int64][]string{42: {"user"}},
			permissions: map[int64][]string{42: {"user:view"}},
		}
		recorder = &StubRecorder{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		gate = rbac.NewGate(verifier, resolver, recorder, lg)
	})

	serve := func(req rbac.Requirement, request *http.Request) (*httptest.ResponseRecorder, bool, *internal.Identity) {
		var (
			reached  bool
			identity *internal.Identity
		)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reached = true
			identity, _ = internal.IdentityFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		w := httptest.NewRecorder()
		gate.Guard(req)(next).ServeHTTP(w, request)
		return w, reached, identity
	}

	decodeErrorCode := func(w *httptest.ResponseRecorder) string {
		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body.Error.Code
	}

	authorizedRequest := func() *http.Request {
		request := httptest.NewRequest(http.MethodGet, "/users", nil)
		request.Header.Set("Authorization", "Bearer alice-token")
		return request
	}

	Context("without a token", func() {
		It("should reject with 401 and record the denial", func() {
			w, reached, _ := serve(rbac.Requirement{}, httptest.NewRequest(http.MethodGet, "/users", nil))
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decodeErrorCode(w)).To(Equal("TOKEN_MISSING"))
			Expect(recorder.denials).To(HaveLen(1))
			Expect(recorder.denials[0].UserID).To(BeZero())
		})

		It("should treat a malformed Authorization header as missing", func() {
			request := httptest.NewRequest(http.MethodGet, "/users", nil)
			request.Header.Set("Authorization", "Token alice-token")
			w, reached, _ := serve(rbac.Requirement{}, request)
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should accept a case-insensitive Bearer prefix", func() {
			request := httptest.NewRequest(http.MethodGet, "/users", nil)
			request.Header.Set("Authorization", "bearer alice-token")
			w, reached, _ := serve(rbac.Requirement{}, request)
			Expect(reached).To(BeTrue())
			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Context("with a bad token", func() {
		It("should map expiry to 401 TOKEN_EXPIRED", func() {
			verifier.err = auth.ErrTokenExpired
			w, reached, _ := serve(rbac.Requirement{}, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decodeErrorCode(w)).To(Equal("TOKEN_EXPIRED"))
		})

		It("should map every other verification failure to 401 TOKEN_INVALID", func() {
			verifier.err = auth.ErrInvalidToken
			w, reached, _ := serve(rbac.Requirement{}, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decodeErrorCode(w)).To(Equal("TOKEN_INVALID"))
		})
	})

	Context("with an empty requirement", func() {
		It("should skip grant resolution and attach the caller identity", func() {
			_, reached, identity := serve(rbac.Requirement{}, authorizedRequest())
			Expect(reached).To(BeTrue())
			Expect(resolver.calls).To(BeZero())
			Expect(identity).NotTo(BeNil())
			Expect(identity.UserID).To(Equal(int64(42)))
			Expect(identity.Username).To(Equal("alice"))
		})
	})

	Context("with a satisfied requirement", func() {
		It("should resolve fresh grants and pass through", func() {
			req := rbac.Requirement{Permissions: []string{"user:view"}, Mode: rbac.ModeAny}
			w, reached, identity := serve(req, authorizedRequest())
			Expect(reached).To(BeTrue())
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(resolver.calls).To(Equal(1))
			Expect(identity.UserID).To(Equal(int64(42)))
			Expect(recorder.denials).To(BeEmpty())
		})

		It("should ignore the token's embedded permission snapshot", func() {
			// claims carry a generous snapshot, storage says otherwise
			claims := aliceClaims()
			claims.Permissions = "user:view,user:delete,role:view"
			verifier.claims["alice-token"] = claims
			resolver.permissions[42] = nil

			req := rbac.Requirement{Permissions: []string{"user:delete"}, Mode: rbac.ModeAny}
			w, reached, _ := serve(req, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Context("with an unmet requirement", func() {
		It("should reject missing permissions with 403 and record the denial", func() {
			req := rbac.Requirement{Permissions: []string{"user:delete"}, Mode: rbac.ModeAny}
			w, reached, _ := serve(req, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeErrorCode(w)).To(Equal("PERMISSION_REQUIREMENT_UNMET"))
			Expect(recorder.denials).To(HaveLen(1))
			Expect(recorder.denials[0].UserID).To(Equal(int64(42)))
			Expect(recorder.denials[0].URI).To(Equal("/users"))
		})

		It("should reject missing roles with 403", func() {
			req := rbac.Requirement{Roles: []string{"admin"}}
			w, reached, _ := serve(req, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decodeErrorCode(w)).To(Equal("ROLE_REQUIREMENT_UNMET"))
		})
	})

	Context("when grant resolution fails", func() {
		It("should fail closed with 500, never 403", func() {
			resolver.err = errors.New("database down")
			req := rbac.Requirement{Permissions: []string{"user:view"}, Mode: rbac.ModeAny}
			w, reached, _ := serve(req, authorizedRequest())
			Expect(reached).To(BeFalse())
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeErrorCode(w)).To(Equal("GRANT_LOOKUP_FAILED"))
			Expect(recorder.denials).To(HaveLen(1))
		})
	})
})
