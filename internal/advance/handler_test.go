package advance_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/go-chi/chi"

	"github.com/fieldops/advance-settlement/internal/advance"
	"github.com/fieldops/advance-settlement/internal/auth"
)

// Minimal service stub for handler specs.
type stubAdvanceService struct {
	advances map[int64]*advance.Advance
}

func (s *stubAdvanceService) CreateAdvance(adminID int64, dto advance.CreateAdvanceDTO) (*advance.Advance, error) {
	return nil, nil
}

func (s *stubAdvanceService) GetAdvance(advanceID int64) (*advance.Advance, error) {
	adv, ok := s.advances[advanceID]
	if !ok {
		return nil, advance.ErrAdvanceNotFound
	}
	return adv, nil
}

func (s *stubAdvanceService) View(advanceID int64) (*advance.AdvanceView, error) {
	adv, err := s.GetAdvance(advanceID)
	if err != nil {
		return nil, err
	}
	return &advance.AdvanceView{Advance: adv}, nil
}

func (s *stubAdvanceService) CalculateBalance(advanceID int64) (advance.Balance, error) {
	return advance.Balance{BalancePaise: 49000, Status: advance.BalanceSurplus}, nil
}

func (s *stubAdvanceService) Settle(ctx context.Context, advanceID, adminID int64) (*advance.Advance, error) {
	return nil, nil
}

func (s *stubAdvanceService) Cancel(advanceID int64) error {
	return nil
}

func (s *stubAdvanceService) ListForStaff(staffID int64, limit, offset int) ([]*advance.AdvanceView, error) {
	return nil, nil
}

func (s *stubAdvanceService) ListAll(limit, offset int) ([]*advance.AdvanceView, error) {
	return nil, nil
}

var _ = Describe("AdvanceHandler", func() {
	var (
		stub    *stubAdvanceService
		handler *advance.Handler
		router  *chi.Mux
	)

	BeforeEach(func() {
		stub = &stubAdvanceService{advances: map[int64]*advance.Advance{
			10: {ID: 10, StaffID: 42, AmountPaise: 500000},
		}}
		handler = advance.NewHandler(stub)
		router = chi.NewRouter()
		router.Get("/advances/{id}/balance", handler.GetBalance)
	})

	getBalance := func(user *auth.User, advanceID int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/advances/%d/balance", advanceID), nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Describe("GetBalance", func() {
		It("should return the balance to the owning staff member", func() {
			rec := getBalance(&auth.User{ID: 42, Role: auth.RoleStaff}, 10)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("49000"))
		})

		It("should return the balance to an admin", func() {
			rec := getBalance(&auth.User{ID: 1, Role: auth.RoleAdmin}, 10)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("should deny another staff member's balance", func() {
			rec := getBalance(&auth.User{ID: 77, Role: auth.RoleStaff}, 10)
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should return not found for an unknown advance", func() {
			rec := getBalance(&auth.User{ID: 42, Role: auth.RoleStaff}, 999)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("should reject unauthenticated requests", func() {
			rec := getBalance(nil, 10)
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
