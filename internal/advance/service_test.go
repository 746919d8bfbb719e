package advance_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fieldops/advance-settlement/internal/advance"
	"github.com/fieldops/advance-settlement/internal/core/events"
)

func TestAdvanceService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "AdvanceService Suite")
}

// Mock repository for testing
type mockAdvanceRepository struct {
	advances    map[int64]*advance.Advance
	createError error
	getError    error
	markError   error
	nextID      int64
}

func newMockAdvanceRepository() *mockAdvanceRepository {
	return &mockAdvanceRepository{
		advances: make(map[int64]*advance.Advance),
		nextID:   1,
	}
}

func (m *mockAdvanceRepository) Create(adv *advance.Advance) error {
	if m.createError != nil {
		return m.createError
	}
	adv.ID = m.nextID
	m.nextID++
	m.advances[adv.ID] = adv
	return nil
}

func (m *mockAdvanceRepository) GetByID(id int64) (*advance.Advance, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	adv, exists := m.advances[id]
	if !exists {
		return nil, errors.New("record not found")
	}
	return adv, nil
}

func (m *mockAdvanceRepository) GetByStaffID(staffID int64, limit, offset int) ([]*advance.Advance, error) {
	var out []*advance.Advance
	for _, adv := range m.advances {
		if adv.StaffID == staffID {
			out = append(out, adv)
		}
	}
	return out, nil
}

func (m *mockAdvanceRepository) GetAll(limit, offset int) ([]*advance.Advance, error) {
	var out []*advance.Advance
	for _, adv := range m.advances {
		out = append(out, adv)
	}
	return out, nil
}

func (m *mockAdvanceRepository) MarkSettled(id int64, settledAt time.Time) (bool, error) {
	if m.markError != nil {
		return false, m.markError
	}
	adv, exists := m.advances[id]
	if !exists {
		return false, errors.New("record not found")
	}
	if adv.SettlementStatus != advance.SettlementPending {
		return false, nil
	}
	adv.Status = advance.StatusSettled
	adv.SettlementStatus = advance.SettlementSettled
	adv.SettledAt = &settledAt
	return true, nil
}

func (m *mockAdvanceRepository) MarkCancelled(id int64) (bool, error) {
	if m.markError != nil {
		return false, m.markError
	}
	adv, exists := m.advances[id]
	if !exists {
		return false, errors.New("record not found")
	}
	if adv.Status != advance.StatusActive {
		return false, nil
	}
	adv.Status = advance.StatusCancelled
	return true, nil
}

// Mock expense reader keyed by advance id
type mockExpenseReader struct {
	expenses map[int64][]advance.LinkedExpense
	listErr  error
}

func newMockExpenseReader() *mockExpenseReader {
	return &mockExpenseReader{expenses: make(map[int64][]advance.LinkedExpense)}
}

func (m *mockExpenseReader) ListByAdvanceID(advanceID int64) ([]advance.LinkedExpense, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.expenses[advanceID], nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("AdvanceService", func() {
	var (
		service   *advance.Service
		mockRepo  *mockAdvanceRepository
		mockExp   *mockExpenseReader
		publisher *mockPublisher
		logger    *slog.Logger
		ctx       context.Context
	)

	BeforeEach(func() {
		mockRepo = newMockAdvanceRepository()
		mockExp = newMockExpenseReader()
		publisher = &mockPublisher{}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = advance.NewService(mockRepo, mockExp, publisher, logger)
		ctx = context.Background()
	})

	newAdvance := func(amountPaise int64) *advance.Advance {
		adv, err := service.CreateAdvance(1, advance.CreateAdvanceDTO{
			StaffID:     42,
			AmountPaise: amountPaise,
			AdvanceDate: time.Now().Add(-24 * time.Hour),
		})
		Expect(err).ToNot(HaveOccurred())
		return adv
	}

	Describe("CreateAdvance", func() {
		It("should create an active pending advance", func() {
			adv := newAdvance(500000)

			Expect(adv.ID).To(BeNumerically(">", 0))
			Expect(adv.StaffID).To(Equal(int64(42)))
			Expect(adv.AmountPaise).To(Equal(int64(500000)))
			Expect(adv.Status).To(Equal(advance.StatusActive))
			Expect(adv.SettlementStatus).To(Equal(advance.SettlementPending))
			Expect(adv.CreatedBy).To(Equal(int64(1)))
		})

		It("should reject a zero amount", func() {
			_, err := service.CreateAdvance(1, advance.CreateAdvanceDTO{
				StaffID:     42,
				AmountPaise: 0,
				AdvanceDate: time.Now(),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a negative amount", func() {
			_, err := service.CreateAdvance(1, advance.CreateAdvanceDTO{
				StaffID:     42,
				AmountPaise: -100,
				AdvanceDate: time.Now(),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject a future advance date", func() {
			_, err := service.CreateAdvance(1, advance.CreateAdvanceDTO{
				StaffID:     42,
				AmountPaise: 100000,
				AdvanceDate: time.Now().Add(48 * time.Hour),
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("CalculateBalance", func() {
		It("should derive spent and balance from linked expenses", func() {
			adv := newAdvance(500000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 285000, SettlementStatus: advance.SettlementPending},
				{ID: 2, TotalPaise: 166000, SettlementStatus: advance.SettlementPending},
			}

			balance, err := service.CalculateBalance(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(balance.SpentPaise).To(Equal(int64(451000)))
			Expect(balance.BalancePaise).To(Equal(int64(49000)))
			Expect(balance.Status).To(Equal(advance.BalanceSurplus))
		})

		It("should report deficit when spending exceeds the advance", func() {
			adv := newAdvance(350000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 400000, SettlementStatus: advance.SettlementPending},
			}

			balance, err := service.CalculateBalance(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(balance.BalancePaise).To(Equal(int64(-50000)))
			Expect(balance.Status).To(Equal(advance.BalanceDeficit))
		})

		It("should report balanced when spending matches exactly", func() {
			adv := newAdvance(350000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 350000, SettlementStatus: advance.SettlementPending},
			}

			balance, err := service.CalculateBalance(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(balance.BalancePaise).To(Equal(int64(0)))
			Expect(balance.Status).To(Equal(advance.BalanceBalanced))
		})

		It("should treat an advance with no expenses as full surplus", func() {
			adv := newAdvance(200000)

			balance, err := service.CalculateBalance(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(balance.SpentPaise).To(Equal(int64(0)))
			Expect(balance.BalancePaise).To(Equal(int64(200000)))
			Expect(balance.Status).To(Equal(advance.BalanceSurplus))
		})

		It("should yield a zero balance for an unknown advance", func() {
			balance, err := service.CalculateBalance(9999)

			Expect(err).ToNot(HaveOccurred())
			Expect(balance.SpentPaise).To(Equal(int64(0)))
			Expect(balance.BalancePaise).To(Equal(int64(0)))
			Expect(balance.Status).To(Equal(advance.BalanceBalanced))
		})
	})

	Describe("ExpenseStatus", func() {
		It("should report no expense for a fresh advance", func() {
			adv := newAdvance(100000)

			info, err := service.ExpenseStatus(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(info.HasExpense).To(BeFalse())
			Expect(info.Expense).To(BeNil())
			Expect(info.IsPending).To(BeFalse())
			Expect(info.IsSettled).To(BeFalse())
		})

		It("should report a pending linked expense", func() {
			adv := newAdvance(100000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 7, TotalPaise: 80000, SettlementStatus: advance.SettlementPending},
			}

			info, err := service.ExpenseStatus(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(info.HasExpense).To(BeTrue())
			Expect(info.Expense.ID).To(Equal(int64(7)))
			Expect(info.IsPending).To(BeTrue())
			Expect(info.IsSettled).To(BeFalse())
		})

		It("should report an empty status for an unknown advance", func() {
			info, err := service.ExpenseStatus(9999)

			Expect(err).ToNot(HaveOccurred())
			Expect(info.HasExpense).To(BeFalse())
		})
	})

	Describe("Settle", func() {
		It("should settle the advance and record the timestamp", func() {
			adv := newAdvance(350000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 185000, SettlementStatus: advance.SettlementPending},
			}

			settled, err := service.Settle(ctx, adv.ID, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(settled.Status).To(Equal(advance.StatusSettled))
			Expect(settled.SettlementStatus).To(Equal(advance.SettlementSettled))
			Expect(settled.SettledAt).ToNot(BeNil())
		})

		It("should publish a settled event with the derived balance", func() {
			adv := newAdvance(350000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 185000, SettlementStatus: advance.SettlementPending},
			}

			_, err := service.Settle(ctx, adv.ID, 1)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeAdvanceSettled))
		})

		It("should be idempotent for an already settled advance", func() {
			adv := newAdvance(350000)

			_, err := service.Settle(ctx, adv.ID, 1)
			Expect(err).ToNot(HaveOccurred())

			again, err := service.Settle(ctx, adv.ID, 1)
			Expect(err).ToNot(HaveOccurred())
			Expect(again.SettlementStatus).To(Equal(advance.SettlementSettled))
			Expect(publisher.published).To(HaveLen(1))
		})

		It("should reject settling an unknown advance", func() {
			_, err := service.Settle(ctx, 9999, 1)
			Expect(err).To(Equal(advance.ErrAdvanceNotFound))
		})

		It("should reject settling a cancelled advance", func() {
			adv := newAdvance(100000)
			err := service.Cancel(adv.ID)
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Settle(ctx, adv.ID, 1)
			Expect(err).To(Equal(advance.ErrAdvanceCancelled))
		})
	})

	Describe("Cancel", func() {
		It("should cancel an active advance with no expense", func() {
			adv := newAdvance(100000)

			err := service.Cancel(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(mockRepo.advances[adv.ID].Status).To(Equal(advance.StatusCancelled))
		})

		It("should refuse to cancel when an expense is linked", func() {
			adv := newAdvance(100000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 50000, SettlementStatus: advance.SettlementPending},
			}

			err := service.Cancel(adv.ID)
			Expect(err).To(Equal(advance.ErrAdvanceHasExpense))
		})

		It("should refuse to cancel a settled advance", func() {
			adv := newAdvance(100000)
			_, err := service.Settle(ctx, adv.ID, 1)
			Expect(err).ToNot(HaveOccurred())

			err = service.Cancel(adv.ID)
			Expect(err).To(Equal(advance.ErrAdvanceSettled))
		})
	})

	Describe("View", func() {
		It("should gate actions to add_expense for a fresh advance", func() {
			adv := newAdvance(100000)

			view, err := service.View(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(view.AllowedActions).To(Equal([]advance.Action{advance.ActionAddExpense}))
		})

		It("should allow modify and settle while the expense is pending", func() {
			adv := newAdvance(100000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 60000, SettlementStatus: advance.SettlementPending},
			}

			view, err := service.View(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(view.AllowedActions).To(Equal([]advance.Action{
				advance.ActionModifyExpense,
				advance.ActionSettle,
			}))
		})

		It("should allow nothing once settled", func() {
			adv := newAdvance(100000)
			mockExp.expenses[adv.ID] = []advance.LinkedExpense{
				{ID: 1, TotalPaise: 60000, SettlementStatus: advance.SettlementPending},
			}
			_, err := service.Settle(ctx, adv.ID, 1)
			Expect(err).ToNot(HaveOccurred())
			mockExp.expenses[adv.ID][0].SettlementStatus = advance.SettlementSettled

			view, err := service.View(adv.ID)

			Expect(err).ToNot(HaveOccurred())
			Expect(view.AllowedActions).To(BeEmpty())
		})
	})
})
