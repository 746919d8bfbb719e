package transportpay_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/transportpay"
)

func TestTransportPayService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TransportPayService Suite")
}

type mockPaymentRepository struct {
	payments map[int64]*transportpay.TransportPayment
	nextID   int64
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{
		payments: make(map[int64]*transportpay.TransportPayment),
		nextID:   1,
	}
}

func (m *mockPaymentRepository) Create(p *transportpay.TransportPayment) error {
	p.ID = m.nextID
	m.nextID++
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepository) GetByID(id int64) (*transportpay.TransportPayment, error) {
	p, exists := m.payments[id]
	if !exists {
		return nil, transportpay.ErrPaymentNotFound
	}
	return p, nil
}

func (m *mockPaymentRepository) GetByEnteredBy(userID int64, limit, offset int) ([]*transportpay.TransportPayment, error) {
	var out []*transportpay.TransportPayment
	for _, p := range m.payments {
		if p.EnteredBy == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepository) GetAll(limit, offset int) ([]*transportpay.TransportPayment, error) {
	var out []*transportpay.TransportPayment
	for _, p := range m.payments {
		out = append(out, p)
	}
	return out, nil
}

var _ = Describe("TransportPayService", func() {
	var (
		service  *transportpay.Service
		mockRepo *mockPaymentRepository
		staff    *auth.User
	)

	BeforeEach(func() {
		mockRepo = newMockPaymentRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = transportpay.NewService(mockRepo, logger)
		staff = &auth.User{ID: 42, Name: "Ravi", Role: auth.RoleStaff}
	})

	validDTO := func() transportpay.CreateTransportPaymentDTO {
		return transportpay.CreateTransportPaymentDTO{
			DriverName:    "Kumar",
			VehicleNumber: "MH 12 AB 3456",
			AmountPaise:   80000,
			PayDate:       time.Now().Add(-2 * time.Hour),
		}
	}

	Describe("CreatePayment", func() {
		It("should record the payment with the entering user", func() {
			p, err := service.CreatePayment(staff, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(p.ID).To(BeNumerically(">", 0))
			Expect(p.EnteredBy).To(Equal(staff.ID))
			Expect(p.EnteredByRole).To(Equal(auth.RoleStaff))
			Expect(p.AmountPaise).To(Equal(int64(80000)))
		})

		It("should reject a missing driver name", func() {
			dto := validDTO()
			dto.DriverName = ""

			_, err := service.CreatePayment(staff, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a non-positive amount", func() {
			dto := validDTO()
			dto.AmountPaise = -100

			_, err := service.CreatePayment(staff, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a future pay date", func() {
			dto := validDTO()
			dto.PayDate = time.Now().Add(48 * time.Hour)

			_, err := service.CreatePayment(staff, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetPayment", func() {
		It("should report not found for unknown ids", func() {
			_, err := service.GetPayment(9999)
			Expect(err).To(Equal(transportpay.ErrPaymentNotFound))
		})
	})
})
