package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/transportpay"
)

func TestTransportPaymentRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "TransportPaymentRepository Suite")
}

var _ = Describe("TransportPaymentRepository", func() {
	var (
		db   *gorm.DB
		repo *TransportPaymentRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&transportpay.TransportPayment{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewTransportPaymentRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newPayment := func(enteredBy int64) *transportpay.TransportPayment {
		return &transportpay.TransportPayment{
			EnteredBy:     enteredBy,
			EnteredByRole: auth.RoleStaff,
			DriverName:    "Prakash",
			VehicleNumber: "MH12AB1234",
			AmountPaise:   80000,
			PayDate:       time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC),
			Notes:         "market run",
		}
	}

	Describe("Create and GetByID", func() {
		It("should round-trip a payment", func() {
			p := newPayment(42)

			Expect(repo.Create(p)).To(Succeed())
			Expect(p.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.DriverName).To(Equal("Prakash"))
			Expect(got.VehicleNumber).To(Equal("MH12AB1234"))
			Expect(got.AmountPaise).To(Equal(int64(80000)))
			Expect(got.PayDate.Format("2006-01-02")).To(Equal("2025-05-02"))
			Expect(got.Notes).To(Equal("market run"))
			Expect(got.EnteredByRole).To(Equal(auth.RoleStaff))
		})

		It("should return not found for an unknown id", func() {
			_, err := repo.GetByID(9999)
			Expect(err).To(Equal(transportpay.ErrPaymentNotFound))
		})
	})

	Describe("GetByEnteredBy", func() {
		It("should scope to the entering user, newest first", func() {
			older := newPayment(42)
			older.PayDate = time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)
			newer := newPayment(42)
			other := newPayment(43)

			Expect(repo.Create(older)).To(Succeed())
			Expect(repo.Create(newer)).To(Succeed())
			Expect(repo.Create(other)).To(Succeed())

			got, err := repo.GetByEnteredBy(42, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(2))
			Expect(got[0].ID).To(Equal(newer.ID))
			Expect(got[1].ID).To(Equal(older.ID))
		})
	})
})
