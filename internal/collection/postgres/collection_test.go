package postgres

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/collection"
)

func TestCollectionRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CollectionRepository Suite")
}

var _ = Describe("CollectionRepository", func() {
	var (
		db   *gorm.DB
		repo *CollectionRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&collection.Collection{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewCollectionRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	newCollection := func(enteredBy int64, role auth.Role) *collection.Collection {
		return &collection.Collection{
			CustomerName:   "Sharma Traders",
			AmountPaise:    1250000,
			CollectionDate: time.Date(2025, 4, 8, 0, 0, 0, 0, time.UTC),
			EnteredBy:      enteredBy,
			EnteredByRole:  role,
			Approved:       role == auth.RoleAdmin,
		}
	}

	Describe("Create and GetByID", func() {
		It("should round-trip an unapproved staff entry", func() {
			col := newCollection(42, auth.RoleStaff)

			Expect(repo.Create(col)).To(Succeed())
			Expect(col.ID).To(BeNumerically(">", 0))

			got, err := repo.GetByID(col.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CustomerName).To(Equal("Sharma Traders"))
			Expect(got.AmountPaise).To(Equal(int64(1250000)))
			Expect(got.CollectionDate.Format("2006-01-02")).To(Equal("2025-04-08"))
			Expect(got.EnteredBy).To(Equal(int64(42)))
			Expect(got.EnteredByRole).To(Equal(auth.RoleStaff))
			Expect(got.Approved).To(BeFalse())
			Expect(got.ApprovedBy).To(BeNil())
			Expect(got.ApprovedByName).To(BeNil())
			Expect(got.ApprovedDate).To(BeNil())
		})

		It("should round-trip the approval stamps", func() {
			col := newCollection(42, auth.RoleStaff)
			Expect(repo.Create(col)).To(Succeed())

			approverID := int64(1)
			approverName := "Owner"
			approvedAt := time.Date(2025, 4, 9, 10, 30, 0, 0, time.UTC)
			col.Approved = true
			col.ApprovedBy = &approverID
			col.ApprovedByName = &approverName
			col.ApprovedDate = &approvedAt
			Expect(repo.Update(col)).To(Succeed())

			got, err := repo.GetByID(col.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Approved).To(BeTrue())
			Expect(got.ApprovedBy).NotTo(BeNil())
			Expect(*got.ApprovedBy).To(Equal(int64(1)))
			Expect(got.ApprovedByName).NotTo(BeNil())
			Expect(*got.ApprovedByName).To(Equal("Owner"))
			Expect(got.ApprovedDate).NotTo(BeNil())
			Expect(*got.ApprovedDate).To(BeTemporally("==", approvedAt))
		})

		It("should return not found for an unknown id", func() {
			_, err := repo.GetByID(9999)
			Expect(err).To(Equal(collection.ErrCollectionNotFound))
		})
	})

	Describe("GetPendingApproval", func() {
		It("should list only unapproved entries, oldest first", func() {
			older := newCollection(42, auth.RoleStaff)
			older.CollectionDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
			newer := newCollection(43, auth.RoleStaff)
			approved := newCollection(1, auth.RoleAdmin)

			Expect(repo.Create(older)).To(Succeed())
			Expect(repo.Create(newer)).To(Succeed())
			Expect(repo.Create(approved)).To(Succeed())

			pending, err := repo.GetPendingApproval(20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(2))
			Expect(pending[0].ID).To(Equal(older.ID))
			Expect(pending[1].ID).To(Equal(newer.ID))
		})
	})

	Describe("GetByEnteredBy", func() {
		It("should scope to the entering user", func() {
			mine := newCollection(42, auth.RoleStaff)
			other := newCollection(43, auth.RoleStaff)
			Expect(repo.Create(mine)).To(Succeed())
			Expect(repo.Create(other)).To(Succeed())

			got, err := repo.GetByEnteredBy(42, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(HaveLen(1))
			Expect(got[0].ID).To(Equal(mine.ID))
		})
	})
})
