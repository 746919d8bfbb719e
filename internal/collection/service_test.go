package collection_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fieldops/advance-settlement/internal/auth"
	"github.com/fieldops/advance-settlement/internal/collection"
	"github.com/fieldops/advance-settlement/internal/core/events"
)

func TestCollectionService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "CollectionService Suite")
}

type mockCollectionRepository struct {
	collections map[int64]*collection.Collection
	nextID      int64
}

func newMockCollectionRepository() *mockCollectionRepository {
	return &mockCollectionRepository{
		collections: make(map[int64]*collection.Collection),
		nextID:      1,
	}
}

func (m *mockCollectionRepository) Create(col *collection.Collection) error {
	col.ID = m.nextID
	m.nextID++
	m.collections[col.ID] = col
	return nil
}

func (m *mockCollectionRepository) GetByID(id int64) (*collection.Collection, error) {
	col, exists := m.collections[id]
	if !exists {
		return nil, collection.ErrCollectionNotFound
	}
	return col, nil
}

func (m *mockCollectionRepository) GetByEnteredBy(userID int64, limit, offset int) ([]*collection.Collection, error) {
	var out []*collection.Collection
	for _, col := range m.collections {
		if col.EnteredBy == userID {
			out = append(out, col)
		}
	}
	return out, nil
}

func (m *mockCollectionRepository) GetAll(limit, offset int) ([]*collection.Collection, error) {
	var out []*collection.Collection
	for _, col := range m.collections {
		out = append(out, col)
	}
	return out, nil
}

func (m *mockCollectionRepository) GetPendingApproval(limit, offset int) ([]*collection.Collection, error) {
	var out []*collection.Collection
	for _, col := range m.collections {
		if !col.Approved {
			out = append(out, col)
		}
	}
	return out, nil
}

func (m *mockCollectionRepository) Update(col *collection.Collection) error {
	m.collections[col.ID] = col
	return nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) error {
	m.published = append(m.published, event)
	return nil
}

var _ = Describe("CollectionService", func() {
	var (
		service   *collection.Service
		mockRepo  *mockCollectionRepository
		publisher *mockPublisher
		ctx       context.Context

		admin *auth.User
		staff *auth.User
	)

	BeforeEach(func() {
		mockRepo = newMockCollectionRepository()
		publisher = &mockPublisher{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = collection.NewService(mockRepo, publisher, logger)
		ctx = context.Background()

		admin = &auth.User{ID: 1, Name: "Owner Admin", Role: auth.RoleAdmin}
		staff = &auth.User{ID: 42, Name: "Ravi", Role: auth.RoleStaff}
	})

	validDTO := func() collection.CreateCollectionDTO {
		return collection.CreateCollectionDTO{
			CustomerName:   "Sharma Traders",
			AmountPaise:    1250000,
			CollectionDate: time.Now().Add(-24 * time.Hour),
		}
	}

	Describe("CreateCollection", func() {
		It("should auto-approve admin entries", func() {
			col, err := service.CreateCollection(admin, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(col.Approved).To(BeTrue())
			Expect(col.ApprovedBy).ToNot(BeNil())
			Expect(*col.ApprovedBy).To(Equal(admin.ID))
			Expect(col.ApprovedDate).ToNot(BeNil())
			Expect(col.EnteredByRole).To(Equal(auth.RoleAdmin))
		})

		It("should leave staff entries unapproved", func() {
			col, err := service.CreateCollection(staff, validDTO())

			Expect(err).ToNot(HaveOccurred())
			Expect(col.Approved).To(BeFalse())
			Expect(col.ApprovedBy).To(BeNil())
			Expect(col.ApprovedDate).To(BeNil())
			Expect(col.EnteredByRole).To(Equal(auth.RoleStaff))
		})

		It("should reject a missing customer name", func() {
			dto := validDTO()
			dto.CustomerName = ""

			_, err := service.CreateCollection(staff, dto)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a non-positive amount", func() {
			dto := validDTO()
			dto.AmountPaise = 0

			_, err := service.CreateCollection(staff, dto)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Approve", func() {
		It("should stamp the approver on a staff entry", func() {
			col, err := service.CreateCollection(staff, validDTO())
			Expect(err).ToNot(HaveOccurred())

			approved, err := service.Approve(ctx, col.ID, admin.ID, admin.Name)

			Expect(err).ToNot(HaveOccurred())
			Expect(approved.Approved).To(BeTrue())
			Expect(*approved.ApprovedBy).To(Equal(admin.ID))
			Expect(*approved.ApprovedByName).To(Equal(admin.Name))
			Expect(approved.ApprovedDate).ToNot(BeNil())
		})

		It("should publish an approval event", func() {
			col, err := service.CreateCollection(staff, validDTO())
			Expect(err).ToNot(HaveOccurred())

			_, err = service.Approve(ctx, col.ID, admin.ID, admin.Name)

			Expect(err).ToNot(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeCollectionApproved))
		})

		It("should be a no-op on an already approved collection", func() {
			col, err := service.CreateCollection(admin, validDTO())
			Expect(err).ToNot(HaveOccurred())
			firstApprovedAt := *col.ApprovedDate

			again, err := service.Approve(ctx, col.ID, admin.ID, admin.Name)

			Expect(err).ToNot(HaveOccurred())
			Expect(*again.ApprovedDate).To(Equal(firstApprovedAt))
			Expect(publisher.published).To(BeEmpty())
		})

		It("should reject an unknown collection", func() {
			_, err := service.Approve(ctx, 9999, admin.ID, admin.Name)
			Expect(err).To(Equal(collection.ErrCollectionNotFound))
		})
	})

	Describe("GetPendingApproval", func() {
		It("should list only unapproved entries", func() {
			_, err := service.CreateCollection(admin, validDTO())
			Expect(err).ToNot(HaveOccurred())
			_, err = service.CreateCollection(staff, validDTO())
			Expect(err).ToNot(HaveOccurred())

			pending, err := service.GetPendingApproval(20, 0)

			Expect(err).ToNot(HaveOccurred())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].EnteredBy).To(Equal(staff.ID))
		})
	})
})
