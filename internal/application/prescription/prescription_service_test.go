package prescription_test

import (
	"context"
	"testing"
	"time"

	appprescription "github.com/atelier/backend/internal/application/prescription"
	appproject "github.com/atelier/backend/internal/application/project"
	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/document"
	"github.com/atelier/backend/internal/domain/identity"
	"github.com/atelier/backend/internal/domain/library"
	"github.com/atelier/backend/internal/domain/prescription"
	"github.com/atelier/backend/internal/domain/project"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/config"
	"github.com/atelier/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type deletedKeys []string

func (d *deletedKeys) Delete(_ context.Context, key string) error {
	*d = append(*d, key)
	return nil
}

type env struct {
	db       *gorm.DB
	svc      *appprescription.PrescriptionService
	projects *persistence.GormProjectRepository
	deleted  *deletedKeys

	owner, client, stranger project.Viewer
	project                 *project.Project
	space                   *project.Space
	category                *catalog.PrescriptionCategory
}

func setup(t *testing.T) *env {
	t.Helper()
	database, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zap.NewNop(), "silent")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate())
	t.Cleanup(func() { _ = database.Close() })
	db := database.DB

	e := &env{db: db, projects: persistence.NewGormProjectRepository(db), deleted: &deletedKeys{}}
	clients := persistence.NewGormClientRepository(db)
	categories := persistence.NewGormPrescriptionCategoryRepository(db)
	e.svc = appprescription.NewPrescriptionService(appprescription.Deps{
		TxScope:       persistence.NewGormTransactionScope(db),
		Prescriptions: persistence.NewGormPrescriptionRepository(db),
		Approvals:     persistence.NewGormApprovalRepository(db),
		Comments:      persistence.NewGormCommentRepository(db),
		Spaces:        persistence.NewGormSpaceRepository(db),
		Resources:     persistence.NewGormResourceRepository(db),
		Categories:    categories,
		Access:        appproject.NewAccessChecker(e.projects, clients),
		Store:         e.deleted,
		Logger:        zap.NewNop(),
	})

	ownerUser := e.user(t, "ines@atelier.test", identity.RoleDesigner)
	clientUser := e.user(t, "hugo@client.test", identity.RoleClient)
	strangerUser := e.user(t, "zoe@client.test", identity.RoleClient)
	e.owner = project.Viewer{UserID: ownerUser.ID}
	e.client = project.Viewer{UserID: clientUser.ID}
	e.stranger = project.Viewer{UserID: strangerUser.ID}

	e.project, err = project.NewProject(ownerUser.ID, project.Details{
		Name:        "Maison de Vincennes",
		ClientName:  "Famille Roux",
		BudgetTotal: decimal.NewFromInt(40000),
	})
	require.NoError(t, err)
	require.NoError(t, e.projects.Create(t.Context(), e.project))
	require.NoError(t, clients.Add(t.Context(), &project.ProjectClient{ProjectID: e.project.ID, UserID: clientUser.ID, CreatedAt: time.Now()}))

	e.space, err = project.NewSpace(e.project.ID, "Salon", project.SpaceSalon, nil, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSpaceRepository(db).Create(t.Context(), e.space))

	e.category, err = catalog.NewPrescriptionCategory("Mobilier", "#8B5E3C")
	require.NoError(t, err)
	require.NoError(t, categories.Create(t.Context(), e.category))
	return e
}

func (e *env) user(t *testing.T, email string, role identity.Role) *identity.User {
	t.Helper()
	u := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              "User " + email,
		Role:              role,
		PasswordHash:      "x",
	}
	require.NoError(t, persistence.NewGormUserRepository(e.db).Create(t.Context(), u))
	return u
}

func (e *env) budgetSpent(t *testing.T) string {
	t.Helper()
	p, err := e.projects.FindByID(t.Context(), e.project.ID)
	require.NoError(t, err)
	return p.BudgetSpent.StringFixed(2)
}

func (e *env) create(t *testing.T, qty int, unit string) *appprescription.PrescriptionResponse {
	t.Helper()
	resp, err := e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{
		SpaceID:    &e.space.ID,
		CategoryID: &e.category.ID,
		Name:       "Fauteuil Womb",
		Quantity:   qty,
		UnitPrice:  dec(unit),
	})
	require.NoError(t, err)
	return resp
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestPrescriptionService_BudgetFollowsWrites(t *testing.T) {
	e := setup(t)

	created := e.create(t, 3, "10")
	assert.Equal(t, "30", created.TotalPrice.String())
	assert.Equal(t, prescription.StatusEnCours, created.Status)
	assert.Equal(t, "30.00", e.budgetSpent(t))

	updated, err := e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{UnitPrice: dec("15")})
	require.NoError(t, err)
	assert.Equal(t, "45", updated.TotalPrice.String())
	assert.Equal(t, "45.00", e.budgetSpent(t))

	qty := 4
	updated, err = e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "60", updated.TotalPrice.String())
	assert.Equal(t, "60.00", e.budgetSpent(t))

	second := e.create(t, 1, "99.99")
	assert.Equal(t, "159.99", e.budgetSpent(t))

	require.NoError(t, e.svc.Delete(t.Context(), e.owner, created.ID))
	assert.Equal(t, "99.99", e.budgetSpent(t))

	report, err := e.svc.RecalculateBudget(t.Context(), e.owner, e.project.ID)
	require.NoError(t, err)
	assert.False(t, report.Corrected)
	assert.True(t, report.Drift.IsZero())

	require.NoError(t, e.svc.Delete(t.Context(), e.owner, second.ID))
	assert.Equal(t, "0.00", e.budgetSpent(t))
}

func TestPrescriptionService_ExplicitTotal(t *testing.T) {
	e := setup(t)
	created := e.create(t, 2, "100")

	updated, err := e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{TotalPrice: dec("150")})
	require.NoError(t, err)
	assert.Nil(t, updated.UnitPrice)
	assert.Equal(t, "150", updated.TotalPrice.String())
	assert.Equal(t, "150.00", e.budgetSpent(t))

	t.Run("unit price wins over caller total", func(t *testing.T) {
		resp, err := e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{
			CategoryID: &e.category.ID,
			Name:       "Tapis",
			Quantity:   2,
			UnitPrice:  dec("50"),
			TotalPrice: dec("1"),
		})
		require.NoError(t, err)
		assert.Equal(t, "100", resp.TotalPrice.String())
		assert.Nil(t, resp.SpaceID)
	})

	t.Run("no price leaves the budget alone", func(t *testing.T) {
		before := e.budgetSpent(t)
		resp, err := e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{
			CategoryID: &e.category.ID,
			Name:       "Échantillon",
		})
		require.NoError(t, err)
		assert.Nil(t, resp.TotalPrice)
		assert.Equal(t, 1, resp.Quantity)
		assert.Equal(t, before, e.budgetSpent(t))
	})
}

func TestPrescriptionService_FailedUpdateLeavesBudget(t *testing.T) {
	e := setup(t)
	created := e.create(t, 3, "10")

	zero := 0
	_, err := e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{Quantity: &zero})
	assert.ErrorIs(t, err, shared.ErrValidation)

	livre := prescription.StatusLivre
	_, err = e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{UnitPrice: dec("20"), Status: &livre})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)

	got, err := e.svc.Get(t.Context(), e.owner, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "30", got.TotalPrice.String())
	assert.Equal(t, "30.00", e.budgetSpent(t))
}

func TestPrescriptionService_StatusWorkflow(t *testing.T) {
	e := setup(t)
	created := e.create(t, 1, "10")

	for _, next := range []prescription.Status{prescription.StatusValide, prescription.StatusCommande, prescription.StatusLivre} {
		status := next
		resp, err := e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{Status: &status})
		require.NoError(t, err, next)
		assert.Equal(t, next, resp.Status)
	}

	got, err := e.svc.Get(t.Context(), e.owner, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ValidatedAt)
	assert.NotNil(t, got.OrderedAt)
	assert.NotNil(t, got.DeliveredAt)

	annule := prescription.StatusAnnule
	_, err = e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{Status: &annule})
	assert.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestPrescriptionService_SpaceRules(t *testing.T) {
	e := setup(t)

	otherProject, err := project.NewProject(e.owner.UserID, project.Details{Name: "Studio", ClientName: "M. Petit"})
	require.NoError(t, err)
	require.NoError(t, e.projects.Create(t.Context(), otherProject))
	foreign, err := project.NewSpace(otherProject.ID, "Cuisine", project.SpaceCuisine, nil, "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSpaceRepository(e.db).Create(t.Context(), foreign))

	_, err = e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{
		SpaceID: &foreign.ID, CategoryID: &e.category.ID, Name: "Évier",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	created := e.create(t, 1, "10")
	moved, err := e.svc.Update(t.Context(), e.owner, created.ID, appprescription.UpdatePrescriptionInput{ClearSpace: true})
	require.NoError(t, err)
	assert.Nil(t, moved.SpaceID)

	unassigned, err := e.svc.List(t.Context(), e.owner, e.project.ID, prescription.Filter{Unassigned: true})
	require.NoError(t, err)
	assert.Len(t, unassigned, 1)

	inSalon, err := e.svc.List(t.Context(), e.owner, e.project.ID, prescription.Filter{SpaceID: &e.space.ID})
	require.NoError(t, err)
	assert.Empty(t, inSalon)

	missing := uuid.New()
	_, err = e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{CategoryID: &missing, Name: "X"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPrescriptionService_CloneFromResource(t *testing.T) {
	e := setup(t)
	r, err := library.NewResource(e.owner.UserID, e.category.ID, library.ResourceDetails{
		Name:       "Lampe Arco",
		Brand:      "Flos",
		Reference:  "ARCO-01",
		ProductURL: "https://flos.example/arco",
		Price:      dec("2900"),
		PricePro:   dec("2450.5"),
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormResourceRepository(e.db).Create(t.Context(), r))

	resp, err := e.svc.Create(t.Context(), e.owner, e.project.ID, appprescription.CreatePrescriptionInput{
		ResourceID: &r.ID,
		Quantity:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lampe Arco", resp.Name)
	assert.Equal(t, "Flos", resp.Brand)
	assert.Equal(t, e.category.ID, resp.CategoryID)
	assert.Equal(t, "2450.5", resp.UnitPrice.String())
	assert.Equal(t, "4901", resp.TotalPrice.String())
	require.NotNil(t, resp.ResourceID)
	assert.Equal(t, r.ID, *resp.ResourceID)
	assert.Equal(t, "4901.00", e.budgetSpent(t))
}

func TestPrescriptionService_Access(t *testing.T) {
	e := setup(t)
	created := e.create(t, 1, "10")

	_, err := e.svc.Get(t.Context(), e.stranger, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = e.svc.List(t.Context(), e.stranger, e.project.ID, prescription.Filter{})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	got, err := e.svc.Get(t.Context(), e.client, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = e.svc.Update(t.Context(), e.client, created.ID, appprescription.UpdatePrescriptionInput{UnitPrice: dec("1")})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	err = e.svc.Delete(t.Context(), e.client, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = e.svc.Create(t.Context(), e.client, e.project.ID, appprescription.CreatePrescriptionInput{CategoryID: &e.category.ID, Name: "X"})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = e.svc.Get(t.Context(), e.owner, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, "10.00", e.budgetSpent(t))
}

func TestPrescriptionService_Approvals(t *testing.T) {
	e := setup(t)
	created := e.create(t, 1, "10")

	first, err := e.svc.SetApproval(t.Context(), e.client, created.ID, prescription.ApprovalApproved, "")
	require.NoError(t, err)
	assert.Equal(t, prescription.ApprovalApproved, first.Status)

	second, err := e.svc.SetApproval(t.Context(), e.client, created.ID, prescription.ApprovalRejected, "Trop grand")
	require.NoError(t, err)
	assert.Equal(t, prescription.ApprovalRejected, second.Status)
	assert.Equal(t, "Trop grand", second.Comment)

	list, err := e.svc.ListApprovals(t.Context(), e.owner, created.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, prescription.ApprovalRejected, list[0].Status)
	assert.Equal(t, "User hugo@client.test", list[0].UserName)

	_, err = e.svc.SetApproval(t.Context(), e.owner, created.ID, prescription.ApprovalApproved, "")
	assert.ErrorIs(t, err, shared.ErrForbidden, "the designer is not a client")

	_, err = e.svc.SetApproval(t.Context(), e.stranger, created.ID, prescription.ApprovalApproved, "")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	_, err = e.svc.SetApproval(t.Context(), e.client, created.ID, "MAYBE", "")
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = e.svc.ListApprovals(t.Context(), e.stranger, created.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestPrescriptionService_Comments(t *testing.T) {
	e := setup(t)
	created := e.create(t, 1, "10")

	_, err := e.svc.AddComment(t.Context(), e.owner, created.ID, "Disponible en vert ?")
	require.NoError(t, err)
	_, err = e.svc.AddComment(t.Context(), e.client, created.ID, "Oui, parfait")
	require.NoError(t, err)

	_, err = e.svc.AddComment(t.Context(), e.client, created.ID, "   ")
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = e.svc.AddComment(t.Context(), e.stranger, created.ID, "Bonjour")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	list, err := e.svc.ListComments(t.Context(), e.client, created.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Disponible en vert ?", list[0].Content)
	assert.Equal(t, "User ines@atelier.test", list[0].AuthorName)
}

func TestPrescriptionService_DeleteCascades(t *testing.T) {
	e := setup(t)
	created := e.create(t, 3, "10")

	_, err := e.svc.SetApproval(t.Context(), e.client, created.ID, prescription.ApprovalApproved, "")
	require.NoError(t, err)
	_, err = e.svc.AddComment(t.Context(), e.client, created.ID, "ok")
	require.NoError(t, err)

	doc, err := document.NewDocument(document.Upload{
		OwnerType:   document.OwnerPrescription,
		OwnerID:     created.ID,
		ProjectID:   e.project.ID,
		FileName:    "fiche.pdf",
		ContentType: "application/pdf",
		Size:        2048,
		UploadedBy:  e.owner.UserID,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormDocumentRepository(e.db).Create(t.Context(), doc))

	require.NoError(t, e.svc.Delete(t.Context(), e.owner, created.ID))
	assert.Equal(t, []string{doc.StoragePath}, []string(*e.deleted))
	assert.Equal(t, "0.00", e.budgetSpent(t))

	for _, table := range []string{"prescriptions", "prescription_approvals", "prescription_comments", "documents"} {
		var n int64
		require.NoError(t, e.db.Table(table).Count(&n).Error)
		assert.Zero(t, n, table)
	}

	err = e.svc.Delete(t.Context(), e.owner, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPrescriptionService_RecalculateBudgetCorrectsDrift(t *testing.T) {
	e := setup(t)
	e.create(t, 2, "25")
	require.NoError(t, e.projects.AdjustBudgetSpent(t.Context(), e.project.ID, decimal.NewFromInt(7)))

	_, err := e.svc.RecalculateBudget(t.Context(), e.client, e.project.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	report, err := e.svc.RecalculateBudget(t.Context(), e.owner, e.project.ID)
	require.NoError(t, err)
	assert.True(t, report.Corrected)
	assert.Equal(t, "7.00", report.Drift.StringFixed(2))
	assert.Equal(t, "50.00", report.Recalculated.StringFixed(2))
	assert.Equal(t, "50.00", e.budgetSpent(t))
}

func TestPrescriptionService_ReconcileBudget(t *testing.T) {
	e := setup(t)
	e.create(t, 1, "80")

	report, err := e.svc.ReconcileBudget(t.Context(), e.project.ID)
	require.NoError(t, err)
	assert.False(t, report.Corrected)
	assert.True(t, report.Drift.IsZero())

	require.NoError(t, e.projects.SetBudgetSpent(t.Context(), e.project.ID, decimal.Zero))
	report, err = e.svc.ReconcileBudget(t.Context(), e.project.ID)
	require.NoError(t, err)
	assert.True(t, report.Corrected)
	assert.Equal(t, "-80.00", report.Drift.StringFixed(2))
	assert.Equal(t, "80.00", e.budgetSpent(t))

	_, err = e.svc.ReconcileBudget(t.Context(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
