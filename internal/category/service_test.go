package category_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/fynance/internal/category"
	"github.com/MrJamesThe3rd/fynance/internal/memory"
	"github.com/MrJamesThe3rd/fynance/internal/notify"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    category.CreateParams
		setupMock func(m *category.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:   "Success",
			params: category.CreateParams{FamilyID: familyID, Name: "Jajan", Type: category.TypeExpense},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().
					CreateCategory(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *category.Category) error {
						c.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name:    "BlankName",
			params:  category.CreateParams{FamilyID: familyID, Name: "  ", Type: category.TypeExpense},
			wantErr: category.ErrMalformed,
		},
		{
			name:    "UnknownType",
			params:  category.CreateParams{FamilyID: familyID, Name: "Jajan", Type: "savings"},
			wantErr: category.ErrMalformed,
		},
		{
			name:   "RepoError",
			params: category.CreateParams{FamilyID: familyID, Name: "Jajan", Type: category.TypeExpense},
			setupMock: func(m *category.MockRepository) {
				m.EXPECT().CreateCategory(gomock.Any(), gomock.Any()).Return(errors.New("db down"))
			},
			wantErr: errors.New("db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := category.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := &notify.Recorder{}
			got, err := category.NewService(repo, rec).Create(context.Background(), tt.params)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Empty(t, rec.Events)

				if errors.Is(tt.wantErr, category.ErrMalformed) {
					assert.ErrorIs(t, err, category.ErrMalformed)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Len(t, rec.Events, 1)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	c := newCategory("Jajan", category.TypeExpense, t1)

	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return([]*category.Category{&c}, nil).Times(2)
	repo.EXPECT().UpdateCategory(gomock.Any(), gomock.Any()).Return(nil)

	svc := category.NewService(repo, nil)

	got, err := svc.Update(context.Background(), familyID, c.ID, category.UpdateParams{Name: new("Kopi & Jajan"), Color: new("#92400e")})
	require.NoError(t, err)
	assert.Equal(t, "Kopi & Jajan", got.Name)
	assert.Equal(t, "#92400e", got.Color)

	_, err = svc.Update(context.Background(), familyID, uuid.New(), category.UpdateParams{})
	assert.ErrorIs(t, err, category.ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	c := newCategory("Jajan", category.TypeExpense, t1)

	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return([]*category.Category{&c}, nil)
	repo.EXPECT().DeleteCategory(gomock.Any(), familyID, c.ID).Return(nil)

	rec := &notify.Recorder{}
	require.NoError(t, category.NewService(repo, rec).Delete(context.Background(), familyID, c.ID))
	assert.Len(t, rec.Events, 1)
}

func TestService_Delete_MissingIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return(nil, nil)

	rec := &notify.Recorder{}
	require.NoError(t, category.NewService(repo, rec).Delete(context.Background(), familyID, uuid.New()))
	assert.Empty(t, rec.Events)
}

func TestService_Delete_ListFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := category.NewMockRepository(ctrl)

	repo.EXPECT().ListCategories(gomock.Any(), familyID).Return(nil, errors.New("connection refused"))

	err := category.NewService(repo, nil).Delete(context.Background(), familyID, uuid.New())
	assert.Error(t, err)
}

func TestService_Delete_OtherFamilyKeepsCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	rec := &notify.Recorder{}
	svc := category.NewService(store, rec)

	owned, err := svc.Create(ctx, category.CreateParams{FamilyID: "fam-owner", Name: "Makanan", Type: category.TypeExpense})
	require.NoError(t, err)

	rec.Events = nil

	require.NoError(t, svc.Delete(ctx, "fam-other", owned.ID))

	got, err := svc.List(ctx, "fam-owner")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, owned.ID, got[0].ID)
	assert.Empty(t, rec.Events, "nothing was deleted, so nobody is notified")
}

func TestKeyOf(t *testing.T) {
	assert.Equal(t, category.KeyOf("Makanan & Minuman", category.TypeExpense), category.KeyOf("  makanan & MINUMAN ", category.TypeExpense))
	assert.NotEqual(t, category.KeyOf("Investasi", category.TypeExpense), category.KeyOf("Investasi", category.TypeIncome))
}
