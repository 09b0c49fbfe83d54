package service_test

import (
	"context"
	"testing"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/cache"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/internal/storage"
	"github.com/Baaaki/campus-market/internal/testutil"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A lists a calculator, B favorites and unfavorites it, then asks about it.
func TestMarketplaceFlow(t *testing.T) {
	logger.Init(false)
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	db := testDB.DB
	ctx := context.Background()

	products := repository.NewProductRepository(db)
	favorites := repository.NewFavoriteRepository(db)
	recorder := activity.NewRecorder(repository.NewActivityRepository(db), nil)
	defer recorder.Wait()

	productService := service.NewProductService(products, favorites, testutil.NewMemoryStore(),
		cache.NoopFacetCache{}, recorder, testValidator, repository.DefaultPageSize)
	favoriteService := service.NewFavoriteService(favorites, products, repository.DefaultPageSize)
	conversationService := service.NewConversationService(
		repository.NewConversationRepository(db), repository.NewMessageRepository(db), products)

	userA := testutil.MustCreateUser(t, db, "usera", models.RoleUser)
	userB := testutil.MustCreateUser(t, db, "userb", models.RoleUser)

	product, err := productService.Create(ctx, actorOf(userA), service.ProductInput{
		Name:      "Calculator",
		Price:     50000,
		Category:  "Electrónica",
		Condition: "Nuevo",
		Faculty:   "Ingeniería",
	}, []storage.File{pngUpload(t, "calc.png")})
	require.NoError(t, err)
	assert.Equal(t, uint64(50000), product.Price)

	favorited, err := favoriteService.Toggle(ctx, userB.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, favorited)

	favorited, err = favoriteService.Toggle(ctx, userB.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, favorited)

	conv, created, err := conversationService.Start(ctx, actorOf(userB), product.ID)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, userB.ID, conv.User1ID)
	assert.Equal(t, userA.ID, conv.User2ID)
	assert.Equal(t, product.ID, conv.ProductID)

	sent, err := conversationService.SendMessage(ctx, actorOf(userB), conv.ID, "¿Disponible?")
	require.NoError(t, err)
	assert.Equal(t, userB.ID, sent.Message.UserID)

	inbox, err := conversationService.ListForUser(ctx, userA.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, conv.ID, inbox[0].ID)
	require.NotNil(t, inbox[0].LastMessage)
	assert.Equal(t, "¿Disponible?", inbox[0].LastMessage.Content)
	assert.Equal(t, userB.ID, inbox[0].OtherUser.ID)
}
