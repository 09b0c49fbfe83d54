package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Baaaki/campus-market/internal/activity"
	"github.com/Baaaki/campus-market/internal/apperrors"
	"github.com/Baaaki/campus-market/internal/models"
	"github.com/Baaaki/campus-market/internal/repository"
	"github.com/Baaaki/campus-market/internal/service"
	"github.com/Baaaki/campus-market/internal/testutil"
	"github.com/Baaaki/campus-market/internal/utils"
	"github.com/Baaaki/campus-market/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "test-secret"

type AuthServiceIntegrationTestSuite struct {
	suite.Suite
	testDB  *testutil.TestDatabase
	service *service.AuthService
}

func (s *AuthServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false)
	s.testDB = testutil.SetupTestDatabase(s.T())
	s.service = service.NewAuthService(repository.NewUserRepository(s.testDB.DB), testValidator, testJWTSecret, time.Hour, "test")
}

func (s *AuthServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *AuthServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_Success() {
	user, token, err := s.service.Register(context.Background(), service.RegisterInput{
		Name:     " Ana María ",
		Email:    "Ana.Maria@CorreoUnivalle.edu.co",
		Password: "Secret123",
	})

	s.Require().NoError(err)
	s.NotZero(user.ID)
	s.Equal("Ana María", user.Name)
	s.Equal("ana.maria@correounivalle.edu.co", user.Email)
	s.Equal(models.RoleUser, user.Role)
	s.NotEqual("Secret123", user.PasswordHash)

	claims, err := utils.ValidateToken(token, testJWTSecret)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_Validation() {
	_, _, err := s.service.Register(context.Background(), service.RegisterInput{
		Name:     "Al",
		Email:    "al@gmail.com",
		Password: "short",
	})

	var verr *apperrors.ValidationError
	s.Require().True(errors.As(err, &verr))
	s.Equal("name must be at least 3 characters", verr.Fields["name"])
	s.Equal("email must be an institutional email address", verr.Fields["email"])
	s.Equal("password must be at least 8 characters", verr.Fields["password"])
}

func (s *AuthServiceIntegrationTestSuite) TestRegister_DuplicateEmail() {
	ctx := context.Background()
	input := service.RegisterInput{Name: "Ana", Email: "ana@correounivalle.edu.co", Password: "Secret123"}

	_, _, err := s.service.Register(ctx, input)
	s.Require().NoError(err)

	input.Email = "ANA@correounivalle.edu.co"
	_, _, err = s.service.Register(ctx, input)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *AuthServiceIntegrationTestSuite) TestLogin() {
	ctx := context.Background()
	testutil.MustCreateUser(s.T(), s.testDB.DB, "ana", models.RoleUser)

	user, token, err := s.service.Login(ctx, " ANA@correounivalle.edu.co", testutil.TestPassword)
	s.Require().NoError(err)
	s.Equal("ana", user.Name)
	s.NotEmpty(token)

	_, _, err = s.service.Login(ctx, "ana@correounivalle.edu.co", "wrong-password")
	s.ErrorIs(err, service.ErrInvalidCredentials)

	_, _, err = s.service.Login(ctx, "nobody@correounivalle.edu.co", testutil.TestPassword)
	s.ErrorIs(err, service.ErrInvalidCredentials)
}

func (s *AuthServiceIntegrationTestSuite) TestGetUserAndList() {
	ctx := context.Background()
	ana := testutil.MustCreateUser(s.T(), s.testDB.DB, "ana", models.RoleUser)
	testutil.MustCreateUser(s.T(), s.testDB.DB, "root", models.RoleAdmin)

	got, err := s.service.GetUser(ctx, ana.ID)
	s.Require().NoError(err)
	s.Equal(ana.Email, got.Email)

	_, err = s.service.GetUser(ctx, 9999)
	s.ErrorIs(err, apperrors.ErrNotFound)

	page, err := s.service.ListUsers(ctx, 1, 10)
	s.Require().NoError(err)
	s.Equal(int64(2), page.Pagination.Total)
	s.Equal("root", page.Data[0].Name, "newest first")
}

func TestAuthServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceIntegrationTestSuite))
}

func TestActivityService_List(t *testing.T) {
	logger.Init(false)
	testDB := testutil.SetupTestDatabase(t)
	defer testDB.Teardown(t)
	ctx := context.Background()

	admin := testutil.MustCreateUser(t, testDB.DB, "admin", models.RoleAdmin)
	recorder := activity.NewRecorder(repository.NewActivityRepository(testDB.DB), nil)
	for i := 1; i <= service.ActivityPageSize+2; i++ {
		recorder.Record(ctx, activity.Entry{CauserID: admin.ID, Action: models.ActionDeleted, SubjectType: "product", SubjectID: uint(i)})
		recorder.Wait()
	}

	svc := service.NewActivityService(repository.NewActivityRepository(testDB.DB))

	first, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first.Data, service.ActivityPageSize)
	assert.Equal(t, 2, first.Pagination.LastPage)
	assert.Equal(t, uint(service.ActivityPageSize+2), first.Data[0].SubjectID, "newest entry first")
	require.NotNil(t, first.Data[0].Causer)
	assert.Equal(t, "admin", first.Data[0].Causer.Name)

	second, err := svc.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, second.Data, 2)
}
