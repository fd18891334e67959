package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"taskManager/internal/models/user"
	"taskManager/internal/repository"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

// plainHasher - "хеш" с префиксом, чтобы не тратить время на bcrypt
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Verify(password, hash string) bool     { return hash == "hashed:"+password }

type stubTokens struct {
	err error
}

func (s stubTokens) UserID(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "token-for-")
	if !ok {
		return "", errors.New("invalid token")
	}
	return id, nil
}

func (s stubTokens) Generate(userID, email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "token-for-" + userID, nil
}

var _ service.UserRepository = (*MockUserRepository)(nil)

func TestUserService_Register(t *testing.T) {
	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		setupMock func(*MockUserRepository)
		wantCode  string
	}{
		{
			name:     "success",
			userName: "Ann",
			email:    " ann@example.com ",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
					return u.Name == "Ann" && u.Email == "ann@example.com" && u.PasswordHash == "hashed:longenough"
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*user.User).ID = "u1"
				}).Return(nil)
			},
		},
		{name: "error - empty name", userName: " ", email: "ann@example.com", password: "longenough", wantCode: service.CodeValidation},
		{name: "error - bad email", userName: "Ann", email: "not-an-email", password: "longenough", wantCode: service.CodeValidation},
		{name: "error - short password", userName: "Ann", email: "ann@example.com", password: "short", wantCode: service.CodeValidation},
		{
			name:     "error - duplicate email",
			userName: "Ann",
			email:    "ann@example.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("Create", mock.Anything, mock.Anything).Return(repository.ErrAlreadyExists)
			},
			wantCode: service.CodeAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}
			svc := service.NewUserService(mockRepo, plainHasher{}, stubTokens{})

			created, err := svc.Register(context.Background(), tt.userName, tt.email, tt.password)

			if tt.wantCode != "" {
				assertCode(t, err, tt.wantCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "u1", created.ID)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_Login(t *testing.T) {
	stored := &user.User{ID: "u1", Email: "ann@example.com", PasswordHash: "hashed:longenough"}

	tests := []struct {
		name      string
		email     string
		password  string
		tokens    stubTokens
		setupMock func(*MockUserRepository)
		wantToken string
		wantCode  string
		wantErr   bool
	}{
		{
			name:     "success",
			email:    "ann@example.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "ann@example.com").Return(stored, nil)
			},
			wantToken: "token-for-u1",
		},
		{
			name:     "error - wrong password",
			email:    "ann@example.com",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "ann@example.com").Return(stored, nil)
			},
			wantCode: service.CodeInvalidCredentials,
		},
		{
			name:     "error - unknown email",
			email:    "nobody@example.com",
			password: "longenough",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)
			},
			wantCode: service.CodeInvalidCredentials,
		},
		{
			name:     "error - missing fields",
			email:    "",
			password: "longenough",
			wantCode: service.CodeValidation,
		},
		{
			name:     "error - token issue",
			email:    "ann@example.com",
			password: "longenough",
			tokens:   stubTokens{err: errors.New("no key")},
			setupMock: func(m *MockUserRepository) {
				m.On("GetByEmail", mock.Anything, "ann@example.com").Return(stored, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			if tt.setupMock != nil {
				tt.setupMock(mockRepo)
			}
			svc := service.NewUserService(mockRepo, plainHasher{}, tt.tokens)

			token, err := svc.Login(context.Background(), tt.email, tt.password)

			switch {
			case tt.wantCode != "":
				assertCode(t, err, tt.wantCode)
			case tt.wantErr:
				assert.Error(t, err)
				assert.Empty(t, token)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
			}
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		setupMock func(*MockUserRepository)
		wantID    string
		wantErr   error
	}{
		{
			name:  "success",
			token: "token-for-u1",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, "u1").Return(&user.User{ID: "u1"}, nil)
			},
			wantID: "u1",
		},
		{
			name:      "error - invalid token",
			token:     "garbage",
			setupMock: func(m *MockUserRepository) {},
		},
		{
			name:  "error - user deleted",
			token: "token-for-gone",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, "gone").Return(nil, repository.ErrNotFound)
			},
			wantErr: service.ErrUnknownUser,
		},
		{
			name:  "error - storage failure",
			token: "token-for-u1",
			setupMock: func(m *MockUserRepository) {
				m.On("GetByID", mock.Anything, "u1").Return(nil, errors.New("db down"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)
			svc := service.NewUserService(mockRepo, plainHasher{}, stubTokens{})

			id, err := svc.Authenticate(context.Background(), tt.token)

			if tt.wantID != "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			} else {
				require.Error(t, err)
				assert.Empty(t, id)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
