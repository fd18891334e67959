package pages_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"taskManager/internal/client"
	"taskManager/internal/forms"
	"taskManager/internal/models/task"
	"taskManager/internal/pages"
	"taskManager/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAPI - мок клиента удалённого API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListTasks(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *MockAPI) GetTask(ctx context.Context, id string) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockAPI) CreateTask(ctx context.Context, in task.Input) error {
	return m.Called(ctx, in).Error(0)
}

func (m *MockAPI) UpdateTask(ctx context.Context, id string, in task.Input) error {
	return m.Called(ctx, id, in).Error(0)
}

func (m *MockAPI) DeleteTask(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAPI) Register(ctx context.Context, req client.RegisterRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (string, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Error(1)
}

var (
	_ pages.TaskAPI    = (*MockAPI)(nil)
	_ pages.AccountAPI = (*MockAPI)(nil)
)

func sampleTasks() []task.Task {
	return []task.Task{
		{ID: "t1", Title: "One", Description: "d1", Status: task.StatusPending, Priority: task.PriorityLow, DueDate: "2030-01-01"},
		{ID: "t2", Title: "Two", Description: "d2", Status: task.StatusCompleted, Priority: task.PriorityHigh, DueDate: "2030-01-02"},
	}
}

// countingAPI - настоящий HTTP сервер, который только считает запросы
func countingAPI(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPages_NoTokenShortCircuits(t *testing.T) {
	srv, calls := countingAPI(t)
	api := client.New(srv.URL, session.NewMemoryStore(""))
	ctx := context.Background()

	dash := pages.NewDashboard(api)
	assert.ErrorIs(t, dash.Load(ctx), client.ErrUnauthenticated)
	assert.Equal(t, pages.MsgListLoginRequired, dash.ErrorMessage())
	assert.Equal(t, pages.StateFailed, dash.State())

	assert.ErrorIs(t, dash.Delete(ctx, "t1"), client.ErrUnauthenticated)
	assert.Equal(t, pages.MsgDeleteLoginRequired, dash.ErrorMessage())

	create := pages.NewCreateTaskPage(api)
	create.Form = forms.TaskForm{Title: "a", Description: "b", DueDate: "2030-01-01"}
	assert.ErrorIs(t, create.Submit(ctx), client.ErrUnauthenticated)
	assert.Equal(t, pages.MsgCreateLoginRequired, create.ErrorMessage())

	update := pages.NewUpdateTaskPage(api, "t1")
	assert.ErrorIs(t, update.Load(ctx), client.ErrUnauthenticated)
	assert.Equal(t, pages.MsgFetchLoginRequired, update.ErrorMessage())

	update.Form = forms.TaskForm{Title: "a", Description: "b", DueDate: "2030-01-01"}
	assert.ErrorIs(t, update.Submit(ctx), client.ErrUnauthenticated)
	assert.Equal(t, pages.MsgUpdateLoginRequired, update.ErrorMessage())

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestDashboard_Load(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockAPI)
		expectedMsg   string
		expectedCount int
		expectedState pages.State
	}{
		{
			name: "success",
			setupMock: func(m *MockAPI) {
				m.On("ListTasks", mock.Anything).Return(sampleTasks(), nil)
			},
			expectedCount: 2,
			expectedState: pages.StateSucceeded,
		},
		{
			name: "invalid response format",
			setupMock: func(m *MockAPI) {
				m.On("ListTasks", mock.Anything).Return(nil, client.ErrInvalidResponse)
			},
			expectedMsg:   pages.MsgListInvalidFormat,
			expectedState: pages.StateFailed,
		},
		{
			name: "server error",
			setupMock: func(m *MockAPI) {
				m.On("ListTasks", mock.Anything).Return(nil, &client.StatusError{Code: 500})
			},
			expectedMsg:   pages.MsgListFailed,
			expectedState: pages.StateFailed,
		},
		{
			name: "transport error",
			setupMock: func(m *MockAPI) {
				m.On("ListTasks", mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedMsg:   pages.MsgListFailed,
			expectedState: pages.StateFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			tt.setupMock(api)

			dash := pages.NewDashboard(api)
			_ = dash.Load(context.Background())

			assert.Equal(t, tt.expectedMsg, dash.ErrorMessage())
			assert.Len(t, dash.Tasks(), tt.expectedCount)
			assert.Equal(t, tt.expectedState, dash.State())
			assert.Equal(t, tt.expectedCount == 0, dash.Empty())
			api.AssertExpectations(t)
		})
	}
}

func TestDashboard_InvalidFormatOverRealClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":"nope"}`))
	}))
	t.Cleanup(srv.Close)

	dash := pages.NewDashboard(client.New(srv.URL, session.NewMemoryStore("tok")))
	err := dash.Load(context.Background())

	assert.ErrorIs(t, err, client.ErrInvalidResponse)
	assert.Equal(t, pages.MsgListInvalidFormat, dash.ErrorMessage())
	assert.Empty(t, dash.Tasks())
}

func TestDashboard_OpenAndDelete(t *testing.T) {
	api := new(MockAPI)
	api.On("ListTasks", mock.Anything).Return(sampleTasks(), nil)
	api.On("DeleteTask", mock.Anything, "t1").Return(nil)

	dash := pages.NewDashboard(api)
	require.NoError(t, dash.Load(context.Background()))

	assert.Nil(t, dash.Selected())
	require.True(t, dash.Open("t1"))
	detail := dash.Selected()
	require.NotNil(t, detail)
	assert.Equal(t, "One", detail.Task.Title)
	assert.Equal(t, "d1", detail.Task.Description)
	assert.Equal(t, "/update-task/t1", detail.UpdatePath())
	assert.Equal(t, "/tasks/t1/delete", detail.DeletePath())

	require.NoError(t, dash.Delete(context.Background(), "t1"))

	assert.Nil(t, dash.Selected())
	for _, tk := range dash.Tasks() {
		assert.NotEqual(t, "t1", tk.ID)
	}
	assert.Len(t, dash.Tasks(), 1)
	assert.Equal(t, pages.HomePath, dash.Redirect())
	api.AssertExpectations(t)
}

func TestDashboard_DeleteFailureKeepsList(t *testing.T) {
	api := new(MockAPI)
	api.On("ListTasks", mock.Anything).Return(sampleTasks(), nil)
	api.On("DeleteTask", mock.Anything, "t2").Return(&client.StatusError{Code: 404})

	dash := pages.NewDashboard(api)
	require.NoError(t, dash.Load(context.Background()))
	require.True(t, dash.Open("t2"))

	assert.Error(t, dash.Delete(context.Background(), "t2"))
	assert.Equal(t, pages.MsgDeleteFailed, dash.ErrorMessage())
	assert.Len(t, dash.Tasks(), 2)
	assert.NotNil(t, dash.Selected())

	dash.Close()
	assert.Nil(t, dash.Selected())
	assert.False(t, dash.Open("missing"))
}

func TestDashboard_RefusesOverlappingSubmissions(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := new(MockAPI)
	api.On("ListTasks", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(sampleTasks(), nil).Once()

	dash := pages.NewDashboard(api)

	done := make(chan error, 1)
	go func() { done <- dash.Load(context.Background()) }()

	<-started
	assert.True(t, dash.Submitting())
	assert.ErrorIs(t, dash.Delete(context.Background(), "t1"), pages.ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, dash.Submitting())
	api.AssertExpectations(t)
}

func TestCreateTaskPage_Submit(t *testing.T) {
	t.Run("rejects empty fields without calling the API", func(t *testing.T) {
		for _, f := range []forms.TaskForm{
			{Description: "b", DueDate: "2030-01-01"},
			{Title: "a", DueDate: "2030-01-01"},
			{Title: "a", Description: "b"},
		} {
			api := new(MockAPI)
			page := pages.NewCreateTaskPage(api)
			page.Form = f

			err := page.Submit(context.Background())

			assert.True(t, forms.IsValidationError(err))
			assert.Equal(t, forms.MsgFillAllFields, page.ErrorMessage())
			api.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
		}
	})

	t.Run("defaults and redirect", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateTask", mock.Anything, task.Input{
			Title: "a", Description: "b", DueDate: "2030-01-01",
			Status: task.StatusInProgress, Priority: task.PriorityMedium,
		}).Return(nil)

		page := pages.NewCreateTaskPage(api)
		page.Form.Title = "a"
		page.Form.Description = "b"
		page.Form.DueDate = "2030-01-01"

		require.NoError(t, page.Submit(context.Background()))
		assert.Equal(t, pages.StateSucceeded, page.State())
		assert.Equal(t, pages.HomePath, page.Redirect())
		assert.Empty(t, page.ErrorMessage())
		api.AssertExpectations(t)
	})

	t.Run("api failure", func(t *testing.T) {
		api := new(MockAPI)
		api.On("CreateTask", mock.Anything, mock.Anything).Return(&client.StatusError{Code: 400})

		page := pages.NewCreateTaskPage(api)
		page.Form = forms.TaskForm{Title: "a", Description: "b", DueDate: "2030-01-01"}

		assert.Error(t, page.Submit(context.Background()))
		assert.Equal(t, pages.MsgCreateFailed, page.ErrorMessage())
		assert.Empty(t, page.Redirect())
	})
}

func TestUpdateTaskPage(t *testing.T) {
	t.Run("load prefills and submit updates", func(t *testing.T) {
		existing := &task.Task{ID: "t1", Title: "One", Description: "d1", Status: task.StatusPending, Priority: task.PriorityHigh, DueDate: "2030-01-01T00:00:00.000Z"}

		api := new(MockAPI)
		api.On("GetTask", mock.Anything, "t1").Return(existing, nil)
		api.On("UpdateTask", mock.Anything, "t1", task.Input{
			Title: "One v2", Description: "d1", DueDate: "2030-01-01",
			Status: task.StatusCompleted, Priority: task.PriorityHigh,
		}).Return(nil)

		page := pages.NewUpdateTaskPage(api, "t1")
		require.NoError(t, page.Load(context.Background()))
		assert.True(t, page.Loaded())
		assert.Equal(t, "One", page.Form.Title)
		assert.Equal(t, "2030-01-01", page.Form.DueDate)

		page.Form.Title = "One v2"
		page.Form.Status = string(task.StatusCompleted)
		require.NoError(t, page.Submit(context.Background()))

		assert.Equal(t, pages.MsgUpdated, page.Message())
		assert.Equal(t, pages.HomePath, page.Redirect())
		api.AssertExpectations(t)
	})

	t.Run("fetch failure", func(t *testing.T) {
		api := new(MockAPI)
		api.On("GetTask", mock.Anything, "t9").Return(nil, &client.StatusError{Code: 404})

		page := pages.NewUpdateTaskPage(api, "t9")
		assert.Error(t, page.Load(context.Background()))
		assert.False(t, page.Loaded())
		assert.Equal(t, pages.MsgFetchFailed, page.ErrorMessage())
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		api := new(MockAPI)
		page := pages.NewUpdateTaskPage(api, "t1")
		page.Form = forms.TaskForm{Title: "a", Description: "b"}

		assert.Error(t, page.Submit(context.Background()))
		assert.Equal(t, forms.MsgFillAllFields, page.ErrorMessage())
		api.AssertNotCalled(t, "UpdateTask", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update failure", func(t *testing.T) {
		api := new(MockAPI)
		api.On("UpdateTask", mock.Anything, "t1", mock.Anything).Return(errors.New("timeout"))

		page := pages.NewUpdateTaskPage(api, "t1")
		page.Form = forms.TaskForm{Title: "a", Description: "b", DueDate: "2030-01-01"}

		assert.Error(t, page.Submit(context.Background()))
		assert.Equal(t, pages.MsgUpdateFailed, page.ErrorMessage())
	})
}

func TestUpdateTaskPage_LoadAndSubmitConcurrently(t *testing.T) {
	existing := &task.Task{ID: "t1", Title: "One", Description: "d1", Status: task.StatusPending, Priority: task.PriorityHigh, DueDate: "2030-01-01"}

	api := new(MockAPI)
	api.On("GetTask", mock.Anything, "t1").Return(existing, nil)
	api.On("UpdateTask", mock.Anything, "t1", mock.Anything).Return(nil)

	page := pages.NewUpdateTaskPage(api, "t1")
	require.NoError(t, page.Load(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			err := page.Load(context.Background())
			if err != nil {
				assert.ErrorIs(t, err, pages.ErrBusy)
			}
		}()
		go func() {
			defer wg.Done()
			err := page.Submit(context.Background())
			if err != nil {
				assert.ErrorIs(t, err, pages.ErrBusy)
			}
		}()
	}
	wg.Wait()

	assert.False(t, page.Submitting())
	assert.True(t, page.Loaded())
}

func TestLoginPage_PersistsTokenUsedByLaterCalls(t *testing.T) {
	var seenAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/users/login":
			_, _ = w.Write([]byte(`{"token":"tok.en+/=value"}`))
		case "/api/tasks":
			seenAuth.Store(r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	holder := session.NewMemoryStore("")
	api := client.New(srv.URL, holder)

	login := pages.NewLoginPage(api, holder)
	login.Form = forms.LoginForm{Email: " ann@example.com ", Password: "password1"}
	require.NoError(t, login.Submit(context.Background()))
	assert.Equal(t, pages.HomePath, login.Redirect())

	token, ok := holder.Token()
	require.True(t, ok)
	assert.Equal(t, "tok.en+/=value", token)

	require.NoError(t, pages.NewDashboard(api).Load(context.Background()))
	assert.Equal(t, "Bearer tok.en+/=value", seenAuth.Load())
}

func TestLoginPage_Failures(t *testing.T) {
	t.Run("required fields", func(t *testing.T) {
		api := new(MockAPI)
		holder := session.NewMemoryStore("")
		page := pages.NewLoginPage(api, holder)
		page.Form = forms.LoginForm{Email: "ann@example.com"}

		assert.Error(t, page.Submit(context.Background()))
		assert.Equal(t, forms.MsgLoginRequired, page.ErrorMessage())
		api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("bad credentials keep the old session untouched", func(t *testing.T) {
		api := new(MockAPI)
		api.On("Login", mock.Anything, "ann@example.com", "wrong").Return("", &client.StatusError{Code: 401})
		holder := session.NewMemoryStore("")

		page := pages.NewLoginPage(api, holder)
		page.Form = forms.LoginForm{Email: "ann@example.com", Password: "wrong"}

		assert.Error(t, page.Submit(context.Background()))
		assert.Equal(t, pages.MsgLoginFailed, page.ErrorMessage())
		_, ok := holder.Token()
		assert.False(t, ok)
	})
}

func TestRegisterPage_Submit(t *testing.T) {
	valid := forms.RegisterForm{Name: "Ann", Email: "ann@example.com", Password: "password1", ConfirmPassword: "password1"}

	tests := []struct {
		name      string
		mutate    func(*forms.RegisterForm)
		check     func(*testing.T, forms.FieldErrors)
		expectAPI bool
	}{
		{
			name:   "invalid email",
			mutate: func(f *forms.RegisterForm) { f.Email = "not-an-email" },
			check: func(t *testing.T, e forms.FieldErrors) {
				assert.Equal(t, forms.MsgEmailInvalid, e.Email)
			},
		},
		{
			name: "short password",
			mutate: func(f *forms.RegisterForm) {
				f.Password = "short"
				f.ConfirmPassword = "short"
			},
			check: func(t *testing.T, e forms.FieldErrors) {
				assert.Equal(t, forms.MsgPasswordShort, e.Password)
			},
		},
		{
			name:   "mismatch",
			mutate: func(f *forms.RegisterForm) { f.ConfirmPassword = "different1" },
			check: func(t *testing.T, e forms.FieldErrors) {
				assert.Equal(t, forms.MsgPasswordMismatch, e.ConfirmPassword)
			},
		},
		{
			name:   "all valid",
			mutate: func(*forms.RegisterForm) {},
			check: func(t *testing.T, e forms.FieldErrors) {
				assert.True(t, e.Empty())
			},
			expectAPI: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			if tt.expectAPI {
				api.On("Register", mock.Anything, client.RegisterRequest{
					Name: "Ann", Email: "ann@example.com", Password: "password1",
				}).Return(nil).Once()
			}

			page := pages.NewRegisterPage(api)
			page.Form = valid
			tt.mutate(&page.Form)

			err := page.Submit(context.Background())
			tt.check(t, page.Errors)

			if tt.expectAPI {
				require.NoError(t, err)
				assert.Equal(t, pages.MsgRegistered, page.Message())
				assert.Equal(t, pages.HomePath, page.Redirect())
				api.AssertNumberOfCalls(t, "Register", 1)
			} else {
				assert.True(t, forms.IsValidationError(err))
				api.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRegisterPage_APIFailure(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, mock.Anything).Return(&client.StatusError{Code: 409})

	page := pages.NewRegisterPage(api)
	page.Form = forms.RegisterForm{Name: "Ann", Email: "ann@example.com", Password: "password1", ConfirmPassword: "password1"}

	assert.Error(t, page.Submit(context.Background()))
	assert.Equal(t, pages.MsgRegisterFailed, page.ErrorMessage())
	assert.Equal(t, pages.StateFailed, page.State())
}

func TestLogout(t *testing.T) {
	holder := session.NewMemoryStore("tok")
	require.NoError(t, pages.Logout(holder))
	_, ok := holder.Token()
	assert.False(t, ok)
}
