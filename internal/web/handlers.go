package web

import (
	"net/http"
	"net/url"

	"taskManager/internal/forms"
	"taskManager/internal/logger"
	"taskManager/internal/pages"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	noticeUpdated    = "updated"
	noticeRegistered = "registered"
	noticeLoggedOut  = "logged-out"
)

var notices = map[string]string{
	noticeUpdated:    pages.MsgUpdated,
	noticeRegistered: pages.MsgRegistered,
	noticeLoggedOut:  pages.MsgLoggedOut,
}

var titles = map[string]string{
	"dashboard.html": "Dashboard",
	"create.html":    "Create Task",
	"update.html":    "Update Task",
	"login.html":     "Login",
	"register.html":  "Register",
}

// base - общие поля шаблона header и скрытого поля csrf_token
type base struct {
	Title string
	CSRF  string
}

func (b *base) setBase(title, csrf string) {
	b.Title = title
	b.CSRF = csrf
}

type dashboardView struct {
	base
	Page   *pages.Dashboard
	Detail *pages.Detail
	Notice string
}

type createView struct {
	base
	Page *pages.CreateTaskPage
}

type updateView struct {
	base
	Page     *pages.UpdateTaskPage
	ShowForm bool
}

type loginView struct {
	base
	Page   *pages.LoginPage
	Notice string
}

type registerView struct {
	base
	Page *pages.RegisterPage
}

func withNotice(path, notice string) string {
	return path + "?" + url.Values{"notice": {notice}}.Encode()
}

func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	dash := pages.NewDashboard(s.tasks)
	_ = dash.Load(r.Context())

	s.render(w, r, http.StatusOK, "dashboard.html", &dashboardView{
		Page:   dash,
		Notice: notices[r.URL.Query().Get("notice")],
	})
}

func (s *Server) TaskDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dash := pages.NewDashboard(s.tasks)
	if err := dash.Load(r.Context()); err == nil && !dash.Open(id) {
		logger.Warn("HTTP: задача не найдена в списке", zap.String("task_id", id))
		http.NotFound(w, r)
		return
	}

	s.render(w, r, http.StatusOK, "dashboard.html", &dashboardView{
		Page:   dash,
		Detail: dash.Selected(),
	})
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dash := pages.NewDashboard(s.tasks)
	_ = dash.Load(r.Context())
	dash.Open(id)

	if err := dash.Delete(r.Context(), id); err != nil {
		s.render(w, r, http.StatusOK, "dashboard.html", &dashboardView{
			Page:   dash,
			Detail: dash.Selected(),
		})
		return
	}

	redirect(w, r, dash.Redirect())
}

func (s *Server) CreateTaskForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "create.html", &createView{Page: pages.NewCreateTaskPage(s.tasks)})
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	page := pages.NewCreateTaskPage(s.tasks)
	page.Form = taskFormFromRequest(r)

	if err := page.Submit(r.Context()); err != nil {
		s.render(w, r, statusFor(err), "create.html", &createView{Page: page})
		return
	}

	redirect(w, r, page.Redirect())
}

func (s *Server) UpdateTaskForm(w http.ResponseWriter, r *http.Request) {
	page := pages.NewUpdateTaskPage(s.tasks, chi.URLParam(r, "id"))
	_ = page.Load(r.Context())

	s.render(w, r, http.StatusOK, "update.html", &updateView{Page: page, ShowForm: page.Loaded()})
}

func (s *Server) UpdateTask(w http.ResponseWriter, r *http.Request) {
	page := pages.NewUpdateTaskPage(s.tasks, chi.URLParam(r, "id"))
	page.Form = taskFormFromRequest(r)

	if err := page.Submit(r.Context()); err != nil {
		s.render(w, r, statusFor(err), "update.html", &updateView{Page: page, ShowForm: true})
		return
	}

	redirect(w, r, withNotice(page.Redirect(), noticeUpdated))
}

func (s *Server) LoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &loginView{
		Page:   pages.NewLoginPage(s.accounts, s.session),
		Notice: notices[r.URL.Query().Get("notice")],
	})
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	page := pages.NewLoginPage(s.accounts, s.session)
	page.Form = forms.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}

	if err := page.Submit(r.Context()); err != nil {
		s.render(w, r, statusFor(err), "login.html", &loginView{Page: page})
		return
	}

	redirect(w, r, page.Redirect())
}

func (s *Server) RegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "register.html", &registerView{Page: pages.NewRegisterPage(s.accounts)})
}

func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	page := pages.NewRegisterPage(s.accounts)
	page.Form = forms.RegisterForm{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirmPassword"),
	}

	if err := page.Submit(r.Context()); err != nil {
		s.render(w, r, statusFor(err), "register.html", &registerView{Page: page})
		return
	}

	redirect(w, r, withNotice(page.Redirect(), noticeRegistered))
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if err := pages.Logout(s.session); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	redirect(w, r, withNotice("/login", noticeLoggedOut))
}

func taskFormFromRequest(r *http.Request) forms.TaskForm {
	return forms.TaskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Status:      r.PostFormValue("status"),
		Priority:    r.PostFormValue("priority"),
		DueDate:     r.PostFormValue("dueDate"),
	}
}

// statusFor: ошибки валидации - 422, остальные ошибки страницы показываются с 200
func statusFor(err error) int {
	if forms.IsValidationError(err) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}
