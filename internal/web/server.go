package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/middleware"
	"taskManager/internal/models/task"
	"taskManager/internal/pages"
	"taskManager/internal/session"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	tasks    pages.TaskAPI
	accounts pages.AccountAPI
	session  session.Holder
	tpl      *template.Template
	router   *chi.Mux
}

func NewServer(tasks pages.TaskAPI, accounts pages.AccountAPI, holder session.Holder) (*Server, error) {
	tpl, err := template.New("layout").Funcs(template.FuncMap{
		"statuses":   func() []task.Status { return task.Statuses },
		"priorities": func() []task.Priority { return task.Priorities },
		"badge":      badgeClass,
		"taskPath":   pages.TaskPath,
		"updatePath": pages.UpdatePath,
		"noTasks":    func() string { return pages.MsgNoTasks },
		"loggedIn": func() bool {
			_, ok := holder.Token()
			return ok
		},
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		tasks:    tasks,
		accounts: accounts,
		session:  holder,
		tpl:      tpl,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(csrfProtect)

	r.Get("/", s.Dashboard)
	r.Get("/tasks/{id}", s.TaskDetail)
	r.Post("/tasks/{id}/delete", s.DeleteTask)

	r.Get("/create-task", s.CreateTaskForm)
	r.Post("/create-task", s.CreateTask)
	r.Get("/update-task/{id}", s.UpdateTaskForm)
	r.Post("/update-task/{id}", s.UpdateTask)

	r.Get("/login", s.LoginForm)
	r.Post("/login", s.Login)
	r.Get("/register", s.RegisterForm)
	r.Post("/register", s.Register)
	r.Post("/logout", s.Logout)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// render пишет страницу в буфер, чтобы ошибка шаблона не оставила ответ наполовину записанным
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	if v, ok := data.(interface{ setBase(title, csrf string) }); ok {
		v.setBase(titles[name], csrfToken(r.Context()))
	}

	var buf bytes.Buffer
	if err := s.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.Error("HTTP: ошибка отрисовки шаблона", err,
			zap.String("template", name),
			zap.String("request_id", middleware.GetRequestID(r.Context())))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func badgeClass(value any) string {
	switch fmt.Sprint(value) {
	case string(task.StatusCompleted), string(task.PriorityLow):
		return "green"
	case string(task.StatusInProgress), string(task.PriorityMedium):
		return "yellow"
	default:
		return "red"
	}
}
