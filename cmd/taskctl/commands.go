package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskManager/internal/forms"
	"taskManager/internal/pages"
	"taskManager/internal/session"
)

// cli выполняет подкоманды через те же страницы, что и веб-интерфейс
type cli struct {
	tasks    pages.TaskAPI
	accounts pages.AccountAPI
	session  session.Holder
	out      io.Writer
	errOut   io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		return c.cmdRegister(ctx, rest)
	case "login":
		return c.cmdLogin(ctx, rest)
	case "logout":
		return c.cmdLogout()
	case "tasks":
		return c.cmdTasks(ctx)
	case "task":
		return c.cmdTask(ctx, rest)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *cli) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	return fs
}

// pageError предпочитает сообщение страницы исходной ошибке
func pageError(message string, err error) error {
	if message != "" {
		return errors.New(message)
	}
	return err
}

// --- account ---

func (c *cli) cmdRegister(ctx context.Context, args []string) error {
	fs := c.flagSet("register")
	name := fs.String("name", "", "user name")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page := pages.NewRegisterPage(c.accounts)
	page.Form = forms.RegisterForm{
		Name:            *name,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
	}
	if err := page.Submit(ctx); err != nil {
		if !page.Errors.Empty() {
			return errors.New(strings.Join(page.Errors.Messages(), "\n"))
		}
		return pageError(page.ErrorMessage(), err)
	}

	fmt.Fprintln(c.out, page.Message())
	return nil
}

func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	fs := c.flagSet("login")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	page := pages.NewLoginPage(c.accounts, c.session)
	page.Form = forms.LoginForm{Email: *email, Password: *password}
	if err := page.Submit(ctx); err != nil {
		return pageError(page.ErrorMessage(), err)
	}

	fmt.Fprintln(c.out, "Logged in.")
	return nil
}

func (c *cli) cmdLogout() error {
	if err := pages.Logout(c.session); err != nil {
		return err
	}
	fmt.Fprintln(c.out, pages.MsgLoggedOut)
	return nil
}

// --- tasks ---

func (c *cli) cmdTasks(ctx context.Context) error {
	dash := pages.NewDashboard(c.tasks)
	if err := dash.Load(ctx); err != nil {
		return pageError(dash.ErrorMessage(), err)
	}

	if dash.Empty() {
		fmt.Fprintln(c.out, pages.MsgNoTasks)
		return nil
	}

	fmt.Fprintf(c.out, "%-36s %-30s %-12s %-8s %-10s\n", "ID", "TITLE", "STATUS", "PRIORITY", "DUE")
	fmt.Fprintln(c.out, strings.Repeat("-", 100))
	for _, t := range dash.Tasks() {
		fmt.Fprintf(c.out, "%-36s %-30s %-12s %-8s %-10s\n",
			t.ID, truncate(t.Title, 30), t.Status, t.Priority, t.DueLabel())
	}
	return nil
}

func (c *cli) cmdTask(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: taskctl task <show|create|update|delete> ...")
	}
	sub, rest := args[0], args[1:]

	if sub == "create" {
		return c.cmdTaskCreate(ctx, rest)
	}

	if len(rest) == 0 {
		return fmt.Errorf("usage: taskctl task %s <id>", sub)
	}
	id := rest[0]

	switch sub {
	case "show":
		return c.cmdTaskShow(ctx, id)
	case "update":
		return c.cmdTaskUpdate(ctx, id, rest[1:])
	case "delete":
		return c.cmdTaskDelete(ctx, id)
	default:
		return fmt.Errorf("unknown task subcommand: %s", sub)
	}
}

func (c *cli) cmdTaskShow(ctx context.Context, id string) error {
	dash := pages.NewDashboard(c.tasks)
	if err := dash.Load(ctx); err != nil {
		return pageError(dash.ErrorMessage(), err)
	}
	if !dash.Open(id) {
		return fmt.Errorf("task %s not found", id)
	}

	t := dash.Selected().Task
	fmt.Fprintf(c.out, "id:          %s\n", t.ID)
	fmt.Fprintf(c.out, "title:       %s\n", t.Title)
	fmt.Fprintf(c.out, "description: %s\n", t.Description)
	fmt.Fprintf(c.out, "status:      %s\n", t.Status)
	fmt.Fprintf(c.out, "priority:    %s\n", t.Priority)
	fmt.Fprintf(c.out, "due:         %s\n", t.DueLabel())
	return nil
}

// taskFlags привязывает поля формы задачи к флагам; пустые значения берутся из формы
func (c *cli) taskFlags(name string, form *forms.TaskForm) *flag.FlagSet {
	fs := c.flagSet(name)
	fs.StringVar(&form.Title, "title", form.Title, "title")
	fs.StringVar(&form.Description, "description", form.Description, "description")
	fs.StringVar(&form.DueDate, "due", form.DueDate, "due date YYYY-MM-DD")
	fs.StringVar(&form.Status, "status", form.Status, "pending, in-progress or completed")
	fs.StringVar(&form.Priority, "priority", form.Priority, "low, medium or high")
	return fs
}

func (c *cli) cmdTaskCreate(ctx context.Context, args []string) error {
	page := pages.NewCreateTaskPage(c.tasks)
	if err := c.taskFlags("task create", &page.Form).Parse(args); err != nil {
		return err
	}

	if err := page.Submit(ctx); err != nil {
		return pageError(page.ErrorMessage(), err)
	}

	fmt.Fprintln(c.out, "Task created.")
	return nil
}

func (c *cli) cmdTaskUpdate(ctx context.Context, id string, args []string) error {
	page := pages.NewUpdateTaskPage(c.tasks, id)
	if err := page.Load(ctx); err != nil {
		return pageError(page.ErrorMessage(), err)
	}

	if err := c.taskFlags("task update", &page.Form).Parse(args); err != nil {
		return err
	}

	if err := page.Submit(ctx); err != nil {
		return pageError(page.ErrorMessage(), err)
	}

	fmt.Fprintln(c.out, page.Message())
	return nil
}

func (c *cli) cmdTaskDelete(ctx context.Context, id string) error {
	dash := pages.NewDashboard(c.tasks)
	if err := dash.Delete(ctx, id); err != nil {
		return pageError(dash.ErrorMessage(), err)
	}

	fmt.Fprintln(c.out, "Task deleted.")
	return nil
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
