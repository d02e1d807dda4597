package web

import (
	"context"
	"crypto/rand"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/amonks/pv/account"
	"github.com/amonks/pv/board"
	"github.com/amonks/pv/feed"
	"github.com/amonks/pv/internal/kv"
	"github.com/amonks/pv/task"
)

// Options configures the web handler.
type Options struct {
	// Store holds users, the session, local lists, and the feed cache.
	Store kv.Store
	// Fetcher loads the external feed. Nil disables fetching.
	Fetcher feed.Fetcher
	Logger  *slog.Logger
	// Spawn runs the per-view feed refresh. Defaults to a new goroutine.
	Spawn func(func())
	Now   func() time.Time
}

// Handler serves the login, registration, and task views.
type Handler struct {
	store     kv.Store
	users     *account.Users
	sessions  *account.Sessions
	cache     *feed.Cache
	fetcher   feed.Fetcher
	logger    *slog.Logger
	spawn     func(func())
	now       func() time.Time
	templates *templateWrapper

	mu      sync.Mutex
	flashes map[string]*flash
}

// clientCookie identifies a browser so form state reaches only the client
// that posted it.
const clientCookie = "pv_client"

// flash carries form state across the redirect after a POST.
type flash struct {
	view     string
	err      string
	message  string
	username string
	text     string
	editing  bool
	editID   int64
}

// NewHandler creates a new web handler.
func NewHandler(opts Options) (*Handler, error) {
	if opts.Store == nil {
		return nil, errors.New("web: store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Spawn == nil {
		opts.Spawn = func(fn func()) { go fn() }
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	users := account.NewUsers(opts.Store)
	return &Handler{
		store:     opts.Store,
		users:     users,
		sessions:  account.NewSessions(opts.Store, users),
		cache:     feed.NewCache(opts.Store),
		fetcher:   opts.Fetcher,
		logger:    opts.Logger,
		spawn:     opts.Spawn,
		now:       opts.Now,
		templates: newTemplateWrapper(),
		flashes:   make(map[string]*flash),
	}, nil
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if r.Method == http.MethodPost {
		switch {
		case strings.HasSuffix(path, "/todo/create"):
			h.handleCreate(w, r)
		case strings.HasSuffix(path, "/todo/toggle"):
			h.handleToggle(w, r)
		case strings.HasSuffix(path, "/todo/edit"):
			h.handleEdit(w, r)
		case strings.HasSuffix(path, "/todo/delete"):
			h.handleDelete(w, r)
		case strings.HasSuffix(path, "/todo/clear"):
			h.handleClear(w, r)
		case strings.HasSuffix(path, "/login"):
			h.handleLogin(w, r)
		case strings.HasSuffix(path, "/register"):
			h.handleRegister(w, r)
		case strings.HasSuffix(path, "/logout"):
			h.handleLogout(w, r)
		default:
			http.NotFound(w, r)
		}
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
		return
	}
	switch {
	case strings.HasSuffix(path, "/todo"), strings.HasSuffix(path, "/todo.html"):
		h.handleTodoView(w, r)
	case strings.HasSuffix(path, "/register"), strings.HasSuffix(path, "/register.html"):
		h.handleRegisterView(w, r)
	case strings.HasSuffix(path, "/"), strings.HasSuffix(path, "/index.html"), strings.HasSuffix(path, "/login"):
		h.handleLoginView(w, r)
	default:
		http.NotFound(w, r)
	}
}

type templateWrapper struct {
	tmpl *template.Template
}

func newTemplateWrapper() *templateWrapper {
	return &templateWrapper{tmpl: newTemplates()}
}

func (tw *templateWrapper) Render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tw.tmpl.ExecuteTemplate(w, "page", data)
}

type pageData struct {
	Title    string
	View     string
	Username string
	Error    string
	Message  string
	Form     formValues
	Items    []itemView
	EditText string
	Confirm  confirmView
}

type formValues struct {
	Username string
	Text     string
}

type itemView struct {
	ID        int64
	Text      string
	Done      bool
	CreatedAt time.Time
	Editable  bool
	Editing   bool
}

type confirmView struct {
	Message string
	Action  string
	ID      int64
	HasID   bool
}

func (h *Handler) handleLoginView(w http.ResponseWriter, r *http.Request) {
	if _, ok, err := h.sessions.Current(); err != nil {
		h.serverError(w, err)
		return
	} else if ok {
		http.Redirect(w, r, "/todo", http.StatusSeeOther)
		return
	}
	data := pageData{Title: "log in", View: "login"}
	if f := h.consumeFlash(r, "login"); f != nil {
		data.Error = f.err
		data.Message = f.message
		data.Form.Username = f.username
	}
	h.templates.Render(w, data)
}

func (h *Handler) handleRegisterView(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "register", View: "register"}
	if f := h.consumeFlash(r, "register"); f != nil {
		data.Error = f.err
		data.Form.Username = f.username
	}
	h.templates.Render(w, data)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username, password := account.TrimCredentials(r.FormValue("username"), r.FormValue("password"))
	if _, err := h.sessions.Login(username, password); err != nil {
		if !errors.Is(err, account.ErrInvalidCredentials) {
			h.serverError(w, err)
			return
		}
		h.setFlash(w, r, &flash{view: "login", err: err.Error(), username: username})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.logger.Info("login", "username", username)
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	username, password := account.TrimCredentials(r.FormValue("username"), r.FormValue("password"))
	if err := h.users.Register(username, password); err != nil {
		if !errors.Is(err, account.ErrMissingFields) && !errors.Is(err, account.ErrUserExists) {
			h.serverError(w, err)
			return
		}
		h.setFlash(w, r, &flash{view: "register", err: err.Error(), username: username})
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	h.setFlash(w, r, &flash{view: "login", message: "Registered " + username + "; log in to continue.", username: username})
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(); err != nil {
		h.serverError(w, err)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleTodoView(w http.ResponseWriter, r *http.Request) {
	b, ok := h.openBoard(w, r, nil)
	if !ok {
		return
	}

	data := pageData{Title: "tasks", View: "todo", Username: b.Username()}
	editID, editing := parseFormID(r.URL.Query().Get("edit"))
	if f := h.consumeFlash(r, "todo"); f != nil {
		data.Error = f.err
		data.Form.Text = f.text
		if f.editing {
			editID, editing = f.editID, true
			data.EditText = f.text
			data.Form.Text = ""
		}
	}
	if editing {
		current, err := b.LocalTask(editID)
		if err != nil {
			editing = false
			data.Error = err.Error()
		} else if data.EditText == "" {
			data.EditText = current.Text
		}
	}
	for _, item := range b.View() {
		data.Items = append(data.Items, itemView{
			ID:        item.Task.ID,
			Text:      item.Task.Text,
			Done:      item.Task.Done,
			CreatedAt: item.Task.CreatedAt,
			Editable:  item.Editable,
			Editing:   editing && item.Editable && item.Task.ID == editID,
		})
	}

	if b.Fetcher() != nil {
		h.spawn(func() {
			b.Refresh(context.Background())
		})
	}
	h.templates.Render(w, data)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	b, ok := h.openBoard(w, r, nil)
	if !ok {
		return
	}
	text := r.FormValue("text")
	created, err := b.Create(text)
	if err != nil {
		h.taskError(w, r, err, &flash{view: "todo", err: err.Error(), text: text})
		return
	}
	h.logger.Info("task_created", "id", created.ID, "username", b.Username())
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	b, ok := h.openBoard(w, r, nil)
	if !ok {
		return
	}
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	if _, err := b.Toggle(id); err != nil {
		h.taskError(w, r, err, &flash{view: "todo", err: err.Error()})
		return
	}
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	b, ok := h.openBoard(w, r, nil)
	if !ok {
		return
	}
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	if r.FormValue("cancel") != "" {
		http.Redirect(w, r, "/todo", http.StatusSeeOther)
		return
	}
	text := r.FormValue("text")
	if _, err := b.Edit(id, text); err != nil {
		f := &flash{view: "todo", err: err.Error()}
		if task.IsValidationError(err) {
			f.editing = true
			f.editID = id
			f.text = text
		}
		h.taskError(w, r, err, f)
		return
	}
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") == "yes"
	b, ok := h.openBoard(w, r, formPrompter{confirmed: confirmed})
	if !ok {
		return
	}
	id, ok := h.formID(w, r)
	if !ok {
		return
	}
	if !confirmed {
		if _, err := b.LocalTask(id); err != nil {
			h.taskError(w, r, err, &flash{view: "todo", err: err.Error()})
			return
		}
		h.templates.Render(w, pageData{
			Title:    "confirm",
			View:     "confirm",
			Username: b.Username(),
			Confirm:  confirmView{Message: "Delete this task?", Action: "/todo/delete", ID: id, HasID: true},
		})
		return
	}
	if _, err := b.Delete(id); err != nil {
		h.taskError(w, r, err, &flash{view: "todo", err: err.Error()})
		return
	}
	h.logger.Info("task_deleted", "id", id, "username", b.Username())
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	confirmed := r.FormValue("confirm") == "yes"
	b, ok := h.openBoard(w, r, formPrompter{confirmed: confirmed})
	if !ok {
		return
	}
	if !confirmed {
		h.templates.Render(w, pageData{
			Title:    "confirm",
			View:     "confirm",
			Username: b.Username(),
			Confirm:  confirmView{Message: "Delete all local tasks?", Action: "/todo/clear"},
		})
		return
	}
	if _, err := b.ClearAll(); err != nil {
		h.serverError(w, err)
		return
	}
	h.logger.Info("tasks_cleared", "username", b.Username())
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

// openBoard loads the board for the session user.
// Without a session it redirects to the login view and reports false.
func (h *Handler) openBoard(w http.ResponseWriter, r *http.Request, prompter board.Prompter) (*board.Board, bool) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return nil, false
		}
	}
	session, ok, err := h.sessions.Current()
	if err != nil {
		h.serverError(w, err)
		return nil, false
	}
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	if prompter == nil {
		prompter = formPrompter{}
	}
	b, err := board.Open(board.Options{
		Tasks:    task.NewStore(h.store, session.Username),
		Cache:    h.cache,
		Fetcher:  h.fetcher,
		Prompter: prompter,
		Now:      h.now,
		Logger:   h.logger,
	})
	if err != nil {
		h.serverError(w, err)
		return nil, false
	}
	return b, true
}

func (h *Handler) formID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := parseFormID(r.FormValue("id"))
	if !ok {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// taskError reports recoverable task errors inline and anything else as a 500.
func (h *Handler) taskError(w http.ResponseWriter, r *http.Request, err error, f *flash) {
	if !task.IsValidationError(err) && !errors.Is(err, task.ErrNotFound) && !errors.Is(err, board.ErrReadOnly) {
		h.serverError(w, err)
		return
	}
	h.setFlash(w, r, f)
	http.Redirect(w, r, "/todo", http.StatusSeeOther)
}

func (h *Handler) serverError(w http.ResponseWriter, err error) {
	h.logger.Error("request_failed", "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) setFlash(w http.ResponseWriter, r *http.Request, f *flash) {
	id := clientID(r)
	if id == "" {
		id = rand.Text()
		http.SetCookie(w, &http.Cookie{
			Name:     clientCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flashes[id] = f
}

func (h *Handler) consumeFlash(r *http.Request, view string) *flash {
	id := clientID(r)
	if id == "" {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.flashes[id]
	if f == nil || f.view != view {
		return nil
	}
	delete(h.flashes, id)
	return f
}

func clientID(r *http.Request) string {
	cookie, err := r.Cookie(clientCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func parseFormID(value string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// formPrompter answers confirmations from the submitted form.
type formPrompter struct {
	confirmed bool
}

func (p formPrompter) Confirm(string) (bool, error) {
	return p.confirmed, nil
}

func (formPrompter) Input(string, string) (string, bool, error) {
	return "", false, nil
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
